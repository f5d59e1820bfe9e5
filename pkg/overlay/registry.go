package overlay

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/matzehuels/vrtour/pkg/observability"
	"github.com/matzehuels/vrtour/pkg/sphere"
)

// RemoveOptions controls how a marker leaves the screen.
type RemoveOptions struct {
	// Animate applies AnimateClassName and waits for the element's transition
	// to end before detaching it.
	Animate          bool
	AnimateClassName string

	// OnAnimateEnd runs once, after the animated removal completed. Removing
	// a marker again while its removal is pending adds another callback to
	// the same removal.
	OnAnimateEnd func()
}

// AddMarker attaches a new marker showing content at info.Position.
// Pitch and yaw are not validated.
func (o *Overlay) AddMarker(content Content, info MarkerInfo) Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		o.logger.Warn("add marker on closed overlay")
		return Handle{}
	}

	el := o.surface.Attach(content)
	m := &marker{
		handle:  Handle(uuid.New()),
		el:      el,
		dir:     sphere.Direction(info.Position),
		size:    el.Size(),
		meta:    info.MetaData,
		drag:    &draggable{},
		limiter: rate.NewLimiter(rate.Every(o.opts.EdgeThrottle), 1),
	}
	o.seq++
	m.seq = o.seq
	m.release = m.drag.subscribe(el.SetPosition)
	o.markers[m.handle] = m

	o.syncLocked(m, o.host.CameraForward(), o.host.ViewportSize())

	o.logger.Debug("marker added", "marker", m.handle, "pitch", info.Position.Pitch, "yaw", info.Position.Yaw)
	observability.Overlay().OnMarkerAdded(m.handle.String(), len(o.markers))
	return m.handle
}

// RemoveMarker removes the marker h. It reports whether h was known; removing
// an unknown marker does nothing.
func (o *Overlay) RemoveMarker(h Handle, opts RemoveOptions) bool {
	o.mu.Lock()
	m, ok := o.markers[h]
	if !ok {
		o.mu.Unlock()
		o.logger.Debug("remove unknown marker", "marker", h)
		return false
	}
	if !opts.Animate {
		o.destroyLocked(m)
		delete(o.markers, h)
		o.mu.Unlock()
		return true
	}
	if opts.OnAnimateEnd != nil {
		m.onRemoved = append(m.onRemoved, opts.OnAnimateEnd)
	}
	if m.removing {
		// The pending removal runs this caller's OnAnimateEnd too.
		o.mu.Unlock()
		return true
	}
	m.removing = true
	o.mu.Unlock()

	var once sync.Once
	m.el.OnTransitionEnd(func() {
		once.Do(func() {
			o.mu.Lock()
			if cur, ok := o.markers[h]; ok && cur == m {
				o.destroyLocked(m)
				delete(o.markers, h)
			}
			done := m.onRemoved
			m.onRemoved = nil
			o.mu.Unlock()
			for _, fn := range done {
				fn()
			}
		})
	})
	m.el.AddClass(opts.AnimateClassName)
	return true
}

// RemoveAllMarker detaches every marker synchronously, including markers
// whose animated removal is still pending.
func (o *Overlay) RemoveAllMarker() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for h, m := range o.markers {
		o.destroyLocked(m)
		delete(o.markers, h)
	}
}

// Len returns the number of markers in the registry.
func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.markers)
}

// Handles returns every marker handle, oldest first.
func (o *Overlay) Handles() []Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.orderedLocked()
}

// Marker returns a snapshot of marker h.
func (o *Overlay) Marker(h Handle) (MarkerState, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, ok := o.markers[h]
	if !ok {
		return MarkerState{}, false
	}
	screen, visible := o.screenLocked(m, o.host.CameraForward(), o.host.ViewportSize())
	return MarkerState{
		Handle:    m.handle,
		Position:  sphere.FromDirection(m.dir),
		Direction: m.dir,
		Size:      m.size,
		Dragging:  m.dragging,
		Visible:   visible,
		Screen:    screen,
		MetaData:  m.meta,
		Removing:  m.removing,
	}, true
}

// Bounds returns the current screen rectangle of marker h.
func (o *Overlay) Bounds(h Handle) (sphere.Rect, bool) {
	st, ok := o.Marker(h)
	if !ok {
		return sphere.Rect{}, false
	}
	return sphere.RectAround(st.Screen, st.Size), true
}

// HitTest returns the topmost visible marker whose rectangle contains p.
// Markers added later are on top.
func (o *Overlay) HitTest(p sphere.Point) (Handle, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	forward, size := o.host.CameraForward(), o.host.ViewportSize()
	order := o.orderedLocked()
	for i := len(order) - 1; i >= 0; i-- {
		m := o.markers[order[i]]
		if m.removing {
			continue
		}
		screen, visible := o.screenLocked(m, forward, size)
		if visible && sphere.RectAround(screen, m.size).Contains(p) {
			return m.handle, true
		}
	}
	return Handle{}, false
}

func (o *Overlay) orderedLocked() []Handle {
	ms := make([]*marker, 0, len(o.markers))
	for _, m := range o.markers {
		ms = append(ms, m)
	}
	slices.SortFunc(ms, func(a, b *marker) int { return cmp.Compare(a.seq, b.seq) })
	out := make([]Handle, len(ms))
	for i, m := range ms {
		out[i] = m.handle
	}
	return out
}
