package overlay

import (
	"github.com/matzehuels/vrtour/pkg/observability"
	"github.com/matzehuels/vrtour/pkg/sphere"
)

// =============================================================================
// draggable - pointer-follow primitive
// =============================================================================

// draggable moves a position along with the pointer, keeping the offset
// between the pointer and the anchor captured at press time. Every update is
// published to subscribers.
type draggable struct {
	pos    sphere.Point
	offset sphere.Point
	bounds *sphere.Rect
	subs   map[int]func(sphere.Point)
	nextID int
}

// subscribe registers fn for position updates and returns its release.
func (d *draggable) subscribe(fn func(sphere.Point)) (release func()) {
	if d.subs == nil {
		d.subs = make(map[int]func(sphere.Point))
	}
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	return func() { delete(d.subs, id) }
}

func (d *draggable) start(pointer, anchor sphere.Point, bounds *sphere.Rect) {
	d.pos = anchor
	d.offset = pointer.Sub(anchor)
	d.bounds = bounds
}

func (d *draggable) move(pointer sphere.Point) sphere.Point {
	p := pointer.Sub(d.offset)
	if d.bounds != nil {
		p = d.bounds.Clamp(p)
	}
	d.pos = p
	for _, fn := range d.subs {
		fn(p)
	}
	return p
}

// =============================================================================
// Pointer input
// =============================================================================

// PointerDown presses pointer id on marker h at screen point p. When
// dragging is disabled the press can still become a click but no drag starts
// and no drag event is emitted. A drag still held by id is ended first, as if
// the pointer had been released where the marker is.
func (o *Overlay) PointerDown(id int, h Handle, p sphere.Point) {
	var fx effects
	o.mu.Lock()
	if prev, ok := o.pointers[id]; ok {
		delete(o.pointers, id)
		if pm, ok := o.markers[prev.handle]; ok && prev.dragging && pm.dragging {
			o.endDragLocked(pm, &fx)
		}
	}
	m, ok := o.markers[h]
	if !ok || o.closed || m.removing {
		o.mu.Unlock()
		o.flush(fx)
		return
	}
	pr := &press{handle: h, start: p}
	o.pointers[id] = pr

	if !o.canDrag {
		o.logger.Debug("drag vetoed", "marker", h)
		o.mu.Unlock()
		o.flush(fx)
		return
	}

	forward, size := o.host.CameraForward(), o.host.ViewportSize()
	anchor, _ := o.screenLocked(m, forward, size)
	var bounds *sphere.Rect
	if o.opts.ClampDrag {
		vp := sphere.Viewport(size)
		bounds = &vp
	}
	m.drag.start(p, anchor, bounds)
	m.dragging = true
	pr.dragging = true
	fx.emit(MarkerTouchStart{Marker: h, MetaData: m.meta})
	observability.Overlay().OnDrag(h.String(), "start")
	o.mu.Unlock()

	o.flush(fx)
}

// PointerMove moves pointer id to p. Moves of pointers that did not press a
// marker are ignored.
func (o *Overlay) PointerMove(id int, p sphere.Point) {
	var fx effects
	o.mu.Lock()
	pr, ok := o.pointers[id]
	if !ok {
		o.mu.Unlock()
		return
	}
	if p != pr.start {
		pr.moved = true
	}
	m, ok := o.markers[pr.handle]
	if !ok || !pr.dragging {
		o.mu.Unlock()
		return
	}

	pos := m.drag.move(p)
	size := o.host.ViewportSize()
	target, hit := o.castLocked(m, pos)
	if hit && engagesEdge(pos, m.size, size) && m.limiter.AllowN(o.opts.Clock(), 1) {
		fx.animate = &Animation{Target: target, SpeedRPM: o.opts.RotateSpeedRPM}
		observability.Overlay().OnAutoRotate(m.handle.String(), target.Pitch, target.Yaw)
	}
	fx.emit(MarkerTouchMove{Marker: m.handle, MetaData: m.meta, Position: pos})
	o.mu.Unlock()

	o.flush(fx)
}

// PointerUp releases pointer id at p. A drag ends with MarkerTouchEnd; a
// press that never moved also produces MarkerClick carrying origin, the raw
// input event.
func (o *Overlay) PointerUp(id int, p sphere.Point, origin any) {
	var fx effects
	o.mu.Lock()
	pr, ok := o.pointers[id]
	if !ok {
		o.mu.Unlock()
		return
	}
	delete(o.pointers, id)
	if p != pr.start {
		pr.moved = true
	}
	m, ok := o.markers[pr.handle]
	if !ok {
		o.mu.Unlock()
		return
	}

	if pr.dragging && m.dragging {
		o.endDragLocked(m, &fx)
	}
	if !pr.moved {
		fx.emit(MarkerClick{Origin: origin, MetaData: m.meta})
	}
	o.mu.Unlock()

	o.flush(fx)
}

// endDragLocked settles m at the last drag position and queues
// MarkerTouchEnd.
func (o *Overlay) endDragLocked(m *marker, fx *effects) {
	pos, _ := o.castLocked(m, m.drag.pos)
	m.dragging = false
	fx.emit(MarkerTouchEnd{Marker: m.handle, MetaData: m.meta, Position: pos})
	observability.Overlay().OnDrag(m.handle.String(), "end")
}

// castLocked re-derives the marker direction from screen point p. A ray that
// misses the panorama leaves the direction unchanged; the returned position
// is then the last good one.
func (o *Overlay) castLocked(m *marker, p sphere.Point) (sphere.Position, bool) {
	dir, ok := o.host.Unproject(p)
	if !ok {
		o.logger.Debug("ray cast missed panorama", "marker", m.handle, "x", p.X, "y", p.Y)
		return sphere.FromDirection(m.dir), false
	}
	m.dir = dir.Normalize()
	return sphere.FromDirection(m.dir), true
}
