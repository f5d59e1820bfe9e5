package overlay

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/vrtour/pkg/observability"
	"github.com/matzehuels/vrtour/pkg/sphere"
)

// render is the per-frame pass. Dragged markers are skipped: their position
// belongs to the drag controller until the pointer is released.
func (o *Overlay) render() {
	start := time.Now()
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	forward, size := o.host.CameraForward(), o.host.ViewportSize()
	var visible, hidden, skipped int
	for _, m := range o.markers {
		if m.dragging {
			skipped++
			continue
		}
		if o.syncLocked(m, forward, size) {
			visible++
		} else {
			hidden++
		}
	}
	o.mu.Unlock()

	observability.Overlay().OnRenderPass(visible, hidden, skipped, time.Since(start))
}

// syncLocked updates one element from the marker's direction. Hidden markers
// keep their stale position.
func (o *Overlay) syncLocked(m *marker, forward mgl64.Vec3, size sphere.Size) bool {
	p := o.host.ProjectToScreen(m.dir)
	if !isVisible(forward, m.dir, p, m.size, size) {
		m.el.SetVisible(false)
		return false
	}
	m.el.SetVisible(true)
	m.el.SetPosition(p)
	return true
}

// screenLocked returns where m is drawn and whether it is visible. Dragged
// markers are wherever the pointer put them.
func (o *Overlay) screenLocked(m *marker, forward mgl64.Vec3, size sphere.Size) (sphere.Point, bool) {
	if m.dragging {
		return m.drag.pos, true
	}
	p := o.host.ProjectToScreen(m.dir)
	return p, isVisible(forward, m.dir, p, m.size, size)
}

// isVisible is a conservative frustum test: the marker must be in front of
// the camera and its box, grown by its full size around p, must overlap the
// viewport.
func isVisible(forward, dir mgl64.Vec3, p sphere.Point, marker, viewport sphere.Size) bool {
	if forward.Dot(dir) <= 0 {
		return false
	}
	return p.X+marker.Width >= 0 &&
		p.X-marker.Width <= viewport.Width &&
		p.Y+marker.Height >= 0 &&
		p.Y-marker.Height <= viewport.Height
}

// engagesEdge reports whether the marker box centred on p crosses a viewport
// edge.
func engagesEdge(p sphere.Point, marker, viewport sphere.Size) bool {
	return p.X-marker.Width/2 < 0 ||
		p.Y-marker.Height/2 < 0 ||
		p.X+marker.Width/2 > viewport.Width ||
		p.Y+marker.Height/2 > viewport.Height
}
