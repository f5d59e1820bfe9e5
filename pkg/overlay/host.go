package overlay

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/vrtour/pkg/sphere"
)

// =============================================================================
// Host - the panorama engine
// =============================================================================

// Host is the capability set the overlay needs from the panorama engine.
// Implementations must not call back into the overlay from ProjectToScreen,
// Unproject, CameraForward or ViewportSize: these run with the overlay lock
// held.
type Host interface {
	// OnRender registers fn to run once per rendered frame.
	OnRender(fn func()) (cancel func())

	// ProjectToScreen maps a scene direction to viewport coordinates.
	ProjectToScreen(dir mgl64.Vec3) sphere.Point

	// Unproject casts a ray through p and returns the direction of the first
	// hit on the host's own panorama surface. Hits on any other geometry are
	// ignored. ok is false when the ray misses the surface.
	Unproject(p sphere.Point) (dir mgl64.Vec3, ok bool)

	// CameraForward returns the unit direction the camera looks at.
	CameraForward() mgl64.Vec3

	// ViewportSize returns the viewport size.
	ViewportSize() sphere.Size

	// AnimateCamera starts rotating the camera towards a target.
	AnimateCamera(a Animation)
}

// Animation is a camera rotation request.
type Animation struct {
	Target   sphere.Position
	SpeedRPM float64
}

// =============================================================================
// Surface - where marker visuals live
// =============================================================================

// Surface owns the on-screen container for marker elements.
type Surface interface {
	// Attach creates a new element showing c and adds it to the container.
	Attach(c Content) Element

	// Detach removes e from the container.
	Detach(e Element)
}

// Element is the on-screen visual of one marker. Positions are the marker
// anchor, which is the centre of the element.
type Element interface {
	// Size returns the element's rendered size.
	Size() sphere.Size

	SetPosition(p sphere.Point)
	SetVisible(visible bool)

	// AddClass applies a presentation class, e.g. a leave transition.
	AddClass(name string)

	// OnTransitionEnd registers fn to run once when the current transition
	// finishes.
	OnTransitionEnd(fn func())
}

// Content is what a marker element displays: either Markup or a Node.
type Content interface {
	content()
}

// Markup is raw markup rendered by the surface.
type Markup string

// Node is a pre-built visual the surface knows how to attach.
type Node struct {
	Value any
}

func (Markup) content() {}
func (Node) content()   {}
