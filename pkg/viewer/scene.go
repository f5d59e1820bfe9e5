package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PanoramaTag tags the viewer's own surface. Unproject only accepts hits on
// objects carrying this tag.
const PanoramaTag = "panorama"

// Object is a piece of scene geometry that rays can hit.
type Object interface {
	// Intersect returns the distance along dir (a unit vector) from origin to
	// the first hit in front of origin.
	Intersect(origin, dir mgl64.Vec3) (float64, bool)

	// Tag identifies who owns the object.
	Tag() string
}

// Sphere is a spherical object. The panorama itself is a Sphere centred on
// the camera.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
	Name   string
}

// Tag returns the sphere's name.
func (s Sphere) Tag() string { return s.Name }

// Intersect implements Object. A ray starting inside the sphere hits the far
// side.
func (s Sphere) Intersect(origin, dir mgl64.Vec3) (float64, bool) {
	const minT = 1e-9
	oc := origin.Sub(s.Center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -b - sq; t > minT {
		return t, true
	}
	if t := -b + sq; t > minT {
		return t, true
	}
	return 0, false
}

// Hit is one ray/object intersection.
type Hit struct {
	Distance float64
	Point    mgl64.Vec3
	Tag      string
}
