// Package sphere provides the coordinate model shared by the viewer and the
// marker overlay.
//
// # Overview
//
// A panorama is viewed from the centre of a unit sphere. Every point the user
// can look at is described either as a [Position] (pitch and yaw in radians)
// or as a scene direction, a unit [mgl64.Vec3]. The two forms are
// interchangeable through [Direction] and [FromDirection]:
//
//	dir := sphere.Direction(sphere.Position{Pitch: 0.2, Yaw: math.Pi})
//	pos := sphere.FromDirection(dir) // {0.2, π} within floating-point tolerance
//
// # Conventions
//
// Yaw 0 looks along +Z, yaw increases clockwise when seen from above (towards
// -X), and is normalised to [0, 2π). Pitch is 0 on the horizon, +π/2 straight
// up and -π/2 straight down. Y is up.
//
// # Screen space
//
// [Point], [Size] and [Rect] describe 2D viewport coordinates, with the origin
// in the top-left corner and Y growing downwards. [Rect.CenterIn] and
// [Rect.SideOf] answer the layout questions the tour editor asks about
// dragged hotspots (dropped inside a zone, left or right of another element).
//
// # Dependencies
//
// Vectors are [github.com/go-gl/mathgl/mgl64] values so the viewer can use the
// same types for its camera basis.
package sphere
