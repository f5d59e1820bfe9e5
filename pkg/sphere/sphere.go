package sphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Position is a direction on the viewing sphere expressed as angles.
type Position struct {
	Pitch float64 `json:"pitch"` // radians, [-π/2, π/2]
	Yaw   float64 `json:"yaw"`   // radians, [0, 2π)
}

// Direction converts a spherical position to a unit scene direction.
// No range validation is performed; out-of-range angles wrap naturally.
func Direction(p Position) mgl64.Vec3 {
	cp := math.Cos(p.Pitch)
	return mgl64.Vec3{
		-cp * math.Sin(p.Yaw),
		math.Sin(p.Pitch),
		cp * math.Cos(p.Yaw),
	}
}

// FromDirection converts a scene direction to a spherical position.
// The vector does not need to be normalised. A zero vector maps to the
// zero position.
func FromDirection(v mgl64.Vec3) Position {
	r := v.Len()
	if r == 0 {
		return Position{}
	}
	pitch := math.Asin(clamp(v.Y()/r, -1, 1))
	theta := math.Atan2(v.X(), v.Z())
	return Position{Pitch: pitch, Yaw: NormalizeYaw(-theta)}
}

// NormalizeYaw wraps an angle into [0, 2π).
func NormalizeYaw(yaw float64) float64 {
	yaw = math.Mod(yaw, 2*math.Pi)
	if yaw < 0 {
		yaw += 2 * math.Pi
	}
	if yaw >= 2*math.Pi {
		yaw = 0
	}
	return yaw
}

// ClampPitch limits pitch to the closed range [-π/2, π/2].
func ClampPitch(pitch float64) float64 {
	return clamp(pitch, -math.Pi/2, math.Pi/2)
}

// AngleBetween returns the great-circle angle between two positions in radians.
func AngleBetween(a, b Position) float64 {
	return math.Acos(clamp(Direction(a).Dot(Direction(b)), -1, 1))
}

// YawDelta returns the signed shortest rotation from yaw a to yaw b,
// in (-π, π].
func YawDelta(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
