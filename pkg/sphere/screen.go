package sphere

// Point is a location in viewport coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Size is a width and height in viewport units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle in viewport coordinates.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Viewport returns the rectangle [0, s.Width] x [0, s.Height].
func Viewport(s Size) Rect {
	return Rect{Width: s.Width, Height: s.Height}
}

// RectAround returns the rectangle of the given size centred on c.
func RectAround(c Point, s Size) Rect {
	return Rect{Left: c.X - s.Width/2, Top: c.Y - s.Height/2, Width: s.Width, Height: s.Height}
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center returns the centre point.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Intersects reports whether r and o overlap, touching edges included.
func (r Rect) Intersects(o Rect) bool {
	return r.Left <= o.Right() && o.Left <= r.Right() &&
		r.Top <= o.Bottom() && o.Top <= r.Bottom()
}

// Clamp returns p moved inside r.
func (r Rect) Clamp(p Point) Point {
	return Point{
		X: clamp(p.X, r.Left, r.Right()),
		Y: clamp(p.Y, r.Top, r.Bottom()),
	}
}

// CenterIn reports whether the centre of r lies inside zone.
func (r Rect) CenterIn(zone Rect) bool {
	return zone.Contains(r.Center())
}

// Side is the horizontal relation of one rectangle to another.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// SideOf reports whether the centre of r is left or right of the centre of o.
// Equal centres count as left.
func (r Rect) SideOf(o Rect) Side {
	if r.Center().X <= o.Center().X {
		return SideLeft
	}
	return SideRight
}
