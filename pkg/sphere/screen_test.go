package sphere

import "testing"

func TestRectIntersects(t *testing.T) {
	vp := Viewport(Size{Width: 800, Height: 600})
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"inside", Rect{Left: 100, Top: 100, Width: 40, Height: 40}, true},
		{"straddles left edge", Rect{Left: -20, Top: 100, Width: 40, Height: 40}, true},
		{"touches right edge", Rect{Left: 800, Top: 0, Width: 10, Height: 10}, true},
		{"fully left", Rect{Left: -50, Top: 100, Width: 40, Height: 40}, false},
		{"fully below", Rect{Left: 100, Top: 601, Width: 40, Height: 40}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Intersects(vp); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectCenterIn(t *testing.T) {
	zone := Rect{Left: 0, Top: 500, Width: 200, Height: 100}
	inside := RectAround(Point{X: 100, Y: 560}, Size{Width: 300, Height: 300})
	if !inside.CenterIn(zone) {
		t.Error("centre at (100,560) should be inside the zone")
	}
	outside := RectAround(Point{X: 250, Y: 560}, Size{Width: 40, Height: 40})
	if outside.CenterIn(zone) {
		t.Error("centre at (250,560) should be outside the zone")
	}
}

func TestRectSideOf(t *testing.T) {
	a := Rect{Left: 0, Width: 10, Height: 10}
	b := Rect{Left: 100, Width: 10, Height: 10}
	if got := a.SideOf(b); got != SideLeft {
		t.Errorf("a.SideOf(b) = %s, want left", got)
	}
	if got := b.SideOf(a); got != SideRight {
		t.Errorf("b.SideOf(a) = %s, want right", got)
	}
	if got := a.SideOf(a); got != SideLeft {
		t.Errorf("equal centres = %s, want left", got)
	}
}

func TestRectClamp(t *testing.T) {
	vp := Viewport(Size{Width: 80, Height: 24})
	got := vp.Clamp(Point{X: -3, Y: 30})
	if got != (Point{X: 0, Y: 24}) {
		t.Errorf("Clamp = %+v", got)
	}
}
