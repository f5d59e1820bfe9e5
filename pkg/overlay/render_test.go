package overlay

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/vrtour/pkg/sphere"
)

func TestIsVisible(t *testing.T) {
	forward := mgl64.Vec3{0, 0, 1}
	viewport := sphere.Size{Width: 800, Height: 600}
	marker := sphere.Size{Width: 40, Height: 40}

	tests := []struct {
		name string
		dir  mgl64.Vec3
		p    sphere.Point
		want bool
	}{
		{"centre", mgl64.Vec3{0, 0, 1}, sphere.Point{X: 400, Y: 300}, true},
		{"behind", mgl64.Vec3{0, 0, -1}, sphere.Point{X: 400, Y: 300}, false},
		{"perpendicular", mgl64.Vec3{1, 0, 0}, sphere.Point{X: 400, Y: 300}, false},
		{"just left of viewport", mgl64.Vec3{0, 0, 1}, sphere.Point{X: -39, Y: 300}, true},
		{"far left of viewport", mgl64.Vec3{0, 0, 1}, sphere.Point{X: -41, Y: 300}, false},
		{"just below viewport", mgl64.Vec3{0, 0, 1}, sphere.Point{X: 400, Y: 640}, true},
		{"far below viewport", mgl64.Vec3{0, 0, 1}, sphere.Point{X: 400, Y: 641}, false},
		{"far right of viewport", mgl64.Vec3{0, 0, 1}, sphere.Point{X: 900, Y: 300}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isVisible(forward, tt.dir, tt.p, marker, viewport); got != tt.want {
				t.Errorf("isVisible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngagesEdge(t *testing.T) {
	viewport := sphere.Size{Width: 800, Height: 600}
	marker := sphere.Size{Width: 40, Height: 40}

	tests := []struct {
		name string
		p    sphere.Point
		want bool
	}{
		{"centre", sphere.Point{X: 400, Y: 300}, false},
		{"touching left", sphere.Point{X: 20, Y: 300}, false},
		{"crossing left", sphere.Point{X: 19, Y: 300}, true},
		{"crossing right", sphere.Point{X: 781, Y: 300}, true},
		{"crossing top", sphere.Point{X: 400, Y: 10}, true},
		{"crossing bottom", sphere.Point{X: 400, Y: 590}, true},
		{"touching bottom", sphere.Point{X: 400, Y: 580}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engagesEdge(tt.p, marker, viewport); got != tt.want {
				t.Errorf("engagesEdge(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestDraggableKeepsOffset(t *testing.T) {
	var d draggable
	var seen []sphere.Point
	release := d.subscribe(func(p sphere.Point) { seen = append(seen, p) })

	d.start(sphere.Point{X: 105, Y: 95}, sphere.Point{X: 100, Y: 100}, nil)
	got := d.move(sphere.Point{X: 205, Y: 195})
	if want := (sphere.Point{X: 200, Y: 200}); got != want {
		t.Errorf("move() = %+v, want %+v", got, want)
	}
	if len(seen) != 1 || seen[0] != got {
		t.Errorf("subscriber saw %v", seen)
	}

	release()
	d.move(sphere.Point{X: 0, Y: 0})
	if len(seen) != 1 {
		t.Error("released subscriber still notified")
	}
}

func TestDraggableBounds(t *testing.T) {
	var d draggable
	bounds := sphere.Viewport(sphere.Size{Width: 100, Height: 50})
	d.start(sphere.Point{X: 10, Y: 10}, sphere.Point{X: 10, Y: 10}, &bounds)
	if got := d.move(sphere.Point{X: 500, Y: -20}); got != (sphere.Point{X: 100, Y: 0}) {
		t.Errorf("move() = %+v, want clamped to viewport corner", got)
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindClick:      "markerClick",
		KindTouchStart: "markerTouchStart",
		KindTouchEnd:   "markerTouchEnd",
		KindTouchMove:  "markerTouchMove",
		Kind(0):        "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestEmitterOrder(t *testing.T) {
	var e emitter
	var order []int
	for i := 0; i < 5; i++ {
		e.add(func(Event) { order = append(order, i) })
	}
	e.remove(2)
	for _, l := range e.snapshot() {
		l(MarkerClick{})
	}
	want := []int{0, 1, 3, 4}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
