package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/vrtour/pkg/overlay"
	"github.com/matzehuels/vrtour/pkg/sphere"
	"github.com/matzehuels/vrtour/pkg/tour"
	"github.com/matzehuels/vrtour/pkg/viewer"
)

func TestTermSurfaceLeaveTransition(t *testing.T) {
	s := newTermSurface()
	el := s.Attach(overlay.Markup("kitchen"))
	s.Attach(overlay.Node{Value: 42})

	el.SetVisible(true)
	el.SetPosition(sphere.Point{X: 10, Y: 3})
	if got := el.Size(); got.Width != float64(lipgloss.Width(markerIcon+"kitchen")) || got.Height != 1 {
		t.Errorf("Size() = %+v", got)
	}

	ended := 0
	el.OnTransitionEnd(func() {
		ended++
		s.Detach(el)
	})
	el.AddClass("unrelated")
	s.step()
	if ended != 0 {
		t.Fatal("transition ended without the leave class")
	}

	el.AddClass(tour.LeaveClass)
	for i := 0; i < leaveFrames-1; i++ {
		s.step()
	}
	if views := s.snapshot(); len(views) != 1 || !views[0].leaving {
		t.Fatalf("snapshot() = %+v, want one leaving element", views)
	}
	s.step()
	if ended != 1 {
		t.Fatalf("transition end ran %d times, want 1", ended)
	}
	if len(s.elements) != 1 {
		t.Errorf("%d elements left, want 1", len(s.elements))
	}
	s.step()
	if ended != 1 {
		t.Error("transition end ran again")
	}
}

func TestCanvas(t *testing.T) {
	c := newCanvas(10, 5)
	c.text(-1, 0, "abc", nil)
	c.text(8, 1, "xyz", nil)
	c.text(0, 7, "off", nil)
	c.centered(sphere.Point{X: 5, Y: 2}, "mid", nil)
	c.text(0, 3, "南x", nil)

	lines := strings.Split(c.String(), "\n")
	want := []string{
		"bc        ",
		"        xy",
		"    mid   ",
		"南x       ",
		"          ",
	}
	if len(lines) != len(want) {
		t.Fatalf("%d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCanvasBox(t *testing.T) {
	c := newCanvas(12, 4)
	c.box(sphere.Rect{Left: 1, Top: 0, Width: 10, Height: 3}, "bin", nil)

	lines := strings.Split(c.String(), "\n")
	want := []string{
		" ┌────────┐ ",
		" │   bin  │ ",
		" └────────┘ ",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

// newTestViewModel builds the viewer stack used by the view command on an
// in-memory copy of testManifest, sized to an 80x26 terminal.
func newTestViewModel(t *testing.T, mode tour.Mode) (*viewModel, *tour.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	h, err := tour.Parse([]byte(testManifest))
	if err != nil {
		t.Fatal(err)
	}
	store := tour.NewMemoryStore(h)

	v := viewer.New(viewer.Options{
		Size:       sphere.Size{Width: 80, Height: 24},
		FOV:        viewer.DefaultFOV,
		CellAspect: cellAspect,
	})
	surface := newTermSurface()
	ov := overlay.New(v, surface, overlay.Options{})
	t.Cleanup(ov.Close)

	m := newViewModel(ctx, v, ov, surface, h.Rooms)
	m.nav = tour.NewNavigator(ctx, ov, store, tour.NavigatorOptions{
		Mode:    mode,
		OnEnter: m.entered,
		OnError: m.failed,
	})
	t.Cleanup(m.nav.Close)

	if err := m.nav.Enter(ctx, 1); err != nil {
		t.Fatal(err)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 26})
	return m, store
}

func mouse(x, y int, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func TestViewModelClickEntersRoom(t *testing.T) {
	m, _ := newTestViewModel(t, tour.View)
	if m.room.Name != "living" {
		t.Fatalf("room = %q, want living", m.room.Name)
	}

	// The hotspot to the kitchen sits straight ahead, centred on (40, 12).
	m.Update(mouse(39, 12, tea.MouseActionPress))
	m.Update(mouse(39, 12, tea.MouseActionRelease))

	if m.room.Name != "kitchen" {
		t.Errorf("room = %q after click, want kitchen", m.room.Name)
	}
	if !strings.Contains(m.status, "kitchen") {
		t.Errorf("status = %q", m.status)
	}
}

func TestViewModelDragToTrash(t *testing.T) {
	m, store := newTestViewModel(t, tour.Edit)
	if m.trash == nil {
		t.Fatal("trash zone not set on resize")
	}

	m.Update(mouse(39, 12, tea.MouseActionPress))
	m.Update(mouse(71, 21, tea.MouseActionMotion))
	m.Update(mouse(71, 21, tea.MouseActionRelease))

	room, err := store.Room(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(room.Hotspots) != 1 || room.Hotspots[0].Target != 5 {
		t.Fatalf("hotspots = %+v, want only the one to #5", room.Hotspots)
	}
	if m.statusErr {
		t.Errorf("unexpected error status %q", m.status)
	}

	before := len(m.surface.elements)
	for i := 0; i < leaveFrames; i++ {
		m.surface.step()
	}
	if got := len(m.surface.elements); got != before-1 {
		t.Errorf("%d elements after the leave transition, want %d", got, before-1)
	}
}

func TestViewModelDragMovesHotspot(t *testing.T) {
	m, store := newTestViewModel(t, tour.Edit)

	m.Update(mouse(39, 12, tea.MouseActionPress))
	m.Update(mouse(49, 12, tea.MouseActionMotion))
	m.Update(mouse(49, 12, tea.MouseActionRelease))

	room, err := store.Room(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := room.Hotspots[0]; got.Yaw <= 0 {
		t.Errorf("hotspot yaw = %g after dragging right, want > 0", got.Yaw)
	}
	if m.room.Name != "living" {
		t.Errorf("drag entered %q", m.room.Name)
	}
}

func TestViewModelPan(t *testing.T) {
	m, _ := newTestViewModel(t, tour.View)

	m.Update(mouse(10, 5, tea.MouseActionPress))
	m.Update(mouse(20, 5, tea.MouseActionMotion))
	m.Update(mouse(20, 5, tea.MouseActionRelease))

	// Yaw is kept in [0, 2π), so turning left shows up as a negative delta.
	if d := sphere.YawDelta(0, m.viewer.Position().Yaw); d >= 0 {
		t.Errorf("yaw delta = %g after dragging the panorama right, want < 0", d)
	}
}

func TestViewModelKeys(t *testing.T) {
	m, store := newTestViewModel(t, tour.View)
	runes := func(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

	m.Update(runes("a"))
	if !m.statusErr {
		t.Error("adding a hotspot in view mode did not fail")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.nav.Mode() != tour.Edit {
		t.Fatalf("mode = %v after tab, want edit", m.nav.Mode())
	}

	m.Update(runes("t"))
	if m.rooms[m.target].Name != "kitchen" {
		t.Errorf("target = %q, want kitchen", m.rooms[m.target].Name)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(runes("a"))
	room, err := store.Room(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(room.Hotspots) != 3 {
		t.Fatalf("%d hotspots, want 3", len(room.Hotspots))
	}
	added := room.Hotspots[2]
	if added.Target != 2 || added.Yaw <= 0 {
		t.Errorf("added hotspot = %+v", added)
	}

	m.Update(runes("2"))
	if m.room.Name != "kitchen" {
		t.Errorf("room = %q after key 2, want kitchen", m.room.Name)
	}

	if _, cmd := m.Update(runes("q")); cmd == nil {
		t.Error("q did not quit")
	}
}

func TestViewModelView(t *testing.T) {
	m, _ := newTestViewModel(t, tour.Edit)

	out := m.View()
	if got := strings.Count(out, "\n"); got != 25 {
		t.Errorf("view has %d lines, want 26", got+1)
	}
	// living faces south, so south-east is on the left.
	for _, want := range []string{"living", "kitchen", "edit", "trash", "facing south", "SE"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
