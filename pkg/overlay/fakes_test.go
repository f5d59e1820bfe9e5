package overlay_test

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/vrtour/pkg/observability"
	"github.com/matzehuels/vrtour/pkg/overlay"
	"github.com/matzehuels/vrtour/pkg/sphere"
	"github.com/matzehuels/vrtour/pkg/viewer"
)

// fakeElement records every write the overlay makes.
type fakeElement struct {
	mu        sync.Mutex
	content   overlay.Content
	size      sphere.Size
	pos       sphere.Point
	visible   bool
	writes    int
	classes   []string
	onEnd     []func()
	detached  bool
	detachCnt int
}

func (e *fakeElement) Size() sphere.Size { return e.size }

func (e *fakeElement) SetPosition(p sphere.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pos = p
	e.writes++
}

func (e *fakeElement) SetVisible(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible = v
}

func (e *fakeElement) AddClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classes = append(e.classes, name)
}

func (e *fakeElement) OnTransitionEnd(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnd = append(e.onEnd, fn)
}

// endTransition fires every registered transition-end callback.
func (e *fakeElement) endTransition() {
	e.mu.Lock()
	fns := append([]func(){}, e.onEnd...)
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (e *fakeElement) snapshot() (pos sphere.Point, visible bool, writes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos, e.visible, e.writes
}

// fakeSurface hands out fakeElements of a fixed size.
type fakeSurface struct {
	mu       sync.Mutex
	size     sphere.Size
	elements []*fakeElement
	detached int
}

func (s *fakeSurface) Attach(c overlay.Content) overlay.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &fakeElement{content: c, size: s.size}
	s.elements = append(s.elements, e)
	return e
}

func (s *fakeSurface) Detach(el overlay.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := el.(*fakeElement)
	e.mu.Lock()
	e.detached = true
	e.detachCnt++
	e.mu.Unlock()
	s.detached++
}

func (s *fakeSurface) last() *fakeElement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elements[len(s.elements)-1]
}

// recordingHost is a viewer that records camera animation requests instead
// of running them.
type recordingHost struct {
	*viewer.Viewer

	mu    sync.Mutex
	anims []overlay.Animation
	miss  bool
}

func (h *recordingHost) AnimateCamera(a overlay.Animation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.anims = append(h.anims, a)
}

func (h *recordingHost) Unproject(p sphere.Point) (mgl64.Vec3, bool) {
	h.mu.Lock()
	miss := h.miss
	h.mu.Unlock()
	if miss {
		return mgl64.Vec3{}, false
	}
	return h.Viewer.Unproject(p)
}

func (h *recordingHost) setMiss(miss bool) {
	h.mu.Lock()
	h.miss = miss
	h.mu.Unlock()
}

func (h *recordingHost) animations() []overlay.Animation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]overlay.Animation(nil), h.anims...)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// countingHooks counts marker removals.
type countingHooks struct {
	observability.NoopOverlayHooks

	mu       sync.Mutex
	removed  map[string]int
	animated map[string]bool
	rotates  int
}

func (h *countingHooks) OnMarkerRemoved(marker string, animated bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed[marker]++
	h.animated[marker] = animated
}

func (h *countingHooks) OnAutoRotate(string, float64, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rotates++
}

func (h *countingHooks) removals(marker string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removed[marker]
}

func installCountingHooks(t *testing.T) *countingHooks {
	t.Helper()
	h := &countingHooks{removed: map[string]int{}, animated: map[string]bool{}}
	observability.SetOverlayHooks(h)
	t.Cleanup(observability.Reset)
	return h
}

// eventLog collects overlay events.
type eventLog struct {
	mu     sync.Mutex
	events []overlay.Event
}

func (l *eventLog) listen(e overlay.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) kinds() []overlay.Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]overlay.Kind, len(l.events))
	for i, e := range l.events {
		out[i] = e.Kind()
	}
	return out
}

func (l *eventLog) all() []overlay.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]overlay.Event(nil), l.events...)
}

type fixture struct {
	host    *recordingHost
	surface *fakeSurface
	ov      *overlay.Overlay
	log     *eventLog
	clock   *fakeClock
}

// newFixture builds an 800x600 viewer looking at pitch=0, yaw=0 with 40x40
// marker elements.
func newFixture(t *testing.T, opts overlay.Options) *fixture {
	t.Helper()
	host := &recordingHost{Viewer: viewer.New(viewer.Options{
		Size: sphere.Size{Width: 800, Height: 600},
		FOV:  math.Pi / 2,
	})}
	surface := &fakeSurface{size: sphere.Size{Width: 40, Height: 40}}
	clock := newFakeClock()
	if opts.Clock == nil {
		opts.Clock = clock.Now
	}
	ov := overlay.New(host, surface, opts)
	t.Cleanup(ov.Close)

	l := &eventLog{}
	ov.Subscribe(l.listen)
	return &fixture{host: host, surface: surface, ov: ov, log: l, clock: clock}
}
