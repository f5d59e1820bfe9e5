package overlay

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/matzehuels/vrtour/pkg/observability"
	"github.com/matzehuels/vrtour/pkg/sphere"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultEdgeThrottle is the minimum interval between two edge-triggered
	// camera rotations of the same marker.
	DefaultEdgeThrottle = 3300 * time.Millisecond

	// DefaultRotateSpeedRPM is the camera speed used for edge rotation.
	DefaultRotateSpeedRPM = 3.3
)

// Options configures an Overlay.
type Options struct {
	// CanDrag enables dragging. It can be changed later with SetCanDrag.
	CanDrag bool

	// ClampDrag keeps dragged markers inside the viewport.
	ClampDrag bool

	// EdgeThrottle defaults to DefaultEdgeThrottle.
	EdgeThrottle time.Duration

	// RotateSpeedRPM defaults to DefaultRotateSpeedRPM.
	RotateSpeedRPM float64

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.EdgeThrottle <= 0 {
		o.EdgeThrottle = DefaultEdgeThrottle
	}
	if o.RotateSpeedRPM <= 0 {
		o.RotateSpeedRPM = DefaultRotateSpeedRPM
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// =============================================================================
// Overlay
// =============================================================================

// Handle identifies a marker.
type Handle uuid.UUID

// String returns the handle in UUID form.
func (h Handle) String() string { return uuid.UUID(h).String() }

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h == Handle{} }

// MarkerInfo describes a marker to add.
type MarkerInfo struct {
	Position sphere.Position
	MetaData any
}

// MarkerState is a snapshot of one marker.
type MarkerState struct {
	Handle    Handle
	Position  sphere.Position
	Size      sphere.Size
	Dragging  bool
	Visible   bool
	Screen    sphere.Point
	MetaData  any
	Removing  bool
	Direction mgl64.Vec3
}

// Overlay keeps marker elements glued to directions on the panorama sphere.
// All methods are safe for concurrent use.
type Overlay struct {
	host    Host
	surface Surface
	opts    Options
	logger  *log.Logger

	mu       sync.Mutex
	canDrag  bool
	markers  map[Handle]*marker
	seq      uint64
	pointers map[int]*press
	emitter  emitter
	closed   bool

	cancelRender func()
}

// marker is the registry entry for one marker.
type marker struct {
	handle   Handle
	seq      uint64
	el       Element
	dir      mgl64.Vec3
	size     sphere.Size
	meta     any
	dragging bool
	removing bool

	drag      *draggable
	release   func()
	released  bool
	limiter   *rate.Limiter
	onRemoved []func() // OnAnimateEnd callbacks of pending animated removals
}

// press tracks one pointer between down and up.
type press struct {
	handle   Handle
	start    sphere.Point
	moved    bool
	dragging bool
}

// effects collects what must happen after the lock is released.
type effects struct {
	events  []Event
	animate *Animation
}

func (fx *effects) emit(e Event) { fx.events = append(fx.events, e) }

// New creates an overlay on host and subscribes it to host renders.
// Call Close to release the subscription and every marker.
func New(host Host, surface Surface, opts Options) *Overlay {
	opts.setDefaults()
	o := &Overlay{
		host:     host,
		surface:  surface,
		opts:     opts,
		logger:   opts.Logger,
		canDrag:  opts.CanDrag,
		markers:  make(map[Handle]*marker),
		pointers: make(map[int]*press),
	}
	o.cancelRender = host.OnRender(o.render)
	return o
}

// SetCanDrag enables or disables dragging for every marker. Drags already in
// progress are not interrupted.
func (o *Overlay) SetCanDrag(canDrag bool) {
	o.mu.Lock()
	o.canDrag = canDrag
	o.mu.Unlock()
}

// CanDrag reports whether dragging is enabled.
func (o *Overlay) CanDrag() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.canDrag
}

// Subscribe registers l for every overlay event. Listeners are called in
// subscription order, outside the overlay lock.
func (o *Overlay) Subscribe(l Listener) (cancel func()) {
	o.mu.Lock()
	id := o.emitter.add(l)
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			o.emitter.remove(id)
			o.mu.Unlock()
		})
	}
}

// Close tears the overlay down: it stops listening to renders, detaches every
// element and releases every marker subscription not yet released.
func (o *Overlay) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	cancel := o.cancelRender
	for h, m := range o.markers {
		o.destroyLocked(m)
		delete(o.markers, h)
	}
	o.pointers = make(map[int]*press)
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// flush dispatches collected effects. Must be called without o.mu held.
func (o *Overlay) flush(fx effects) {
	if len(fx.events) > 0 {
		o.mu.Lock()
		listeners := o.emitter.snapshot()
		o.mu.Unlock()
		for _, e := range fx.events {
			for _, l := range listeners {
				l(e)
			}
		}
	}
	if fx.animate != nil {
		o.host.AnimateCamera(*fx.animate)
	}
}

// destroyLocked detaches m and releases its subscription exactly once.
func (o *Overlay) destroyLocked(m *marker) {
	o.surface.Detach(m.el)
	if !m.released {
		m.released = true
		m.release()
		observability.Overlay().OnMarkerRemoved(m.handle.String(), m.removing)
	}
}
