package overlay

import (
	"sort"

	"github.com/matzehuels/vrtour/pkg/sphere"
)

// Kind identifies an overlay event.
type Kind int

const (
	KindClick Kind = iota + 1
	KindTouchStart
	KindTouchEnd
	KindTouchMove
)

// String returns the event name.
func (k Kind) String() string {
	switch k {
	case KindClick:
		return "markerClick"
	case KindTouchStart:
		return "markerTouchStart"
	case KindTouchEnd:
		return "markerTouchEnd"
	case KindTouchMove:
		return "markerTouchMove"
	default:
		return "unknown"
	}
}

// Event is one of MarkerClick, MarkerTouchStart, MarkerTouchEnd or
// MarkerTouchMove. The set is closed.
type Event interface {
	Kind() Kind
	event()
}

// MarkerClick is emitted when a marker is pressed and released without moving.
type MarkerClick struct {
	Origin   any // the input event that produced the click
	MetaData any
}

// MarkerTouchStart is emitted when a drag starts.
type MarkerTouchStart struct {
	Marker   Handle
	MetaData any
}

// MarkerTouchEnd is emitted when a drag ends. Position is where the marker
// was dropped on the sphere.
type MarkerTouchEnd struct {
	Marker   Handle
	MetaData any
	Position sphere.Position
}

// MarkerTouchMove is emitted for every pointer move during a drag. Position
// is the marker's screen position.
type MarkerTouchMove struct {
	Marker   Handle
	MetaData any
	Position sphere.Point
}

func (MarkerClick) Kind() Kind      { return KindClick }
func (MarkerTouchStart) Kind() Kind { return KindTouchStart }
func (MarkerTouchEnd) Kind() Kind   { return KindTouchEnd }
func (MarkerTouchMove) Kind() Kind  { return KindTouchMove }

func (MarkerClick) event()      {}
func (MarkerTouchStart) event() {}
func (MarkerTouchEnd) event()   {}
func (MarkerTouchMove) event()  {}

// Listener receives overlay events.
type Listener func(Event)

// emitter is a listener registry. It has its own ordering but no lock; the
// overlay guards it.
type emitter struct {
	listeners map[int]Listener
	nextID    int
}

func (e *emitter) add(l Listener) int {
	if e.listeners == nil {
		e.listeners = make(map[int]Listener)
	}
	id := e.nextID
	e.nextID++
	e.listeners[id] = l
	return id
}

func (e *emitter) remove(id int) {
	delete(e.listeners, id)
}

// snapshot returns listeners in subscription order.
func (e *emitter) snapshot() []Listener {
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = e.listeners[id]
	}
	return out
}
