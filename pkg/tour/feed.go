package tour

import (
	"context"
	"sync"
	"time"
)

// ChangeKind names a hotspot change.
type ChangeKind string

const (
	HotspotAdded   ChangeKind = "hotspot_added"
	HotspotUpdated ChangeKind = "hotspot_updated"
	HotspotDeleted ChangeKind = "hotspot_deleted"
)

// Change is one successful write to a Store.
type Change struct {
	Kind    ChangeKind `json:"kind"`
	RoomID  int        `json:"room_id"`
	Index   int        `json:"index"`
	Hotspot *Hotspot   `json:"hotspot,omitempty"`
	At      time.Time  `json:"at"`
}

// Feed wraps a Store and publishes every successful hotspot write to its
// subscribers. Slow subscribers miss changes rather than block writers.
type Feed struct {
	Store

	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
	closed bool
	now    func() time.Time
}

// NewFeed wraps s.
func NewFeed(s Store) *Feed {
	return &Feed{Store: s, subs: make(map[int]chan Change), now: time.Now}
}

// Subscribe returns a channel receiving changes and a cancel function. The
// channel is closed on cancel or when the feed closes.
func (f *Feed) Subscribe(buffer int) (<-chan Change, func()) {
	ch := make(chan Change, max(buffer, 1))
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if c, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(c)
			}
		})
	}
}

// AddHotspot implements Store.
func (f *Feed) AddHotspot(ctx context.Context, roomID int, h Hotspot) (int, error) {
	index, err := f.Store.AddHotspot(ctx, roomID, h)
	if err == nil {
		f.publish(Change{Kind: HotspotAdded, RoomID: roomID, Index: index, Hotspot: &h})
	}
	return index, err
}

// UpdateHotspot implements Store.
func (f *Feed) UpdateHotspot(ctx context.Context, roomID, index int, h Hotspot) error {
	err := f.Store.UpdateHotspot(ctx, roomID, index, h)
	if err == nil {
		f.publish(Change{Kind: HotspotUpdated, RoomID: roomID, Index: index, Hotspot: &h})
	}
	return err
}

// DeleteHotspot implements Store.
func (f *Feed) DeleteHotspot(ctx context.Context, roomID, index int) error {
	err := f.Store.DeleteHotspot(ctx, roomID, index)
	if err == nil {
		f.publish(Change{Kind: HotspotDeleted, RoomID: roomID, Index: index})
	}
	return err
}

// Close closes every subscription and the wrapped store.
func (f *Feed) Close(ctx context.Context) error {
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		for id, ch := range f.subs {
			delete(f.subs, id)
			close(ch)
		}
	}
	f.mu.Unlock()
	return f.Store.Close(ctx)
}

func (f *Feed) publish(c Change) {
	c.At = f.now()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Ensure Feed implements Store.
var _ Store = (*Feed)(nil)
