package tour

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vrtour/pkg/errors"
	"github.com/matzehuels/vrtour/pkg/overlay"
	"github.com/matzehuels/vrtour/pkg/sphere"
)

// LeaveClass is the presentation class applied to a hotspot deleted by
// dropping it on the trash zone.
const LeaveClass = "hotspot-leave"

// HotspotRef is the metadata attached to every hotspot marker. Index shifts
// when an earlier hotspot of the same room is deleted.
type HotspotRef struct {
	RoomID  int
	Index   int
	Hotspot Hotspot
	Label   string
}

// NavigatorOptions configures a Navigator.
type NavigatorOptions struct {
	Mode Mode

	// Trash is the screen zone that deletes a hotspot dropped inside it.
	// Nil disables deletion by drop.
	Trash *sphere.Rect

	// Content builds the marker visual for a hotspot. Defaults to Markup
	// holding the label.
	Content func(ref HotspotRef) overlay.Content

	// OnEnter runs after a room's hotspots were placed.
	OnEnter func(Room)

	// OnError receives errors from store writes triggered by overlay events.
	OnError func(error)

	Logger *log.Logger
}

// Navigator drives an overlay from a Store: it places the current room's
// hotspots, walks to the target room on click in View mode, and persists
// drags and deletions in Edit mode.
type Navigator struct {
	ctx   context.Context
	ov    *overlay.Overlay
	store Store
	opts  NavigatorOptions

	enter sync.Mutex // serializes Enter

	mu       sync.Mutex
	mode     Mode
	room     Room
	entered  bool
	refs     map[overlay.Handle]*HotspotRef
	lastMove map[overlay.Handle]sphere.Point
	trash    *sphere.Rect

	unsubscribe func()
}

// NewNavigator subscribes to ov. ctx bounds the store calls made in response
// to overlay events. Call Close to unsubscribe.
func NewNavigator(ctx context.Context, ov *overlay.Overlay, store Store, opts NavigatorOptions) *Navigator {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Content == nil {
		opts.Content = func(ref HotspotRef) overlay.Content { return overlay.Markup(ref.Label) }
	}
	n := &Navigator{
		ctx:      ctx,
		ov:       ov,
		store:    store,
		opts:     opts,
		mode:     opts.Mode,
		refs:     make(map[overlay.Handle]*HotspotRef),
		lastMove: make(map[overlay.Handle]sphere.Point),
		trash:    opts.Trash,
	}
	ov.SetCanDrag(opts.Mode == Edit)
	n.unsubscribe = ov.Subscribe(n.handle)
	return n
}

// Mode returns the interaction mode.
func (n *Navigator) Mode() Mode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mode
}

// SetMode switches modes. Edit enables dragging.
func (n *Navigator) SetMode(m Mode) {
	n.mu.Lock()
	n.mode = m
	n.mu.Unlock()
	n.ov.SetCanDrag(m == Edit)
	n.opts.Logger.Debug("mode changed", "mode", m)
}

// SetTrash sets the trash zone. Nil disables deletion by drop.
func (n *Navigator) SetTrash(r *sphere.Rect) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.trash = r
}

// Room returns the current room. ok is false before the first Enter.
func (n *Navigator) Room() (Room, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.room.Clone(), n.entered
}

// Ref returns a copy of the metadata of marker h.
func (n *Navigator) Ref(h overlay.Handle) (HotspotRef, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ref, ok := n.refs[h]
	if !ok {
		return HotspotRef{}, false
	}
	return *ref, true
}

// Enter clears every marker and places the hotspots of room id.
func (n *Navigator) Enter(ctx context.Context, id int) error {
	n.enter.Lock()
	defer n.enter.Unlock()

	room, err := n.store.Room(ctx, id)
	if err != nil {
		return err
	}
	labels, err := n.labels(ctx)
	if err != nil {
		return err
	}

	n.ov.RemoveAllMarker()
	refs := make(map[overlay.Handle]*HotspotRef, len(room.Hotspots))
	for i, hs := range room.Hotspots {
		ref := &HotspotRef{RoomID: room.ID, Index: i, Hotspot: hs, Label: labels(hs.Target)}
		h := n.ov.AddMarker(n.opts.Content(*ref), overlay.MarkerInfo{Position: hs.Position(), MetaData: ref})
		if h.IsZero() {
			return errors.New(errors.ErrCodeInternal, "overlay closed")
		}
		refs[h] = ref
	}

	n.mu.Lock()
	n.room = room
	n.entered = true
	n.refs = refs
	n.lastMove = make(map[overlay.Handle]sphere.Point)
	n.mu.Unlock()

	n.opts.Logger.Info("entered room", "room", room.ID, "name", room.Name, "hotspots", len(room.Hotspots))
	if n.opts.OnEnter != nil {
		n.opts.OnEnter(room.Clone())
	}
	return nil
}

// AddHotspot stores a hotspot to room target at p in the current room and
// places its marker. It requires Edit mode.
func (n *Navigator) AddHotspot(ctx context.Context, target int, p sphere.Position) (overlay.Handle, error) {
	n.mu.Lock()
	mode, room, entered := n.mode, n.room.ID, n.entered
	n.mu.Unlock()
	if mode != Edit {
		return overlay.Handle{}, errors.New(errors.ErrCodeInvalidInput, "adding hotspots requires edit mode")
	}
	if !entered {
		return overlay.Handle{}, errors.New(errors.ErrCodeInvalidInput, "no room entered")
	}
	if _, err := n.store.Room(ctx, target); err != nil {
		return overlay.Handle{}, err
	}
	labels, err := n.labels(ctx)
	if err != nil {
		return overlay.Handle{}, err
	}

	hs := Hotspot{Target: target}.WithPosition(p)
	index, err := n.store.AddHotspot(ctx, room, hs)
	if err != nil {
		return overlay.Handle{}, err
	}
	ref := &HotspotRef{RoomID: room, Index: index, Hotspot: hs, Label: labels(target)}
	h := n.ov.AddMarker(n.opts.Content(*ref), overlay.MarkerInfo{Position: p, MetaData: ref})

	n.mu.Lock()
	n.refs[h] = ref
	n.room.Hotspots = append(n.room.Hotspots, hs)
	n.mu.Unlock()

	n.opts.Logger.Info("hotspot added", "room", room, "index", index, "target", target)
	return h, nil
}

// Close unsubscribes from the overlay and removes every marker.
func (n *Navigator) Close() {
	n.unsubscribe()
	n.ov.RemoveAllMarker()
}

func (n *Navigator) handle(e overlay.Event) {
	switch e := e.(type) {
	case overlay.MarkerClick:
		n.click(e)
	case overlay.MarkerTouchMove:
		n.mu.Lock()
		n.lastMove[e.Marker] = e.Position
		n.mu.Unlock()
	case overlay.MarkerTouchEnd:
		n.drop(e)
	}
}

func (n *Navigator) click(e overlay.MarkerClick) {
	ref, ok := e.MetaData.(*HotspotRef)
	if !ok || n.Mode() != View {
		return
	}
	n.mu.Lock()
	target := ref.Hotspot.Target
	n.mu.Unlock()
	if err := n.Enter(n.ctx, target); err != nil {
		n.fail(err)
	}
}

func (n *Navigator) drop(e overlay.MarkerTouchEnd) {
	ref, ok := e.MetaData.(*HotspotRef)
	if !ok {
		return
	}

	n.mu.Lock()
	last, moved := n.lastMove[e.Marker]
	delete(n.lastMove, e.Marker)
	trash := n.trash
	roomID, index, hs := ref.RoomID, ref.Index, ref.Hotspot
	n.mu.Unlock()

	if trash != nil && moved {
		if st, ok := n.ov.Marker(e.Marker); ok && sphere.RectAround(last, st.Size).CenterIn(*trash) {
			n.remove(e.Marker, ref, roomID, index)
			return
		}
	}

	hs = hs.WithPosition(e.Position)
	if err := n.store.UpdateHotspot(n.ctx, roomID, index, hs); err != nil {
		n.fail(err)
		return
	}
	n.mu.Lock()
	ref.Hotspot = hs
	if index < len(n.room.Hotspots) && n.room.ID == roomID {
		n.room.Hotspots[index] = hs
	}
	n.mu.Unlock()
	n.opts.Logger.Debug("hotspot moved", "room", roomID, "index", index, "pitch", hs.Pitch, "yaw", hs.Yaw)
}

func (n *Navigator) remove(h overlay.Handle, ref *HotspotRef, roomID, index int) {
	if err := n.store.DeleteHotspot(n.ctx, roomID, index); err != nil {
		n.fail(err)
		return
	}

	n.mu.Lock()
	delete(n.refs, h)
	for _, r := range n.refs {
		if r.RoomID == roomID && r.Index > index {
			r.Index--
		}
	}
	if n.room.ID == roomID && index < len(n.room.Hotspots) {
		n.room.Hotspots = append(n.room.Hotspots[:index], n.room.Hotspots[index+1:]...)
	}
	n.mu.Unlock()

	n.ov.RemoveMarker(h, overlay.RemoveOptions{
		Animate:          true,
		AnimateClassName: LeaveClass,
		OnAnimateEnd: func() {
			n.opts.Logger.Debug("hotspot marker gone", "marker", h)
		},
	})
	n.opts.Logger.Info("hotspot deleted", "room", roomID, "index", index, "target", ref.Hotspot.Target)
}

func (n *Navigator) fail(err error) {
	n.opts.Logger.Error("tour", "err", err)
	if n.opts.OnError != nil {
		n.opts.OnError(err)
	}
}

// labels returns a lookup from room id to display name.
func (n *Navigator) labels(ctx context.Context) (func(int) string, error) {
	rooms, err := n.store.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(rooms))
	for _, r := range rooms {
		names[r.ID] = r.Name
	}
	return func(id int) string {
		if name, ok := names[id]; ok {
			return name
		}
		return "#" + strconv.Itoa(id)
	}, nil
}
