package tour

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/vrtour/pkg/errors"
)

// Store persists rooms and their hotspots.
type Store interface {
	// House returns a snapshot of the whole house.
	House(ctx context.Context) (*House, error)

	// Rooms returns every room in manifest order.
	Rooms(ctx context.Context) ([]Room, error)

	// Room returns one room or a ROOM_NOT_FOUND error.
	Room(ctx context.Context, id int) (Room, error)

	// AddHotspot appends a hotspot to a room and returns its index.
	AddHotspot(ctx context.Context, roomID int, h Hotspot) (int, error)

	// UpdateHotspot replaces hotspot index of a room.
	UpdateHotspot(ctx context.Context, roomID, index int, h Hotspot) error

	// DeleteHotspot removes hotspot index of a room. Later hotspots shift
	// down by one.
	DeleteHotspot(ctx context.Context, roomID, index int) error

	Close(ctx context.Context) error
}

// =============================================================================
// MemoryStore
// =============================================================================

// MemoryStore keeps a house in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	house *House

	// commit runs under the write lock before a change is kept and can
	// veto it.
	commit func(*House) error
}

// NewMemoryStore creates a store holding a copy of h.
func NewMemoryStore(h *House) *MemoryStore {
	if h == nil {
		h = &House{}
	}
	return &MemoryStore{house: h.Clone()}
}

// House returns a copy of the stored house.
func (s *MemoryStore) House(ctx context.Context) (*House, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.house.Clone(), nil
}

// Rooms returns copies of every room.
func (s *MemoryStore) Rooms(ctx context.Context) ([]Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Room, len(s.house.Rooms))
	for i, r := range s.house.Rooms {
		out[i] = r.Clone()
	}
	return out, nil
}

// Room returns a copy of room id.
func (s *MemoryStore) Room(ctx context.Context, id int) (Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.house.Room(id)
	if err != nil {
		return Room{}, err
	}
	return r.Clone(), nil
}

// AddHotspot appends h to room roomID.
func (s *MemoryStore) AddHotspot(ctx context.Context, roomID int, h Hotspot) (int, error) {
	var index int
	err := s.mutate(func(house *House) error {
		r, err := roomRef(house, roomID)
		if err != nil {
			return err
		}
		r.Hotspots = append(r.Hotspots, h)
		index = len(r.Hotspots) - 1
		return nil
	})
	return index, err
}

// UpdateHotspot replaces hotspot index of room roomID.
func (s *MemoryStore) UpdateHotspot(ctx context.Context, roomID, index int, h Hotspot) error {
	return s.mutate(func(house *House) error {
		r, err := hotspotRef(house, roomID, index)
		if err != nil {
			return err
		}
		r.Hotspots[index] = h
		return nil
	})
}

// DeleteHotspot removes hotspot index of room roomID.
func (s *MemoryStore) DeleteHotspot(ctx context.Context, roomID, index int) error {
	return s.mutate(func(house *House) error {
		r, err := hotspotRef(house, roomID, index)
		if err != nil {
			return err
		}
		r.Hotspots = append(r.Hotspots[:index], r.Hotspots[index+1:]...)
		return nil
	})
}

// Close does nothing.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// mutate applies fn to a copy of the house and keeps the copy only if fn
// and the commit hook succeed.
func (s *MemoryStore) mutate(fn func(*House) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.house.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if s.commit != nil {
		if err := s.commit(next); err != nil {
			return err
		}
	}
	s.house = next
	return nil
}

func roomRef(h *House, id int) (*Room, error) {
	for i := range h.Rooms {
		if h.Rooms[i].ID == id {
			return &h.Rooms[i], nil
		}
	}
	return nil, errors.New(errors.ErrCodeRoomNotFound, "room %d", id)
}

func hotspotRef(h *House, roomID, index int) (*Room, error) {
	r, err := roomRef(h, roomID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(r.Hotspots) {
		return nil, errors.New(errors.ErrCodeHotspotNotFound, "room %d has no hotspot %d", roomID, index)
	}
	return r, nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// =============================================================================
// FileStore
// =============================================================================

// FileStore is a MemoryStore that writes the manifest back to a JSON file
// after every change. A change that cannot be written is not applied.
type FileStore struct {
	*MemoryStore
	path string
}

// OpenFileStore loads the manifest at path.
func OpenFileStore(ctx context.Context, path string) (*FileStore, error) {
	h, err := FileSource{Path: path}.Load(ctx)
	if err != nil {
		return nil, err
	}
	s := &FileStore{MemoryStore: NewMemoryStore(h), path: path}
	s.commit = s.save
	return s, nil
}

// Path returns the manifest file path.
func (s *FileStore) Path() string { return s.path }

// save writes h next to the manifest and renames it into place.
func (s *FileStore) save(h *House) error {
	data, err := h.Encode()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".manifest-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
