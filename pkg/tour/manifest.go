package tour

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/vrtour/pkg/errors"
	"github.com/matzehuels/vrtour/pkg/sphere"
)

// MapName is the name of the manifest entry holding the floor plan.
const MapName = "map"

// =============================================================================
// Wire format
// =============================================================================

// ManifestJSON is the house manifest as served by the tour backend.
type ManifestJSON struct {
	Status bool     `json:"status"`
	Data   []Detail `json:"data"`
}

// Detail is one manifest entry: a room, or the floor plan when Name is "map".
// ConnectPosition holds a JSON-encoded array of hotspots, or null.
type Detail struct {
	ID              int      `json:"vr_id"`
	HouseID         int      `json:"hus_id"`
	Picture         string   `json:"picture"`
	Name            string   `json:"name"`
	ConnectPosition *string  `json:"connect_position"`
	Facing          Facing   `json:"chaoxiang"`
	X               *float64 `json:"xpoint"`
	Y               *float64 `json:"ypoint"`
}

// =============================================================================
// Domain types
// =============================================================================

// Hotspot connects a room to room Target at a direction on its panorama.
type Hotspot struct {
	Pitch  float64 `json:"pitch" bson:"pitch"`
	Yaw    float64 `json:"yaw" bson:"yaw"`
	Target int     `json:"target" bson:"target"`
}

// Position returns the hotspot direction.
func (h Hotspot) Position() sphere.Position {
	return sphere.Position{Pitch: h.Pitch, Yaw: h.Yaw}
}

// WithPosition returns h moved to p.
func (h Hotspot) WithPosition(p sphere.Position) Hotspot {
	h.Pitch, h.Yaw = p.Pitch, p.Yaw
	return h
}

// PlanPoint is a room's location on the floor plan.
type PlanPoint struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Room is a parsed manifest room.
type Room struct {
	ID       int        `json:"id"`
	HouseID  int        `json:"house_id"`
	Picture  string     `json:"picture"`
	Name     string     `json:"name"`
	Facing   Facing     `json:"facing"`
	Hotspots []Hotspot  `json:"hotspots"`
	Plan     *PlanPoint `json:"plan,omitempty"`
}

// Clone returns a deep copy of r.
func (r Room) Clone() Room {
	r.Hotspots = slices.Clone(r.Hotspots)
	if r.Plan != nil {
		p := *r.Plan
		r.Plan = &p
	}
	return r
}

// MapDetail is the floor plan entry.
type MapDetail struct {
	ID      int    `json:"id"`
	HouseID int    `json:"house_id"`
	Picture string `json:"picture"`
	Facing  Facing `json:"facing"`
}

// House is a parsed manifest.
type House struct {
	Rooms []Room     `json:"rooms"`
	Map   *MapDetail `json:"map,omitempty"`
}

// Room returns the room with the given id.
func (h *House) Room(id int) (Room, error) {
	for _, r := range h.Rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return Room{}, errors.New(errors.ErrCodeRoomNotFound, "room %d", id)
}

// Entry returns the room a tour starts in: the first room of the manifest.
func (h *House) Entry() (Room, bool) {
	if len(h.Rooms) == 0 {
		return Room{}, false
	}
	return h.Rooms[0], true
}

// Link is a directed hotspot connection between two rooms.
type Link struct {
	From, To int
	Index    int
}

// Links returns every hotspot connection in manifest order.
func (h *House) Links() []Link {
	var out []Link
	for _, r := range h.Rooms {
		for i, hs := range r.Hotspots {
			out = append(out, Link{From: r.ID, To: hs.Target, Index: i})
		}
	}
	return out
}

// Dangling returns links whose target room does not exist.
func (h *House) Dangling() []Link {
	known := make(map[int]bool, len(h.Rooms))
	for _, r := range h.Rooms {
		known[r.ID] = true
	}
	var out []Link
	for _, l := range h.Links() {
		if !known[l.To] {
			out = append(out, l)
		}
	}
	return out
}

// Clone returns a deep copy of h.
func (h *House) Clone() *House {
	out := &House{Rooms: make([]Room, len(h.Rooms))}
	for i, r := range h.Rooms {
		out.Rooms[i] = r.Clone()
	}
	if h.Map != nil {
		m := *h.Map
		out.Map = &m
	}
	return out
}

// =============================================================================
// Parsing
// =============================================================================

// Parse decodes and validates a manifest.
func Parse(data []byte) (*House, error) {
	var m ManifestJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode manifest")
	}
	return FromManifest(m)
}

// FromManifest converts a decoded manifest into a House.
func FromManifest(m ManifestJSON) (*House, error) {
	if !m.Status {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest status is false")
	}
	h := &House{}
	seen := make(map[int]bool, len(m.Data))
	for _, d := range m.Data {
		if d.Name == MapName {
			if h.Map != nil {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest has more than one map entry")
			}
			h.Map = &MapDetail{ID: d.ID, HouseID: d.HouseID, Picture: d.Picture, Facing: d.Facing}
			continue
		}
		r, err := roomFromDetail(d)
		if err != nil {
			return nil, err
		}
		if seen[r.ID] {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "duplicate room id %d", r.ID)
		}
		seen[r.ID] = true
		h.Rooms = append(h.Rooms, r)
	}
	return h, nil
}

func roomFromDetail(d Detail) (Room, error) {
	if err := errors.ValidateRoomName(d.Name); err != nil {
		return Room{}, fmt.Errorf("room %d: %w", d.ID, err)
	}
	if err := errors.ValidatePicture(d.Picture); err != nil {
		return Room{}, fmt.Errorf("room %d: %w", d.ID, err)
	}
	if d.Facing != "" && !d.Facing.Valid() {
		return Room{}, errors.New(errors.ErrCodeInvalidManifest, "room %d: unknown facing %q", d.ID, d.Facing)
	}
	r := Room{
		ID:      d.ID,
		HouseID: d.HouseID,
		Picture: d.Picture,
		Name:    d.Name,
		Facing:  d.Facing,
	}
	if d.ConnectPosition != nil && *d.ConnectPosition != "" {
		if err := json.Unmarshal([]byte(*d.ConnectPosition), &r.Hotspots); err != nil {
			return Room{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "room %d: connect_position", d.ID)
		}
	}
	if d.X != nil && d.Y != nil {
		r.Plan = &PlanPoint{X: *d.X, Y: *d.Y}
	}
	return r, nil
}

// Manifest converts h back to the wire format. Rooms come first, in order,
// followed by the map entry.
func (h *House) Manifest() (ManifestJSON, error) {
	m := ManifestJSON{Status: true, Data: make([]Detail, 0, len(h.Rooms)+1)}
	for _, r := range h.Rooms {
		d := Detail{
			ID:      r.ID,
			HouseID: r.HouseID,
			Picture: r.Picture,
			Name:    r.Name,
			Facing:  r.Facing,
		}
		hotspots := r.Hotspots
		if hotspots == nil {
			hotspots = []Hotspot{}
		}
		raw, err := json.Marshal(hotspots)
		if err != nil {
			return ManifestJSON{}, err
		}
		s := string(raw)
		d.ConnectPosition = &s
		if r.Plan != nil {
			x, y := r.Plan.X, r.Plan.Y
			d.X, d.Y = &x, &y
		}
		m.Data = append(m.Data, d)
	}
	if h.Map != nil {
		m.Data = append(m.Data, Detail{
			ID:      h.Map.ID,
			HouseID: h.Map.HouseID,
			Picture: h.Map.Picture,
			Name:    MapName,
			Facing:  h.Map.Facing,
		})
	}
	return m, nil
}

// Encode writes h in the wire format, indented.
func (h *House) Encode() ([]byte, error) {
	m, err := h.Manifest()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(m, "", "  ")
}
