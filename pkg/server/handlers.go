package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/vrtour/pkg/cache"
	"github.com/matzehuels/vrtour/pkg/errors"
	"github.com/matzehuels/vrtour/pkg/render/roomgraph"
	"github.com/matzehuels/vrtour/pkg/tour"
)

// hotspotBody is the request body of hotspot writes.
type hotspotBody struct {
	Pitch  *float64 `json:"pitch"`
	Yaw    *float64 `json:"yaw"`
	Target *int     `json:"target"`
}

type addedBody struct {
	Index   int          `json:"index"`
	Hotspot tour.Hotspot `json:"hotspot"`
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.store.Rooms(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	room, err := s.store.Room(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, room)
}

func (s *Server) handleAddHotspot(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	h, err := s.decodeHotspot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	index, err := s.store.AddHotspot(r.Context(), id, h)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("hotspot added", "room", id, "index", index, "target", h.Target)
	s.writeJSON(w, http.StatusCreated, addedBody{Index: index, Hotspot: h})
}

func (s *Server) handleUpdateHotspot(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	index, err := intParam(r, "index")
	if err != nil {
		s.writeError(w, err)
		return
	}
	h, err := s.decodeHotspot(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.UpdateHotspot(r.Context(), id, index, h); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("hotspot updated", "room", id, "index", index, "pitch", h.Pitch, "yaw", h.Yaw)
	s.writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleDeleteHotspot(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	index, err := intParam(r, "index")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteHotspot(r.Context(), id, index); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("hotspot deleted", "room", id, "index", index)
	w.WriteHeader(http.StatusNoContent)
}

// handleGraph renders the room graph. Query parameters: layout (dot|plan),
// detailed and map (booleans).
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := roomgraph.Options{
		Layout:   q.Get("layout"),
		Detailed: q.Get("detailed") == "1" || q.Get("detailed") == "true",
		ShowMap:  q.Get("map") == "1" || q.Get("map") == "true",
	}
	switch opts.Layout {
	case "", roomgraph.LayoutDot, roomgraph.LayoutPlan:
	default:
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown layout %q", opts.Layout))
		return
	}

	ctx := r.Context()
	house, err := s.store.House(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	encoded, err := house.Encode()
	if err != nil {
		s.writeError(w, err)
		return
	}
	key := s.keyer.GraphKey(cache.Hash(encoded), cache.GraphKeyOpts{
		Format:   "svg",
		Layout:   opts.Layout,
		Detailed: opts.Detailed,
		ShowMap:  opts.ShowMap,
	})

	svg, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("graph cache", "err", err)
	}
	if !hit {
		svg, err = roomgraph.RenderSVG(ctx, roomgraph.ToDOT(house, opts), opts)
		if err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render room graph"))
			return
		}
		if err := s.cache.Set(ctx, key, svg, GraphTTL); err != nil {
			s.logger.Warn("graph cache", "err", err)
		}
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (s *Server) decodeHotspot(r *http.Request) (tour.Hotspot, error) {
	var body hotspotBody
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return tour.Hotspot{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode hotspot")
	}
	if body.Pitch == nil || body.Yaw == nil || body.Target == nil {
		return tour.Hotspot{}, errors.New(errors.ErrCodeInvalidInput, "hotspot needs pitch, yaw and target")
	}
	if math.Abs(*body.Pitch) > math.Pi/2 || math.IsNaN(*body.Pitch) || math.IsNaN(*body.Yaw) || math.IsInf(*body.Yaw, 0) {
		return tour.Hotspot{}, errors.New(errors.ErrCodeInvalidInput, "pitch must be within [-pi/2, pi/2] and yaw finite")
	}
	if _, err := s.store.Room(r.Context(), *body.Target); err != nil {
		if errors.Is(err, errors.ErrCodeRoomNotFound) {
			return tour.Hotspot{}, errors.New(errors.ErrCodeInvalidInput, "target room %d does not exist", *body.Target)
		}
		return tour.Hotspot{}, err
	}
	return tour.Hotspot{Pitch: *body.Pitch, Yaw: *body.Yaw, Target: *body.Target}, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, raw)
	}
	return v, nil
}
