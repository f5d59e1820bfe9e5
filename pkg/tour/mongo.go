package tour

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/vrtour/pkg/errors"
)

// RoomsCollection is the collection MongoStore keeps rooms in.
const RoomsCollection = "rooms"

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI      string
	Database string

	// HouseID scopes every query to one house. Zero matches all rooms.
	HouseID int

	// Timeout bounds connecting and pinging. Zero means 10s.
	Timeout time.Duration
}

// roomDoc is the stored form of a room or of the floor plan.
type roomDoc struct {
	ID       int        `bson:"_id"`
	HouseID  int        `bson:"hus_id"`
	Name     string     `bson:"name"`
	Picture  string     `bson:"picture"`
	Facing   Facing     `bson:"chaoxiang,omitempty"`
	Hotspots []Hotspot  `bson:"hotspots"`
	Plan     *PlanPoint `bson:"plan,omitempty"`
	IsMap    bool       `bson:"is_map,omitempty"`
}

func (d roomDoc) room() Room {
	r := Room{
		ID:       d.ID,
		HouseID:  d.HouseID,
		Picture:  d.Picture,
		Name:     d.Name,
		Facing:   d.Facing,
		Hotspots: d.Hotspots,
		Plan:     d.Plan,
	}
	if r.Hotspots == nil {
		r.Hotspots = []Hotspot{}
	}
	return r
}

func docFromRoom(r Room) roomDoc {
	hs := r.Hotspots
	if hs == nil {
		hs = []Hotspot{}
	}
	return roomDoc{
		ID:       r.ID,
		HouseID:  r.HouseID,
		Name:     r.Name,
		Picture:  r.Picture,
		Facing:   r.Facing,
		Hotspots: hs,
		Plan:     r.Plan,
	}
}

// MongoStore keeps rooms as documents, one per room. Hotspot writes are
// single-document updates so concurrent editors of different rooms never
// conflict.
type MongoStore struct {
	client  *mongo.Client
	rooms   *mongo.Collection
	houseID int
}

// NewMongoStore connects and pings the server.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is empty")
	}
	if cfg.Database == "" {
		cfg.Database = "vrtour"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongo")
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	return &MongoStore{
		client:  client,
		rooms:   client.Database(cfg.Database).Collection(RoomsCollection),
		houseID: cfg.HouseID,
	}, nil
}

// Import upserts every room of h and its floor plan.
func (s *MongoStore) Import(ctx context.Context, h *House) error {
	var models []mongo.WriteModel
	for _, r := range h.Rooms {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": r.ID}).
			SetReplacement(docFromRoom(r)).
			SetUpsert(true))
	}
	if h.Map != nil {
		doc := roomDoc{
			ID:       h.Map.ID,
			HouseID:  h.Map.HouseID,
			Name:     MapName,
			Picture:  h.Map.Picture,
			Facing:   h.Map.Facing,
			Hotspots: []Hotspot{},
			IsMap:    true,
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}
	_, err := s.rooms.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "import house")
	}
	return nil
}

// House assembles the stored rooms and floor plan.
func (s *MongoStore) House(ctx context.Context) (*House, error) {
	docs, err := s.find(ctx, s.filter(nil))
	if err != nil {
		return nil, err
	}
	h := &House{}
	for _, d := range docs {
		if d.IsMap {
			h.Map = &MapDetail{ID: d.ID, HouseID: d.HouseID, Picture: d.Picture, Facing: d.Facing}
			continue
		}
		h.Rooms = append(h.Rooms, d.room())
	}
	return h, nil
}

// Rooms returns every room sorted by id.
func (s *MongoStore) Rooms(ctx context.Context) ([]Room, error) {
	docs, err := s.find(ctx, s.filter(bson.M{"is_map": bson.M{"$ne": true}}))
	if err != nil {
		return nil, err
	}
	out := make([]Room, len(docs))
	for i, d := range docs {
		out[i] = d.room()
	}
	return out, nil
}

// Room returns room id.
func (s *MongoStore) Room(ctx context.Context, id int) (Room, error) {
	var d roomDoc
	err := s.rooms.FindOne(ctx, s.roomFilter(id)).Decode(&d)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Room{}, errors.New(errors.ErrCodeRoomNotFound, "room %d", id)
	}
	if err != nil {
		return Room{}, errors.Wrap(errors.ErrCodeNetwork, err, "find room %d", id)
	}
	return d.room(), nil
}

// AddHotspot pushes h onto the room's hotspots.
func (s *MongoStore) AddHotspot(ctx context.Context, roomID int, h Hotspot) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d roomDoc
	err := s.rooms.FindOneAndUpdate(ctx, s.roomFilter(roomID),
		bson.M{"$push": bson.M{"hotspots": h}}, opts).Decode(&d)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return 0, errors.New(errors.ErrCodeRoomNotFound, "room %d", roomID)
	}
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeNetwork, err, "add hotspot to room %d", roomID)
	}
	return len(d.Hotspots) - 1, nil
}

// UpdateHotspot sets hotspot index in place.
func (s *MongoStore) UpdateHotspot(ctx context.Context, roomID, index int, h Hotspot) error {
	if index < 0 {
		return errors.New(errors.ErrCodeHotspotNotFound, "room %d has no hotspot %d", roomID, index)
	}
	field := fmt.Sprintf("hotspots.%d", index)
	res, err := s.rooms.UpdateOne(ctx, s.hotspotFilter(roomID, index), bson.M{"$set": bson.M{field: h}})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "update hotspot %d of room %d", index, roomID)
	}
	if res.MatchedCount == 0 {
		return s.missing(ctx, roomID, index)
	}
	return nil
}

// DeleteHotspot unsets hotspot index and pulls the hole, shifting later
// hotspots down.
func (s *MongoStore) DeleteHotspot(ctx context.Context, roomID, index int) error {
	if index < 0 {
		return errors.New(errors.ErrCodeHotspotNotFound, "room %d has no hotspot %d", roomID, index)
	}
	field := fmt.Sprintf("hotspots.%d", index)
	res, err := s.rooms.UpdateOne(ctx, s.hotspotFilter(roomID, index), bson.M{"$unset": bson.M{field: 1}})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete hotspot %d of room %d", index, roomID)
	}
	if res.MatchedCount == 0 {
		return s.missing(ctx, roomID, index)
	}
	_, err = s.rooms.UpdateOne(ctx, s.roomFilter(roomID), bson.M{"$pull": bson.M{"hotspots": nil}})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "compact hotspots of room %d", roomID)
	}
	return nil
}

// Close disconnects from the server.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]roomDoc, error) {
	cur, err := s.rooms.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list rooms")
	}
	var docs []roomDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "decode rooms")
	}
	return docs, nil
}

func (s *MongoStore) filter(extra bson.M) bson.M {
	f := bson.M{}
	if s.houseID != 0 {
		f["hus_id"] = s.houseID
	}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

func (s *MongoStore) roomFilter(id int) bson.M {
	return s.filter(bson.M{"_id": id, "is_map": bson.M{"$ne": true}})
}

func (s *MongoStore) hotspotFilter(roomID, index int) bson.M {
	field := fmt.Sprintf("hotspots.%d", index)
	return s.filter(bson.M{"_id": roomID, "is_map": bson.M{"$ne": true}, field: bson.M{"$exists": true}})
}

// missing tells a missing room apart from a missing hotspot.
func (s *MongoStore) missing(ctx context.Context, roomID, index int) error {
	if _, err := s.Room(ctx, roomID); err != nil {
		return err
	}
	return errors.New(errors.ErrCodeHotspotNotFound, "room %d has no hotspot %d", roomID, index)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
