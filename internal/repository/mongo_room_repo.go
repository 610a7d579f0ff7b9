package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chatdir/chatdir/internal/domain"
)

// MongoRoomRepository implements RoomRepository on a MongoDB collection.
type MongoRoomRepository struct {
	coll *mongo.Collection
}

// NewMongoRoomRepository creates a new MongoDB-backed room repository.
func NewMongoRoomRepository(db *mongo.Database) *MongoRoomRepository {
	return &MongoRoomRepository{coll: db.Collection(roomsCollection)}
}

// List returns every room in natural collection order.
func (r *MongoRoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: find rooms: %w", ErrUnavailable, err)
	}
	defer cur.Close(ctx)

	var rooms []domain.Room
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("%w: decode rooms: %w", ErrUnavailable, err)
	}
	return rooms, nil
}

// GetByID retrieves a room by its store id.
func (r *MongoRoomRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Room, error) {
	return r.getOne(ctx, bson.M{"_id": id})
}

// GetByName retrieves a room by its display name.
func (r *MongoRoomRepository) GetByName(ctx context.Context, name string) (*domain.Room, error) {
	return r.getOne(ctx, bson.M{"name": name})
}

func (r *MongoRoomRepository) getOne(ctx context.Context, filter bson.M) (*domain.Room, error) {
	var room domain.Room
	err := r.coll.FindOne(ctx, filter).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("%w: find room: %w", ErrUnavailable, err)
	}
	return &room, nil
}

// Create inserts a room. The unique name index turns a concurrent duplicate
// insert into ErrDuplicateName instead of a second room.
func (r *MongoRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	room.ID = primitive.NewObjectID()
	room.CreatedAt = time.Now().UTC()
	if room.Members == nil {
		room.Members = []string{}
	}
	room.MemberCount = len(room.Members)

	if _, err := r.coll.InsertOne(ctx, room); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("%w: insert room: %w", ErrUnavailable, err)
	}
	return nil
}

// Rename updates the name of the room currently called oldName. The store id
// stays stable.
func (r *MongoRoomRepository) Rename(ctx context.Context, oldName, newName string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"name": oldName},
		bson.M{"$set": bson.M{"name": newName}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("%w: rename room: %w", ErrUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// DeleteByName removes the named room. Membership records vanish with the
// room; user documents are not touched.
func (r *MongoRoomRepository) DeleteByName(ctx context.Context, name string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("%w: delete room: %w", ErrUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// AppendMember appends userName to the room's member list and increments the
// count in one document update, so the two fields cannot drift and two
// concurrent joins cannot lose an append.
func (r *MongoRoomRepository) AppendMember(ctx context.Context, id primitive.ObjectID, userName string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"members": userName},
			"$inc":  bson.M{"member_count": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("%w: append member: %w", ErrUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// SetMembers replaces the member list and derives the count from it in the
// same update. Used for member removal, which has no single-occurrence
// equivalent among the atomic list operators.
func (r *MongoRoomRepository) SetMembers(ctx context.Context, id primitive.ObjectID, members []string) error {
	if members == nil {
		members = []string{}
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"members":      members,
			"member_count": len(members),
		}},
	)
	if err != nil {
		return fmt.Errorf("%w: set members: %w", ErrUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// DeleteAll removes every room. Used by the janitor's cleanup pass.
func (r *MongoRoomRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("%w: delete all rooms: %w", ErrUnavailable, err)
	}
	return nil
}
