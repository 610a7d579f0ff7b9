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

// MongoUserRepository implements UserRepository on a MongoDB collection.
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB-backed user repository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

// List returns every user in natural collection order.
func (r *MongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: find users: %w", ErrUnavailable, err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("%w: decode users: %w", ErrUnavailable, err)
	}
	return users, nil
}

// GetByName retrieves a user by name.
func (r *MongoUserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %w", ErrUnavailable, err)
	}
	return &user, nil
}

// Create inserts a user; a concurrent duplicate insert hits the unique name
// index and comes back as ErrDuplicateName.
func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("%w: insert user: %w", ErrUnavailable, err)
	}
	return nil
}

// Rename updates the name of the user currently called oldName.
func (r *MongoUserRepository) Rename(ctx context.Context, oldName, newName string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"name": oldName},
		bson.M{"$set": bson.M{"name": newName}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("%w: rename user: %w", ErrUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteByName removes the named user. Rooms still listing the name keep it;
// membership is room-owned.
func (r *MongoUserRepository) DeleteByName(ctx context.Context, name string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("%w: delete user: %w", ErrUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteAll removes every user. Used by the janitor's cleanup pass.
func (r *MongoUserRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("%w: delete all users: %w", ErrUnavailable, err)
	}
	return nil
}
