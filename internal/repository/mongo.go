package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	roomsCollection = "rooms"
	usersCollection = "users"
)

// Connect opens a MongoDB client and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the unique name indexes both collections rely on for
// duplicate detection. Uniqueness lives in the store, not in a read-then-write
// check, so two concurrent creates of the same name cannot both succeed.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	nameUnique := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	for _, coll := range []string{roomsCollection, usersCollection} {
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, nameUnique); err != nil {
			return fmt.Errorf("failed to create name index on %s: %w", coll, err)
		}
	}
	return nil
}
