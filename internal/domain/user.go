package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a directory entry, independent of any room membership.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// CreateUserRequest represents a create user request.
type CreateUserRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}
