package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room represents a chat room directory entry. Membership is tracked on the
// room side only; user documents do not reference rooms.
//
// MemberCount is written together with Members in a single document update so
// the two can never drift apart.
type Room struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Members      []string           `bson:"members" json:"members"`
	MemberCount  int                `bson:"member_count" json:"member_count"`
	InterestTags []string           `bson:"interest_tags,omitempty" json:"interest_tags,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// Code returns the room's opaque join code, the hex form of its store id.
func (r *Room) Code() string {
	return r.ID.Hex()
}

// HasMember reports whether name occurs in the member list.
func (r *Room) HasMember(name string) bool {
	for _, m := range r.Members {
		if m == name {
			return true
		}
	}
	return false
}

// InterestScore counts how many of the requested interests appear in the
// room's tags. Duplicate interests in the input count multiple times.
func (r *Room) InterestScore(interests []string) int {
	if len(r.InterestTags) == 0 {
		return 0
	}
	tags := make(map[string]struct{}, len(r.InterestTags))
	for _, t := range r.InterestTags {
		tags[t] = struct{}{}
	}
	score := 0
	for _, interest := range interests {
		if _, ok := tags[interest]; ok {
			score++
		}
	}
	return score
}

// CreateRoomRequest represents a create room request.
type CreateRoomRequest struct {
	Name         string   `json:"name" binding:"required,min=1,max=100"`
	InterestTags []string `json:"interest_tags"`
}

// RenameRequest represents a rename request for a room or a user.
type RenameRequest struct {
	NewName string `json:"new_name" binding:"required,min=1,max=100"`
}

// JoinRequest represents a random or preset join request.
type JoinRequest struct {
	UserName string `json:"user_name" binding:"required,min=1,max=100"`
}

// JoinByCodeRequest represents a join-by-room-code request.
type JoinByCodeRequest struct {
	RoomCode string `json:"room_code" binding:"required"`
	UserName string `json:"user_name" binding:"required,min=1,max=100"`
}

// JoinByInterestsRequest represents an interest-matched join request.
type JoinByInterestsRequest struct {
	Interests []string `json:"interests" binding:"required,min=1"`
	UserName  string   `json:"user_name" binding:"required,min=1,max=100"`
}

// JoinResponse reports the room a user landed in.
type JoinResponse struct {
	RoomName string `json:"room_name"`
	UserName string `json:"user_name"`
}
