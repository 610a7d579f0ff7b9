package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chatdir/chatdir/internal/domain"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateName = errors.New("name already exists")

	// ErrUnavailable wraps store I/O failures so callers can tell an
	// unreachable store apart from a missing document.
	ErrUnavailable = errors.New("store unavailable")
)

// RoomRepository defines the interface for room document persistence.
//
// AppendMember and SetMembers write the member list and the member count in a
// single document update, so member_count == len(members) holds after every
// mutation the store accepts.
type RoomRepository interface {
	List(ctx context.Context) ([]domain.Room, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Room, error)
	GetByName(ctx context.Context, name string) (*domain.Room, error)
	Create(ctx context.Context, room *domain.Room) error
	Rename(ctx context.Context, oldName, newName string) error
	DeleteByName(ctx context.Context, name string) error
	AppendMember(ctx context.Context, id primitive.ObjectID, userName string) error
	SetMembers(ctx context.Context, id primitive.ObjectID, members []string) error
	DeleteAll(ctx context.Context) error
}

// UserRepository defines the interface for user document persistence.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Rename(ctx context.Context, oldName, newName string) error
	DeleteByName(ctx context.Context, name string) error
	DeleteAll(ctx context.Context) error
}
