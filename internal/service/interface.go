package service

import (
	"context"
	"errors"

	"github.com/chatdir/chatdir/internal/domain"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateName = errors.New("name already exists")
	ErrNoRooms       = errors.New("no rooms available")
	ErrNoMatch       = errors.New("no room matches the given interests")
	ErrNotMember     = errors.New("user is not a member of the room")

	// ErrStoreUnavailable reports that the document store could not be
	// reached, as opposed to a document being absent.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// RoomService provides room directory operations.
type RoomService interface {
	CreateRoom(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error)
	DeleteRoom(ctx context.Context, name string) error
	RenameRoom(ctx context.Context, oldName, newName string) (string, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	RoomCode(ctx context.Context, name string) (string, error)
	RoomMembers(ctx context.Context, name string) ([]string, error)
	RemoveMember(ctx context.Context, roomName, userName string) error
}

// UserService provides user directory operations.
type UserService interface {
	CreateUser(ctx context.Context, name string) (*domain.User, error)
	DeleteUser(ctx context.Context, name string) error
	RenameUser(ctx context.Context, oldName, newName string) (string, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// MatchService selects a room for a joining user.
type MatchService interface {
	JoinRandom(ctx context.Context, userName string) (string, error)
	JoinPreset(ctx context.Context, userName string) (string, error)
	JoinByCode(ctx context.Context, roomCode, userName string) (string, error)
	JoinByInterests(ctx context.Context, interests []string, userName string) (string, error)
}
