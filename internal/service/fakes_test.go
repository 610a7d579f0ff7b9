package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chatdir/chatdir/internal/cache"
	"github.com/chatdir/chatdir/internal/domain"
	"github.com/chatdir/chatdir/internal/repository"
)

// fakeRoomRepo is an in-memory RoomRepository. It mirrors the store contract:
// AppendMember and SetMembers keep member_count equal to len(members), and
// Create rejects duplicate names.
type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms []domain.Room
	err   error // when set, every call fails with it
}

func (f *fakeRoomRepo) List(ctx context.Context) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Room, len(f.rooms))
	copy(out, f.rooms)
	return out, nil
}

func (f *fakeRoomRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.rooms {
		if f.rooms[i].ID == id {
			room := f.rooms[i]
			return &room, nil
		}
	}
	return nil, repository.ErrRoomNotFound
}

func (f *fakeRoomRepo) GetByName(ctx context.Context, name string) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.rooms {
		if f.rooms[i].Name == name {
			room := f.rooms[i]
			return &room, nil
		}
	}
	return nil, repository.ErrRoomNotFound
}

func (f *fakeRoomRepo) Create(ctx context.Context, room *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.rooms {
		if f.rooms[i].Name == room.Name {
			return repository.ErrDuplicateName
		}
	}
	room.ID = primitive.NewObjectID()
	room.CreatedAt = time.Now().UTC()
	if room.Members == nil {
		room.Members = []string{}
	}
	room.MemberCount = len(room.Members)
	f.rooms = append(f.rooms, *room)
	return nil
}

func (f *fakeRoomRepo) Rename(ctx context.Context, oldName, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.rooms {
		if f.rooms[i].Name == oldName {
			f.rooms[i].Name = newName
			return nil
		}
	}
	return repository.ErrRoomNotFound
}

func (f *fakeRoomRepo) DeleteByName(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.rooms {
		if f.rooms[i].Name == name {
			f.rooms = append(f.rooms[:i], f.rooms[i+1:]...)
			return nil
		}
	}
	return repository.ErrRoomNotFound
}

func (f *fakeRoomRepo) AppendMember(ctx context.Context, id primitive.ObjectID, userName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.rooms {
		if f.rooms[i].ID == id {
			f.rooms[i].Members = append(f.rooms[i].Members, userName)
			f.rooms[i].MemberCount = len(f.rooms[i].Members)
			return nil
		}
	}
	return repository.ErrRoomNotFound
}

func (f *fakeRoomRepo) SetMembers(ctx context.Context, id primitive.ObjectID, members []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.rooms {
		if f.rooms[i].ID == id {
			f.rooms[i].Members = members
			f.rooms[i].MemberCount = len(members)
			return nil
		}
	}
	return repository.ErrRoomNotFound
}

func (f *fakeRoomRepo) DeleteAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rooms = nil
	return nil
}

func (f *fakeRoomRepo) snapshot() []domain.Room {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Room, len(f.rooms))
	copy(out, f.rooms)
	return out
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users []domain.User
	err   error
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.User, len(f.users))
	copy(out, f.users)
	return out, nil
}

func (f *fakeUserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.users {
		if f.users[i].Name == name {
			user := f.users[i]
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.users {
		if f.users[i].Name == user.Name {
			return repository.ErrDuplicateName
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) Rename(ctx context.Context, oldName, newName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.users {
		if f.users[i].Name == oldName {
			f.users[i].Name = newName
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *fakeUserRepo) DeleteByName(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.users {
		if f.users[i].Name == name {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *fakeUserRepo) DeleteAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.users = nil
	return nil
}

// fakeCache is an in-memory ListingCache recording invalidations.
type fakeCache struct {
	mu sync.Mutex

	rooms    []domain.Room
	hasRooms bool
	users    []domain.User
	hasUsers bool

	roomInvalidations int
	userInvalidations int
}

func (f *fakeCache) GetRooms(ctx context.Context) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasRooms {
		return nil, cache.ErrCacheMiss
	}
	return f.rooms, nil
}

func (f *fakeCache) SetRooms(ctx context.Context, rooms []domain.Room, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = rooms
	f.hasRooms = true
	return nil
}

func (f *fakeCache) InvalidateRooms(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = nil
	f.hasRooms = false
	f.roomInvalidations++
	return nil
}

func (f *fakeCache) GetUsers(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasUsers {
		return nil, cache.ErrCacheMiss
	}
	return f.users, nil
}

func (f *fakeCache) SetUsers(ctx context.Context, users []domain.User, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = users
	f.hasUsers = true
	return nil
}

func (f *fakeCache) InvalidateUsers(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = nil
	f.hasUsers = false
	f.userInvalidations++
	return nil
}

func (f *fakeCache) Close() error { return nil }

// seedRooms populates a fake repo with named rooms.
func seedRooms(f *fakeRoomRepo, rooms ...domain.Room) {
	for i := range rooms {
		if rooms[i].ID.IsZero() {
			rooms[i].ID = primitive.NewObjectID()
		}
		if rooms[i].Members == nil {
			rooms[i].Members = []string{}
		}
		rooms[i].MemberCount = len(rooms[i].Members)
		f.rooms = append(f.rooms, rooms[i])
	}
}

// countOccurrences counts how many times name appears in members.
func countOccurrences(members []string, name string) int {
	n := 0
	for _, m := range members {
		if m == name {
			n++
		}
	}
	return n
}

// checkMemberCounts fails the test if any room's member_count disagrees with
// its member list.
func checkMemberCounts(t interface {
	Helper()
	Errorf(format string, args ...interface{})
}, rooms []domain.Room,
) {
	t.Helper()
	for _, r := range rooms {
		if r.MemberCount != len(r.Members) {
			t.Errorf("room %q: member_count = %d, want %d", r.Name, r.MemberCount, len(r.Members))
		}
	}
}
