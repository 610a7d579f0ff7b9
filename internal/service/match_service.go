package service

import (
	"context"
	"math/rand"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chatdir/chatdir/internal/cache"
	"github.com/chatdir/chatdir/internal/log"
	"github.com/chatdir/chatdir/internal/repository"
)

// matchServiceImpl implements MatchService. Every strategy re-reads the room
// collection, picks a target, and mutates that one room through an atomic
// append-and-increment scoped to its store id.
type matchServiceImpl struct {
	repo     repository.RoomRepository
	listings cache.ListingCache

	// Randomness is injected so tests can pin the choice.
	intn func(n int) int
	perm func(n int) []int
}

// NewMatchService creates a new matching service.
func NewMatchService(repo repository.RoomRepository, listings cache.ListingCache) MatchService {
	return &matchServiceImpl{
		repo:     repo,
		listings: listings,
		intn:     rand.Intn,
		perm:     rand.Perm,
	}
}

// JoinRandom adds userName to a uniformly random room. Occupancy does not
// weight the choice; a full room is as likely as an empty one.
func (s *matchServiceImpl) JoinRandom(ctx context.Context, userName string) (string, error) {
	rooms, err := s.repo.List(ctx)
	if err != nil {
		return "", mapStoreErr(err)
	}
	if len(rooms) == 0 {
		return "", ErrNoRooms
	}

	room := rooms[s.intn(len(rooms))]
	return s.join(ctx, room.ID, room.Name, userName)
}

// JoinPreset adds userName to a random room the user is not already in. It
// walks one random permutation of the rooms, so it terminates after at most
// one look at each room; when every room already contains the user it falls
// back to a plain random join.
func (s *matchServiceImpl) JoinPreset(ctx context.Context, userName string) (string, error) {
	rooms, err := s.repo.List(ctx)
	if err != nil {
		return "", mapStoreErr(err)
	}
	if len(rooms) == 0 {
		return "", ErrNoRooms
	}

	for _, i := range s.perm(len(rooms)) {
		if !rooms[i].HasMember(userName) {
			return s.join(ctx, rooms[i].ID, rooms[i].Name, userName)
		}
	}

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldUser, userName).Msg("user already in every room, joining at random")
	room := rooms[s.intn(len(rooms))]
	return s.join(ctx, room.ID, room.Name, userName)
}

// JoinByCode adds userName to the room whose join code (hex store id) is
// roomCode. An unparsable or unknown code is NotFound, not a validation
// error; codes are opaque to callers.
func (s *matchServiceImpl) JoinByCode(ctx context.Context, roomCode, userName string) (string, error) {
	id, err := primitive.ObjectIDFromHex(roomCode)
	if err != nil {
		return "", ErrRoomNotFound
	}

	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", mapStoreErr(err)
	}

	return s.join(ctx, room.ID, room.Name, userName)
}

// JoinByInterests adds userName to the room sharing the most tags with the
// requested interests. Ties go to the first room in listing order. A maximum
// score of zero means no room qualifies; untagged rooms can never win.
// Unlike JoinPreset there is no random fallback here.
func (s *matchServiceImpl) JoinByInterests(ctx context.Context, interests []string, userName string) (string, error) {
	rooms, err := s.repo.List(ctx)
	if err != nil {
		return "", mapStoreErr(err)
	}
	if len(rooms) == 0 {
		return "", ErrNoRooms
	}

	best := -1
	bestScore := 0
	for i := range rooms {
		if score := rooms[i].InterestScore(interests); score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return "", ErrNoMatch
	}

	return s.join(ctx, rooms[best].ID, rooms[best].Name, userName)
}

// join performs the membership mutation shared by all strategies.
func (s *matchServiceImpl) join(ctx context.Context, id primitive.ObjectID, roomName, userName string) (string, error) {
	if err := s.repo.AppendMember(ctx, id, userName); err != nil {
		return "", mapStoreErr(err)
	}

	l := log.Ctx(ctx)
	if err := s.listings.InvalidateRooms(ctx); err != nil {
		l.Warn().Err(err).Msg("room listing cache invalidation failed")
	}

	l.Info().
		Str(log.FieldRoom, roomName).
		Str(log.FieldUser, userName).
		Msg("user joined room")
	return roomName, nil
}
