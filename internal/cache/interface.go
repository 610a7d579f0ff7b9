package cache

import (
	"context"
	"errors"
	"time"

	"github.com/chatdir/chatdir/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// ListingCache caches the full room and user listings. Every directory
// mutation invalidates the affected listing, so a hit is never older than the
// last write plus the TTL.
type ListingCache interface {
	GetRooms(ctx context.Context) ([]domain.Room, error)
	SetRooms(ctx context.Context, rooms []domain.Room, ttl time.Duration) error
	InvalidateRooms(ctx context.Context) error

	GetUsers(ctx context.Context) ([]domain.User, error)
	SetUsers(ctx context.Context, users []domain.User, ttl time.Duration) error
	InvalidateUsers(ctx context.Context) error

	Close() error
}
