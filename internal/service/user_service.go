package service

import (
	"context"
	"errors"
	"time"

	"github.com/chatdir/chatdir/internal/cache"
	"github.com/chatdir/chatdir/internal/domain"
	"github.com/chatdir/chatdir/internal/log"
	"github.com/chatdir/chatdir/internal/repository"
)

// userServiceImpl implements UserService.
type userServiceImpl struct {
	repo     repository.UserRepository
	listings cache.ListingCache
	cacheTTL time.Duration
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, listings cache.ListingCache, cacheTTL time.Duration) UserService {
	return &userServiceImpl{
		repo:     repo,
		listings: listings,
		cacheTTL: cacheTTL,
	}
}

// CreateUser creates a directory entry for name.
func (s *userServiceImpl) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	user := &domain.User{Name: name}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapStoreErr(err)
	}

	s.invalidate(ctx)
	return user, nil
}

// DeleteUser removes the named user. Room member lists that still carry the
// name are left alone; membership is room-owned.
func (s *userServiceImpl) DeleteUser(ctx context.Context, name string) error {
	if err := s.repo.DeleteByName(ctx, name); err != nil {
		return mapStoreErr(err)
	}

	s.invalidate(ctx)
	return nil
}

// RenameUser renames the user currently called oldName and returns the new
// name.
func (s *userServiceImpl) RenameUser(ctx context.Context, oldName, newName string) (string, error) {
	if err := s.repo.Rename(ctx, oldName, newName); err != nil {
		return "", mapStoreErr(err)
	}

	s.invalidate(ctx)
	return newName, nil
}

// ListUsers returns all users, served from the listing cache when possible.
func (s *userServiceImpl) ListUsers(ctx context.Context) ([]domain.User, error) {
	if users, err := s.listings.GetUsers(ctx); err == nil {
		return users, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("user listing cache read failed")
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if err := s.listings.SetUsers(ctx, users, s.cacheTTL); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("user listing cache write failed")
	}
	return users, nil
}

func (s *userServiceImpl) invalidate(ctx context.Context) {
	if err := s.listings.InvalidateUsers(ctx); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("user listing cache invalidation failed")
	}
}
