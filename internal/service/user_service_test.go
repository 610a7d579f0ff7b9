package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/chatdir/chatdir/internal/repository"
)

func newTestUserService(repo *fakeUserRepo, listings *fakeCache) UserService {
	return NewUserService(repo, listings, time.Minute)
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := &fakeUserRepo{}
	s := newTestUserService(repo, &fakeCache{})
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "u"); err != nil {
		t.Fatalf("first CreateUser() error = %v", err)
	}
	_, err := s.CreateUser(ctx, "u")
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("second CreateUser() error = %v, want ErrDuplicateName", err)
	}
	if len(repo.users) != 1 {
		t.Errorf("users = %d, want 1", len(repo.users))
	}
}

func TestDeleteUserMissing(t *testing.T) {
	s := newTestUserService(&fakeUserRepo{}, &fakeCache{})

	err := s.DeleteUser(context.Background(), "missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("DeleteUser() error = %v, want ErrUserNotFound", err)
	}
}

func TestRenameUserRoundTrip(t *testing.T) {
	repo := &fakeUserRepo{}
	s := newTestUserService(repo, &fakeCache{})
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "u"); err != nil {
		t.Fatal(err)
	}
	originalID := repo.users[0].ID

	got, err := s.RenameUser(ctx, "u", "u2")
	if err != nil {
		t.Fatalf("RenameUser() error = %v", err)
	}
	if got != "u2" {
		t.Errorf("RenameUser() = %q, want %q", got, "u2")
	}
	if _, err := s.RenameUser(ctx, "u2", "u"); err != nil {
		t.Fatalf("reverse RenameUser() error = %v", err)
	}

	if repo.users[0].Name != "u" {
		t.Errorf("user name = %q, want %q after round trip", repo.users[0].Name, "u")
	}
	if repo.users[0].ID != originalID {
		t.Error("rename changed the store id")
	}
}

func TestRenameUserMissing(t *testing.T) {
	s := newTestUserService(&fakeUserRepo{}, &fakeCache{})

	_, err := s.RenameUser(context.Background(), "missing", "other")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("RenameUser() error = %v, want ErrUserNotFound", err)
	}
}

func TestListUsersCaching(t *testing.T) {
	repo := &fakeUserRepo{}
	listings := &fakeCache{}
	s := newTestUserService(repo, listings)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "u"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ListUsers(ctx); err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if !listings.hasUsers {
		t.Error("listing cache not filled after miss")
	}

	// A cache hit must not touch the store.
	repo.err = fmt.Errorf("%w: down", repository.ErrUnavailable)
	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v on cache hit", err)
	}
	if len(users) != 1 || users[0].Name != "u" {
		t.Errorf("ListUsers() = %v, want cached listing", users)
	}
}

func TestUserMutationsInvalidateListing(t *testing.T) {
	repo := &fakeUserRepo{}
	listings := &fakeCache{}
	s := newTestUserService(repo, listings)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "u"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RenameUser(ctx, "u", "u2"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteUser(ctx, "u2"); err != nil {
		t.Fatal(err)
	}

	if listings.userInvalidations != 3 {
		t.Errorf("user invalidations = %d, want 3", listings.userInvalidations)
	}
}

func TestUserStoreUnavailable(t *testing.T) {
	repo := &fakeUserRepo{err: fmt.Errorf("%w: connection refused", repository.ErrUnavailable)}
	s := newTestUserService(repo, &fakeCache{})

	_, err := s.CreateUser(context.Background(), "u")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("CreateUser() error = %v, want ErrStoreUnavailable", err)
	}
}
