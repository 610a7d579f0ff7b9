package service

import (
	"errors"
	"fmt"

	"github.com/chatdir/chatdir/internal/repository"
)

// mapStoreErr translates repository errors into service sentinels so handlers
// only ever match against this package's errors.
func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrRoomNotFound):
		return ErrRoomNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateName):
		return ErrDuplicateName
	case errors.Is(err, repository.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}
