// Package janitor runs the periodic maintenance loop: a cleanup pass that
// empties both directory collections, and a probe pass that creates and
// deletes a throwaway room as a store liveness check.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatdir/chatdir/internal/domain"
	"github.com/chatdir/chatdir/internal/repository"
)

// Config holds janitor timing configuration.
type Config struct {
	// PurgeInterval is how often all rooms and users are deleted.
	PurgeInterval time.Duration

	// ProbeInterval is how often the liveness probe runs.
	ProbeInterval time.Duration
}

// Janitor owns the maintenance loop. It talks to the same repositories as the
// request path and may race with in-flight directory operations; a purge can
// remove a room a join is about to target. That is accepted: the join then
// reports NotFound.
type Janitor struct {
	rooms  repository.RoomRepository
	users  repository.UserRepository
	config Config
	logger zerolog.Logger
}

// New creates a janitor over the given repositories.
func New(rooms repository.RoomRepository, users repository.UserRepository, cfg Config, logger zerolog.Logger) *Janitor {
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = 24 * time.Hour
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = time.Minute
	}
	return &Janitor{
		rooms:  rooms,
		users:  users,
		config: cfg,
		logger: logger.With().Str("service", "janitor").Logger(),
	}
}

// Serve runs the maintenance loop until the context is canceled.
func (j *Janitor) Serve(ctx context.Context) error {
	j.logger.Info().
		Dur("purge_interval", j.config.PurgeInterval).
		Dur("probe_interval", j.config.ProbeInterval).
		Msg("janitor starting")

	purge := time.NewTicker(j.config.PurgeInterval)
	defer purge.Stop()
	probe := time.NewTicker(j.config.ProbeInterval)
	defer probe.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("janitor shutting down")
			return ctx.Err()

		case <-purge.C:
			if err := j.Purge(ctx); err != nil {
				j.logger.Warn().Err(err).Msg("purge failed")
			}

		case <-probe.C:
			if err := j.Probe(ctx); err != nil {
				j.logger.Warn().Err(err).Msg("probe failed")
			}
		}
	}
}

// Purge deletes all rooms and users.
func (j *Janitor) Purge(ctx context.Context) error {
	start := time.Now()

	roomErr := j.rooms.DeleteAll(ctx)
	userErr := j.users.DeleteAll(ctx)
	if err := errors.Join(roomErr, userErr); err != nil {
		return err
	}

	j.logger.Info().Dur("duration", time.Since(start)).Msg("directory purged")
	return nil
}

// Probe creates a uniquely named room and deletes it again, verifying the
// store accepts writes end to end.
func (j *Janitor) Probe(ctx context.Context) error {
	name := "probe-" + uuid.NewString()

	room := &domain.Room{Name: name, Members: []string{}}
	if err := j.rooms.Create(ctx, room); err != nil {
		return fmt.Errorf("probe create: %w", err)
	}
	if err := j.rooms.DeleteByName(ctx, name); err != nil {
		return fmt.Errorf("probe delete: %w", err)
	}

	j.logger.Debug().Str("room", name).Msg("probe round trip ok")
	return nil
}

// String returns the service name for logging.
func (j *Janitor) String() string {
	return "janitor"
}
