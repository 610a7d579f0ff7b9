package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/chatdir/chatdir/internal/cache"
	"github.com/chatdir/chatdir/internal/config"
	"github.com/chatdir/chatdir/internal/handler"
	"github.com/chatdir/chatdir/internal/janitor"
	"github.com/chatdir/chatdir/internal/log"
	"github.com/chatdir/chatdir/internal/repository"
	"github.com/chatdir/chatdir/internal/service"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := log.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	log.Init(cfg.Log)
	logger := log.L()

	// Connect to MongoDB
	db, err := repository.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to create indexes")
	}
	logger.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	// Initialize repositories
	roomRepo := repository.NewMongoRoomRepository(db)
	userRepo := repository.NewMongoUserRepository(db)

	// Initialize Redis listing cache
	listings, err := cache.NewRedisListingCache(cfg.Redis, cfg.Cache.Prefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer listings.Close()
	logger.Info().Msg("redis cache connected")

	// Initialize services
	roomService := service.NewRoomService(roomRepo, listings, cfg.Cache.TTL)
	userService := service.NewUserService(userRepo, listings, cfg.Cache.TTL)
	matchService := service.NewMatchService(roomRepo, listings)

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(roomService, userService, matchService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinMiddleware(logger))

	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("chatdir server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Janitor.Enabled {
		j := janitor.New(roomRepo, userRepo, janitor.Config{
			PurgeInterval: cfg.Janitor.PurgeInterval,
			ProbeInterval: cfg.Janitor.ProbeInterval,
		}, logger)
		g.Go(func() error {
			if err := j.Serve(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return
	}
	logger.Info().Msg("server exited gracefully")
}
