package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/parcelwatch/parcel-tracker/internal/api"
	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
	"github.com/parcelwatch/parcel-tracker/internal/core/service"
	"github.com/parcelwatch/parcel-tracker/internal/infrastructure/availability"
	"github.com/parcelwatch/parcel-tracker/internal/infrastructure/config"
	mongodb "github.com/parcelwatch/parcel-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/parcelwatch/parcel-tracker/internal/infrastructure/db/redis"
	"github.com/parcelwatch/parcel-tracker/internal/infrastructure/parcelsapp"
	"github.com/parcelwatch/parcel-tracker/internal/infrastructure/sched"
	"github.com/parcelwatch/parcel-tracker/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Core wiring ---
	client := parcelsapp.NewClient(parcelsapp.Config{
		BaseURL:            cfg.Upstream.BaseURL,
		APIKey:             cfg.Upstream.APIKey,
		DestinationCountry: cfg.Upstream.DestinationCountry,
		Language:           cfg.Upstream.Language,
		Timeout:            cfg.Upstream.Timeout,
	}, log)

	uuidCache := service.NewUUIDCache(redisdb.NewUUIDStore(rdb), client, cfg.Tracker.UUIDTTL, log)
	tracker := service.NewTracker(client, uuidCache, cfg.Tracker.MaxInFlight, log)

	// Restore persisted parcels, then write every later mutation back
	// through a registry listener.
	parcelStore := mongodb.NewParcelRepository(db)
	parcels, err := parcelStore.LoadAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load persisted parcels")
	}
	tracker.Restore(parcels)
	tracker.Subscribe(persistListener(parcelStore, log))

	authService := service.NewAuthService(cfg.OperatorPasswordHash, cfg.JWTSecret, 24*time.Hour)
	checker := availability.NewChecker(cfg.Upstream.BaseURL)

	poller := sched.NewPoller(tracker, cfg.Tracker.ScanInterval, log)
	poller.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Tracker:   tracker,
		Auth:      authService,
		Checker:   checker,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("parcel tracker started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

// persistListener mirrors committed registry mutations into the parcel
// store. Persistence failures only log: the registry stays authoritative
// for the process lifetime.
func persistListener(store ports.ParcelStore, log zerolog.Logger) ports.Listener {
	return func(event ports.RegistryEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var err error
		switch event.Type {
		case ports.EventParcelRemoved:
			err = store.Delete(ctx, event.TrackingID)
		default:
			err = store.Upsert(ctx, event.Parcel)
		}
		if err != nil {
			log.Warn().Err(err).Str("tracking_id", event.TrackingID).Msg("failed to persist parcel")
		}
	}
}
