package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/config"
	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/demo"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/lineup/internal/kv"
	"github.com/Nixie-Tech-LLC/lineup/internal/player"
	"github.com/Nixie-Tech-LLC/lineup/internal/schedule"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// initialize the key-value backend
	kvStore, err := InitStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store init")
	}
	defer kvStore.Close()

	keys := kv.Keys{Prefix: cfg.StorePrefix}
	store := db.NewStore(kvStore, keys)

	if cfg.DemoSeedSlug != "" {
		if _, err := demo.Seed(ctx, store, kvStore, keys, cfg.DemoSeedSlug, time.Now().In(cfg.Location)); err != nil {
			log.Error().Err(err).Str("slug", cfg.DemoSeedSlug).Msg("demo seeding failed")
		}
	}

	creds, err := middleware.NewCredentials(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash admin password")
	}

	resolver := player.NewResolver(store, schedule.Options{
		UpcomingLimit: cfg.UpcomingLimit,
		Weekdays:      schedule.Weekdays(cfg.IncludeSaturday),
		Location:      cfg.Location,
	}, cfg.RefreshInterval)

	var wg sync.WaitGroup
	if cfg.MQTTBrokerURL != "" {
		client, err := middleware.CreateMQTTClient(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt init")
		}
		publisher := middleware.NewMQTTPublisher(client)
		defer publisher.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := player.NewBroadcaster(resolver, publisher).Run(ctx); err != nil {
				log.Error().Err(err).Msg("display broadcaster failed")
			}
		}()
	}

	// set up gin router
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	RegisterRoutes(r, cfg, store, creds, resolver, InitStorage(cfg), LoadTemplates())

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: r,
	}
	go func() {
		log.Info().Str("address", cfg.ServerAddress).Str("store", cfg.StoreDriver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	wg.Wait()
}
