package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/config"
	"github.com/Nixie-Tech-LLC/lineup/internal/kv"
	"github.com/Nixie-Tech-LLC/lineup/internal/redis"
)

// InitStore selects, connects and returns the configured key-value backend
func InitStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverFile:
		fs, err := kv.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		return fs, nil

	case config.DriverRedis:
		rdb := redis.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddress, err)
		}
		log.Info().Str("address", cfg.RedisAddress).Msg("using redis store")
		return redis.NewStore(rdb, cfg.RedisChannel), nil

	case config.DriverPostgres:
		ctx := context.Background()
		db, err := kv.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		applied, err := kv.RunMigrations(ctx, db, cfg.MigrationsPath)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
		log.Info().Int("migrations", applied).Msg("using postgres store")
		return kv.NewPostgresStore(db, cfg.DatabaseURL), nil

	default:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return kv.NewMemoryStore(), nil
	}
}
