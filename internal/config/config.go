package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config holds environment-based settings
type Config struct {
	Environment   string
	ServerAddress string
	JWTSecret     string

	// key-value store
	StoreDriver    string
	StoreDir       string
	StorePrefix    string
	DatabaseURL    string
	MigrationsPath string
	RedisAddress   string
	RedisUsername  string
	RedisPassword  string
	RedisChannel   string

	// static admin credential
	AdminUsername string
	AdminPassword string

	// display resolution
	RefreshInterval time.Duration
	UpcomingLimit   int
	IncludeSaturday bool
	Location        *time.Location
	DemoSeedSlug    string
	MQTTBrokerURL   string
	MQTTClientID    string

	// image storage
	UploadsDir      string
	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesCDNURL    string
	SpacesAccessKey string
	SpacesSecretKey string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment:    getenv("APP_ENV", "development"),
		ServerAddress:  getenv("SERVER_ADDRESS", ":8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		StoreDriver:    getenv("STORE_DRIVER", DriverMemory),
		StoreDir:       getenv("STORE_DIR", "./data"),
		StorePrefix:    getenv("STORE_PREFIX", "agora_lineup_"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "./migrations"),
		RedisAddress:   getenv("REDIS_ADDRESS", "localhost:6379"),
		RedisUsername:  os.Getenv("REDIS_USERNAME"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisChannel:   getenv("REDIS_CHANNEL", "lineup:changes"),
		AdminUsername:  getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:  getenv("ADMIN_PASSWORD", "agora2024"),
		DemoSeedSlug:   os.Getenv("DEMO_SEED_SLUG"),
		MQTTBrokerURL:  os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:   getenv("MQTT_CLIENT_ID", "lineup-server"),
		UploadsDir:     getenv("UPLOADS_DIR", "./uploads"),

		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesBucket:    os.Getenv("SPACES_BUCKET"),
		SpacesCDNURL:    os.Getenv("SPACES_CDN_URL"),
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverFile, DriverRedis:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	interval, err := time.ParseDuration(getenv("DISPLAY_REFRESH_INTERVAL", "30s"))
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("DISPLAY_REFRESH_INTERVAL must be a positive duration")
	}
	cfg.RefreshInterval = interval

	limit, err := strconv.Atoi(getenv("DISPLAY_UPCOMING_LIMIT", "6"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("DISPLAY_UPCOMING_LIMIT must be a positive integer")
	}
	cfg.UpcomingLimit = limit

	if cfg.IncludeSaturday, err = getbool("AGENDA_INCLUDE_SATURDAY", false); err != nil {
		return nil, err
	}
	if cfg.UseSpaces, err = getbool("USE_SPACES", false); err != nil {
		return nil, err
	}
	if cfg.UseSpaces && (cfg.SpacesBucket == "" || cfg.SpacesEndpoint == "") {
		return nil, fmt.Errorf("SPACES_BUCKET and SPACES_ENDPOINT are required when USE_SPACES is set")
	}

	cfg.Location, err = time.LoadLocation(getenv("DISPLAY_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("DISPLAY_TIMEZONE: %w", err)
	}

	return cfg, nil
}
