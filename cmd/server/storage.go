package main

import (
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/config"
	"github.com/Nixie-Tech-LLC/lineup/internal/storage"
)

// InitStorage selects and returns the configured image storage backend
func InitStorage(cfg *config.Config) storage.Storage {
	if cfg.UseSpaces {
		spacesStorage, err := storage.NewSpacesStorage(
			cfg.SpacesEndpoint,
			cfg.SpacesRegion,
			cfg.SpacesBucket,
			cfg.SpacesCDNURL,
			cfg.SpacesAccessKey,
			cfg.SpacesSecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Spaces storage")
		}
		log.Info().Str("cdn", cfg.SpacesCDNURL).Msg("using DigitalOcean Spaces image storage")
		return spacesStorage
	}

	log.Info().Str("dir", cfg.UploadsDir).Msg("using local image storage")
	return storage.NewLocalStorage(cfg.UploadsDir, uploadsRoute)
}
