package main

import (
	"html/template"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/lineup/internal/config"
	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/control/endpoints"
	tvapi "github.com/Nixie-Tech-LLC/lineup/internal/http/api/tv/endpoints"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/lineup/internal/player"
	"github.com/Nixie-Tech-LLC/lineup/internal/storage"
)

const uploadsRoute = "/uploads"

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	store db.Store,
	creds middleware.Credentials,
	resolver *player.Resolver,
	storageSystem storage.Storage,
	tmpl *template.Template,
) {
	r.SetHTMLTemplate(tmpl)
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"If-None-Match",
			"X-If-None-Match",
		},
		ExposeHeaders: []string{
			"Content-Length",
			"ETag",
			"X-Content-ETag",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(cfg.JWTSecret, creds, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Store:     store,
	},
		// control modules
		adminapi.TVModule(store, storageSystem),
		adminapi.EventModule(store, cfg.Location),
		adminapi.DashboardModule(store),
		// session endpoints that require auth
		authapi.AuthSessionModule(cfg.JWTSecret, creds, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
	},
		tvapi.DisplayModule(resolver),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/tv",
	},
		tvapi.PlayerPageModule(resolver),
	)

	// Static content
	if !cfg.UseSpaces {
		r.Static(uploadsRoute, cfg.UploadsDir)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}
