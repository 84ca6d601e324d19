package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/auth/packets"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/lineup/internal/model"
)

// AuthPublicModule mounts public auth endpoints (/auth/login)
func AuthPublicModule(jwtSecret string, creds middleware.Credentials, store db.Store) api.Module {
	ctl := newAccountManager(jwtSecret, creds, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/auth/login", ctl.userLogin)
	})
}

// AuthSessionModule mounts private session endpoints (JWT required)
func AuthSessionModule(jwtSecret string, creds middleware.Credentials, store db.Store) api.Module {
	ctl := newAccountManager(jwtSecret, creds, store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/session", ctl.getSession)
		c.POST("/auth/logout", ctl.userLogout)
	})
}

type AccountManager struct {
	jwtSecret string
	creds     middleware.Credentials
	store     db.Store
}

func newAccountManager(secret string, creds middleware.Credentials, store db.Store) *AccountManager {
	return &AccountManager{jwtSecret: secret, creds: creds, store: store}
}

// POST /api/admin/auth/login
func (a *AccountManager) userLogin(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if !a.creds.Check(request.Username, request.Password) {
		log.Warn().Str("username", request.Username).Msg("rejected login")
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}

	session := model.Session{Username: request.Username, IsAuthenticated: true}
	if err := a.store.SetSession(ctx.Request.Context(), session); err != nil {
		log.Error().Err(err).Msg("failed to persist session")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not start session"}
	}

	token, err := middleware.GenerateJWT(request.Username, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}

	log.Info().Str("username", request.Username).Msg("operator logged in")
	return packets.LoginResponse{
		Token:     token,
		Username:  request.Username,
		ExpiresIn: int64(middleware.TokenTTL / time.Second),
	}, nil
}

// POST /api/admin/auth/logout
func (a *AccountManager) userLogout(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	if err := a.store.ClearSession(ctx.Request.Context()); err != nil {
		log.Error().Err(err).Msg("failed to clear session")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not end session"}
	}

	log.Info().Str("username", user.Username).Msg("operator logged out")
	return packets.SessionResponse{Username: user.Username, IsAuthenticated: false}, nil
}

// GET /api/admin/auth/session
func (a *AccountManager) getSession(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	return packets.SessionResponse{
		Username:        user.Username,
		IsAuthenticated: user.IsAuthenticated,
	}, nil
}
