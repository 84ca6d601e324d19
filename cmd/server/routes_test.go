package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/lineup/internal/config"
	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/lineup/internal/kv"
	"github.com/Nixie-Tech-LLC/lineup/internal/player"
	"github.com/Nixie-Tech-LLC/lineup/internal/schedule"
	"github.com/Nixie-Tech-LLC/lineup/internal/storage"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:  "supersecret",
		Location:   time.UTC,
		UploadsDir: t.TempDir(),
	}
	store := db.NewStore(kv.NewMemoryStore(), kv.Keys{Prefix: "test_"})
	creds, err := middleware.NewCredentials("admin", "agora2024")
	require.NoError(t, err)
	resolver := player.NewResolver(store, schedule.Options{}, time.Hour)

	r := gin.New()
	RegisterRoutes(r, cfg, store, creds, resolver, storage.NewLocalStorage(cfg.UploadsDir, uploadsRoute), LoadTemplates())
	return r
}

func TestRoutes_EndToEnd(t *testing.T) {
	r := setupRouter(t)

	send := func(method, path, token string, body any) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPost, "/api/admin/auth/login", "", map[string]string{"username": "admin", "password": "agora2024"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = send(http.MethodPost, "/api/admin/tvs", login.Token, map[string]string{"name": "Recepção"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(http.MethodGet, "/api/tv/recepcao/display", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("ETag"))

	w = send(http.MethodGet, "/tv/recepcao", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestRoutes_UnknownPathIs404(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}
