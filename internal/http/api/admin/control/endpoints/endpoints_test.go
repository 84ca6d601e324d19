package endpoints_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/control/endpoints"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/lineup/internal/kv"
	"github.com/Nixie-Tech-LLC/lineup/internal/storage"
)

const jwtSecret = "supersecret"

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  db.Store
	token  string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewStore(kv.NewMemoryStore(), kv.Keys{Prefix: "test_"})
	creds, err := middleware.NewCredentials("admin", "agora2024")
	require.NoError(t, err)

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin"},
		authapi.AuthPublicModule(jwtSecret, creds, store),
	)
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin", Auth: true, SecretKey: jwtSecret, Store: store},
		authapi.AuthSessionModule(jwtSecret, creds, store),
		adminapi.TVModule(store, storage.NewLocalStorage(t.TempDir(), "/uploads")),
		adminapi.EventModule(store, time.UTC),
		adminapi.DashboardModule(store),
	)

	s := &testServer{t: t, router: r, store: store}
	s.token = s.login("admin", "agora2024")
	return s
}

func (s *testServer) login(username, password string) string {
	w := s.do(http.MethodPost, "/api/admin/auth/login", map[string]string{"username": username, "password": password})
	if w.Code != http.StatusOK {
		return ""
	}
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAuth(t *testing.T) {
	s := setupServer(t)
	require.NotEmpty(t, s.token)

	assert.Empty(t, s.login("admin", "wrong"))

	w := s.do(http.MethodGet, "/api/admin/auth/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"admin","is_authenticated":true}`, w.Body.String())

	token := s.token
	s.token = ""
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/tvs", nil).Code)
	s.token = "not-a-jwt"
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/tvs", nil).Code)

	s.token = token
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/admin/auth/logout", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/tvs", nil).Code)
}

func TestTVLifecycle(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/admin/tvs", map[string]string{"name": "Bloco A – Recepção!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tv := decode[packets.TVResponse](t, w)
	assert.Equal(t, "bloco-a-recepcao", tv.Slug)
	assert.Equal(t, "horizontal", tv.Orientation)
	assert.Equal(t, "/tv/bloco-a-recepcao", tv.PlayerURL)

	w = s.do(http.MethodPost, "/api/admin/tvs", map[string]string{"name": "Copy", "slug": "bloco-a-recepcao"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/admin/tvs", map[string]string{"name": "Hall", "orientation": "diagonal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/admin/tvs/slug-available?slug=bloco-a-recepcao", nil)
	assert.JSONEq(t, `{"slug":"bloco-a-recepcao","valid":true,"available":false}`, w.Body.String())
	w = s.do(http.MethodGet, "/api/admin/tvs/slug-available?slug=bloco-a-recepcao&exclude_id="+tv.ID, nil)
	assert.JSONEq(t, `{"slug":"bloco-a-recepcao","valid":true,"available":true}`, w.Body.String())

	w = s.do(http.MethodPut, "/api/admin/tvs/"+tv.ID, map[string]string{"orientation": "vertical"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vertical", decode[packets.TVResponse](t, w).Orientation)

	w = s.do(http.MethodPut, "/api/admin/tvs/"+tv.ID+"/image", map[string]string{"image": "data:image/png;base64,AAAA"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[packets.TVResponse](t, w).HasImage)

	w = s.do(http.MethodPut, "/api/admin/tvs/"+tv.ID+"/image", map[string]string{"image": "javascript:alert(1)"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/admin/tvs/"+tv.ID+"/image", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[packets.TVResponse](t, w).HasImage)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/admin/tvs/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/admin/tvs/missing", map[string]string{"name": "x"}).Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/admin/tvs/"+tv.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/admin/tvs/"+tv.ID, nil).Code)
}

func TestTVImageUpload(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/admin/tvs", map[string]string{"name": "Lobby"})
	require.Equal(t, http.StatusOK, w.Code)
	tv := decode[packets.TVResponse](t, w)

	upload := func(filename string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/admin/tvs/"+tv.ID+"/image/upload", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+s.token)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	w = upload("Cartaz.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[packets.TVResponse](t, w)
	assert.True(t, strings.HasPrefix(got.ActiveImage, "/uploads/cartaz_"), got.ActiveImage)

	assert.Equal(t, http.StatusBadRequest, upload("clip.mp4").Code)
}

func TestEventLifecycle(t *testing.T) {
	s := setupServer(t)

	w := s.do(http.MethodPost, "/api/admin/tvs", map[string]string{"name": "Lobby"})
	require.Equal(t, http.StatusOK, w.Code)
	tv := decode[packets.TVResponse](t, w)

	now := time.Now().UTC()
	running := map[string]any{
		"name":            "Pitch Day",
		"location":        "Auditório",
		"start_date_time": now.Add(-10 * time.Minute).Format(time.RFC3339),
		"end_date_time":   now.Add(10 * time.Minute).Format(time.RFC3339),
		"tv_ids":          []string{tv.ID},
		"tags":            []string{"Palestra", "Palestra"},
	}
	w = s.do(http.MethodPost, "/api/admin/events", running)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	event := decode[packets.EventResponse](t, w)
	assert.Equal(t, "active", event.Status)
	assert.Equal(t, []string{"Palestra"}, event.Tags)

	// wall-clock input without offset
	soon := now.Add(2 * time.Hour)
	w = s.do(http.MethodPost, "/api/admin/events", map[string]any{
		"name":            "Workshop",
		"start_date_time": soon.Format("2006-01-02T15:04"),
		"end_date_time":   soon.Add(time.Hour).Format("2006-01-02T15:04"),
		"tv_ids":          []string{tv.ID},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "upcoming", decode[packets.EventResponse](t, w).Status)

	w = s.do(http.MethodPost, "/api/admin/events", map[string]any{
		"name":            "Backwards",
		"start_date_time": now.Format(time.RFC3339),
		"end_date_time":   now.Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), db.ErrInvalidWindow.Error())

	w = s.do(http.MethodPost, "/api/admin/events", map[string]any{
		"name":            "Bad date",
		"start_date_time": "tomorrow",
		"end_date_time":   now.Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/admin/events", map[string]any{
		"name":            "Ghost tv",
		"start_date_time": now.Format(time.RFC3339),
		"end_date_time":   now.Add(time.Hour).Format(time.RFC3339),
		"tv_ids":          []string{"ghost"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Len(t, decode[[]packets.EventResponse](t, s.do(http.MethodGet, "/api/admin/events", nil)), 2)
	assert.Len(t, decode[[]packets.EventResponse](t, s.do(http.MethodGet, "/api/admin/events/active", nil)), 1)
	assert.Len(t, decode[[]packets.EventResponse](t, s.do(http.MethodGet, "/api/admin/events/upcoming", nil)), 1)
	assert.Len(t, decode[[]packets.EventResponse](t, s.do(http.MethodGet, "/api/admin/events?tv_id="+tv.ID, nil)), 2)

	// merged window is validated on update
	w = s.do(http.MethodPut, "/api/admin/events/"+event.ID, map[string]any{
		"start_date_time": now.Add(time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/admin/events/"+event.ID, map[string]any{"name": "Pitch Day 2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pitch Day 2", decode[packets.EventResponse](t, w).Name)

	// deleting the tv unassigns it from its events
	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/admin/tvs/"+tv.ID, nil).Code)
	w = s.do(http.MethodGet, "/api/admin/events/"+event.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[packets.EventResponse](t, w).TVIDs)

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/admin/events/"+event.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/admin/events/"+event.ID, nil).Code)
}

func TestDashboardAndSlug(t *testing.T) {
	s := setupServer(t)

	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/admin/tvs", map[string]string{"name": "TV " + name}).Code)
	}
	now := time.Now().UTC()
	for i := 1; i <= 7; i++ {
		start := now.Add(time.Duration(i) * time.Hour)
		w := s.do(http.MethodPost, "/api/admin/events", map[string]any{
			"name":            "Event",
			"start_date_time": start.Format(time.RFC3339),
			"end_date_time":   start.Add(30 * time.Minute).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := s.do(http.MethodGet, "/api/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[packets.DashboardResponse](t, w)
	assert.Equal(t, 6, dash.TVCount)
	assert.Equal(t, 7, dash.EventCount)
	assert.Equal(t, 0, dash.ActiveCount)
	assert.Equal(t, 7, dash.UpcomingCount)
	assert.Len(t, dash.TVs, 5)
	assert.Len(t, dash.Upcoming, 5)

	w = s.do(http.MethodGet, "/api/admin/slug?name=Sala%20de%20Reuni%C3%A3o", nil)
	assert.JSONEq(t, `{"name":"Sala de Reunião","slug":"sala-de-reuniao"}`, w.Body.String())
}
