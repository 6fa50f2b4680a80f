package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readdit/internal/cache"
	"readdit/internal/recommend"
	"readdit/internal/sources"
	"readdit/pkg/database"
	"readdit/pkg/models"
	"readdit/pkg/utils"
)

type stubSearch struct{}

func (stubSearch) Search(context.Context, string, int) sources.Result[[]models.Candidate] {
	return sources.Ok([]models.Candidate{{Key: "/works/OL1W", Title: "Dune", AuthorName: "Frank Herbert"}})
}

type stubEngine struct{ prefs models.Preferences }

func (*stubEngine) Overview(context.Context, models.WorkMeta) recommend.Overview {
	return recommend.Overview{Labels: []string{}}
}

func (*stubEngine) Voices(context.Context, string) ([]models.CommunityPost, bool) { return nil, false }

func (s *stubEngine) Recommend(_ context.Context, _ models.WorkMeta, p models.Preferences) models.Recommendations {
	s.prefs = p
	return models.Recommendations{Status: models.RecommendationsNoMatch, Items: []models.Recommendation{}}
}

func (*stubEngine) FunFacts(context.Context, models.WorkMeta) []models.Fact { return nil }

func newTestRouter(t *testing.T, engine *stubEngine) http.Handler {
	t.Helper()
	cfg, err := utils.LoadFrom("")
	require.NoError(t, err)
	cfg.Server.Mode = "test"
	cfg.Database.Path = filepath.Join(t.TempDir(), "readdit.db")

	db, err := database.OpenAndMigrate(database.Config{Path: cfg.Database.Path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return newRouter(cfg, deps{db: db, search: stubSearch{}, engine: engine, caches: cache.New(), version: "test"})
}

func do(h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestOperationalEndpoints(t *testing.T) {
	r := newTestRouter(t, &stubEngine{})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ready", "", "").Code)

	w := do(r, http.MethodGet, "/debug", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"live_connections":0`)

	w = do(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSessionPreferencesFlow(t *testing.T) {
	engine := &stubEngine{}
	r := newTestRouter(t, engine)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/preferences", "", "").Code)

	w := do(r, http.MethodPost, "/session", "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var sess struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.Token)

	w = do(r, http.MethodPut, "/preferences", `{"style":90,"genres":["fantasy"]}`, sess.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/preferences", "", sess.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.Preferences
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, 90, p.Style)
	assert.Equal(t, 50, p.Pace)
	assert.Equal(t, []string{"fantasy"}, p.Genres)

	w = do(r, http.MethodPost, "/recommendations", `{"title":"Dune"}`, sess.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90, engine.prefs.Style)
	assert.Equal(t, []string{"fantasy"}, engine.prefs.Genres)

	// Anonymous callers still get recommendations, with defaults.
	w = do(r, http.MethodPost, "/recommendations", `{"title":"Dune"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DefaultPreferences().Style, engine.prefs.Style)
	assert.Empty(t, engine.prefs.Genres)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/works/search?q=dune", "", "").Code)
}
