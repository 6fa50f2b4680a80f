package works

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"readdit/internal/auth"
	"readdit/internal/logging"
	"readdit/internal/recommend"
	"readdit/internal/sources"
	"readdit/pkg/models"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// Searcher runs catalog title searches.
type Searcher interface {
	Search(ctx context.Context, title string, limit int) sources.Result[[]models.Candidate]
}

// Engine is the part of recommend.Engine the handlers use.
type Engine interface {
	Overview(ctx context.Context, meta models.WorkMeta) recommend.Overview
	Voices(ctx context.Context, title string) ([]models.CommunityPost, bool)
	Recommend(ctx context.Context, base models.WorkMeta, prefs models.Preferences) models.Recommendations
	FunFacts(ctx context.Context, meta models.WorkMeta) []models.Fact
}

// PrefsLoader loads the stored preferences of a session.
type PrefsLoader interface {
	Load(ctx context.Context, sessionID string) (models.Preferences, error)
}

type Handler struct {
	Search    Searcher
	Engine    Engine
	Prefs     PrefsLoader
	CoversURL string
	Now       func() time.Time
}

func NewHandler(search Searcher, engine Engine, prefs PrefsLoader, coversURL string) *Handler {
	return &Handler{Search: search, Engine: engine, Prefs: prefs, CoversURL: coversURL, Now: time.Now}
}

// RegisterRoutes expects rg to run auth.OptionalSession so that
// recommendations can use the caller's preferences.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/works/search", h.search)
	rg.POST("/works/overview", h.overview)
	rg.GET("/works/voices", h.voices)
	rg.POST("/works/facts", h.facts)
	rg.POST("/recommendations", h.recommendations)
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q required"})
		return
	}
	limit := parseInt(c.Query("limit"), defaultSearchLimit)
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}

	hits, ok := h.Search.Search(c.Request.Context(), q, limit).Get()
	if !ok {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}

	items := make([]SearchHit, 0, len(hits))
	for _, hit := range hits {
		items = append(items, NewSearchHit(hit, h.CoversURL))
	}
	c.JSON(http.StatusOK, gin.H{
		"query": q,
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) overview(c *gin.Context) {
	meta, ok := bindMeta(c)
	if !ok {
		return
	}
	ov := h.Engine.Overview(c.Request.Context(), meta)
	c.JSON(http.StatusOK, NewOverviewView(ov, h.CoversURL))
}

func (h *Handler) voices(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	posts, ok := h.Engine.Voices(c.Request.Context(), title)
	c.JSON(http.StatusOK, NewVoicesView(title, posts, ok, h.Now()))
}

func (h *Handler) facts(c *gin.Context) {
	meta, ok := bindMeta(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title": meta.Title,
		"items": h.Engine.FunFacts(c.Request.Context(), meta),
	})
}

func (h *Handler) recommendations(c *gin.Context) {
	meta, ok := bindMeta(c)
	if !ok {
		return
	}
	prefs := LoadPrefs(c.Request.Context(), h.Prefs, auth.SessionID(c))
	c.JSON(http.StatusOK, h.Engine.Recommend(c.Request.Context(), meta, prefs))
}

// LoadPrefs falls back to defaults for anonymous callers and storage
// errors; recommendations never fail on preferences.
func LoadPrefs(ctx context.Context, prefs PrefsLoader, sid string) models.Preferences {
	if sid == "" || prefs == nil {
		return models.DefaultPreferences()
	}
	p, err := prefs.Load(ctx, sid)
	if err != nil {
		logging.Warn().Err(err).Str("session", sid).Msg("preferences unavailable, using defaults")
		return models.DefaultPreferences()
	}
	return p
}

func bindMeta(c *gin.Context) (models.WorkMeta, bool) {
	var meta models.WorkMeta
	if err := c.ShouldBindJSON(&meta); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid work: " + err.Error()})
		return meta, false
	}
	meta, ok := NormalizeMeta(meta)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
	}
	return meta, ok
}

// NormalizeMeta trims the title and subjects of a client-supplied work.
// It reports false when no title is left.
func NormalizeMeta(meta models.WorkMeta) (models.WorkMeta, bool) {
	meta.Title = strings.TrimSpace(meta.Title)
	meta.Subjects = normalizeSubjects(meta.Subjects)
	return meta, meta.Title != ""
}

// normalizeSubjects lowercases client-supplied subjects and keeps the
// first 12, matching what the catalog adapters produce.
func normalizeSubjects(in []string) []string {
	out := make([]string, 0, min(len(in), 12))
	for _, s := range in {
		if len(out) == 12 {
			break
		}
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
