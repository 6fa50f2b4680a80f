package prefs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"readdit/internal/auth"
	"readdit/internal/logging"
	"readdit/pkg/models"
)

// Notifier is told about saved preferences so live connections of the
// same session can follow.
type Notifier interface {
	PrefsUpdated(sessionID string, p models.Preferences)
}

type Handler struct {
	Repo   *Repo
	Notify Notifier
}

func NewHandler(repo *Repo, notify Notifier) *Handler {
	return &Handler{Repo: repo, Notify: notify}
}

// RegisterRoutes expects rg to be behind auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/preferences", h.get)
	rg.PUT("/preferences", h.update)
}

func (h *Handler) get(c *gin.Context) {
	sid := auth.SessionID(c)
	if sid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := h.Repo.Load(c.Request.Context(), sid)
	if err != nil {
		logging.Error().Err(err).Str("session", sid).Msg("load preferences failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// updateReq is a partial update: omitted fields keep their stored value.
type updateReq struct {
	Style      *int     `json:"style" binding:"omitempty,min=0,max=100"`
	Pace       *int     `json:"pace" binding:"omitempty,min=0,max=100"`
	Complexity *int     `json:"complexity" binding:"omitempty,min=0,max=100"`
	Genres     []string `json:"genres" binding:"omitempty,max=6,dive,oneof=fantasy scifi mystery romance nonfiction classics"`
}

func (h *Handler) update(c *gin.Context) {
	sid := auth.SessionID(c)
	if sid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preferences: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	p, err := h.Repo.Load(ctx, sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	if req.Style != nil {
		p.Style = *req.Style
	}
	if req.Pace != nil {
		p.Pace = *req.Pace
	}
	if req.Complexity != nil {
		p.Complexity = *req.Complexity
	}
	if req.Genres != nil {
		p.Genres = req.Genres
	}

	if err := h.Repo.Save(ctx, sid, p); err != nil {
		logging.Error().Err(err).Str("session", sid).Msg("save preferences failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.Load(ctx, sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	if h.Notify != nil {
		h.Notify.PrefsUpdated(sid, saved)
	}
	c.JSON(http.StatusOK, saved)
}
