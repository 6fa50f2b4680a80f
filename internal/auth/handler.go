package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"readdit/internal/logging"
)

type Handler struct {
	Repo   *Repo
	Tokens TokenService
}

func NewHandler(repo *Repo, tokens TokenService) *Handler {
	return &Handler{Repo: repo, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/session", h.createSession)
	rg.GET("/session", AuthMiddleware(h.Tokens, h.Repo), h.currentSession)
	rg.DELETE("/session", AuthMiddleware(h.Tokens, h.Repo), h.deleteSession)
}

// createSession starts an anonymous session and returns its token.
func (h *Handler) createSession(c *gin.Context) {
	id := uuid.NewString()
	if err := h.Repo.CreateSession(c.Request.Context(), id); err != nil {
		logging.Error().Err(err).Msg("create session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create session failed"})
		return
	}

	token, exp, err := h.Tokens.Sign(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": id,
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) currentSession(c *gin.Context) {
	id := SessionID(c)
	s, err := h.Repo.GetSession(c.Request.Context(), id)
	if err != nil || s == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":   s.ID,
		"created_at":   s.CreatedAt.UTC().Format(time.RFC3339),
		"last_seen_at": s.LastSeenAt.UTC().Format(time.RFC3339),
	})
}

// deleteSession forgets the session and its stored preferences.
func (h *Handler) deleteSession(c *gin.Context) {
	if err := h.Repo.DeleteSession(c.Request.Context(), SessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete session failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "session deleted"})
}
