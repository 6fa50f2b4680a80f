package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"readdit/internal/logging"
)

const CtxClaimsKey = "auth_claims"

// bearer extracts the token from the Authorization header, or from the
// "token" query parameter for websocket upgrades.
func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > len("bearer ") && strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(h[len("bearer "):])
	}
	return c.Query("token")
}

// resolve validates the token and, when repo is set, that the session
// still exists.
func resolve(c *gin.Context, tokens TokenService, repo *Repo, raw string) (*Claims, bool) {
	claims, err := tokens.Parse(raw)
	if err != nil {
		return nil, false
	}
	if repo != nil {
		ok, err := repo.Touch(c.Request.Context(), claims.SessionID)
		if err != nil {
			logging.Warn().Err(err).Str("session", claims.SessionID).Msg("session lookup failed")
			return nil, false
		}
		if !ok {
			return nil, false
		}
	}
	return claims, true
}

// AuthMiddleware rejects requests without a valid session token.
func AuthMiddleware(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			c.Abort()
			return
		}

		claims, ok := resolve(c, tokens, repo, raw)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// OptionalSession attaches claims when a valid token is present and lets
// the request through either way.
func OptionalSession(tokens TokenService, repo *Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearer(c); raw != "" {
			if claims, ok := resolve(c, tokens, repo, raw); ok {
				c.Set(CtxClaimsKey, claims)
			}
		}
		c.Next()
	}
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

// SessionID returns the session of the request, or "".
func SessionID(c *gin.Context) string {
	if claims := MustGetClaims(c); claims != nil {
		return claims.SessionID
	}
	return ""
}
