package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"readdit/internal/auth"
	"readdit/internal/cache"
	"readdit/internal/live"
	"readdit/internal/logging"
	"readdit/internal/prefs"
	"readdit/internal/works"
	"readdit/pkg/utils"
)

var version = "dev"

type deps struct {
	db      *sql.DB
	search  works.Searcher
	engine  works.Engine
	caches  *cache.Set
	version string
}

func newRouter(cfg *utils.Config, d deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(logging.GinLogger(), gin.Recovery())
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logging.Warn().Err(err).Msg("invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	hub := live.NewHub()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": d.version})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db":               cfg.Database.Path,
			"live_connections": stats.Connections,
			"live_sessions":    stats.Sessions,
			"cache": gin.H{
				"work_details":      d.caches.Works.Len(),
				"edition_languages": d.caches.Languages.Len(),
				"community_posts":   d.caches.Posts.Len(),
			},
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	tokens := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	sessions := auth.NewRepo(d.db)
	auth.NewHandler(sessions, tokens).RegisterRoutes(router.Group("/"))

	prefsRepo := prefs.NewRepo(d.db)
	prefs.NewHandler(prefsRepo, hub).RegisterRoutes(router.Group("/", auth.AuthMiddleware(tokens, sessions)))

	optional := router.Group("/", auth.OptionalSession(tokens, sessions))
	works.NewHandler(d.search, d.engine, prefsRepo, cfg.Catalog.CoversURL).RegisterRoutes(optional)
	optional.GET("/ws", live.NewHandler(hub, d.engine, prefsRepo, cfg.Catalog.CoversURL).Serve)

	return router
}
