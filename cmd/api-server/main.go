package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"readdit/internal/cache"
	"readdit/internal/logging"
	"readdit/internal/recommend"
	"readdit/internal/sources"
	"readdit/pkg/database"
	"readdit/pkg/utils"
)

func main() {
	cfg, err := utils.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config failed")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	db := database.MustOpen(database.Config{Path: cfg.Database.Path})
	defer db.Close()

	catalog := sources.NewOpenLibrary(sources.OpenLibraryConfig{
		BaseURL: cfg.Catalog.BaseURL,
		Client: sources.ClientConfig{
			Timeout:          cfg.Catalog.Timeout,
			Rate:             cfg.Catalog.Rate,
			Burst:            cfg.Catalog.Burst,
			FailureThreshold: cfg.Catalog.FailureThreshold,
			OpenTimeout:      cfg.Catalog.OpenTimeout,
		},
	}, nil)
	community := sources.NewReddit(sources.RedditConfig{
		ProxyURL:    cfg.Community.ProxyURL,
		Communities: cfg.Community.Communities,
		MinUps:      cfg.Community.MinUps,
		MinComments: cfg.Community.MinComments,
		MaxPosts:    cfg.Community.MaxPosts,
		Client: sources.ClientConfig{
			Timeout:          cfg.Community.Timeout,
			Rate:             cfg.Community.Rate,
			Burst:            cfg.Community.Burst,
			FailureThreshold: cfg.Community.FailureThreshold,
			OpenTimeout:      cfg.Community.OpenTimeout,
		},
	}, nil)

	caches := cache.New()
	engine := recommend.NewEngine(catalog, community, caches, recommend.Config{
		WorksLimit:    cfg.Recommend.WorksLimit,
		FilterWant:    cfg.Recommend.FilterWant,
		MaxResults:    cfg.Recommend.MaxResults,
		ProbeBudget:   cfg.Recommend.ProbeBudget,
		EditionsLimit: cfg.Recommend.EditionsLimit,
		Weights: recommend.Weights{
			Catalog:    cfg.Recommend.CatalogWeight,
			Community:  cfg.Recommend.CommunityWeight,
			Preference: cfg.Recommend.PreferenceWeight,
		},
	})

	router := newRouter(cfg, deps{
		db:      db,
		search:  catalog,
		engine:  engine,
		caches:  caches,
		version: version,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		logging.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown does not wait for hijacked websocket connections.
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("http shutdown error")
	}
	logging.Info().Msg("server stopped")
}
