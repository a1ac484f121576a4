// corehub - Smart Search, Ranking & Personalization Core
// Copyright 2026 Aurastream
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aurastream/corehub

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aurastream/corehub/internal/api"
	"github.com/aurastream/corehub/internal/auth"
	"github.com/aurastream/corehub/internal/catalog"
	"github.com/aurastream/corehub/internal/config"
	"github.com/aurastream/corehub/internal/logging"
	"github.com/aurastream/corehub/internal/profile"
	"github.com/aurastream/corehub/internal/recommend"
	"github.com/aurastream/corehub/internal/reranker"
	"github.com/aurastream/corehub/internal/search"
	"github.com/aurastream/corehub/internal/songindex"
	"github.com/aurastream/corehub/internal/supervisor"
)

func main() {
	os.Exit(run())
}

// run builds the dependency graph, starts the supervisor tree, and blocks
// until SIGINT/SIGTERM. It returns the process exit code per the
// documented exit-code contract: 0 on a clean shutdown, 1 on startup or
// shutdown failure.
func run() int {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: cfg.Logging.Timestamp,
	})

	if cfg.Keepalive.URL == "" {
		logging.Warn().Msg("keepalive: no URL configured, pinger disabled")
	}

	store, err := profile.OpenBadgerStore(cfg.Store.Path)
	if err != nil {
		logging.Error().Err(err).Msg("failed to open profile store")
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close profile store")
		}
	}()

	bus, err := profile.NewEventBus(store)
	if err != nil {
		logging.Error().Err(err).Msg("failed to start activity event bus")
		return 1
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close activity event bus")
		}
	}()
	store.AttachEventBus(bus)

	client := catalog.New(catalog.Config{
		PrimaryBaseURL:  cfg.Providers.Primary.BaseURL,
		FallbackBaseURL: cfg.Providers.Fallback.BaseURL,
		PrimaryTimeout:  cfg.Providers.Primary.Timeout,
		FallbackTimeout: cfg.Providers.Fallback.Timeout,
		LookupTimeout:   cfg.Providers.LookupTimeout,
		PrimaryRPS:      cfg.Providers.Primary.RequestsPerSecond,
		FallbackRPS:     cfg.Providers.Fallback.RequestsPerSecond,
	})

	index := songindex.New(cfg.Search.IndexCapacity)
	engine := search.New(client, index)
	defer engine.Wait()

	rank := reranker.New(store)
	gen := recommend.New(engine, client, store, rank)

	verifier, err := auth.NewJWTVerifier(cfg.Security.JWTSecret, cfg.Security.ClockSkew)
	if err != nil {
		logging.Error().Err(err).Msg("failed to build token verifier")
		return 1
	}

	handlers := api.NewHandlers(*cfg, client, engine, index, rank, gen, store)
	router := api.NewRouter(handlers, verifier, cfg.Security.TokenCookie)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(slog.Default(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Error().Err(err).Msg("failed to build supervisor tree")
		return 1
	}
	tree.AddAPIService(httpServerService{server: server})
	if cfg.Keepalive.URL != "" {
		tree.AddBackgroundService(supervisor.NewKeepaliveService(cfg.Keepalive.URL, cfg.Keepalive.Interval, cfg.Keepalive.Timeout))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Int("port", cfg.Server.Port).Msg("server starting")
	errCh := tree.ServeBackground(ctx)

	<-ctx.Done()
	logging.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("http server shutdown error")
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor stopped with error")
		return 1
	}
	logging.Info().Msg("shutdown complete")
	return 0
}

// httpServerService adapts *http.Server into a suture.Service: Serve
// blocks until the server is shut down via Shutdown, at which point
// ListenAndServe returns http.ErrServerClosed, which is not a failure.
type httpServerService struct {
	server *http.Server
}

func (s httpServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = s.server.Shutdown(context.Background())
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
