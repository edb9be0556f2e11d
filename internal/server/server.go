/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/huginn_podcast/internal/api"
	"github.com/friendsincode/huginn_podcast/internal/cache"
	"github.com/friendsincode/huginn_podcast/internal/catalog"
	"github.com/friendsincode/huginn_podcast/internal/config"
	"github.com/friendsincode/huginn_podcast/internal/db"
	"github.com/friendsincode/huginn_podcast/internal/eventbus"
	"github.com/friendsincode/huginn_podcast/internal/events"
	"github.com/friendsincode/huginn_podcast/internal/playlists"
	"github.com/friendsincode/huginn_podcast/internal/refresh"
	"github.com/friendsincode/huginn_podcast/internal/telemetry"
	"github.com/friendsincode/huginn_podcast/internal/templates"
	"github.com/friendsincode/huginn_podcast/internal/version"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db        *gorm.DB
	cache     *cache.Cache
	bus       events.PubSub
	playlists *playlists.Service
	catalog   *catalog.Service
	templates *templates.Registry
	refresh   *refresh.Worker
	updates   *version.Checker
	api       *api.API

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("huginn-podcast-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

// HTTPServer exposes the underlying http.Server for lifecycle control.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// DeferClose registers cleanup to run on Close, in reverse order.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close stops background workers and releases resources.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	if err := db.RegisterCallbacks(database); err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	// Event bus: bridged across nodes when configured, in-process otherwise.
	switch s.cfg.EventBus {
	case config.EventBusNATS:
		natsCfg := eventbus.DefaultNATSConfig()
		natsCfg.URL = s.cfg.NATSURL
		natsCfg.Token = s.cfg.NATSToken
		natsBus, err := eventbus.NewNATSBus(natsCfg, s.logger)
		if err != nil {
			return fmt.Errorf("initialize nats bus: %w", err)
		}
		s.bus = natsBus
		s.DeferClose(natsBus.Close)
	case config.EventBusRedis:
		redisCfg := eventbus.DefaultRedisConfig()
		redisCfg.Addr = s.cfg.RedisAddr
		redisCfg.Password = s.cfg.RedisPassword
		redisCfg.DB = s.cfg.RedisDB
		redisBus, err := eventbus.NewRedisBus(redisCfg, uuid.NewString(), s.logger)
		if err != nil {
			return fmt.Errorf("initialize redis bus: %w", err)
		}
		s.bus = redisBus
		s.DeferClose(redisBus.Close)
	default:
		s.bus = events.NewBus()
	}

	// Redis cache for evaluation results
	if s.cfg.CacheEnabled {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB
		evalCache, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		} else {
			s.cache = evalCache
			s.DeferClose(s.cache.Close)
		}
	}

	registry, err := templates.Load()
	if err != nil {
		return fmt.Errorf("load smart playlist templates: %w", err)
	}
	s.templates = registry

	s.catalog = catalog.NewService(database, s.cache, s.bus, s.logger)
	s.playlists = playlists.NewService(playlists.NewGormStore(database), s.bus, s.logger)

	if s.cfg.RefreshEnabled {
		s.refresh = refresh.NewWorker(s.playlists, s.catalog, s.cache, s.bus, s.logger)
	}

	s.updates = version.NewChecker(s.logger)
	s.api = api.New(s.playlists, s.catalog, s.templates, s.cache, s.updates, s.logger)

	return nil
}

func (s *Server) startBackgroundWorkers() {
	if s.refresh == nil && s.playlists == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	if s.refresh != nil {
		if err := s.refresh.Start(ctx); err != nil {
			s.logger.Error().Err(err).Msg("refresh worker failed to start")
		} else {
			s.DeferClose(func() error {
				s.refresh.Stop()
				return nil
			})
		}
	}

	if s.updates != nil {
		s.updates.Start(ctx)
		s.DeferClose(func() error {
			s.updates.Stop()
			return nil
		})
	}

	// Keep playlist count gauges current.
	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.runPlaylistGauges(ctx)
	}()
}

// runPlaylistGauges periodically publishes playlist counts as metrics.
func (s *Server) runPlaylistGauges(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	update := func() {
		manual, err := s.playlists.Manuals(ctx)
		if err != nil {
			return
		}
		smart, err := s.playlists.SmartPlaylists(ctx)
		if err != nil {
			return
		}
		builtIn := 0
		for _, p := range smart {
			if p.SystemGenerated {
				builtIn++
			}
		}
		telemetry.PlaylistsTotal.WithLabelValues("manual").Set(float64(len(manual)))
		telemetry.PlaylistsTotal.WithLabelValues("smart").Set(float64(len(smart) - builtIn))
		telemetry.PlaylistsTotal.WithLabelValues("built_in").Set(float64(builtIn))
		db.UpdateConnectionMetrics(s.db)
	}

	update()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Handle("/metrics", telemetry.Handler())

	s.api.Routes(s.router)
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; base-uri 'self'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
