// Package worker provides the HTTP service for recordsearch.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/thebtf/recordsearch/internal/config"
	"github.com/thebtf/recordsearch/internal/db/gorm"
	"github.com/thebtf/recordsearch/internal/search"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Service serves search and case listing for a single database.
type Service struct {
	startTime time.Time
	ctx       context.Context
	config    *config.Config
	store     *gorm.Store
	records   *gorm.RecordStore
	cases     *gorm.CaseStore
	manager   *search.Manager
	limiter   *rate.Limiter
	router    *chi.Mux
	server    *http.Server
	cancel    context.CancelFunc
	version   string
	mu        sync.Mutex
	ready     atomic.Bool
}

// NewService wires the HTTP routes around an open store and a search manager.
func NewService(version string, cfg *config.Config, store *gorm.Store, manager *search.Manager) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	svc := &Service{
		version:   version,
		config:    cfg,
		store:     store,
		records:   gorm.NewRecordStore(store),
		cases:     gorm.NewCaseStore(store),
		manager:   manager,
		limiter:   newLimiter(cfg),
		router:    chi.NewRouter(),
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	svc.setupRoutes()
	return svc
}

// newLimiter returns nil when rate limiting is disabled.
func newLimiter(cfg *config.Config) *rate.Limiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = int(cfg.RateLimitRPS) + 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
}

// Start listens on the configured address and blocks until Shutdown.
func (s *Service) Start() error {
	addr := net.JoinHostPort(s.config.WorkerHost, strconv.Itoa(s.config.WorkerPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}
	s.server = srv
	s.mu.Unlock()

	s.ready.Store(true)
	log.Info().Str("addr", ln.Addr().String()).Str("version", s.version).Msg("Worker listening")

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Service) Shutdown(ctx context.Context) error {
	s.ready.Store(false)

	s.mu.Lock()
	s.cancel()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	log.Info().Dur("uptime", time.Since(s.startTime)).Msg("Worker shutting down")
	return srv.Shutdown(ctx)
}

func (s *Service) setupRoutes() {
	r := s.router
	s.useMiddleware(r)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)
		r.Get("/version", s.handleVersion)

		r.Group(func(r chi.Router) {
			r.Use(s.requireReady)
			r.Use(s.requireScope)

			r.With(s.rateLimit).Get("/search/name", s.handleSearchName)
			r.With(s.rateLimit).Get("/cases", s.handleListCases)
			r.Get("/cases/next-id", s.handleNextCaseID)
		})
	})
}
