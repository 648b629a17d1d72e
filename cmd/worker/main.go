// Package main provides the recordsearch worker entry point.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thebtf/recordsearch/internal/config"
	"github.com/thebtf/recordsearch/internal/db/gorm"
	"github.com/thebtf/recordsearch/internal/resilience"
	"github.com/thebtf/recordsearch/internal/search"
	"github.com/thebtf/recordsearch/internal/watcher"
	"github.com/thebtf/recordsearch/internal/worker"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	port := flag.Int("port", 0, "Listen port (default: settings or 38640)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	if err := config.EnsureAll(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure data directories")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		restart, err := run(ctx, *debug, *port)
		if err != nil {
			log.Fatal().Err(err).Msg("Worker stopped")
		}
		if !restart {
			log.Info().Msg("Worker exited")
			return
		}
		log.Info().Msg("Restarting worker with fresh settings")
	}
}

// run serves until ctx ends or a watched file changes. It reports whether
// the caller should start again.
func run(ctx context.Context, debug bool, port int) (bool, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	}
	if port > 0 {
		cfg.WorkerPort = port
	}
	zerolog.SetGlobalLevel(cfg.ZerologLevel())
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	store, err := gorm.NewStore(gorm.Config{
		Driver:   gorm.Driver(cfg.DBDriver),
		Path:     cfg.DBPath,
		DSN:      cfg.DatabaseDSN,
		MaxConns: cfg.MaxConns,
	})
	if err != nil {
		return false, err
	}
	defer store.Close()

	metrics, err := search.NewMetrics(nil)
	if err != nil {
		log.Warn().Err(err).Msg("Search metrics unavailable")
	}

	fetcher := resilience.NewBreakerFetcher(gorm.NewRecordStore(store), resilience.Config{
		Name:         "entity-fetch",
		MinRequests:  uint32(max(cfg.BreakerMinRequests, 0)),
		FailureRatio: cfg.BreakerFailureRatio,
		OpenTimeout:  cfg.BreakerOpenTimeout(),
	})
	manager := search.NewManager(fetcher,
		search.WithDefaults(cfg.SearchThreshold, cfg.SearchLimit, cfg.SearchMaxLimit),
		search.WithMetrics(metrics),
	)
	svc := worker.NewService(Version, cfg, store, manager)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var restart atomic.Bool
	requestRestart := func(reason string) {
		log.Warn().Str("reason", reason).Msg("Restart requested")
		restart.Store(true)
		cancel()
	}

	watchers := startWatchers(cfg, store.Driver(), requestRestart)
	defer func() {
		for _, w := range watchers {
			_ = w.Stop()
		}
	}()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(svc.Start)
	g.Go(func() error {
		<-gctx.Done()
		return svc.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return false, err
	}
	return restart.Load() && ctx.Err() == nil, nil
}

// startWatchers restarts on any settings change and on removal of the
// SQLite database file.
func startWatchers(cfg *config.Config, driver gorm.Driver, requestRestart func(string)) []*watcher.Watcher {
	var watchers []*watcher.Watcher

	add := func(path string, onChange func(watcher.Change)) {
		w, err := watcher.New(path, onChange)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to create file watcher")
			return
		}
		if err := w.Start(); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to start file watcher")
			return
		}
		log.Info().Str("path", path).Msg("File watcher started")
		watchers = append(watchers, w)
	}

	add(config.SettingsPath(), func(c watcher.Change) {
		requestRestart("settings " + c.String())
	})

	if driver == gorm.DriverSQLite {
		add(cfg.DBPath, func(c watcher.Change) {
			if c == watcher.Removed {
				requestRestart("database removed")
			}
		})
	}
	return watchers
}
