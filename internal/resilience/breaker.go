// Package resilience guards the entity fetch with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"github.com/thebtf/recordsearch/internal/search"
	"github.com/thebtf/recordsearch/pkg/models"
)

// Config holds circuit breaker settings.
type Config struct {
	Name         string
	MinRequests  uint32        // requests in a window before the breaker may trip
	FailureRatio float64       // failure share that trips the breaker
	OpenTimeout  time.Duration // how long the breaker stays open
	HalfOpenMax  uint32        // trial calls allowed while half-open
}

func (c Config) normalize() Config {
	if c.Name == "" {
		c.Name = "entity-fetch"
	}
	if c.MinRequests == 0 {
		c.MinRequests = 5
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = 0.6
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.HalfOpenMax == 0 {
		c.HalfOpenMax = 1
	}
	return c
}

// BreakerFetcher is a search.EntityFetcher that stops calling a failing
// store until it has had time to recover.
type BreakerFetcher struct {
	inner   search.EntityFetcher
	breaker *gobreaker.CircuitBreaker[*models.EntitySet]
}

// NewBreakerFetcher wraps inner with a circuit breaker.
func NewBreakerFetcher(inner search.EntityFetcher, cfg Config) *BreakerFetcher {
	cfg = cfg.normalize()

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenMax,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		// Callers giving up is not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &BreakerFetcher{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[*models.EntitySet](settings),
	}
}

// FetchEntities calls the wrapped fetcher unless the breaker is open.
func (f *BreakerFetcher) FetchEntities(ctx context.Context, scope models.Scope) (*models.EntitySet, error) {
	return f.breaker.Execute(func() (*models.EntitySet, error) {
		return f.inner.FetchEntities(ctx, scope)
	})
}

// State returns the breaker state name.
func (f *BreakerFetcher) State() string {
	return f.breaker.State().String()
}

// IsOpen reports whether err was returned because the breaker rejected the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
