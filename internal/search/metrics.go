package search

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/thebtf/recordsearch/internal/search"

// Search modes and outcomes reported on the request counter.
const (
	modeGlobal = "global"
	modeCases  = "cases"

	outcomeOK       = "ok"
	outcomeEmpty    = "empty"
	outcomeRejected = "rejected"
	outcomeDegraded = "degraded"
)

// Metrics records search instrumentation. A nil *Metrics records nothing.
type Metrics struct {
	requests   metric.Int64Counter
	results    metric.Int64Histogram
	candidates metric.Int64Histogram
}

// NewMetrics creates the search instruments on meter. A nil meter uses the
// global meter provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	requests, err := meter.Int64Counter("recordsearch.search.requests",
		metric.WithDescription("Search calls by mode and outcome"))
	if err != nil {
		return nil, fmt.Errorf("create requests counter: %w", err)
	}
	results, err := meter.Int64Histogram("recordsearch.search.results",
		metric.WithDescription("Results returned per search"))
	if err != nil {
		return nil, fmt.Errorf("create results histogram: %w", err)
	}
	candidates, err := meter.Int64Histogram("recordsearch.search.candidates",
		metric.WithDescription("Candidates scored per search"))
	if err != nil {
		return nil, fmt.Errorf("create candidates histogram: %w", err)
	}

	return &Metrics{requests: requests, results: results, candidates: candidates}, nil
}

func (m *Metrics) record(ctx context.Context, mode, outcome string, candidates, results int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	))
	if outcome == outcomeRejected {
		return
	}
	m.candidates.Record(ctx, int64(candidates), attrs)
	m.results.Record(ctx, int64(results), attrs)
}

func outcomeFor(n int) string {
	if n == 0 {
		return outcomeEmpty
	}
	return outcomeOK
}
