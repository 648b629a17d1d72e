package search

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/recordsearch/pkg/models"
)

// EntityFetcher returns the searchable entities visible to a scope.
type EntityFetcher interface {
	FetchEntities(ctx context.Context, scope models.Scope) (*models.EntitySet, error)
}

// Params contains parameters for a global search.
// A nil or negative Threshold or Limit selects the manager default; zero is
// taken as given, so Threshold 0 keeps every scored candidate.
type Params struct {
	Threshold *float64
	Limit     *int
	Query     string
}

// Response is the outcome of a global search.
type Response struct {
	Query      string                `json:"query"`
	Variants   []string              `json:"variants,omitempty"`
	Results    []models.ScoredResult `json:"results"`
	Candidates int                   `json:"candidates"`
	// Degraded is set when the entity fetch failed or scoring panicked and
	// the empty result does not reflect the data.
	Degraded bool `json:"degraded,omitempty"`
}

// Manager is the boundary between request handlers and the search core.
// It never returns an error: failures degrade to an empty result.
type Manager struct {
	fetcher   EntityFetcher
	metrics   *Metrics
	threshold float64
	limit     int
	maxLimit  int
}

// Option configures a Manager.
type Option func(*Manager)

// WithDefaults overrides the default threshold, default limit and maximum limit.
// Non-positive values keep the built-in defaults.
func WithDefaults(threshold float64, limit, maxLimit int) Option {
	return func(m *Manager) {
		if threshold > 0 {
			m.threshold = min(threshold, 100)
		}
		if maxLimit > 0 {
			m.maxLimit = maxLimit
		}
		if limit > 0 {
			m.limit = min(limit, m.maxLimit)
		}
	}
}

// WithMetrics records search instrumentation on metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager creates a new search manager over fetcher.
func NewManager(fetcher EntityFetcher, opts ...Option) *Manager {
	m := &Manager{
		fetcher:   fetcher,
		threshold: DefaultThreshold,
		limit:     DefaultLimit,
		maxLimit:  MaxLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// clamp applies the defaults and bounds to a threshold and limit.
func (m *Manager) clamp(threshold *float64, limit *int) (float64, int) {
	t, l := m.threshold, m.limit
	if threshold != nil && *threshold >= 0 {
		t = min(*threshold, 100)
	}
	if limit != nil && *limit >= 0 {
		l = *limit
	}
	return t, min(l, m.maxLimit)
}

// Search runs a global search over everything scope can see.
func (m *Manager) Search(ctx context.Context, scope models.Scope, params Params) (resp *Response) {
	threshold, limit := m.clamp(params.Threshold, params.Limit)
	q := ParseQuery(params.Query)
	resp = &Response{Query: q.Text, Results: []models.ScoredResult{}}

	if !ValidateQuery(q.Text) {
		m.metrics.record(ctx, modeGlobal, outcomeRejected, 0, 0)
		return resp
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Int64("station_id", scope.StationID).
				Msg("Search panicked, returning no matches")
			resp = &Response{Query: q.Text, Results: []models.ScoredResult{}, Degraded: true}
			m.metrics.record(ctx, modeGlobal, outcomeDegraded, 0, 0)
		}
	}()

	set, err := m.fetcher.FetchEntities(ctx, scope)
	if err != nil {
		log.Warn().
			Err(err).
			Int64("station_id", scope.StationID).
			Msg("Entity fetch failed, returning no matches")
		resp.Degraded = true
		m.metrics.record(ctx, modeGlobal, outcomeDegraded, 0, 0)
		return resp
	}

	candidates := EnumerateCandidates(set)
	resp.Variants = q.Variants
	resp.Candidates = len(candidates)
	resp.Results = GlobalSearch(q.Text, candidates, threshold, limit)

	log.Debug().
		Int64("station_id", scope.StationID).
		Str("script", string(q.Script)).
		Int("candidates", len(candidates)).
		Int("results", len(resp.Results)).
		Msg("Search completed")
	m.metrics.record(ctx, modeGlobal, outcomeFor(len(resp.Results)), len(candidates), len(resp.Results))
	return resp
}

// RankCases ranks an already scoped case list with the token-sort scorer.
func (m *Manager) RankCases(ctx context.Context, query string, cases []models.CaseRecord, threshold *float64, limit *int) (ranked []models.ScoredCase) {
	t, l := m.clamp(threshold, limit)
	if !ValidateQuery(query) {
		m.metrics.record(ctx, modeCases, outcomeRejected, 0, 0)
		return []models.ScoredCase{}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Case ranking panicked, returning no matches")
			ranked = []models.ScoredCase{}
			m.metrics.record(ctx, modeCases, outcomeDegraded, 0, 0)
		}
	}()

	ranked = RankCases(query, cases, t, l)
	m.metrics.record(ctx, modeCases, outcomeFor(len(ranked)), len(cases), len(ranked))
	return ranked
}
