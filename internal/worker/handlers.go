package worker

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/hlog"

	"github.com/thebtf/recordsearch/internal/db/gorm"
	"github.com/thebtf/recordsearch/internal/search"
)

const pingTimeout = 2 * time.Second

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleHealth reports liveness and database reachability.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Health check ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"version": s.version,
		})
		return
	}

	status := "ok"
	if !s.ready.Load() {
		status = "starting"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": s.version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Service) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// handleSearchName serves the global name search. Short or unsafe queries
// return an empty result list, not an error.
func (s *Service) handleSearchName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	threshold, err := floatParam(q.Get("threshold"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid threshold")
		return
	}

	resp := s.manager.Search(r.Context(), scopeFrom(r.Context()), search.Params{
		Query:     q.Get("q"),
		Threshold: threshold,
		Limit:     limit,
	})
	writeJSON(w, http.StatusOK, resp)
}

type casesResponse struct {
	Cases     any  `json:"cases"`
	FuzzyUsed bool `json:"fuzzy_used"`
}

// handleListCases lists the caller's visible cases. With search set, every
// visible case matching the filters is ranked and the best are returned.
func (s *Service) handleListCases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	ctx := r.Context()
	scope := scopeFrom(ctx)
	filter := gorm.CaseFilter{
		Status:   strings.TrimSpace(q.Get("status")),
		Priority: strings.TrimSpace(q.Get("priority")),
	}

	term := strings.TrimSpace(q.Get("search"))
	if term == "" && limit != nil {
		filter.Limit = min(*limit, s.config.SearchMaxLimit)
	}

	cases, err := s.records.ListCases(ctx, scope, filter)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("List cases failed")
		writeError(w, http.StatusInternalServerError, "failed to list cases")
		return
	}
	if term == "" {
		writeJSON(w, http.StatusOK, casesResponse{Cases: cases})
		return
	}

	ranked := s.manager.RankCases(ctx, term, cases, nil, limit)
	writeJSON(w, http.StatusOK, casesResponse{Cases: ranked, FuzzyUsed: true})
}

func (s *Service) handleNextCaseID(w http.ResponseWriter, r *http.Request) {
	next, err := s.cases.NextCaseNumber(r.Context(), time.Now())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Next case number failed")
		writeError(w, http.StatusInternalServerError, "failed to allocate case number")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"next_id": next})
}

// intParam parses an optional integer query value; absent means nil.
func intParam(raw string) (*int, error) {
	if raw = strings.TrimSpace(raw); raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func floatParam(raw string) (*float64, error) {
	if raw = strings.TrimSpace(raw); raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
