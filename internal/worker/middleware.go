package worker

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/recordsearch/pkg/models"
)

// Request headers carrying identity from the fronting application.
const (
	HeaderRequestID   = "X-Request-Id"
	HeaderStationID   = "X-Station-Id"
	HeaderOfficerID   = "X-Officer-Id"
	HeaderOfficerRole = "X-Officer-Role"
)

type scopeContextKey struct{}

func (s *Service) useMiddleware(r chi.Router) {
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestID)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)
}

// requestID propagates or assigns X-Request-Id and tags the request logger with it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		logger := zerolog.Ctx(r.Context())
		logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", id)
		})
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	var event *zerolog.Event
	logger := hlog.FromRequest(r)
	switch {
	case status >= 500:
		event = logger.Error()
	case status >= 400:
		event = logger.Warn()
	default:
		event = logger.Debug()
	}
	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("bytes", size).
		Dur("duration", duration).
		Str("remote_addr", r.RemoteAddr).
		Msg("http_request")
}

// requireReady rejects requests until the service is started.
func (s *Service) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeError(w, http.StatusServiceUnavailable, "service not ready")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireScope reads the caller's station, officer and role. A missing or
// malformed station is unauthorized; a role outside AllowedRoles is forbidden.
func (s *Service) requireScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ok := parseScope(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing or invalid station scope")
			return
		}
		if !s.config.RoleAllowed(string(scope.Role)) {
			writeError(w, http.StatusForbidden, "role not allowed")
			return
		}

		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Int64("station_id", scope.StationID).Str("role", string(scope.Role))
		})
		ctx := context.WithValue(r.Context(), scopeContextKey{}, scope)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseScope(r *http.Request) (models.Scope, bool) {
	station, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderStationID)), 10, 64)
	if err != nil || station <= 0 {
		return models.Scope{}, false
	}

	var officer int64
	if raw := strings.TrimSpace(r.Header.Get(HeaderOfficerID)); raw != "" {
		officer, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || officer < 0 {
			return models.Scope{}, false
		}
	}

	role := models.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderOfficerRole))))
	return models.Scope{StationID: station, OfficerID: officer, Role: role}, true
}

// scopeFrom returns the scope stored by requireScope.
func scopeFrom(ctx context.Context) models.Scope {
	scope, _ := ctx.Value(scopeContextKey{}).(models.Scope)
	return scope
}

// rateLimit sheds search load with 429 once the shared token bucket is empty.
func (s *Service) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
