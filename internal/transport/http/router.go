package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventgate/internal/platform/metrics"
	"eventgate/internal/platform/middleware"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/platform/httputil"
	adminmw "eventgate/pkg/platform/middleware/admin"
	authmw "eventgate/pkg/platform/middleware/auth"
	"eventgate/pkg/platform/middleware/device"
	"eventgate/pkg/platform/middleware/metadata"
	"eventgate/pkg/platform/middleware/requesttime"
)

type PublicRoutes interface {
	RegisterPublic(r chi.Router)
}

// SessionRoutes are mounted behind session resolution.
type SessionRoutes interface {
	Register(r chi.Router)
}

// AdminRoutes are mounted behind session resolution and the admin role check.
type AdminRoutes interface {
	RegisterAdmin(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config carries everything the router wires. RateLimit, Metrics, Gatherer
// and Health are optional. TrustProxyHeaders is forwarded to the client
// metadata middleware.
type Config struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Resolver  authmw.SessionResolver
	Devices   device.Describer
	RateLimit func(http.Handler) http.Handler
	Health    map[string]HealthCheck

	TrustProxyHeaders bool

	Public  []PublicRoutes
	Session []SessionRoutes
	Admin   []AdminRoutes
}

// NewRouter builds the chi router. Middleware order matters: request ids
// first so every log line carries one, client metadata before device
// detection, and the rate limiter after logging so rejections are logged.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(metadata.ClientMetadata(cfg.TrustProxyHeaders))
	if cfg.Devices != nil {
		r.Use(device.Middleware(cfg.Devices))
	}
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(logger, cfg.Metrics))
	if cfg.RateLimit != nil {
		r.Use(cfg.RateLimit)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{Error: "method_not_allowed"})
	})

	r.Get("/health", healthHandler(cfg.Health, logger))
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	for _, h := range cfg.Public {
		h.RegisterPublic(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(cfg.Resolver, logger))
		for _, h := range cfg.Session {
			h.Register(r)
		}
		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdmin(logger))
			for _, h := range cfg.Admin {
				h.RegisterAdmin(r)
			}
		})
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "check", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
