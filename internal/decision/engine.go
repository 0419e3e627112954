package decision

import (
	"context"
	"log/slog"

	"eventgate/internal/decision/metrics"
	"eventgate/internal/domain"
	"eventgate/pkg/requestcontext"
)

// Engine wraps the pure rules with metrics and debug logging. Callers that do
// not need either can use the package functions directly.
type Engine struct {
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Engine)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) ContentAccess(ctx context.Context, p *domain.Principal, c *domain.ContentItem) Decision {
	d := CanViewContent(p, c)
	e.record(ctx, "content", d, p)
	return d
}

func (e *Engine) RoleAccess(ctx context.Context, p *domain.Principal, role domain.Role) Decision {
	d := RoleDecision(p, role)
	e.record(ctx, "role", d, p)
	return d
}

func (e *Engine) record(ctx context.Context, kind string, d Decision, p *domain.Principal) {
	e.metrics.IncrementOutcome(kind, string(d.Reason))
	if d.Allowed {
		return
	}
	userID := ""
	if p != nil {
		userID = p.ID
	}
	e.logger.DebugContext(ctx, "access denied",
		"kind", kind,
		"reason", d.Reason,
		"user_id", userID,
		"request_id", requestcontext.RequestID(ctx),
	)
}
