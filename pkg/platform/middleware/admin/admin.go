package admin

import (
	"log/slog"
	"net/http"

	"eventgate/internal/decision"
	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/platform/httputil"
	"eventgate/pkg/requestcontext"
)

// RequireRole admits only principals holding exactly role. It must run after
// auth.RequireAuth.
func RequireRole(role domain.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal := requestcontext.Principal(ctx)
			if principal == nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			if d := decision.RoleDecision(principal, role); !d.Allowed {
				logger.WarnContext(ctx, "role check failed",
					"user_id", principal.ID,
					"required_role", role,
					"reason", d.Reason,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, string(role)+" role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireRole(domain.RoleAdmin).
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return RequireRole(domain.RoleAdmin, logger)
}
