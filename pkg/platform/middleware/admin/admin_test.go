package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"eventgate/internal/domain"
	"eventgate/pkg/requestcontext"
)

func TestRequireRole(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name      string
		principal *domain.Principal
		required  domain.Role
		want      int
	}{
		{"no principal", nil, domain.RoleAdmin, http.StatusUnauthorized},
		{"admin passes admin", &domain.Principal{ID: "a", Role: domain.RoleAdmin, IsActive: true}, domain.RoleAdmin, http.StatusNoContent},
		{"staff blocked from admin", &domain.Principal{ID: "s", Role: domain.RoleStaff, IsActive: true}, domain.RoleAdmin, http.StatusForbidden},
		{"admin does not inherit staff", &domain.Principal{ID: "a", Role: domain.RoleAdmin, IsActive: true}, domain.RoleStaff, http.StatusForbidden},
		{"inactive admin blocked", &domain.Principal{ID: "a", Role: domain.RoleAdmin}, domain.RoleAdmin, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if tt.principal != nil {
				req = req.WithContext(requestcontext.WithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()
			RequireRole(tt.required, logger)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
