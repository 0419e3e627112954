package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eventgate/internal/auth"
	"eventgate/internal/auth/handler/mocks"
	"eventgate/internal/auth/models"
	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type AuthHandlerSuite struct {
	suite.Suite
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func newTestHandler(t *testing.T, secure bool) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(svc, CookieConfig{Secure: secure, TTL: 24 * time.Hour}, logger)
	r := chi.NewRouter()
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				p := &domain.Principal{ID: "u1", Email: "ana@example.com", Role: domain.RoleUser,
					Perks: domain.NewSet("vip"), IsActive: true}
				next.ServeHTTP(w, req.WithContext(requestcontext.WithPrincipal(req.Context(), p)))
			})
		})
		h.Register(r)
	})
	return r, svc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *AuthHandlerSuite) TestLogin() {
	s.T().Run("sets the session cookie and returns the token", func(t *testing.T) {
		r, svc := newTestHandler(t, true)
		expires := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
		svc.EXPECT().Login(gomock.Any(), "ana@example.com", "secret1").Return(&models.LoginResult{
			Principal: &domain.Principal{ID: "u1", Email: "ana@example.com", Role: domain.RoleUser, IsActive: true},
			Session:   models.Session{Token: "tok", ExpiresAt: expires},
		}, nil)

		rec := do(r, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"secret1"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "tok", body["token"])
		assert.Equal(t, "u1", body["user"].(map[string]any)["id"])

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, "token", c.Name)
		assert.Equal(t, "tok", c.Value)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, 86400, c.MaxAge)
	})

	s.T().Run("bad credentials are a generic 401", func(t *testing.T) {
		r, svc := newTestHandler(t, false)
		svc.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, auth.NewError(auth.ReasonInactive, nil))

		rec := do(r, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"x"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "unauthorized", body["error"])
		assert.Equal(t, "invalid email or password", body["error_description"])
		assert.Empty(t, rec.Result().Cookies())
	})

	s.T().Run("missing fields are 400 without calling the service", func(t *testing.T) {
		r, _ := newTestHandler(t, false)
		rec := do(r, http.MethodPost, "/auth/login", `{"email":"ana@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	s.T().Run("malformed json is 400", func(t *testing.T) {
		r, _ := newTestHandler(t, false)
		rec := do(r, http.MethodPost, "/auth/login", `{bad`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func (s *AuthHandlerSuite) TestRegister() {
	s.T().Run("created user has no password in the body", func(t *testing.T) {
		r, svc := newTestHandler(t, false)
		svc.EXPECT().Register(gomock.Any(), models.RegisterRequest{Email: "bea@example.com", Password: "secret1", Name: "Bea"}).
			Return(&domain.User{ID: "u2", Email: "bea@example.com", Name: "Bea", PasswordHash: "hash", Role: domain.RoleUser, IsActive: true}, nil)

		rec := do(r, http.MethodPost, "/auth/register", `{"email":"bea@example.com","password":"secret1","name":"Bea"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), "hash")
		assert.NotContains(t, rec.Body.String(), "password")
	})

	s.T().Run("conflict maps to 409", func(t *testing.T) {
		r, svc := newTestHandler(t, false)
		svc.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeConflict, "user already exists"))

		rec := do(r, http.MethodPost, "/auth/register", `{"email":"bea@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func (s *AuthHandlerSuite) TestLogoutClearsCookie() {
	r, _ := newTestHandler(s.T(), false)
	rec := do(r, http.MethodPost, "/auth/logout", "")

	s.Equal(http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal("", cookies[0].Value)
	s.Less(cookies[0].MaxAge, 0)
}

func (s *AuthHandlerSuite) TestSetup() {
	s.T().Run("second setup conflicts", func(t *testing.T) {
		r, svc := newTestHandler(t, false)
		svc.EXPECT().BootstrapAdmin(gomock.Any(), gomock.Any()).Return(nil, dErrors.New(dErrors.CodeConflict, "setup already completed"))

		rec := do(r, http.MethodPost, "/setup", `{"email":"root@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func (s *AuthHandlerSuite) TestMe() {
	r, _ := newTestHandler(s.T(), false)
	rec := do(r, http.MethodGet, "/auth/me", "")

	s.Equal(http.StatusOK, rec.Code)
	user := decode(s.T(), rec)["user"].(map[string]any)
	s.Equal("u1", user["id"])
	s.Equal([]any{"vip"}, user["perks"])
}

func (s *AuthHandlerSuite) TestProfile() {
	s.T().Run("passes the limit through", func(t *testing.T) {
		r, svc := newTestHandler(t, false)
		svc.EXPECT().Profile(gomock.Any(), "u1", 3).Return(&models.Profile{
			User:       domain.UserView{ID: "u1"},
			AccessLogs: []*domain.AccessLogEntry{},
		}, nil)

		rec := do(r, http.MethodGet, "/user/profile?limit=3", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	s.T().Run("internal errors hide their detail", func(t *testing.T) {
		r, svc := newTestHandler(t, false)
		svc.EXPECT().Profile(gomock.Any(), "u1", 10).Return(nil, dErrors.Wrap(context.DeadlineExceeded, dErrors.CodeInternal, "failed to load user"))

		rec := do(r, http.MethodGet, "/user/profile?limit=abc", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "failed to load user")
	})
}
