package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/auth/models"
	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/platform/httputil"
	authmw "eventgate/pkg/platform/middleware/auth"
	"eventgate/pkg/requestcontext"
)

// Service defines the auth operations the handler needs.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (*domain.User, error)
	BootstrapAdmin(ctx context.Context, req models.CreateUserRequest) (*domain.User, error)
	Profile(ctx context.Context, userID string, logLimit int) (*models.Profile, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

type Handler struct {
	auth   Service
	cookie CookieConfig
	logger *slog.Logger
}

func New(auth Service, cookie CookieConfig, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, cookie: cookie, logger: logger}
}

// RegisterPublic registers the unauthenticated routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/logout", h.handleLogout)
	r.Post("/setup", h.handleSetup)
}

// Register registers the routes that need a session.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/me", h.handleMe)
	r.Get("/user/profile", h.handleProfile)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "email and password are required"))
		return
	}

	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.logger.ErrorContext(ctx, "login failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Session.Token, int(h.cookie.TTL.Seconds())))
	httputil.WriteJSON(w, http.StatusOK, models.LoginResponse{
		User:      models.NewPrincipalView(result.Principal),
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(r.Context(), w, "registration failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"user": user.View()})
}

func (h *Handler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, err := h.auth.BootstrapAdmin(r.Context(), req)
	if err != nil {
		h.writeServiceError(r.Context(), w, "setup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"user": user.View()})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p := requestcontext.Principal(r.Context())
	if p == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": models.NewPrincipalView(p)})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	profile, err := h.auth.Profile(ctx, userID, queryLimit(r, 10))
	if err != nil {
		h.writeServiceError(ctx, w, "profile lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     authmw.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// queryLimit reads ?limit=, falling back to def for missing or invalid values.
func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
