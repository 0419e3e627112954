package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/checkin/models"
	"eventgate/internal/decision"
	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/platform/httputil"
	"eventgate/pkg/requestcontext"
)

const defaultLogLimit = 10

// Service defines the check-in operations the handler needs.
type Service interface {
	RegisterAccess(ctx context.Context, scanner *domain.Principal, payload []byte, eventID string) (*models.AccessResult, error)
	IssueQR(ctx context.Context, p *domain.Principal) (*models.QRCode, error)
	ListAccessLogs(ctx context.Context, userID string, limit int) ([]*domain.AccessLogEntry, error)
}

type Handler struct {
	checkin Service
	logger  *slog.Logger
}

func New(checkin Service, logger *slog.Logger) *Handler {
	return &Handler{checkin: checkin, logger: logger}
}

// Register registers the session-protected check-in routes. Scanner
// authorization happens in the service so that every rejected scan is
// observed the same way.
func (h *Handler) Register(r chi.Router) {
	r.Get("/access/register", h.handleListAccessLogs)
	r.Post("/access/register", h.handleRegisterAccess)
	r.Get("/user/qr-code", h.handleQRCode)
	r.Get("/user/access-logs", h.handleListAccessLogs)
}

func (h *Handler) handleRegisterAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.RegisterAccessRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.EventID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "eventId is required"))
		return
	}

	result, err := h.checkin.RegisterAccess(ctx, requestcontext.Principal(ctx), req.Payload, req.EventID)
	if err != nil {
		h.logger.ErrorContext(ctx, "register access failed",
			"error", err,
			"event_id", req.EventID,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	if !result.Granted() {
		httputil.WriteError(w, denialError(result.Decision.Reason))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.RegisterAccessResponse{
		Success:   true,
		Message:   "Access granted",
		State:     result.State,
		AccessLog: result.Entry,
	})
}

// denialError maps a rejected scan to the HTTP error surface.
func denialError(reason decision.Reason) error {
	switch reason {
	case decision.ReasonUnauthorized:
		return dErrors.New(dErrors.CodeForbidden, "scanner is not authorized to register access")
	case decision.ReasonMalformedPayload:
		return dErrors.New(dErrors.CodeBadRequest, "invalid qr payload")
	case decision.ReasonEventNotFound:
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	case decision.ReasonAccountInactive:
		return dErrors.New(dErrors.CodeForbidden, "access denied: account inactive")
	default:
		return dErrors.New(dErrors.CodeForbidden, "access denied")
	}
}

func (h *Handler) handleQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code, err := h.checkin.IssueQR(ctx, requestcontext.Principal(ctx))
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "qr code generation failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, code)
}

func (h *Handler) handleListAccessLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	limit := defaultLogLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	logs, err := h.checkin.ListAccessLogs(ctx, userID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list access logs failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, logs)
}
