package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"eventgate/internal/catalog/models"
	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/platform/httputil"
	"eventgate/pkg/requestcontext"
)

// Service defines the catalog operations the handler needs.
type Service interface {
	ListPerks(ctx context.Context) ([]*domain.Perk, error)
	GetPerk(ctx context.Context, id string) (*domain.Perk, error)
	CreatePerk(ctx context.Context, req models.CreatePerkRequest) (*domain.Perk, error)
	UpdatePerk(ctx context.Context, id string, req models.UpdatePerkRequest) (*domain.Perk, error)
	DeletePerk(ctx context.Context, id string) error

	ListEvents(ctx context.Context) ([]*domain.Event, error)
	UpcomingEvents(ctx context.Context, limit int) ([]models.UpcomingEvent, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	CreateEvent(ctx context.Context, req models.CreateEventRequest) (*domain.Event, error)
	UpdateEvent(ctx context.Context, id string, req models.UpdateEventRequest) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	AddAttendee(ctx context.Context, eventID, userID string) (*domain.Event, error)
	RemoveAttendee(ctx context.Context, eventID, userID string) (*domain.Event, error)

	ListContent(ctx context.Context) ([]*domain.ContentItem, error)
	GetContent(ctx context.Context, id string) (*domain.ContentItem, error)
	ViewContent(ctx context.Context, p *domain.Principal, id string) (*domain.ContentItem, error)
	CreateContent(ctx context.Context, req models.CreateContentRequest) (*domain.ContentItem, error)
	UpdateContent(ctx context.Context, id string, req models.UpdateContentRequest) (*domain.ContentItem, error)
	DeleteContent(ctx context.Context, id string) error
}

type Handler struct {
	catalog Service
	logger  *slog.Logger
}

func New(catalog Service, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/events/upcoming", h.handleUpcoming)
}

// Register registers routes for any signed-in principal.
func (h *Handler) Register(r chi.Router) {
	r.Get("/content/{id}", h.handleViewContent)
}

// RegisterAdmin registers catalog management routes. The caller mounts them
// behind the admin role check.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/admin/perks", func(r chi.Router) {
		r.Get("/", h.handleListPerks)
		r.Post("/", h.handleCreatePerk)
		r.Get("/{id}", h.handleGetPerk)
		r.Put("/{id}", h.handleUpdatePerk)
		r.Patch("/{id}", h.handleUpdatePerk)
		r.Delete("/{id}", h.handleDeletePerk)
	})
	r.Route("/admin/events", func(r chi.Router) {
		r.Get("/", h.handleListEvents)
		r.Post("/", h.handleCreateEvent)
		r.Get("/{id}", h.handleGetEvent)
		r.Put("/{id}", h.handleUpdateEvent)
		r.Delete("/{id}", h.handleDeleteEvent)
		r.Post("/{id}/attendees", h.handleAddAttendee)
		r.Delete("/{id}/attendees/{userID}", h.handleRemoveAttendee)
	})
	r.Route("/admin/content", func(r chi.Router) {
		r.Get("/", h.handleListContent)
		r.Post("/", h.handleCreateContent)
		r.Get("/{id}", h.handleGetContent)
		r.Put("/{id}", h.handleUpdateContent)
		r.Delete("/{id}", h.handleDeleteContent)
	})
}

func (h *Handler) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.catalog.UpcomingEvents(r.Context(), limit)
	h.respond(w, r, http.StatusOK, events, err)
}

func (h *Handler) handleViewContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := requestcontext.Principal(ctx)
	if p == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	item, err := h.catalog.ViewContent(ctx, p, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ContentResponse{Success: true, Content: item})
}

// -----------------------------------------------------------------------------
// Perks
// -----------------------------------------------------------------------------

func (h *Handler) handleListPerks(w http.ResponseWriter, r *http.Request) {
	perks, err := h.catalog.ListPerks(r.Context())
	h.respond(w, r, http.StatusOK, perks, err)
}

func (h *Handler) handleGetPerk(w http.ResponseWriter, r *http.Request) {
	perk, err := h.catalog.GetPerk(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, perk, err)
}

func (h *Handler) handleCreatePerk(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePerkRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	perk, err := h.catalog.CreatePerk(r.Context(), req)
	h.respond(w, r, http.StatusCreated, perk, err)
}

func (h *Handler) handleUpdatePerk(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePerkRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	perk, err := h.catalog.UpdatePerk(r.Context(), chi.URLParam(r, "id"), req)
	h.respond(w, r, http.StatusOK, perk, err)
}

func (h *Handler) handleDeletePerk(w http.ResponseWriter, r *http.Request) {
	err := h.catalog.DeletePerk(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, map[string]string{"message": "perk deleted"}, err)
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.catalog.ListEvents(r.Context())
	h.respond(w, r, http.StatusOK, events, err)
}

func (h *Handler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.catalog.GetEvent(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, event, err)
}

func (h *Handler) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	event, err := h.catalog.CreateEvent(r.Context(), req)
	h.respond(w, r, http.StatusCreated, event, err)
}

func (h *Handler) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	event, err := h.catalog.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req)
	h.respond(w, r, http.StatusOK, event, err)
}

func (h *Handler) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	err := h.catalog.DeleteEvent(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, map[string]string{"message": "event deleted"}, err)
}

func (h *Handler) handleAddAttendee(w http.ResponseWriter, r *http.Request) {
	var req models.AttendeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	event, err := h.catalog.AddAttendee(r.Context(), chi.URLParam(r, "id"), req.UserID)
	h.respond(w, r, http.StatusOK, event, err)
}

func (h *Handler) handleRemoveAttendee(w http.ResponseWriter, r *http.Request) {
	event, err := h.catalog.RemoveAttendee(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	h.respond(w, r, http.StatusOK, event, err)
}

// -----------------------------------------------------------------------------
// Content
// -----------------------------------------------------------------------------

func (h *Handler) handleListContent(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListContent(r.Context())
	h.respond(w, r, http.StatusOK, items, err)
}

func (h *Handler) handleGetContent(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.GetContent(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, item, err)
}

func (h *Handler) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	item, err := h.catalog.CreateContent(r.Context(), req)
	h.respond(w, r, http.StatusCreated, item, err)
}

func (h *Handler) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateContentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	item, err := h.catalog.UpdateContent(r.Context(), chi.URLParam(r, "id"), req)
	h.respond(w, r, http.StatusOK, item, err)
}

func (h *Handler) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	err := h.catalog.DeleteContent(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, http.StatusOK, map[string]string{"message": "content deleted"}, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, status, v)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "catalog request failed", "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}
