package handler

import (
	"encoding/json"
	"errors"
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

	"eventgate/internal/catalog/handler/mocks"
	"eventgate/internal/catalog/models"
	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type CatalogHandlerSuite struct {
	suite.Suite
}

func TestCatalogHandlerSuite(t *testing.T) {
	suite.Run(t, new(CatalogHandlerSuite))
}

func newTestRouter(t *testing.T, p *domain.Principal) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if p != nil {
				req = req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
			}
			next.ServeHTTP(w, req)
		})
	})
	h.RegisterPublic(r)
	h.Register(r)
	h.RegisterAdmin(r)
	return r, svc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var (
	admin  = &domain.Principal{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}
	member = &domain.Principal{ID: "u1", Role: domain.RoleUser, Perks: domain.NewSet("videos-extra"), IsActive: true}
)

func (s *CatalogHandlerSuite) TestUpcoming() {
	s.T().Run("default limit is left to the service", func(t *testing.T) {
		r, svc := newTestRouter(t, nil)
		capacity := 30
		svc.EXPECT().UpcomingEvents(gomock.Any(), 0).Return([]models.UpcomingEvent{{
			ID:       "workshop-2024",
			Name:     "Workshop",
			Date:     time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC),
			Capacity: &capacity,
			Count:    models.EventCount{Attendees: 2},
		}}, nil)

		rec := do(r, http.MethodGet, "/events/upcoming", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, map[string]any{"attendees": float64(2)}, body[0]["_count"])
		assert.NotContains(t, body[0], "attendees")
	})

	s.T().Run("explicit limit", func(t *testing.T) {
		r, svc := newTestRouter(t, nil)
		svc.EXPECT().UpcomingEvents(gomock.Any(), 2).Return([]models.UpcomingEvent{}, nil)
		rec := do(r, http.MethodGet, "/events/upcoming?limit=2", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func (s *CatalogHandlerSuite) TestViewContent() {
	s.T().Run("allowed", func(t *testing.T) {
		r, svc := newTestRouter(t, member)
		svc.EXPECT().ViewContent(gomock.Any(), member, "video-1").
			Return(&domain.ContentItem{ID: "video-1", Title: "Extra", Type: domain.ContentPDF, URL: "/v.pdf"}, nil)
		rec := do(r, http.MethodGet, "/content/video-1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body models.ContentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "video-1", body.Content.ID)
	})

	s.T().Run("denied", func(t *testing.T) {
		r, svc := newTestRouter(t, member)
		svc.EXPECT().ViewContent(gomock.Any(), member, "cert").
			Return(nil, dErrors.New(dErrors.CodeForbidden, "a required perk is missing"))
		rec := do(r, http.MethodGet, "/content/cert", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NotContains(t, rec.Body.String(), "url")
	})

	s.T().Run("unknown", func(t *testing.T) {
		r, svc := newTestRouter(t, member)
		svc.EXPECT().ViewContent(gomock.Any(), member, "nope").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "content not found"))
		rec := do(r, http.MethodGet, "/content/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	s.T().Run("anonymous", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)
		rec := do(r, http.MethodGet, "/content/video-1", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func (s *CatalogHandlerSuite) TestPerkRoutes() {
	s.T().Run("create returns 201", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().CreatePerk(gomock.Any(), models.CreatePerkRequest{ID: "certificado", Name: "Certificado", Type: "certificate"}).
			Return(&domain.Perk{ID: "certificado", Name: "Certificado", Type: domain.PerkCertificate}, nil)
		rec := do(r, http.MethodPost, "/admin/perks", `{"id":"certificado","name":"Certificado","type":"certificate"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"certificado"`)
	})

	s.T().Run("unknown fields are rejected", func(t *testing.T) {
		r, _ := newTestRouter(t, admin)
		rec := do(r, http.MethodPost, "/admin/perks", `{"name":"x","color":"red"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	s.T().Run("conflict", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().CreatePerk(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "id already in use"))
		rec := do(r, http.MethodPost, "/admin/perks", `{"id":"certificado","name":"Certificado"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	s.T().Run("partial update", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().UpdatePerk(gomock.Any(), "certificado", gomock.Any()).
			DoAndReturn(func(_ any, _ string, req models.UpdatePerkRequest) (*domain.Perk, error) {
				require.NotNil(t, req.Name)
				assert.Equal(t, "Renamed", *req.Name)
				assert.Nil(t, req.Type)
				return &domain.Perk{ID: "certificado", Name: "Renamed"}, nil
			})
		rec := do(r, http.MethodPut, "/admin/perks/certificado", `{"name":"Renamed"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	s.T().Run("delete", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().DeletePerk(gomock.Any(), "certificado").Return(nil)
		rec := do(r, http.MethodDelete, "/admin/perks/certificado", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"perk deleted"}`, rec.Body.String())
	})

	s.T().Run("store failure hides detail", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().ListPerks(gomock.Any()).
			Return(nil, dErrors.Wrap(errors.New("connection reset"), dErrors.CodeInternal, "failed to list perks"))
		rec := do(r, http.MethodGet, "/admin/perks", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})
}

func (s *CatalogHandlerSuite) TestEventRoutes() {
	s.T().Run("create", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req models.CreateEventRequest) (*domain.Event, error) {
				assert.Equal(t, "Workshop", req.Name)
				assert.Equal(t, 2030, req.Date.Year())
				return &domain.Event{ID: "e1", Name: req.Name, Date: req.Date, Location: req.Location}, nil
			})
		rec := do(r, http.MethodPost, "/admin/events",
			`{"name":"Workshop","location":"Sala 1","date":"2030-03-01T10:00:00Z"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	s.T().Run("get missing", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().GetEvent(gomock.Any(), "nope").Return(nil, dErrors.New(dErrors.CodeNotFound, "event not found"))
		rec := do(r, http.MethodGet, "/admin/events/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	s.T().Run("add attendee", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().AddAttendee(gomock.Any(), "e1", "u1").
			Return(&domain.Event{ID: "e1", Attendees: []string{"u1"}}, nil)
		rec := do(r, http.MethodPost, "/admin/events/e1/attendees", `{"userId":"u1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"attendees":["u1"]`)
	})

	s.T().Run("remove attendee", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().RemoveAttendee(gomock.Any(), "e1", "u1").
			Return(&domain.Event{ID: "e1", Attendees: []string{}}, nil)
		rec := do(r, http.MethodDelete, "/admin/events/e1/attendees/u1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	s.T().Run("delete", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().DeleteEvent(gomock.Any(), "e1").Return(nil)
		rec := do(r, http.MethodDelete, "/admin/events/e1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func (s *CatalogHandlerSuite) TestContentRoutes() {
	s.T().Run("create", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().CreateContent(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req models.CreateContentRequest) (*domain.ContentItem, error) {
				assert.Equal(t, []string{"material-digital"}, req.RequiredPerks)
				return &domain.ContentItem{ID: "c1", Title: req.Title, Type: domain.ContentPDF, URL: req.URL, RequiredPerks: req.RequiredPerks}, nil
			})
		rec := do(r, http.MethodPost, "/admin/content",
			`{"title":"Slides","type":"pdf","url":"/slides.pdf","requiredPerks":["material-digital"]}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	s.T().Run("validation error", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().CreateContent(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "url is required for pdf content"))
		rec := do(r, http.MethodPost, "/admin/content", `{"title":"Slides","type":"pdf"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	s.T().Run("list and get", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().ListContent(gomock.Any()).Return([]*domain.ContentItem{{ID: "c1"}}, nil)
		svc.EXPECT().GetContent(gomock.Any(), "c1").Return(&domain.ContentItem{ID: "c1"}, nil)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin/content", "").Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin/content/c1", "").Code)
	})

	s.T().Run("update and delete", func(t *testing.T) {
		r, svc := newTestRouter(t, admin)
		svc.EXPECT().UpdateContent(gomock.Any(), "c1", gomock.Any()).Return(&domain.ContentItem{ID: "c1", Title: "New"}, nil)
		svc.EXPECT().DeleteContent(gomock.Any(), "c1").Return(nil)
		assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/admin/content/c1", `{"title":"New"}`).Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/admin/content/c1", "").Code)
	})
}
