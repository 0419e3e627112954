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

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eventgate/internal/checkin/handler/mocks"
	"eventgate/internal/checkin/models"
	"eventgate/internal/checkin/qr"
	"eventgate/internal/decision"
	"eventgate/internal/domain"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type CheckinHandlerSuite struct {
	suite.Suite
}

func TestCheckinHandlerSuite(t *testing.T) {
	suite.Run(t, new(CheckinHandlerSuite))
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
	h.Register(r)
	return r, svc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var scanner = &domain.Principal{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}

func (s *CheckinHandlerSuite) TestRegisterAccess() {
	s.T().Run("granted scan returns the log entry", func(t *testing.T) {
		r, svc := newTestRouter(t, scanner)
		svc.EXPECT().RegisterAccess(gomock.Any(), scanner, gomock.Any(), "e1").
			DoAndReturn(func(_ any, _ *domain.Principal, payload []byte, _ string) (*models.AccessResult, error) {
				p, err := qr.Parse(payload)
				require.NoError(t, err)
				assert.Equal(t, "u1", p.UserID)
				return &models.AccessResult{
					State:    models.StateGranted,
					Decision: decision.Allow(),
					Entry:    &domain.AccessLogEntry{ID: "log-1", UserID: "u1", EventID: "e1", Status: domain.AccessSuccess},
				}, nil
			})

		rec := do(r, http.MethodPost, "/access/register", `{"eventId":"e1","payload":{"userId":"u1","email":"u1@example.com"}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var body models.RegisterAccessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "log-1", body.AccessLog.ID)
	})

	s.T().Run("payload sent as scanned text", func(t *testing.T) {
		r, svc := newTestRouter(t, scanner)
		svc.EXPECT().RegisterAccess(gomock.Any(), scanner, gomock.Any(), "e1").
			DoAndReturn(func(_ any, _ *domain.Principal, payload []byte, _ string) (*models.AccessResult, error) {
				_, err := qr.Parse(payload)
				assert.NoError(t, err)
				return &models.AccessResult{State: models.StateGranted, Decision: decision.Allow()}, nil
			})
		rec := do(r, http.MethodPost, "/access/register", `{"eventId":"e1","payload":"{\"userId\":\"u1\",\"email\":\"u1@example.com\"}"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	s.T().Run("missing event id is rejected before the service", func(t *testing.T) {
		r, _ := newTestRouter(t, scanner)
		rec := do(r, http.MethodPost, "/access/register", `{"payload":{}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	s.T().Run("denials map to status codes", func(t *testing.T) {
		cases := map[decision.Reason]int{
			decision.ReasonUnauthorized:     http.StatusForbidden,
			decision.ReasonMalformedPayload: http.StatusBadRequest,
			decision.ReasonEventNotFound:    http.StatusNotFound,
			decision.ReasonNotRegistered:    http.StatusForbidden,
			decision.ReasonAccountInactive:  http.StatusForbidden,
		}
		for reason, status := range cases {
			r, svc := newTestRouter(t, scanner)
			svc.EXPECT().RegisterAccess(gomock.Any(), gomock.Any(), gomock.Any(), "e1").
				Return(&models.AccessResult{State: models.StateDenied, Decision: decision.Deny(reason)}, nil)
			rec := do(r, http.MethodPost, "/access/register", `{"eventId":"e1","payload":{}}`)
			assert.Equal(t, status, rec.Code, string(reason))
		}
	})

	s.T().Run("store failure is a bare 500", func(t *testing.T) {
		r, svc := newTestRouter(t, scanner)
		svc.EXPECT().RegisterAccess(gomock.Any(), gomock.Any(), gomock.Any(), "e1").
			Return(nil, dErrors.Wrap(errors.New("dial tcp: refused"), dErrors.CodeInternal, "failed to record access"))
		rec := do(r, http.MethodPost, "/access/register", `{"eventId":"e1","payload":{}}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "refused")
	})
}

func (s *CheckinHandlerSuite) TestAccessLogs() {
	s.T().Run("default limit", func(t *testing.T) {
		r, svc := newTestRouter(t, scanner)
		svc.EXPECT().ListAccessLogs(gomock.Any(), "admin-1", 10).Return([]*domain.AccessLogEntry{{ID: "a"}}, nil)
		rec := do(r, http.MethodGet, "/user/access-logs", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var logs []domain.AccessLogEntry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
		assert.Len(t, logs, 1)
	})

	s.T().Run("explicit limit on the register route", func(t *testing.T) {
		r, svc := newTestRouter(t, scanner)
		svc.EXPECT().ListAccessLogs(gomock.Any(), "admin-1", 3).Return([]*domain.AccessLogEntry{}, nil)
		rec := do(r, http.MethodGet, "/access/register?limit=3", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	s.T().Run("anonymous", func(t *testing.T) {
		r, _ := newTestRouter(t, nil)
		rec := do(r, http.MethodGet, "/user/access-logs", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func (s *CheckinHandlerSuite) TestQRCode() {
	r, svc := newTestRouter(s.T(), scanner)
	svc.EXPECT().IssueQR(gomock.Any(), scanner).Return(&models.QRCode{
		QRCode:  "data:image/png;base64,AAAA",
		Payload: qr.Payload{UserID: "admin-1", Email: "admin@example.com"},
	}, nil)

	rec := do(r, http.MethodGet, "/user/qr-code", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("data:image/png;base64,AAAA", body["qrCode"])
}
