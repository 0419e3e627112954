package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"eventgate/internal/checkin/metrics"
	"eventgate/internal/checkin/models"
	"eventgate/internal/checkin/qr"
	"eventgate/internal/checkin/service/mocks"
	"eventgate/internal/decision"
	"eventgate/internal/domain"
	"eventgate/internal/storage"
	"eventgate/internal/storage/memory"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/platform/audit"
	"eventgate/pkg/platform/sentinel"
	"eventgate/pkg/requestcontext"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func admin() *domain.Principal {
	return &domain.Principal{ID: "admin-1", Role: domain.RoleAdmin, IsActive: true}
}

func payload(userID, email string) []byte {
	return []byte(fmt.Sprintf(`{"userId":%q,"email":%q,"name":"Test","timestamp":"2026-05-01T09:00:00Z"}`, userID, email))
}

// CheckinScenarioSuite drives the service against the in-memory document
// store so log counts are observed through the real repository.
type CheckinScenarioSuite struct {
	suite.Suite
	ctx    context.Context
	users  *storage.UserRepository
	events *storage.EventRepository
	logs   *storage.AccessLogRepository
	svc    *Service
}

func TestCheckinScenarioSuite(t *testing.T) {
	suite.Run(t, new(CheckinScenarioSuite))
}

func (s *CheckinScenarioSuite) SetupTest() {
	docs := memory.New()
	s.users = storage.NewUserRepository(docs)
	s.events = storage.NewEventRepository(docs)
	s.logs = storage.NewAccessLogRepository(docs)
	s.svc = New(s.events, s.users, s.logs)
	s.ctx = requestcontext.WithTime(context.Background(), now)

	for _, u := range []*domain.User{
		{ID: "u1", Email: "u1@example.com", Role: domain.RoleUser, IsActive: true, CreatedAt: now},
		{ID: "u2", Email: "u2@example.com", Role: domain.RoleUser, IsActive: true, CreatedAt: now},
		{ID: "u3", Email: "u3@example.com", Role: domain.RoleUser, IsActive: false, CreatedAt: now},
	} {
		s.Require().NoError(s.users.Create(s.ctx, u))
	}
	s.Require().NoError(s.events.Create(s.ctx, &domain.Event{
		ID: "future", Name: "Workshop 2024", Date: now.Add(24 * time.Hour),
		Attendees: []string{"u1", "u3"}, IsActive: true, CreatedAt: now,
	}))
	s.Require().NoError(s.events.Create(s.ctx, &domain.Event{
		ID: "past", Name: "Kickoff", Date: now.Add(-24 * time.Hour),
		Attendees: []string{"u1"}, IsActive: true, CreatedAt: now,
	}))
}

func (s *CheckinScenarioSuite) logCount(eventID string) int {
	entries, err := s.logs.ListByEvent(s.ctx, eventID)
	s.Require().NoError(err)
	return len(entries)
}

func (s *CheckinScenarioSuite) TestRegisteredAttendeeIsGranted() {
	res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u1", "u1@example.com"), "future")
	s.Require().NoError(err)

	s.True(res.Granted())
	s.Equal(models.StateGranted, res.State)
	s.Equal(decision.Allow(), res.Decision)
	s.Equal("Workshop 2024", res.EventName)

	entries, err := s.logs.ListByEvent(s.ctx, "future")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(domain.AccessSuccess, entries[0].Status)
	s.Equal("u1", entries[0].UserID)
	s.Equal("Workshop 2024", entries[0].EventName)
	s.Equal("admin-1", entries[0].ScannedBy)
	s.True(now.Equal(entries[0].Timestamp))
}

func (s *CheckinScenarioSuite) TestUnregisteredAttendeeIsDeniedAndLogged() {
	res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u2", "u2@example.com"), "future")
	s.Require().NoError(err)

	s.Equal(models.StateDenied, res.State)
	s.Equal(decision.Deny(decision.ReasonNotRegistered), res.Decision)

	entries, err := s.logs.ListByEvent(s.ctx, "future")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(domain.AccessDenied, entries[0].Status)
}

func (s *CheckinScenarioSuite) TestPastEventIsDeniedAndLogged() {
	res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u1", "u1@example.com"), "past")
	s.Require().NoError(err)

	s.Equal(decision.Deny(decision.ReasonNotRegistered), res.Decision)
	s.Require().NotNil(res.Entry)
	s.Equal(domain.AccessDenied, res.Entry.Status)
	s.Equal(1, s.logCount("past"))
}

func (s *CheckinScenarioSuite) TestEventExactlyNowIsExpired() {
	s.Require().NoError(s.events.Create(s.ctx, &domain.Event{
		ID: "now", Name: "Now", Date: now, Attendees: []string{"u1"}, IsActive: true, CreatedAt: now,
	}))
	res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u1", "u1@example.com"), "now")
	s.Require().NoError(err)
	s.Equal(decision.ReasonNotRegistered, res.Decision.Reason)
}

func (s *CheckinScenarioSuite) TestScannerMustBeActiveAdmin() {
	scanners := map[string]*domain.Principal{
		"nil":            nil,
		"user":           {ID: "x", Role: domain.RoleUser, IsActive: true},
		"staff":          {ID: "x", Role: domain.RoleStaff, IsActive: true},
		"inactive admin": {ID: "x", Role: domain.RoleAdmin, IsActive: false},
	}
	for name, scanner := range scanners {
		s.Run(name, func() {
			before := s.logCount("future")
			res, err := s.svc.RegisterAccess(s.ctx, scanner, payload("u1", "u1@example.com"), "future")
			s.Require().NoError(err)
			s.Equal(models.StateDenied, res.State)
			s.Equal(decision.Deny(decision.ReasonUnauthorized), res.Decision)
			s.Nil(res.Entry)
			s.Equal(before, s.logCount("future"))
		})
	}
}

func (s *CheckinScenarioSuite) TestMalformedPayloadLogsNothing() {
	for _, raw := range []string{``, `not-json`, `{"userId":"u1"}`, `{"email":"u1@example.com"}`} {
		res, err := s.svc.RegisterAccess(s.ctx, admin(), []byte(raw), "future")
		s.Require().NoError(err)
		s.Equal(decision.Deny(decision.ReasonMalformedPayload), res.Decision, raw)
		s.Equal(models.StateDenied, res.State)
	}
	s.Equal(0, s.logCount("future"))
}

func (s *CheckinScenarioSuite) TestUnknownEventLogsNothing() {
	res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u1", "u1@example.com"), "missing")
	s.Require().NoError(err)
	s.Equal(decision.Deny(decision.ReasonEventNotFound), res.Decision)
	s.Equal(0, s.logCount("missing"))

	all, err := s.logs.ListByUser(s.ctx, "u1", 0)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *CheckinScenarioSuite) TestInactiveAttendeeDominates() {
	s.Run("registered inactive user on a future event", func() {
		res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u3", "u3@example.com"), "future")
		s.Require().NoError(err)
		s.Equal(decision.Deny(decision.ReasonAccountInactive), res.Decision)
		s.Require().NotNil(res.Entry)
		s.Equal(domain.AccessDenied, res.Entry.Status)
	})

	s.Run("deleted user", func() {
		res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("ghost", "ghost@example.com"), "future")
		s.Require().NoError(err)
		s.Equal(decision.Deny(decision.ReasonAccountInactive), res.Decision)
	})

	s.Run("any event shape", func() {
		r := rand.New(rand.NewPCG(7, 11))
		for i := 0; i < 50; i++ {
			id := fmt.Sprintf("rand-%d", i)
			var attendees []string
			if r.IntN(2) == 0 {
				attendees = []string{"u3"}
			}
			offset := time.Duration(r.IntN(96)-48) * time.Hour
			s.Require().NoError(s.events.Create(s.ctx, &domain.Event{
				ID: id, Name: id, Date: now.Add(offset), Attendees: attendees, IsActive: true, CreatedAt: now,
			}))
			res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u3", "u3@example.com"), id)
			s.Require().NoError(err)
			s.Equal(decision.ReasonAccountInactive, res.Decision.Reason)
			s.Equal(1, s.logCount(id))
		}
	})
}

func (s *CheckinScenarioSuite) TestDuplicateScansAreEachLogged() {
	for i := 0; i < 2; i++ {
		res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u1", "u1@example.com"), "future")
		s.Require().NoError(err)
		s.True(res.Granted())
	}
	s.Equal(2, s.logCount("future"))
}

func (s *CheckinScenarioSuite) TestIssueQR() {
	code, err := s.svc.IssueQR(s.ctx, &domain.Principal{ID: "u1"})
	s.Require().NoError(err)
	s.True(strings.HasPrefix(code.QRCode, "data:image/png;base64,"))
	s.Equal("u1", code.Payload.UserID)
	s.Equal("u1@example.com", code.Payload.Email)
	s.True(now.Equal(code.Payload.Timestamp))

	raw, err := code.Payload.Encode()
	s.Require().NoError(err)
	res, err := s.svc.RegisterAccess(s.ctx, admin(), raw, "future")
	s.Require().NoError(err)
	s.True(res.Granted(), "an issued code checks its owner in")
}

func (s *CheckinScenarioSuite) TestListAccessLogs() {
	for i := 0; i < 3; i++ {
		ctx := requestcontext.WithTime(s.ctx, now.Add(time.Duration(i)*time.Minute))
		_, err := s.svc.RegisterAccess(ctx, admin(), payload("u1", "u1@example.com"), "future")
		s.Require().NoError(err)
	}
	logs, err := s.svc.ListAccessLogs(s.ctx, "u1", 2)
	s.Require().NoError(err)
	s.Require().Len(logs, 2)
	s.True(logs[0].Timestamp.After(logs[1].Timestamp))

	none, err := s.svc.ListAccessLogs(s.ctx, "u2", 10)
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

// CheckinServiceSuite covers store failures and side effects with mocks.
type CheckinServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	events  *mocks.MockEventStore
	users   *mocks.MockUserStore
	logs    *mocks.MockAccessLogStore
	audit   *mocks.MockAuditPublisher
	metrics *metrics.Metrics
	svc     *Service
	ctx     context.Context
}

func TestCheckinServiceSuite(t *testing.T) {
	suite.Run(t, new(CheckinServiceSuite))
}

func (s *CheckinServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.events = mocks.NewMockEventStore(s.ctrl)
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.logs = mocks.NewMockAccessLogStore(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.svc = New(s.events, s.users, s.logs, WithAuditPublisher(s.audit), WithMetrics(s.metrics))
	s.ctx = requestcontext.WithTime(context.Background(), now)
}

func (s *CheckinServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func futureEvent() *domain.Event {
	return &domain.Event{ID: "e1", Name: "Workshop", Date: now.Add(time.Hour), Attendees: []string{"u1"}}
}

func (s *CheckinServiceSuite) TestGrantEmitsAuditWithScanner() {
	s.events.EXPECT().FindByID(gomock.Any(), "e1").Return(futureEvent(), nil)
	s.users.EXPECT().FindByID(gomock.Any(), "u1").Return(&domain.User{ID: "u1", IsActive: true}, nil)
	s.logs.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(string(audit.EventCheckinGranted), e.Action)
		s.Equal("u1", e.UserID)
		s.Equal("admin-1", e.ActorID)
		s.Equal("e1", e.Subject)
		s.Equal("allow", e.Decision)
		return nil
	})

	res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u1", "u1@example.com"), "e1")
	s.Require().NoError(err)
	s.True(res.Granted())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Scans.WithLabelValues("granted", "allowed")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.LogWrites))
}

func (s *CheckinServiceSuite) TestUnauthorizedScannerTouchesNoStore() {
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(string(audit.EventCheckinDenied), e.Action)
		s.Equal(string(decision.ReasonUnauthorized), e.Reason)
		return nil
	})
	res, err := s.svc.RegisterAccess(s.ctx, &domain.Principal{ID: "u9", Role: domain.RoleUser, IsActive: true}, payload("u1", "u1@example.com"), "e1")
	s.Require().NoError(err)
	s.Equal(models.StateDenied, res.State)
	s.Equal(0.0, testutil.ToFloat64(s.metrics.LogWrites))
}

func (s *CheckinServiceSuite) TestStoreFailuresAreInternal() {
	boom := errors.New("connection refused")

	s.Run("event lookup", func() {
		s.events.EXPECT().FindByID(gomock.Any(), "e1").Return(nil, boom)
		_, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u1", "u1@example.com"), "e1")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.ErrorIs(err, boom)
	})

	s.Run("attendee lookup", func() {
		s.events.EXPECT().FindByID(gomock.Any(), "e1").Return(futureEvent(), nil)
		s.users.EXPECT().FindByID(gomock.Any(), "u1").Return(nil, boom)
		_, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u1", "u1@example.com"), "e1")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("log append", func() {
		s.events.EXPECT().FindByID(gomock.Any(), "e1").Return(futureEvent(), nil)
		s.users.EXPECT().FindByID(gomock.Any(), "u1").Return(&domain.User{ID: "u1", IsActive: true}, nil)
		s.logs.EXPECT().Append(gomock.Any(), gomock.Any()).Return(boom)
		res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u1", "u1@example.com"), "e1")
		s.Nil(res)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("list logs", func() {
		s.logs.EXPECT().ListByUser(gomock.Any(), "u1", 10).Return(nil, boom)
		_, err := s.svc.ListAccessLogs(s.ctx, "u1", 10)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *CheckinServiceSuite) TestAuditFailureDoesNotFailScan() {
	s.events.EXPECT().FindByID(gomock.Any(), "e1").Return(futureEvent(), nil)
	s.users.EXPECT().FindByID(gomock.Any(), "u1").Return(&domain.User{ID: "u1", IsActive: true}, nil)
	s.logs.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("buffer full"))

	res, err := s.svc.RegisterAccess(s.ctx, admin(), payload("u1", "u1@example.com"), "e1")
	s.Require().NoError(err)
	s.True(res.Granted())
}

func (s *CheckinServiceSuite) TestIssueQR() {
	s.Run("anonymous", func() {
		_, err := s.svc.IssueQR(s.ctx, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("user no longer exists", func() {
		s.users.EXPECT().FindByID(gomock.Any(), "gone").Return(nil, sentinel.ErrNotFound)
		_, err := s.svc.IssueQR(s.ctx, &domain.Principal{ID: "gone"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("payload reflects the stored account", func() {
		s.users.EXPECT().FindByID(gomock.Any(), "u1").Return(&domain.User{ID: "u1", Email: "new@example.com", Name: "Renamed"}, nil)
		code, err := s.svc.IssueQR(s.ctx, &domain.Principal{ID: "u1", Email: "old@example.com"})
		s.Require().NoError(err)
		s.Equal(qr.Payload{UserID: "u1", Email: "new@example.com", Name: "Renamed", Timestamp: now}, code.Payload)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.QRIssued))
	})
}
