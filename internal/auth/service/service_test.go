package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"eventgate/internal/auth"
	"eventgate/internal/auth/models"
	"eventgate/internal/auth/password"
	"eventgate/internal/auth/service/mocks"
	"eventgate/internal/domain"
	jwttoken "eventgate/internal/jwt_token"
	"eventgate/internal/storage"
	"eventgate/internal/storage/memory"
	dErrors "eventgate/pkg/domain-errors"
	"eventgate/pkg/platform/audit"
	"eventgate/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	users  *mocks.MockUserStore
	logs   *mocks.MockAccessLogReader
	tokens *mocks.MockTokenService
	hasher *mocks.MockPasswordHasher
	audit  *mocks.MockAuditPublisher
	svc    *Service
	ctx    context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.logs = mocks.NewMockAccessLogReader(s.ctrl)
	s.tokens = mocks.NewMockTokenService(s.ctrl)
	s.hasher = mocks.NewMockPasswordHasher(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.svc = New(s.users, s.tokens, s.hasher, WithAuditPublisher(s.audit), WithAccessLogs(s.logs))
	s.ctx = context.Background()
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func activeUser() *domain.User {
	return &domain.User{
		ID:           "u1",
		Email:        "ana@example.com",
		Name:         "Ana",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		Perks:        []string{"material-digital"},
		EventAccess:  []string{"workshop-2024"},
		IsActive:     true,
	}
}

func (s *ServiceSuite) expectAudit(action audit.AuditEvent) {
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(string(action), e.Action)
		return nil
	})
}

func (s *ServiceSuite) TestAuthenticate() {
	s.Run("unknown email is NotFound and still spends hashing time", func() {
		s.users.EXPECT().FindByEmail(gomock.Any(), "ghost@example.com").Return(nil, sentinel.ErrNotFound)
		s.hasher.EXPECT().Burn("secret1")
		s.expectAudit(audit.EventAuthFailed)

		p, err := s.svc.Authenticate(s.ctx, "ghost@example.com", "secret1")
		s.Nil(p)
		s.Equal(auth.ReasonNotFound, auth.ReasonOf(err))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("inactive account is reported before the password is checked", func() {
		u := activeUser()
		u.IsActive = false
		s.users.EXPECT().FindByEmail(gomock.Any(), u.Email).Return(u, nil)
		s.expectAudit(audit.EventAuthFailed)

		_, err := s.svc.Authenticate(s.ctx, u.Email, "wrong-password")
		s.Equal(auth.ReasonInactive, auth.ReasonOf(err))
	})

	s.Run("wrong password is BadCredential", func() {
		u := activeUser()
		s.users.EXPECT().FindByEmail(gomock.Any(), u.Email).Return(u, nil)
		s.hasher.EXPECT().Verify("nope", "hash").Return(password.ErrMismatch)
		s.expectAudit(audit.EventAuthFailed)

		_, err := s.svc.Authenticate(s.ctx, u.Email, "nope")
		s.Equal(auth.ReasonBadCredential, auth.ReasonOf(err))
	})

	s.Run("email is normalised before lookup", func() {
		u := activeUser()
		s.users.EXPECT().FindByEmail(gomock.Any(), "ana@example.com").Return(u, nil)
		s.hasher.EXPECT().Verify("secret1", "hash").Return(nil)
		s.expectAudit(audit.EventLoginSucceeded)

		p, err := s.svc.Authenticate(s.ctx, "  Ana@Example.COM ", "secret1")
		s.Require().NoError(err)
		s.Equal("u1", p.ID)
		s.True(p.Perks.Has("material-digital"))
		s.True(p.IsActive)
	})

	s.Run("store failure is internal, not an auth error", func() {
		s.users.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

		_, err := s.svc.Authenticate(s.ctx, "ana@example.com", "secret1")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Equal(auth.Reason(""), auth.ReasonOf(err))
	})

	s.Run("corrupt hash is internal", func() {
		s.users.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(activeUser(), nil)
		s.hasher.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(errors.New("bad hash"))

		_, err := s.svc.Authenticate(s.ctx, "ana@example.com", "secret1")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestIssueSession() {
	p := activeUser().Principal()
	expires := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s.tokens.EXPECT().GenerateSessionToken(jwttoken.SessionSubject{
		UserID:      "u1",
		Email:       "ana@example.com",
		Name:        "Ana",
		Role:        "user",
		Perks:       []string{"material-digital"},
		EventAccess: []string{"workshop-2024"},
		IsActive:    true,
	}).Return("tok", expires, nil)
	s.expectAudit(audit.EventSessionIssued)

	session, err := s.svc.IssueSession(s.ctx, p)
	s.Require().NoError(err)
	s.Equal("tok", session.Token)
	s.Equal(expires, session.ExpiresAt)
}

func (s *ServiceSuite) TestResolveSession() {
	s.Run("invalid token", func() {
		s.tokens.EXPECT().ValidateToken("bad").Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))

		_, err := s.svc.ResolveSession(s.ctx, "bad")
		s.Equal(auth.ReasonInvalidToken, auth.ReasonOf(err))
	})

	s.Run("unknown role claim", func() {
		claims := &jwttoken.Claims{Role: "superuser"}
		claims.Subject = "u1"
		s.tokens.EXPECT().ValidateToken("odd").Return(claims, nil)

		_, err := s.svc.ResolveSession(s.ctx, "odd")
		s.Equal(auth.ReasonInvalidToken, auth.ReasonOf(err))
	})

	s.Run("inactive principal still resolves", func() {
		claims := &jwttoken.Claims{Role: "admin", IsActive: false}
		claims.Subject = "a1"
		s.tokens.EXPECT().ValidateToken("t").Return(claims, nil)

		p, err := s.svc.ResolveSession(s.ctx, "t")
		s.Require().NoError(err)
		s.Equal(domain.RoleAdmin, p.Role)
		s.False(p.IsActive)
	})
}

func (s *ServiceSuite) TestRegister() {
	s.Run("validation failures never reach the store", func() {
		cases := []models.RegisterRequest{
			{Email: "", Password: "secret1"},
			{Email: "ana@example.com", Password: ""},
			{Email: "not-an-email", Password: "secret1"},
			{Email: "ana@example.com", Password: "12345"},
		}
		for _, req := range cases {
			_, err := s.svc.Register(s.ctx, req)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), req)
		}
	})

	s.Run("creates a user with role user and a derived name", func() {
		s.hasher.EXPECT().Hash("secret1").Return("hashed", nil)
		s.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *domain.User) error {
			s.Equal("bea.lima@example.com", u.Email)
			s.Equal("Bea Lima", u.Name)
			s.Equal(domain.RoleUser, u.Role)
			s.Equal("hashed", u.PasswordHash)
			s.True(u.IsActive)
			s.NotEmpty(u.ID)
			s.Equal([]string{}, u.Perks)
			return nil
		})
		s.expectAudit(audit.EventUserRegistered)

		u, err := s.svc.Register(s.ctx, models.RegisterRequest{Email: "Bea.Lima@example.com", Password: "secret1"})
		s.Require().NoError(err)
		s.Equal(domain.RoleUser, u.Role)
	})

	s.Run("duplicate email conflicts", func() {
		s.hasher.EXPECT().Hash(gomock.Any()).Return("hashed", nil)
		s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		_, err := s.svc.Register(s.ctx, models.RegisterRequest{Email: "ana@example.com", Password: "secret1"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestCreateUser() {
	s.Run("rejects unknown roles", func() {
		_, err := s.svc.CreateUser(s.ctx, models.CreateUserRequest{Email: "x@example.com", Password: "secret1", Role: "owner"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("keeps role, perks and inactive flag", func() {
		inactive := false
		s.hasher.EXPECT().Hash(gomock.Any()).Return("hashed", nil)
		s.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *domain.User) error {
			s.Equal(domain.RoleStaff, u.Role)
			s.Equal([]string{"vip"}, u.Perks)
			s.False(u.IsActive)
			return nil
		})
		s.expectAudit(audit.EventUserCreated)

		_, err := s.svc.CreateUser(s.ctx, models.CreateUserRequest{
			Email: "staff@example.com", Password: "secret1", Role: "Staff",
			Perks: []string{" vip", "vip"}, IsActive: &inactive,
		})
		s.Require().NoError(err)
	})
}

func (s *ServiceSuite) TestBootstrapAdmin() {
	s.Run("refuses once an admin exists", func() {
		s.users.EXPECT().ExistsWithRole(gomock.Any(), domain.RoleAdmin).Return(true, nil)

		_, err := s.svc.BootstrapAdmin(s.ctx, models.CreateUserRequest{Email: "root@example.com", Password: "secret1"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("creates an active admin", func() {
		inactive := false
		s.users.EXPECT().ExistsWithRole(gomock.Any(), domain.RoleAdmin).Return(false, nil)
		s.hasher.EXPECT().Hash(gomock.Any()).Return("hashed", nil)
		s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.expectAudit(audit.EventAdminBootstrap)

		u, err := s.svc.BootstrapAdmin(s.ctx, models.CreateUserRequest{
			Email: "root@example.com", Password: "secret1", Role: "user", IsActive: &inactive,
		})
		s.Require().NoError(err)
		s.Equal(domain.RoleAdmin, u.Role)
		s.True(u.IsActive)
	})
}

func (s *ServiceSuite) TestProfile() {
	s.Run("joins user and logs", func() {
		s.users.EXPECT().FindByID(gomock.Any(), "u1").Return(activeUser(), nil)
		s.logs.EXPECT().ListByUser(gomock.Any(), "u1", 10).Return([]*domain.AccessLogEntry{{ID: "l1"}}, nil)

		p, err := s.svc.Profile(s.ctx, "u1", 10)
		s.Require().NoError(err)
		s.Equal("ana@example.com", p.User.Email)
		s.Len(p.AccessLogs, 1)
	})

	s.Run("missing user is not found", func() {
		s.users.EXPECT().FindByID(gomock.Any(), "gone").Return(nil, sentinel.ErrNotFound)
		s.logs.EXPECT().ListByUser(gomock.Any(), "gone", 10).Return(nil, nil).AnyTimes()

		_, err := s.svc.Profile(s.ctx, "gone", 10)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestSessionRoundTrip runs login and resolution against real collaborators:
// role, perks, event access and the active flag survive the token boundary.
func (s *ServiceSuite) TestSessionRoundTrip() {
	users := storage.NewUserRepository(memory.New())
	hasher := password.NewHasher(bcrypt.MinCost)
	tokens := jwttoken.NewJWTService("test-key", "eventgate", time.Hour)
	svc := New(users, tokens, hasher)

	hash, err := hasher.Hash("secret1")
	s.Require().NoError(err)
	for _, u := range []*domain.User{
		{ID: "a1", Email: "admin@example.com", Name: "Admin", PasswordHash: hash, Role: domain.RoleAdmin, IsActive: true},
		{ID: "u1", Email: "user@example.com", Name: "User", PasswordHash: hash, Role: domain.RoleUser,
			Perks: []string{"material-digital", "premium"}, EventAccess: []string{"e1"}, IsActive: true},
	} {
		s.Require().NoError(users.Create(s.ctx, u))
	}

	for _, addr := range []string{"admin@example.com", "user@example.com"} {
		result, err := svc.Login(s.ctx, addr, "secret1")
		s.Require().NoError(err)

		resolved, err := svc.ResolveSession(s.ctx, result.Session.Token)
		s.Require().NoError(err)
		s.Equal(result.Principal, resolved)
	}

	_, err = svc.ResolveSession(s.ctx, "garbage")
	s.Equal(auth.ReasonInvalidToken, auth.ReasonOf(err))
}
