package seed

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eventgate/internal/auth/password"
	authService "eventgate/internal/auth/service"
	catalogService "eventgate/internal/catalog/service"
	"eventgate/internal/decision"
	"eventgate/internal/storage"
	"eventgate/internal/storage/memory"
	"eventgate/pkg/requestcontext"
)

func TestRun(t *testing.T) {
	docs := memory.New()
	users := storage.NewUserRepository(docs)
	events := storage.NewEventRepository(docs)
	auth := authService.New(users, nil, password.NewHasher(bcrypt.MinCost))
	catalog := catalogService.New(
		storage.NewPerkRepository(docs),
		events,
		storage.NewContentRepository(docs),
		decision.NewEngine(),
	)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	logger := slog.New(slog.DiscardHandler)

	require.NoError(t, Run(ctx, auth, catalog, logger))

	admin, err := users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsActive)
	assert.Len(t, admin.Perks, 4)

	member, err := users.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)

	event, err := events.FindByID(ctx, EventID)
	require.NoError(t, err)
	assert.True(t, event.IsUpcoming(now))
	assert.True(t, event.HasAttendee(member.ID))

	// second run finds everything in place
	require.NoError(t, Run(ctx, auth, catalog, logger))
	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
