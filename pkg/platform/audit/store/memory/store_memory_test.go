package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "eventgate/pkg/platform/audit"
)

func TestListRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, audit.Event{UserID: "a", Action: "first", Timestamp: base}))
	require.NoError(t, s.Append(ctx, audit.Event{UserID: "b", Action: "third", Timestamp: base.Add(2 * time.Minute)}))
	require.NoError(t, s.Append(ctx, audit.Event{UserID: "a", Action: "second", Timestamp: base.Add(time.Minute)}))

	got, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Action)
	assert.Equal(t, "second", got[1].Action)

	got, err = s.ListByUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Action)
}
