package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "eventgate/pkg/platform/audit"
)

type flakySink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *flakySink) Append(_ context.Context, e audit.Event) error {
	if e.Action == "fail" {
		return errors.New("sink down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func TestWorkerDrainsUntilClosed(t *testing.T) {
	sink := &flakySink{}
	inbox := make(chan audit.Event, 3)
	inbox <- audit.Event{Action: "a"}
	inbox <- audit.Event{Action: "fail"}
	inbox <- audit.Event{Action: "b"}
	close(inbox)

	err := NewWorker(sink, inbox, nil).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.events, 2)
	assert.Equal(t, "b", sink.events[1].Action)
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := NewWorker(&flakySink{}, make(chan audit.Event), nil).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
