package activity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackkit/trackkit/pkg/activity"
)

// countingStorage records batches handed to InsertBatch.
type countingStorage struct {
	mu      sync.Mutex
	batches [][]activity.Event
}

func (c *countingStorage) InsertBatch(ctx context.Context, events []activity.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := make([]activity.Event, len(events))
	copy(batch, events)
	c.batches = append(c.batches, batch)
	return nil
}

func (c *countingStorage) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.batches {
		n += len(b)
	}
	return n
}

func TestAsyncWriter_StoresEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	storage := &countingStorage{}
	writer, closeWriter := activity.NewAsyncWriter(storage, activity.AsyncOptions{
		BufferSize:   16,
		BatchSize:    4,
		BatchTimeout: 10 * time.Millisecond,
	})

	for i := range 10 {
		err := writer.Store(ctx, activity.Event{
			UserID:    "user-1",
			Type:      activity.PageView,
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	require.NoError(t, closeWriter(ctx))
	assert.Equal(t, 10, storage.total())
}

func TestAsyncWriter_CloseDrainsAndRejects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	storage := &countingStorage{}
	writer, closeWriter := activity.NewAsyncWriter(storage, activity.AsyncOptions{
		BufferSize: 8,
		BatchSize:  100, // larger than event count so only close flushes
	})

	require.NoError(t, writer.Store(ctx, activity.Event{UserID: "u", Type: activity.Login}))
	require.NoError(t, closeWriter(ctx))
	assert.Equal(t, 1, storage.total())

	// Closing twice is safe; writes after close fail.
	require.NoError(t, closeWriter(ctx))
	err := writer.Store(ctx, activity.Event{UserID: "u", Type: activity.Logout})
	assert.ErrorIs(t, err, activity.ErrWriterClosed)
}
