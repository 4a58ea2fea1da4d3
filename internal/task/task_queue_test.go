package task

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noopTask is a minimal Task for exercising queue and pool mechanics.
type noopTask struct {
	id      uuid.UUID
	execute func(ctx context.Context) error
}

func newNoopTask() *noopTask {
	return &noopTask{id: uuid.New()}
}

func (t *noopTask) ID() uuid.UUID { return t.id }

func (t *noopTask) Type() string { return "noop" }

func (t *noopTask) Execute(ctx context.Context) error {
	if t.execute != nil {
		return t.execute(ctx)
	}
	return nil
}

func TestTaskQueueEnqueueAndConsume(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, discardLogger())
	first := newNoopTask()
	second := newNoopTask()

	require.NoError(t, queue.Enqueue(first))
	require.NoError(t, queue.Enqueue(second))

	got := <-queue.GetChannel()
	assert.Equal(t, first.ID(), got.ID())
	got = <-queue.GetChannel()
	assert.Equal(t, second.ID(), got.ID())
}

func TestTaskQueueFull(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, discardLogger())
	require.NoError(t, queue.Enqueue(newNoopTask()))

	err := queue.Enqueue(newNoopTask())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestTaskQueueEnqueueAfterClose(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, discardLogger())
	queue.Close()

	err := queue.Enqueue(newNoopTask())
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestTaskQueueCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, discardLogger())
	require.NoError(t, queue.Enqueue(newNoopTask()))

	queue.Close()
	assert.NotPanics(t, queue.Close)

	// Tasks enqueued before Close stay consumable.
	_, ok := <-queue.GetChannel()
	assert.True(t, ok)
	_, ok = <-queue.GetChannel()
	assert.False(t, ok, "channel should be closed after draining")
}
