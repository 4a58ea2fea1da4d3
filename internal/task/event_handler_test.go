package task

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocab-srs/vocab-api/internal/events"
	"github.com/vocab-srs/vocab-api/internal/generation"
	"github.com/vocab-srs/vocab-api/internal/service/aicache"
)

// recordingQueue captures enqueued tasks and can simulate a full queue.
type recordingQueue struct {
	tasks      []Task
	enqueueErr error
}

func (q *recordingQueue) Enqueue(task Task) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) Close() {}

func newTestEventHandler(queue TaskQueueWriter) *EnrichmentEventHandler {
	return NewEnrichmentEventHandler(
		queue,
		nil,
		generation.NewFallbackProvider(),
		aicache.NewService(newFakeCacheStore(), discardLogger()),
		discardLogger(),
	)
}

func TestHandleEventEnqueuesEnrichmentTask(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{}
	handler := newTestEventHandler(queue)

	event, err := events.NewTaskRequestEvent(events.TaskTypeEnrichVocab, events.EnrichVocabPayload{
		Term:           "Take Off",
		TermNormalized: "take off",
		Meanings:       []string{"cat canh"},
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	require.Len(t, queue.tasks, 1)

	enrichTask, ok := queue.tasks[0].(*VocabEnrichmentTask)
	require.True(t, ok)
	assert.Equal(t, "Take Off", enrichTask.term)
	assert.Equal(t, "take off", enrichTask.termNormalized)
	assert.Equal(t, []string{"cat canh"}, enrichTask.meanings)
}

func TestHandleEventIgnoresOtherEventTypes(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{}
	handler := newTestEventHandler(queue)

	event, err := events.NewTaskRequestEvent("vocab_exported", map[string]any{"count": 3})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.Empty(t, queue.tasks)
}

func TestHandleEventRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{}
	handler := newTestEventHandler(queue)

	event := &events.TaskRequestEvent{
		ID:      uuid.New(),
		Type:    events.TaskTypeEnrichVocab,
		Payload: []byte("not json"),
	}

	err := handler.HandleEvent(context.Background(), event)
	assert.Error(t, err)
	assert.Empty(t, queue.tasks)
}

func TestHandleEventRejectsEmptyNormalizedTerm(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{}
	handler := newTestEventHandler(queue)

	event, err := events.NewTaskRequestEvent(events.TaskTypeEnrichVocab, events.EnrichVocabPayload{
		Term: "take off",
	})
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)
	assert.Error(t, err)
	assert.Empty(t, queue.tasks)
}

func TestHandleEventPropagatesQueueErrors(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{enqueueErr: ErrQueueFull}
	handler := newTestEventHandler(queue)

	event, err := events.NewTaskRequestEvent(events.TaskTypeEnrichVocab, events.EnrichVocabPayload{
		Term:           "take off",
		TermNormalized: "take off",
	})
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)
	assert.ErrorIs(t, err, ErrQueueFull)
}
