package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	received []*TaskRequestEvent
	err      error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *TaskRequestEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTaskRequestEvent(t *testing.T) {
	t.Parallel()

	event, err := NewTaskRequestEvent(TaskTypeEnrichVocab, EnrichVocabPayload{
		Term:           "Resilient",
		TermNormalized: "resilient",
		Meanings:       []string{"kiên cường"},
	})
	require.NoError(t, err)

	assert.Equal(t, TaskTypeEnrichVocab, event.Type)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())

	var payload EnrichVocabPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, "resilient", payload.TermNormalized)
	assert.Equal(t, []string{"kiên cường"}, payload.Meanings)
}

func TestEmitEventDeliversToAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(quietLogger())
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := NewTaskRequestEvent(TaskTypeEnrichVocab, EnrichVocabPayload{TermNormalized: "x"})
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Len(t, first.received, 1)
	assert.Len(t, second.received, 1)
}

func TestEmitEventNoHandlers(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(quietLogger())
	event, err := NewTaskRequestEvent(TaskTypeEnrichVocab, EnrichVocabPayload{})
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}

func TestEmitEventContinuesPastFailingHandler(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(quietLogger())
	failed := errors.New("handler failed")
	failing := &recordingHandler{err: failed}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event, err := NewTaskRequestEvent(TaskTypeEnrichVocab, EnrichVocabPayload{})
	require.NoError(t, err)

	err = emitter.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, err, failed, "first handler error is returned")
	assert.Len(t, healthy.received, 1, "remaining handlers still run")
}
