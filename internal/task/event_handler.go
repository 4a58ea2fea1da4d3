package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vocab-srs/vocab-api/internal/events"
	"github.com/vocab-srs/vocab-api/internal/generation"
	"github.com/vocab-srs/vocab-api/internal/service/aicache"
)

// EnrichmentEventHandler implements the events.EventHandler interface. It
// turns enrichment request events into enrichment tasks and enqueues them
// for the worker pool.
type EnrichmentEventHandler struct {
	queue    TaskQueueWriter
	remote   generation.Provider
	fallback generation.Provider
	cache    *aicache.Service
	logger   *slog.Logger
}

// NewEnrichmentEventHandler creates an event handler that enqueues
// enrichment tasks. remote may be nil.
func NewEnrichmentEventHandler(
	queue TaskQueueWriter,
	remote generation.Provider,
	fallback generation.Provider,
	cache *aicache.Service,
	logger *slog.Logger,
) *EnrichmentEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichmentEventHandler{
		queue:    queue,
		remote:   remote,
		fallback: fallback,
		cache:    cache,
		logger:   logger.With("component", "enrichment_event_handler"),
	}
}

var _ events.EventHandler = (*EnrichmentEventHandler)(nil)

// HandleEvent processes enrichment request events. Events of other types are
// ignored.
func (h *EnrichmentEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != events.TaskTypeEnrichVocab {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.EnrichVocabPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	task, err := NewVocabEnrichmentTask(
		payload.Term,
		payload.TermNormalized,
		payload.Meanings,
		h.remote,
		h.fallback,
		h.cache,
		h.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create enrichment task: %w", err)
	}

	if err := h.queue.Enqueue(task); err != nil {
		h.logger.Error("failed to enqueue enrichment task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to enqueue enrichment task: %w", err)
	}

	h.logger.Debug("enrichment task enqueued",
		"task_id", task.ID(),
		"term_normalized", payload.TermNormalized,
		"event_id", event.ID)
	return nil
}
