package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskTypeVocabEnrichment identifies tasks that warm the AI content cache
// for a vocab entry.
const TaskTypeVocabEnrichment = "vocab_enrichment"

// Task is one unit of background work.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// TaskQueueReader is the consume side of the queue, held by the worker pool.
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks.
	GetChannel() <-chan Task
}

// TaskQueueWriter is the produce side of the queue, held by event handlers.
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing.
	// Returns an error if the queue is full or closed.
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission.
	Close()
}
