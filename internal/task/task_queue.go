package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Errors returned by Enqueue.
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded channel-backed queue satisfying both TaskQueueReader
// and TaskQueueWriter. Enqueue never blocks: a full buffer is an error, which
// keeps slow enrichment from backing up into request handling.
type TaskQueue struct {
	tasks  chan Task
	logger *slog.Logger
	mu     sync.Mutex
	closed bool
}

// NewTaskQueue creates a queue buffering up to size tasks.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{
		tasks:  make(chan Task, size),
		logger: logger,
	}
}

// Enqueue adds a task for processing. Returns ErrQueueClosed after Close, or
// ErrQueueFull when the buffer has no room.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"queue_len", len(q.tasks),
			"queue_cap", cap(q.tasks))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Close stops further submission. Already-buffered tasks stay consumable;
// workers exit once the channel drains. Safe to call more than once.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
		q.logger.Info("task queue closed")
	}
}

// GetChannel returns the read side of the queue for workers.
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.tasks
}
