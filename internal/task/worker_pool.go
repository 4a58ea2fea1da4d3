package task

import (
	"context"
	"log/slog"
	"sync"
)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	taskQueue   TaskQueueReader
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger

	// errorHandler is called when a task execution fails.
	// If nil, errors are only logged.
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start.
	// If zero or negative, defaults to 1.
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With("component", "worker_pool"),
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines. Each worker consumes tasks from the
// queue until the queue channel is closed or Stop is called.
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool", "worker_count", p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop signals all workers to finish and blocks until they exit. Tasks
// already picked up run to completion.
func (p *WorkerPool) Stop() {
	p.logger.Info("stopping worker pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *WorkerPool) worker(index int) {
	defer p.wg.Done()
	logger := p.logger.With("worker_index", index)

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("worker shutting down")
			return
		case task, ok := <-p.taskQueue.GetChannel():
			if !ok {
				logger.Debug("task queue closed, worker exiting")
				return
			}
			p.runTask(logger, task)
		}
	}
}

func (p *WorkerPool) runTask(logger *slog.Logger, task Task) {
	logger.Debug("executing task",
		"task_id", task.ID(),
		"task_type", task.Type())

	if err := task.Execute(p.ctx); err != nil {
		logger.Error("task execution failed",
			"error", err,
			"task_id", task.ID(),
			"task_type", task.Type())
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
		return
	}

	logger.Debug("task completed",
		"task_id", task.ID(),
		"task_type", task.Type())
}
