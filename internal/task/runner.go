package task

import (
	"log/slog"
)

// Runner bundles a TaskQueue and a WorkerPool behind a single Submit
// surface. Services hold a Runner and never touch the queue or pool
// directly.
type Runner struct {
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger
}

// RunnerConfig holds configuration for the runner
type RunnerConfig struct {
	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// Pool configures the worker pool draining the queue
	Pool WorkerPoolConfig
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		QueueSize: 100,
		Pool:      DefaultWorkerPoolConfig(),
	}
}

// NewRunner creates a runner with its queue and pool wired together.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, config.Pool, logger)

	return &Runner{
		queue:  queue,
		pool:   pool,
		logger: logger.With("component", "task_runner"),
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures
func (r *Runner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Start launches the worker pool.
func (r *Runner) Start() {
	r.pool.Start()
}

// Stop closes the queue and shuts down the pool. Tasks still buffered in
// the queue when Stop is called are dropped; submission is best-effort.
func (r *Runner) Stop() {
	r.queue.Close()
	r.pool.Stop()
}

// Submit adds a task to the queue. It never blocks: if the queue is full
// or closed the task is dropped and an error returned.
func (r *Runner) Submit(t Task) error {
	if err := r.queue.Enqueue(t); err != nil {
		r.logger.Warn("task dropped",
			"task_type", t.Type(),
			"error", err)
		return err
	}
	return nil
}
