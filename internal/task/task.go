package task

import (
	"context"

	"github.com/google/uuid"
)

// Task type constants
const (
	// TaskTypeSendMail represents the task type for outbound email delivery
	TaskTypeSendMail = "send_mail"

	// TaskTypeOfferFanOut represents the task type for granting a special
	// offer to a set of users in the background
	TaskTypeOfferFanOut = "offer_fan_out"
)

// Task represents a unit of background work to be processed.
// Tasks are best-effort: they are held in memory only, and a task lost to
// a crash or a full queue is not retried.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// funcTask adapts a plain function into a Task. Most callers build tasks
// with NewFunc rather than implementing the Task interface themselves.
type funcTask struct {
	id       uuid.UUID
	taskType string
	fn       func(ctx context.Context) error
}

// NewFunc wraps fn as a Task of the given type with a fresh ID.
func NewFunc(taskType string, fn func(ctx context.Context) error) Task {
	return &funcTask{
		id:       uuid.New(),
		taskType: taskType,
		fn:       fn,
	}
}

func (t *funcTask) ID() uuid.UUID { return t.id }

func (t *funcTask) Type() string { return t.taskType }

func (t *funcTask) Execute(ctx context.Context) error { return t.fn(ctx) }
