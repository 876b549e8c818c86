package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusRetrying   JobStatus = "retrying"
)

var (
	// ErrQueueFull is returned when the buffer has no free slot
	ErrQueueFull = errors.New("job queue is full")
	// ErrStopped is returned when enqueueing after Stop
	ErrStopped = errors.New("job queue is stopped")
)

// Job is a unit of deferred work. Payload must be plain data; it outlives the
// request that produced it.
type Job struct {
	ID         uuid.UUID
	Type       string
	Payload    interface{}
	Status     JobStatus
	Attempts   int
	MaxRetries int
	Error      string
	EnqueuedAt time.Time
}

// JobHandler is the interface that job handlers must implement
type JobHandler interface {
	Handle(ctx context.Context, job *Job) error
	GetType() string
}

// FailureHandler is optionally implemented by a JobHandler to be told when a
// job has exhausted its retries.
type FailureHandler interface {
	OnFailure(ctx context.Context, job *Job, err error)
}

// EnqueueOptions contains options for enqueueing a job
type EnqueueOptions struct {
	MaxRetries int
}

// WorkerConfig contains configuration for job workers
type WorkerConfig struct {
	Concurrency int           // Number of concurrent workers
	QueueSize   int           // Buffered jobs before Enqueue reports ErrQueueFull
	Timeout     time.Duration // Maximum time for one attempt
	MaxRetries  int           // Default retries after the first attempt
	BackoffBase time.Duration // Delay unit for exponential backoff
}

// DefaultWorkerConfig returns default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Concurrency: 2,
		QueueSize:   256,
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		BackoffBase: time.Second,
	}
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	def := DefaultWorkerConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = def.BackoffBase
	}
	return c
}

// JobStats represents counters about processed jobs
type JobStats struct {
	Enqueued  int64 `json:"enqueued"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Retried   int64 `json:"retried"`
	Pending   int   `json:"pending"`
}
