package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Queue is a bounded in-process job buffer
type Queue struct {
	mu      sync.RWMutex
	ch      chan *Job
	stopped bool
}

// NewQueue creates a new job queue holding up to size jobs
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan *Job, size)}
}

// Enqueue adds a new job to the queue without blocking
func (q *Queue) Enqueue(jobType string, payload interface{}, opts EnqueueOptions) (*Job, error) {
	job := &Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    payload,
		Status:     StatusPending,
		MaxRetries: opts.MaxRetries,
		EnqueuedAt: time.Now(),
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.stopped {
		return nil, ErrStopped
	}

	select {
	case q.ch <- job:
		return job, nil
	default:
		return nil, ErrQueueFull
	}
}

// Len reports the number of buffered jobs
func (q *Queue) Len() int {
	return len(q.ch)
}

// Jobs exposes the receive side for workers
func (q *Queue) Jobs() <-chan *Job {
	return q.ch
}

// Close refuses further jobs. Buffered jobs stay readable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	q.stopped = true
	close(q.ch)
}

// calculateBackoff calculates exponential backoff: base * 2^attempt, max 1 hour
func calculateBackoff(base time.Duration, attempt int) time.Duration {
	if attempt > 12 {
		attempt = 12
	}
	backoff := base * time.Duration(1<<attempt)
	if backoff > time.Hour {
		backoff = time.Hour
	}
	return backoff
}
