package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MuhamadAgungGumelar/ocr-api/internal/shared/utils"
)

// Worker processes jobs from a queue
type Worker struct {
	queue    *Queue
	config   WorkerConfig
	handlers map[string]JobHandler
	mu       sync.RWMutex
	started  bool
	wg       sync.WaitGroup

	completed atomic.Int64
	failed    atomic.Int64
	retried   atomic.Int64
}

// NewWorker creates a new job worker
func NewWorker(queue *Queue, config WorkerConfig) *Worker {
	return &Worker{
		queue:    queue,
		config:   config.withDefaults(),
		handlers: make(map[string]JobHandler),
	}
}

// RegisterHandler registers a job handler for a specific job type
func (w *Worker) RegisterHandler(handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[handler.GetType()] = handler
	utils.LogInfo("✅ Registered job handler", map[string]interface{}{"type": handler.GetType()})
}

// Start starts the worker goroutines. Jobs run on ctx, which should not be
// tied to any request.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return fmt.Errorf("worker already started")
	}
	w.started = true
	w.mu.Unlock()

	utils.LogInfo("🚀 Starting job worker", map[string]interface{}{"workers": w.config.Concurrency})

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.runWorker(ctx, i+1)
	}

	return nil
}

// Stop closes the queue and waits until every buffered job has been handled
func (w *Worker) Stop() {
	utils.LogInfo("🛑 Stopping job worker, draining queue", map[string]interface{}{"pending": w.queue.Len()})

	w.queue.Close()
	w.wg.Wait()

	utils.LogInfo("✅ Job worker stopped", nil)
}

// runWorker runs a single worker goroutine until the queue is closed and empty
func (w *Worker) runWorker(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for job := range w.queue.Jobs() {
		w.process(ctx, workerID, job)
	}
}

// process runs a job with retries and exponential backoff
func (w *Worker) process(ctx context.Context, workerID int, job *Job) {
	w.mu.RLock()
	handler, exists := w.handlers[job.Type]
	w.mu.RUnlock()

	fields := map[string]interface{}{"worker": workerID, "job_id": job.ID.String(), "type": job.Type}

	if !exists {
		job.Status = StatusFailed
		job.Error = fmt.Sprintf("no handler registered for job type: %s", job.Type)
		w.failed.Add(1)
		utils.LogError("❌ Job dropped", fmt.Errorf("%s", job.Error), fields)
		return
	}

	for {
		job.Attempts++
		job.Status = StatusProcessing

		err := w.runAttempt(ctx, handler, job)
		if err == nil {
			job.Status = StatusCompleted
			job.Error = ""
			w.completed.Add(1)
			return
		}

		job.Error = err.Error()
		fields["attempt"] = job.Attempts

		if job.Attempts > job.MaxRetries || ctx.Err() != nil {
			job.Status = StatusFailed
			w.failed.Add(1)
			utils.LogError("❌ Job failed", err, fields)
			if fh, ok := handler.(FailureHandler); ok {
				fh.OnFailure(ctx, job, err)
			}
			return
		}

		job.Status = StatusRetrying
		w.retried.Add(1)
		backoff := calculateBackoff(w.config.BackoffBase, job.Attempts-1)
		fields["backoff"] = backoff.String()
		utils.LogWarn("⚠️ Job attempt failed, retrying", fields)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (w *Worker) runAttempt(ctx context.Context, handler JobHandler, job *Job) (err error) {
	jobCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job handler panicked: %v", r)
		}
	}()

	return handler.Handle(jobCtx, job)
}

// Stats returns counters for processed jobs
func (w *Worker) Stats() JobStats {
	return JobStats{
		Completed: w.completed.Load(),
		Failed:    w.failed.Load(),
		Retried:   w.retried.Load(),
		Pending:   w.queue.Len(),
	}
}
