package jobs

import (
	"context"
	"sync/atomic"
)

// Service provides high-level job queue functionality
type Service struct {
	queue    *Queue
	worker   *Worker
	config   WorkerConfig
	enqueued atomic.Int64
}

// NewService creates a new job service
func NewService(config WorkerConfig) *Service {
	config = config.withDefaults()
	queue := NewQueue(config.QueueSize)

	return &Service{
		queue:  queue,
		worker: NewWorker(queue, config),
		config: config,
	}
}

// RegisterHandlers registers handlers before Start
func (s *Service) RegisterHandlers(handlers ...JobHandler) {
	for _, handler := range handlers {
		s.worker.RegisterHandler(handler)
	}
}

// Enqueue adds a new job to the queue using the configured retry count
func (s *Service) Enqueue(jobType string, payload interface{}) (*Job, error) {
	return s.EnqueueWithOptions(jobType, payload, EnqueueOptions{MaxRetries: s.config.MaxRetries})
}

// EnqueueWithOptions adds a new job to the queue
func (s *Service) EnqueueWithOptions(jobType string, payload interface{}, opts EnqueueOptions) (*Job, error) {
	job, err := s.queue.Enqueue(jobType, payload, opts)
	if err != nil {
		return nil, err
	}
	s.enqueued.Add(1)
	return job, nil
}

// Start starts the workers on a context detached from any request
func (s *Service) Start(ctx context.Context) error {
	return s.worker.Start(context.WithoutCancel(ctx))
}

// Stop drains the queue and waits for in-flight jobs
func (s *Service) Stop() {
	s.worker.Stop()
}

// Stats retrieves job statistics
func (s *Service) Stats() JobStats {
	stats := s.worker.Stats()
	stats.Enqueued = s.enqueued.Load()
	return stats
}
