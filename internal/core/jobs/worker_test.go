package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	failUntil int32
	calls     atomic.Int32
	mu        sync.Mutex
	payloads  []interface{}
	failures  []error
	block     chan struct{}
}

func (h *recordingHandler) GetType() string { return "record" }

func (h *recordingHandler) Handle(ctx context.Context, job *Job) error {
	if h.block != nil {
		<-h.block
	}
	n := h.calls.Add(1)
	if n <= h.failUntil {
		return errors.New("transient")
	}
	h.mu.Lock()
	h.payloads = append(h.payloads, job.Payload)
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) OnFailure(ctx context.Context, job *Job, err error) {
	h.mu.Lock()
	h.failures = append(h.failures, err)
	h.mu.Unlock()
}

func testConfig() WorkerConfig {
	return WorkerConfig{
		Concurrency: 2,
		QueueSize:   8,
		Timeout:     time.Second,
		MaxRetries:  2,
		BackoffBase: time.Millisecond,
	}
}

func TestServiceProcessesJobs(t *testing.T) {
	handler := &recordingHandler{}
	svc := NewService(testConfig())
	svc.RegisterHandlers(handler)
	require.NoError(t, svc.Start(context.Background()))

	for i := 0; i < 5; i++ {
		_, err := svc.Enqueue("record", i)
		require.NoError(t, err)
	}
	svc.Stop()

	assert.Len(t, handler.payloads, 5)
	stats := svc.Stats()
	assert.EqualValues(t, 5, stats.Enqueued)
	assert.EqualValues(t, 5, stats.Completed)
	assert.EqualValues(t, 0, stats.Failed)
}

func TestWorkerRetriesThenSucceeds(t *testing.T) {
	handler := &recordingHandler{failUntil: 2}
	svc := NewService(testConfig())
	svc.RegisterHandlers(handler)
	require.NoError(t, svc.Start(context.Background()))

	_, err := svc.Enqueue("record", "payload")
	require.NoError(t, err)
	svc.Stop()

	assert.EqualValues(t, 3, handler.calls.Load())
	assert.Equal(t, []interface{}{"payload"}, handler.payloads)
	assert.EqualValues(t, 2, svc.Stats().Retried)
	assert.Empty(t, handler.failures)
}

func TestWorkerGivesUpAfterMaxRetries(t *testing.T) {
	handler := &recordingHandler{failUntil: 100}
	svc := NewService(testConfig())
	svc.RegisterHandlers(handler)
	require.NoError(t, svc.Start(context.Background()))

	_, err := svc.Enqueue("record", "payload")
	require.NoError(t, err)
	svc.Stop()

	assert.EqualValues(t, 3, handler.calls.Load())
	assert.Len(t, handler.failures, 1)
	assert.EqualValues(t, 1, svc.Stats().Failed)
}

func TestWorkerDropsUnknownType(t *testing.T) {
	svc := NewService(testConfig())
	require.NoError(t, svc.Start(context.Background()))

	_, err := svc.Enqueue("unknown", nil)
	require.NoError(t, err)
	svc.Stop()

	assert.EqualValues(t, 1, svc.Stats().Failed)
}

func TestEnqueueAfterStop(t *testing.T) {
	svc := NewService(testConfig())
	require.NoError(t, svc.Start(context.Background()))
	svc.Stop()

	_, err := svc.Enqueue("record", nil)
	assert.ErrorIs(t, err, ErrStopped)
}

func TestEnqueueQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.Concurrency = 1
	cfg.QueueSize = 1

	handler := &recordingHandler{block: make(chan struct{})}
	svc := NewService(cfg)
	svc.RegisterHandlers(handler)
	require.NoError(t, svc.Start(context.Background()))

	// first job is picked up by the only worker and blocks there
	_, err := svc.Enqueue("record", 1)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return svc.Stats().Pending == 0 }, time.Second, time.Millisecond)

	_, err = svc.Enqueue("record", 2)
	require.NoError(t, err)

	_, err = svc.Enqueue("record", 3)
	assert.ErrorIs(t, err, ErrQueueFull)

	close(handler.block)
	svc.Stop()
	assert.Len(t, handler.payloads, 2)
}

func TestJobsOutliveCallerContext(t *testing.T) {
	handler := &recordingHandler{}
	svc := NewService(testConfig())
	svc.RegisterHandlers(handler)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.Start(ctx))
	cancel()

	_, err := svc.Enqueue("record", "late")
	require.NoError(t, err)
	svc.Stop()

	assert.Equal(t, []interface{}{"late"}, handler.payloads)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(time.Second, 0))
	assert.Equal(t, 8*time.Second, calculateBackoff(time.Second, 3))
	assert.Equal(t, time.Hour, calculateBackoff(time.Second, 40))
}
