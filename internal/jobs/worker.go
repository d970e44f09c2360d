package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// retryBase is the first retry delay; doubled per attempt.
	retryBase = 5 * time.Second
	// retryCap bounds the backoff.
	retryCap = 5 * time.Minute
	// claimLease is how long a claimed job stays invisible to polls.
	claimLease = time.Minute
	// claimBatch is the maximum jobs taken per poll.
	claimBatch = 10
)

// Connectivity probes whether the device currently has a network path.
type Connectivity interface {
	Online() bool
}

// HandlerFunc executes one job. Returning an error wrapped with Retry
// re-schedules the job with backoff; any other error terminates it.
type HandlerFunc func(ctx context.Context, spec Spec) error

// Worker polls the store and dispatches due jobs to registered handlers.
// One worker per process is sufficient; the store's lease keeps a slow
// job from being handed out twice.
type Worker struct {
	store Store
	conn  Connectivity
	poll  time.Duration

	mu       sync.RWMutex
	handlers map[string]HandlerFunc

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

var _ Scheduler = (*Worker)(nil)

// NewWorker creates a worker over the given store. conn may be nil, in
// which case network-constrained jobs run unconditionally.
func NewWorker(store Store, conn Connectivity, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Worker{
		store:    store,
		conn:     conn,
		poll:     pollInterval,
		handlers: make(map[string]HandlerFunc),
		stopCh:   make(chan struct{}),
	}
}

// Register installs the handler for a job type. Must be called before
// Start.
func (w *Worker) Register(jobType string, h HandlerFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = h
}

// Enqueue implements Scheduler.
func (w *Worker) Enqueue(ctx context.Context, spec Spec) error {
	spec.Key = ""
	return w.store.Put(ctx, spec, Replace)
}

// EnqueueUnique implements Scheduler.
func (w *Worker) EnqueueUnique(ctx context.Context, key string, policy ReplacePolicy, spec Spec) error {
	spec.Key = key
	return w.store.Put(ctx, spec, policy)
}

// Start launches the poll loop.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Close stops the poll loop and waits for in-flight jobs.
func (w *Worker) Close() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

func (w *Worker) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Worker) tick() {
	ctx := context.Background()

	due, err := w.store.Claim(ctx, time.Now(), claimLease, claimBatch)
	if err != nil {
		slog.Warn("[Jobs] Claim failed", "error", err)
		return
	}

	for _, spec := range due {
		w.run(ctx, spec)
	}
}

func (w *Worker) run(ctx context.Context, spec Spec) {
	if spec.Constraints.NetworkRequired && w.conn != nil && !w.conn.Online() {
		// Not a failed attempt; wait for connectivity.
		spec.RunAt = time.Now().Add(w.poll * 5)
		if err := w.store.Reschedule(ctx, spec); err != nil {
			slog.Warn("[Jobs] Reschedule failed", "job_id", spec.ID, "error", err)
		}
		return
	}

	w.mu.RLock()
	handler, ok := w.handlers[spec.Type]
	w.mu.RUnlock()
	if !ok {
		slog.Warn("[Jobs] No handler for job type", "type", spec.Type, "job_id", spec.ID)
		_ = w.store.Remove(ctx, spec.ID)
		return
	}

	err := handler(ctx, spec)
	switch {
	case err == nil:
		if err := w.store.Remove(ctx, spec.ID); err != nil {
			slog.Warn("[Jobs] Remove failed", "job_id", spec.ID, "error", err)
		}
	case IsRetryable(err):
		spec.Attempts++
		spec.RunAt = time.Now().Add(backoff(spec.Attempts))
		slog.Debug("[Jobs] Retrying job",
			"type", spec.Type,
			"job_id", spec.ID,
			"attempt", spec.Attempts,
			"run_at", spec.RunAt.Format(time.RFC3339),
		)
		if err := w.store.Reschedule(ctx, spec); err != nil {
			slog.Warn("[Jobs] Reschedule failed", "job_id", spec.ID, "error", err)
		}
	default:
		slog.Warn("[Jobs] Job failed permanently", "type", spec.Type, "job_id", spec.ID, "error", err)
		_ = w.store.Remove(ctx, spec.ID)
	}
}

// backoff returns the delay before the given attempt number.
func backoff(attempts int) time.Duration {
	d := retryBase
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= retryCap {
			return retryCap
		}
	}
	if d > retryCap {
		d = retryCap
	}
	return d
}

// String implements fmt.Stringer for log output.
func (s Spec) String() string {
	return fmt.Sprintf("%s[%s]", s.Type, s.ID)
}
