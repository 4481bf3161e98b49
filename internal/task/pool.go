package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PoolConfig holds configuration for the pool
type PoolConfig struct {
	// PoolSize determines how many execution units the pool runs.
	// If zero or negative, defaults to the CPU count, capped at 8.
	PoolSize int

	// MaxQueueDepth limits how many tasks may wait in the queue across
	// both priority classes. Zero or negative means unlimited.
	MaxQueueDepth int

	// OverflowPolicy decides what happens to submissions that arrive at
	// the depth limit. Defaults to OverflowReject.
	OverflowPolicy OverflowPolicy

	// RestartDelay is how long a crashed unit's slot stays down before
	// the unit is recreated. If zero or negative, defaults to 1 second.
	RestartDelay time.Duration

	// RetryCrashed re-queues the task a crashed unit was running, once,
	// at the head of its priority class. When false the task is rejected
	// with a UnitCrashError and never retried.
	RetryCrashed bool
}

// DefaultPoolConfig returns a PoolConfig with reasonable defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		PoolSize:       defaultPoolSize(),
		MaxQueueDepth:  100,
		OverflowPolicy: OverflowReject,
		RestartDelay:   time.Second,
		RetryCrashed:   false,
	}
}

// defaultPoolSize derives the unit count from the CPU count, capped at 8.
func defaultPoolSize() int {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	return n
}

// Pool schedules tasks onto a fixed set of execution units. Construct one
// with NewPool; the zero value is not usable. A Pool must be released with
// Shutdown, after which every method rejects with ErrPoolShutdown.
type Pool struct {
	config   PoolConfig
	registry *Registry
	logger   *slog.Logger
	metrics  MetricsRecorder

	// baseCtx is the context handlers run under. It is cancelled only
	// when a shutdown deadline expires and stragglers are abandoned.
	baseCtx    context.Context
	cancelBase context.CancelFunc

	submitCh   chan submitRequest
	results    chan unitResult
	restartCh  chan int
	statsCh    chan chan PoolStats
	shutdownCh chan chan struct{}
	stopped    chan struct{}

	wg sync.WaitGroup

	// Coordinator-owned state. Only the run goroutine reads or writes
	// these fields; finalStats is published before stopped closes.
	queue               *priorityQueue
	waiting             []submitRequest
	inFlight            map[uuid.UUID]*queuedTask
	units               []*unit
	draining            bool
	shutdownDone        []chan struct{}
	submitted           uint64
	completed           uint64
	failed              uint64
	crashes             uint64
	rejected            uint64
	submittedByType     map[string]uint64
	submittedByPriority map[Priority]uint64
	finalStats          PoolStats
}

// NewPool creates a pool dispatching from the given registry and starts
// its execution units immediately. The registry must already hold every
// handler the pool will ever dispatch; it is not consulted for mutations
// afterwards. Returns an error for a nil or empty registry, a nil logger,
// or an unrecognized overflow policy.
func NewPool(registry *Registry, config PoolConfig, logger *slog.Logger) (*Pool, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, fmt.Errorf("pool requires at least one registered task handler")
	}
	if logger == nil {
		return nil, fmt.Errorf("pool requires a logger")
	}

	if config.PoolSize <= 0 {
		defaultSize := defaultPoolSize()
		logger.Warn("invalid pool size specified, using default",
			"specified_size", config.PoolSize,
			"default_size", defaultSize)
		config.PoolSize = defaultSize
	}
	if config.OverflowPolicy == "" {
		config.OverflowPolicy = OverflowReject
	}
	if !isValidOverflowPolicy(config.OverflowPolicy) {
		return nil, fmt.Errorf("unknown overflow policy %q", config.OverflowPolicy)
	}
	if config.RestartDelay <= 0 {
		config.RestartDelay = time.Second
	}
	if config.MaxQueueDepth < 0 {
		config.MaxQueueDepth = 0
	}

	baseCtx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		config:              config,
		registry:            registry,
		logger:              logger,
		baseCtx:             baseCtx,
		cancelBase:          cancel,
		submitCh:            make(chan submitRequest),
		results:             make(chan unitResult, config.PoolSize),
		restartCh:           make(chan int, config.PoolSize),
		statsCh:             make(chan chan PoolStats),
		shutdownCh:          make(chan chan struct{}),
		stopped:             make(chan struct{}),
		queue:               &priorityQueue{},
		inFlight:            make(map[uuid.UUID]*queuedTask),
		units:               make([]*unit, config.PoolSize),
		submittedByType:     make(map[string]uint64),
		submittedByPriority: make(map[Priority]uint64),
	}

	for i := range p.units {
		inbox := make(chan *queuedTask, 1)
		p.units[i] = &unit{id: i, inbox: inbox, alive: true}
		p.wg.Add(1)
		go p.runUnit(i, inbox)
	}

	go p.run()

	logger.Info("pool started",
		"pool_size", config.PoolSize,
		"max_queue_depth", config.MaxQueueDepth,
		"overflow_policy", config.OverflowPolicy,
		"task_types", registry.Len())

	return p, nil
}

// SetMetricsRecorder attaches a metrics recorder. Call it right after
// NewPool, before any submission; it is not synchronized against a
// running pool.
func (p *Pool) SetMetricsRecorder(recorder MetricsRecorder) {
	p.metrics = recorder
}

// Size returns the number of execution units the pool was built with.
func (p *Pool) Size() int {
	return len(p.units)
}

// Enqueue validates a spec and hands it to the coordinator, returning a
// Pending handle once the task is admitted. Validation covers the type
// tag, the payload's Go type, and the payload's own Validate method when
// it has one, so a bad task never reaches the queue.
//
// Under the block overflow policy Enqueue suspends until the queue has
// room. Cancelling ctx abandons the wait only; a submission already handed
// to the coordinator may still be admitted and run.
func (p *Pool) Enqueue(ctx context.Context, spec Spec) (*Pending, error) {
	if spec.Priority == "" {
		spec.Priority = PriorityNormal
	}
	if !isValidPriority(spec.Priority) {
		return nil, fmt.Errorf("invalid task priority %q", spec.Priority)
	}
	if err := p.registry.CheckPayload(spec.Type, spec.Payload); err != nil {
		return nil, err
	}

	t := &queuedTask{
		id:        uuid.New(),
		taskType:  spec.Type,
		payload:   spec.Payload,
		priority:  spec.Priority,
		createdAt: time.Now().UTC(),
	}
	t.pending = newPending(t.id)

	req := submitRequest{task: t, reply: make(chan error, 1)}

	select {
	case p.submitCh <- req:
	case <-p.stopped:
		return nil, fmt.Errorf("submission rejected: %w", ErrPoolShutdown)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case err := <-req.reply:
		if err != nil {
			return nil, err
		}
		return t.pending, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Submit enqueues one task and waits for it to settle. The returned error
// is a HandlerError for a handler failure, a UnitCrashError if the unit
// running the task crashed, or wraps ErrPoolShutdown, ErrQueueFull,
// ErrUnknownTaskType, or ErrInvalidPayload for rejected submissions.
// Cancelling ctx abandons the wait; the task itself still runs.
func (p *Pool) Submit(ctx context.Context, spec Spec) (Result, error) {
	pending, err := p.Enqueue(ctx, spec)
	if err != nil {
		return Result{}, err
	}
	return pending.Wait(ctx)
}

// SubmitBatch enqueues every spec and waits for all of them to settle.
// Outcomes are index-aligned with specs: each slot ends up with either a
// Result or an error, and one task's failure never aborts its siblings.
// The returned error is non-nil only when ctx was cancelled before every
// task settled.
func (p *Pool) SubmitBatch(ctx context.Context, specs []Spec) (*BatchResult, error) {
	batch := &BatchResult{
		Results: make([]Result, len(specs)),
		Errors:  make([]error, len(specs)),
	}

	pendings := make([]*Pending, len(specs))
	for i, spec := range specs {
		pending, err := p.Enqueue(ctx, spec)
		if err != nil {
			batch.Errors[i] = err
			continue
		}
		pendings[i] = pending
	}

	for i, pending := range pendings {
		if pending == nil {
			continue
		}
		result, err := pending.Wait(ctx)
		if err != nil {
			batch.Errors[i] = err
			continue
		}
		batch.Results[i] = result
	}

	for _, err := range batch.Errors {
		if err != nil {
			batch.Failed++
		}
	}
	batch.Successful = len(specs) - batch.Failed

	if err := ctx.Err(); err != nil {
		return batch, err
	}
	return batch, nil
}

// SubmitStreamingBatch processes specs in pool-sized chunks, never
// enqueueing more than one chunk at a time, and reports progress after
// each task settles. onProgress may be nil. Failed slots carry a zero
// Result and their error at the same index; processing continues through
// failures. Results, errors, and progress counts cover every spec unless
// ctx is cancelled, in which case the unsettled slots hold the ctx error
// and the ctx error is returned.
func (p *Pool) SubmitStreamingBatch(ctx context.Context, specs []Spec, onProgress ProgressFunc) ([]Result, []error, error) {
	results := make([]Result, len(specs))
	errs := make([]error, len(specs))
	total := len(specs)
	chunkSize := p.Size()
	completed := 0

	type settled struct {
		idx    int
		result Result
		err    error
	}

	batch := 0
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		batch++

		settleCh := make(chan settled, end-start)
		for i := start; i < end; i++ {
			pending, err := p.Enqueue(ctx, specs[i])
			if err != nil {
				settleCh <- settled{idx: i, err: err}
				continue
			}
			go func(idx int, pending *Pending) {
				result, err := pending.Wait(ctx)
				settleCh <- settled{idx: idx, result: result, err: err}
			}(i, pending)
		}

		for n := 0; n < end-start; n++ {
			s := <-settleCh
			if s.err != nil {
				errs[s.idx] = s.err
			} else {
				results[s.idx] = s.result
			}
			completed++

			if onProgress != nil {
				onProgress(Progress{
					Completed: completed,
					Total:     total,
					Fraction:  float64(completed) / float64(total),
					Batch:     batch,
					TaskID:    s.result.TaskID,
					Result:    s.result,
					Err:       s.err,
				})
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return results, errs, err
	}
	return results, errs, nil
}

// Stats returns a consistent snapshot of queue, unit, and counter state,
// served by the coordinator so it can never observe a half-applied
// update. After shutdown it returns the pool's final snapshot.
func (p *Pool) Stats() PoolStats {
	reply := make(chan PoolStats, 1)
	select {
	case p.statsCh <- reply:
		return <-reply
	case <-p.stopped:
		return p.finalStats
	}
}

// QueueDepth returns the current number of queued tasks.
func (p *Pool) QueueDepth() int {
	return p.Stats().QueueDepth
}

// Shutdown stops the pool: tasks still in the queue are rejected with
// ErrPoolShutdown, in-flight tasks run to completion and settle normally,
// and no new submissions are accepted. It returns once the drain finishes
// or ctx expires; on expiry the handlers' context is cancelled, still
// running units are abandoned to finish in the background, and ctx's
// error is returned. Calling Shutdown again is harmless.
func (p *Pool) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case p.shutdownCh <- done:
	case <-p.stopped:
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.cancelBase()
		return ctx.Err()
	}
}
