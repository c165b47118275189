package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueFull is returned when the dispatch queue cannot accept another
// run.
var ErrQueueFull = errors.New("run queue is full")

// job is one queued execution request.
type job struct {
	workflowID  string
	triggerType string
	triggerData map[string]any
}

// Dispatcher executes workflows asynchronously through a bounded queue
// and a fixed worker pool. Synchronous callers use Engine.Execute
// directly.
type Dispatcher struct {
	engine  *Engine
	logger  *slog.Logger
	jobs    chan job
	workers int
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Non-positive workers or queue sizes
// fall back to sane defaults.
func NewDispatcher(engine *Engine, logger *slog.Logger, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}

	if queueSize <= 0 {
		queueSize = 100
	}

	return &Dispatcher{
		engine:  engine,
		logger:  logger,
		jobs:    make(chan job, queueSize),
		workers: workers,
	}
}

// Start launches the worker pool. Workers exit when the context is
// cancelled or the queue is closed.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)

		go func(worker int) {
			defer d.wg.Done()

			logger := d.logger.With("worker", worker)

			for {
				select {
				case <-ctx.Done():
					return
				case queued, ok := <-d.jobs:
					if !ok {
						return
					}

					instance, err := d.engine.Execute(ctx, queued.workflowID, queued.triggerType, queued.triggerData)
					if err != nil {
						logger.ErrorContext(ctx, "Async run failed to start",
							"workflow_id", queued.workflowID, "error", err)

						continue
					}

					logger.InfoContext(ctx, "Async run finished",
						"workflow_id", queued.workflowID,
						"instance_id", instance.ID,
						"status", instance.Status)
				}
			}
		}(i)
	}
}

// Dispatch enqueues a run without waiting for it. Returns ErrQueueFull
// when the queue is at capacity.
func (d *Dispatcher) Dispatch(workflowID, triggerType string, triggerData map[string]any) error {
	select {
	case d.jobs <- job{workflowID: workflowID, triggerType: triggerType, triggerData: triggerData}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for in-flight runs to finish.
func (d *Dispatcher) Stop() {
	close(d.jobs)
	d.wg.Wait()
}
