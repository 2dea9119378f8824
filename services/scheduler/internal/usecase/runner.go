package usecase

import (
	"context"
	"sync"
	"time"

	"postpilot/pkg/logger"
)

// Runner drives the scheduler on a fixed timer. It holds no queue of future
// work: every tick recomputes the due-set against the store, which is what
// makes the scheduler crash-safe.
type Runner struct {
	interval time.Duration
	usecase  SchedulerUseCase
	logger   *logger.Logger

	tick     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	cancel   context.CancelFunc
}

func NewRunner(interval time.Duration, uc SchedulerUseCase, log *logger.Logger) *Runner {
	return &Runner{
		interval: interval,
		usecase:  uc,
		logger:   log,
		tick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the poll loop. One cycle runs immediately so a restart picks
// up overdue posts without waiting a full interval.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	go func() {
		defer close(r.done)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.logger.Info("Scheduler started, poll interval %s", r.interval)
		r.usecase.RunCycle(ctx)

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.usecase.RunCycle(ctx)
			case <-r.tick:
				r.usecase.RunCycle(ctx)
			}
		}
	}()
}

// Tick triggers a cycle outside the timer. Used by tests and the manual
// run endpoint; a trigger is dropped if one is already pending.
func (r *Runner) Tick() {
	select {
	case r.tick <- struct{}{}:
	default:
	}
}

// Stop shuts the loop down, letting the in-flight cycle finish. If ctx
// expires first the cycle context is cancelled so in-flight dispatches abort
// via their own timeouts instead of being abandoned mid-claim. Stop is safe
// to call more than once, and is a no-op if Start was never called.
func (r *Runner) Stop(ctx context.Context) {
	r.stopOnce.Do(func() { close(r.stop) })
	if r.cancel == nil {
		return
	}
	select {
	case <-r.done:
	case <-ctx.Done():
		r.cancel()
		<-r.done
	}
	r.cancel()
	r.logger.Info("Scheduler stopped")
}
