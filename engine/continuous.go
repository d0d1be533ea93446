package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"trafficsim/errs"
)

// StartContinuous launches a background goroutine that calls Tick every
// intervalMs (§5's cancellation model, §6.2). The goroutine runs under an
// errgroup bound to a cancellable context; panics are not recovered.
// Cancellation is observed only at tick boundaries — in-flight tick work
// always completes (§5).
func (e *Engine) StartContinuous(intervalMs int) error {
	e.mu.Lock()
	if e.continuousStop != nil {
		e.mu.Unlock()
		return errs.Conflict("continuous simulation already running")
	}
	if intervalMs <= 0 {
		intervalMs = e.cfgStore.Get().TickIntervalMs
	}
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)
	e.continuousStop = cancel
	e.mu.Unlock()

	group.Go(func() error {
		ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				e.Tick()
			}
		}
	})
	return nil
}

// StopContinuous cancels the background tick loop started by
// StartContinuous, if any (§6.2's stop_continuous).
func (e *Engine) StopContinuous() {
	e.mu.Lock()
	stop := e.continuousStop
	e.continuousStop = nil
	e.mu.Unlock()
	if stop != nil {
		stop()
	}
}
