package service

// gate.go serializes access to the roster.
//
// core.Store does no locking, so every service operation runs while holding
// the single slot of a Gate. A caller that cannot get the slot within the
// wait time fails with ErrBusy instead of queueing indefinitely behind a
// slow save.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrBusy is returned when the roster stays locked for longer than the
// gate's wait time. Clients should retry after a short delay.
var ErrBusy = errors.New("roster busy, please try again")

// DefaultGateWait is how long an operation waits for the roster.
const DefaultGateWait = 5 * time.Second

// Gate is a one-slot semaphore with a bounded wait.
type Gate struct {
	slot    chan struct{}
	maxWait time.Duration
	waiting atomic.Int32
}

// NewGate creates a gate. maxWait <= 0 uses DefaultGateWait.
func NewGate(maxWait time.Duration) *Gate {
	if maxWait <= 0 {
		maxWait = DefaultGateWait
	}
	return &Gate{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire takes the slot, waiting up to maxWait. It returns ErrBusy on
// timeout or ctx's error if ctx ends first. The caller must Release.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.slot <- struct{}{}:
		return nil
	default:
	}

	g.waiting.Add(1)
	defer g.waiting.Add(-1)

	timer := time.NewTimer(g.maxWait)
	defer timer.Stop()

	select {
	case g.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrBusy
	}
}

// TryAcquire takes the slot only if it is free.
func (g *Gate) TryAcquire() bool {
	select {
	case g.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the slot. Must be called exactly once per successful
// Acquire or TryAcquire.
func (g *Gate) Release() {
	<-g.slot
}

// Busy reports whether the slot is held.
func (g *Gate) Busy() bool {
	return len(g.slot) == 1
}

// Waiting returns how many callers are blocked in Acquire.
func (g *Gate) Waiting() int {
	return int(g.waiting.Load())
}

// WaitIdle blocks until the slot is free or ctx ends. Used on shutdown so
// an in-flight save finishes before the process exits.
func (g *Gate) WaitIdle(ctx context.Context) error {
	if err := g.Acquire(ctx); err != nil {
		if errors.Is(err, ErrBusy) {
			return g.WaitIdle(ctx)
		}
		return err
	}
	g.Release()
	return nil
}
