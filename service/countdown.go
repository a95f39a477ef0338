package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Countdown tracks the time left on an issued code. Remaining time is always
// derived from the deadline and the clock; the ticker only reports it.
type Countdown struct {
	now    func() time.Time
	tick   time.Duration
	onTick func(remaining time.Duration)

	mu       sync.Mutex
	deadline time.Time
	ticker   *tickerRun
}

// tickerRun is one armed ticker goroutine.
type tickerRun struct {
	cancel context.CancelFunc
	done   chan struct{}
	// set while onTick runs; Stop issued from inside the callback must not
	// wait for the goroutine that is running it
	inTick atomic.Bool
}

// NewCountdown builds a countdown. onTick may be nil; a non-positive tick
// disables the ticker goroutine.
func NewCountdown(now func() time.Time, tick time.Duration, onTick func(remaining time.Duration)) *Countdown {
	if now == nil {
		now = time.Now
	}
	return &Countdown{now: now, tick: tick, onTick: onTick}
}

// Start (re)arms the countdown for d, cancelling any running ticker. It is
// safe to call from onTick.
func (c *Countdown) Start(d time.Duration) {
	c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.deadline = c.now().Add(d)
	if c.tick <= 0 || c.onTick == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &tickerRun{cancel: cancel, done: make(chan struct{})}
	c.ticker = run
	go c.run(ctx, run)
}

func (c *Countdown) run(ctx context.Context, run *tickerRun) {
	defer close(run.done)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run.inTick.Store(true)
			if ctx.Err() != nil {
				run.inTick.Store(false)
				return
			}
			remaining := c.Remaining()
			c.onTick(remaining)
			run.inTick.Store(false)
			if remaining == 0 {
				return
			}
		}
	}
}

// Stop cancels the ticker and clears the deadline. Unless it is called from
// within onTick, it returns only once the ticker goroutine has exited.
func (c *Countdown) Stop() {
	c.mu.Lock()
	run := c.ticker
	c.ticker = nil
	c.deadline = time.Time{}
	c.mu.Unlock()

	if run == nil {
		return
	}
	run.cancel()
	if !run.inTick.Load() {
		<-run.done
	}
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deadline.IsZero() {
		return 0
	}
	remaining := c.deadline.Sub(c.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether an armed countdown has reached zero.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	armed := !c.deadline.IsZero()
	c.mu.Unlock()

	return armed && c.Remaining() == 0
}
