package progress

import (
	"sync"
	"time"
)

// Countdown is a per-game timer counting whole seconds down to zero.
//
// Callbacks run while the countdown is locked, so once Stop returns no further tick or expiry
// can fire. Callbacks must not call back into the countdown.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	stopped   bool
	expired   bool
	onTick    func(remaining int)
	onExpire  func()

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCountdown creates a stopped-clock countdown; call Start or drive it with Tick.
func NewCountdown(seconds int, onTick func(remaining int), onExpire func()) *Countdown {
	return &Countdown{
		remaining: seconds,
		onTick:    onTick,
		onExpire:  onExpire,
		stop:      make(chan struct{}),
	}
}

// Start ticks every interval on a background goroutine until the countdown stops or expires.
func (c *Countdown) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				if _, done := c.Tick(); done {
					return
				}
			}
		}
	}()
}

// Tick advances the countdown by one second. done reports whether the countdown has finished,
// either by expiring now or because it was already stopped or expired.
func (c *Countdown) Tick() (remaining int, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.expired {
		return c.remaining, true
	}
	c.remaining--
	if c.remaining > 0 {
		if c.onTick != nil {
			c.onTick(c.remaining)
		}
		return c.remaining, false
	}

	c.remaining = 0
	c.expired = true
	if c.onExpire != nil {
		c.onExpire()
	}
	return 0, true
}

// Stop halts the countdown. A stopped countdown never resumes. Stop is idempotent.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

func (c *Countdown) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}
