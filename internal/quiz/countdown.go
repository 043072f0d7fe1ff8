package quiz

import "time"

// Countdown drives a single repeating tick for the active question.  Start
// cancels any previous ticker before launching a new one, so two tickers
// never overlap.  Countdown is not synchronised: Start, Stop and Active must
// be called under the owner's lock, which must also be held while handling
// a tick.
type Countdown struct {
	interval time.Duration
	gen      uint64
	stop     chan struct{}
}

// NewCountdown returns a stopped countdown ticking every interval.
func NewCountdown(interval time.Duration) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{interval: interval}
}

// Start stops the running ticker, if any, and begins a new one.  fn receives
// the generation of the ticker that fired; handlers should drop ticks whose
// generation is no longer Active.
func (c *Countdown) Start(fn func(gen uint64)) uint64 {
	c.Stop()
	c.gen++
	gen := c.gen
	stop := make(chan struct{})
	c.stop = stop
	go func() {
		t := time.NewTicker(c.interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				fn(gen)
			}
		}
	}()
	return gen
}

// Stop cancels the running ticker.  It is safe to call when stopped.
func (c *Countdown) Stop() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// Active reports whether gen identifies the running ticker.
func (c *Countdown) Active(gen uint64) bool {
	return c.stop != nil && c.gen == gen
}
