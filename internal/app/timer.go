package app

import (
	"sync"
	"time"
)

// DefaultTickInterval is how often a running round reports remaining time.
const DefaultTickInterval = 100 * time.Millisecond

// Ticker abstracts the periodic tick source so countdowns can be driven
// manually in tests instead of by the wall clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a Ticker firing at the given interval.
type TickerFactory func(interval time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// RealTicker is the wall-clock TickerFactory used outside tests.
func RealTicker(interval time.Duration) Ticker {
	return realTicker{t: time.NewTicker(interval)}
}

// roundTimer counts one round down tick by tick. Each timer carries the
// generation of the round it belongs to; the session compares generations so
// a late expiry from a cancelled timer is a no-op rather than a phantom
// round resolution.
type roundTimer struct {
	gen      uint64
	stop     chan struct{}
	stopOnce sync.Once
}

func startRoundTimer(
	gen uint64,
	duration, interval time.Duration,
	ticks TickerFactory,
	onTick func(gen uint64, remaining time.Duration),
	onExpire func(gen uint64),
) *roundTimer {
	t := &roundTimer{gen: gen, stop: make(chan struct{})}
	ticker := ticks(interval)

	go func() {
		defer ticker.Stop()
		remaining := duration
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C():
				remaining -= interval
				if remaining < 0 {
					remaining = 0
				}
				onTick(gen, remaining)
				if remaining == 0 {
					onExpire(gen)
					return
				}
			}
		}
	}()
	return t
}

// Cancel stops the timer; safe to call repeatedly.
func (t *roundTimer) Cancel() {
	t.stopOnce.Do(func() { close(t.stop) })
}
