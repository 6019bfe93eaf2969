package app

import (
	"sync"
	"time"
)

const defaultRefreshInterval = 5 * time.Second

// Ticker is the part of *time.Ticker the scheduler uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory arms a new periodic ticker.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Scheduler fires a callback periodically while it is polling and enabled.
// It is Idle until Start and returns to Idle on Stop. The callback runs on
// the scheduler goroutine and should hand long work off.
type Scheduler struct {
	mu        sync.Mutex
	interval  time.Duration
	enabled   bool
	onTick    func()
	newTicker TickerFactory
	closed    bool

	// non-nil while polling
	stop chan struct{}
	done chan struct{}
}

// NewScheduler returns an Idle scheduler. A nil factory uses time.NewTicker.
func NewScheduler(interval time.Duration, onTick func(), newTicker TickerFactory) *Scheduler {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	if newTicker == nil {
		newTicker = newTimeTicker
	}
	return &Scheduler{interval: interval, onTick: onTick, newTicker: newTicker}
}

// Start moves Idle → Polling. It is a no-op when already polling or
// after Close.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
}

func (s *Scheduler) startLocked() {
	if s.closed || s.stop != nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	ticker := s.newTicker(s.interval)
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
			}
			// A tick may race with Stop; re-check before firing.
			select {
			case <-stop:
				return
			default:
			}
			if s.Enabled() && s.onTick != nil {
				s.onTick()
			}
		}
	}()
}

// Stop moves Polling → Idle and waits for the tick goroutine to exit. It is
// a no-op when Idle. Work already handed off by a tick is not cancelled.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	done := s.stopLocked()
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Scheduler) stopLocked() chan struct{} {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	done := s.done
	s.stop, s.done = nil, nil
	return done
}

// SetInterval changes the period. When polling, the current ticker is
// stopped and a new one armed in the same critical section, so the new
// period applies from the next tick and the old ticker never fires again.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		d = defaultRefreshInterval
	}
	s.mu.Lock()
	if d == s.interval {
		s.mu.Unlock()
		return
	}
	s.interval = d
	done := s.stopLocked()
	if done != nil {
		s.startLocked()
	}
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// ToggleEnabled flips the enabled flag. Enabling starts polling, disabling
// stops it. It returns the new flag. After Close it only reports false.
func (s *Scheduler) ToggleEnabled() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	enabled := !s.enabled
	done := s.applyEnabledLocked(enabled)
	s.mu.Unlock()
	if done != nil {
		<-done
	}
	return enabled
}

// SetEnabled sets the enabled flag and starts or stops polling to match.
// It is a no-op after Close.
func (s *Scheduler) SetEnabled(enabled bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	done := s.applyEnabledLocked(enabled)
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Scheduler) applyEnabledLocked(enabled bool) chan struct{} {
	s.enabled = enabled
	if enabled {
		s.startLocked()
		return nil
	}
	return s.stopLocked()
}

// Close stops polling for good. Start, SetEnabled and ToggleEnabled do
// nothing afterwards; SetInterval only records the period.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.enabled = false
	done := s.stopLocked()
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Enabled reports the enabled flag.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Polling reports whether a ticker is armed.
func (s *Scheduler) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Interval returns the current period.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}
