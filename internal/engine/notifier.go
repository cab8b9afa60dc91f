package engine

import (
	"log"
	"sync"
	"time"
)

// errorVisibleFor is how long a statistics error banner stays visible before
// clearing itself.
const errorVisibleFor = 5 * time.Second

// StatisticsError is a transient error surfaced when an asynchronous
// statistics commit or reset fails.
type StatisticsError struct {
	Message   string
	Timestamp time.Time
}

// Notifier holds at most one visible statistics error at a time. Showing a
// new error replaces the current one and restarts the expiry timer.
type Notifier struct {
	mu    sync.Mutex
	now   func() time.Time
	ttl   time.Duration
	err   *StatisticsError
	timer *time.Timer
	gen   uint64
}

// NewNotifier creates a notifier with the standard 5 second expiry.
func NewNotifier() *Notifier {
	return &Notifier{
		now: time.Now,
		ttl: errorVisibleFor,
	}
}

// ShowError displays a transient error message, cancelling any pending
// auto-clear and scheduling a fresh one.
func (n *Notifier) ShowError(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}

	n.gen++
	gen := n.gen
	n.err = &StatisticsError{Message: message, Timestamp: n.now()}
	n.timer = time.AfterFunc(n.ttl, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		// A newer error may have replaced this one while the timer was armed.
		if n.gen == gen {
			n.err = nil
			n.timer = nil
		}
	})
}

// ClearError dismisses the current error immediately.
func (n *Notifier) ClearError() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.err = nil
}

// Error returns the currently visible error, or nil. An error past its
// expiry counts as cleared even if the timer has not fired yet.
func (n *Notifier) Error() *StatisticsError {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil && n.now().Sub(n.err.Timestamp) >= n.ttl {
		return nil
	}
	return n.err
}

// RunGuarded runs a statistics operation and converts a failure into a
// transient error banner instead of propagating it. It reports whether the
// operation succeeded.
func (n *Notifier) RunGuarded(op func() error, fallbackMessage string) bool {
	if err := op(); err != nil {
		log.Printf("Statistics operation failed: %v", err)
		n.ShowError(fallbackMessage)
		return false
	}
	return true
}
