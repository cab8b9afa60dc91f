package engine

import "time"

// debounceWindow is the minimum interval between accepted validations of the
// same answer field. An Enter-key handler and a blur event can both fire for
// one logical answer; the second arrival inside the window is dropped so only
// one statistics outcome is committed.
const debounceWindow = 100 * time.Millisecond

// Debouncer tracks the last accepted validation time per (item, field) key.
type Debouncer struct {
	now  func() time.Time
	last map[string]time.Time
}

// NewDebouncer creates a debouncer using the wall clock.
func NewDebouncer() *Debouncer {
	return &Debouncer{
		now:  time.Now,
		last: make(map[string]time.Time),
	}
}

// ShouldValidate reports whether a validation of the given field may proceed.
// Accepting a validation starts a new suppression window for that key.
func (d *Debouncer) ShouldValidate(itemID, field string) bool {
	key := itemID + "\x00" + field
	now := d.now()

	if prev, ok := d.last[key]; ok && now.Sub(prev) < debounceWindow {
		return false
	}

	d.last[key] = now
	return true
}
