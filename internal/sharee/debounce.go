package sharee

import (
	"sync"
	"time"
)

// DefaultDebounceInterval is how long input must stay quiet before a search
// is considered settled.
const DefaultDebounceInterval = 500 * time.Millisecond

// debouncer restarts a single-shot timer on every edit and calls fire once
// the input has been quiet for a full interval. There is no maximum wait; a
// user who never stops typing never settles.
//
// fire receives the epoch of the edit that armed the timer. Stopping a timer
// whose callback already ran cannot recall it, so a late callback can race a
// newer edit; consumers must check Current before acting on an expiry.
type debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	epoch    uint64
	fire     func(epoch uint64)
}

func newDebouncer(interval time.Duration, fire func(epoch uint64)) *debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	return &debouncer{interval: interval, fire: fire}
}

// Edit restarts the quiet-period timer and invalidates earlier epochs
func (d *debouncer) Edit() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.epoch++
	epoch := d.epoch
	d.timer = time.AfterFunc(d.interval, func() { d.fire(epoch) })
}

// Stop cancels any pending settle and invalidates earlier epochs
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.epoch++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Current reports whether the epoch still belongs to the latest edit
func (d *debouncer) Current(epoch uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return epoch == d.epoch
}
