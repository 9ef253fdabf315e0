package grid

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last gesture event before
// a layout change is emitted.
const DefaultDebounce = 100 * time.Millisecond

// Debouncer coalesces bursts of calls into one callback that fires after a
// quiet period. A change is pending exactly while a timer is armed; each
// arming gets a new generation so a superseded timer never fires.
//
// All methods are safe for concurrent use. The callback never runs
// concurrently with itself.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64

	delay    time.Duration
	callback func()
	running  sync.Mutex
}

// NewDebouncer creates a debouncer that runs callback once no Call has
// arrived for delay.
func NewDebouncer(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{delay: delay, callback: callback}
}

// Call marks a change and restarts the quiet period.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disarmLocked()
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.expire(gen) })
}

// Flush runs the callback now if a change is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	armed := d.disarmLocked()
	d.mu.Unlock()
	if armed {
		d.run()
	}
}

// Cancel drops any pending change without running the callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	d.disarmLocked()
	d.mu.Unlock()
}

// Pending reports whether a change is waiting for its quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// disarmLocked stops the armed timer and starts a new generation. It
// reports whether a change was pending.
func (d *Debouncer) disarmLocked() bool {
	d.gen++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.run()
}

func (d *Debouncer) run() {
	if d.callback == nil {
		return
	}
	d.running.Lock()
	defer d.running.Unlock()
	d.callback()
}
