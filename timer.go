package threadlet

import "sync/atomic"

// Timer is the C6-adjacent convenience described in §6: "timers:
// one-shot/repeating, implemented as a task that yields on a timeout-only
// wait." A Timer owns the task that sleeps and re-fires it; there is no
// separate OS timer primitive.
type Timer struct {
	task      *Task
	cancelled atomic.Bool
}

// AfterFunc schedules fn to run once, after delayMs, on loop. The returned
// Timer can be cancelled before it fires.
func AfterFunc(loop *Loop, delayMs int64, fn func()) *Timer {
	timer := &Timer{}
	timer.task = loop.Spawn(func(t *Task) {
		reason := t.loop.parkTimeoutOnly(t, delayMs)
		if reason != WakeTimeout || timer.cancelled.Load() {
			return
		}
		fn()
	})
	return timer
}

// NewTicker schedules fn to run every periodMs on loop, up to count times
// (count <= 0 means unbounded, until Stop is called or the loop shuts
// down). Each firing parks the backing task again for the next period, so
// a slow fn delays subsequent firings rather than overlapping them.
func NewTicker(loop *Loop, periodMs int64, count int, fn func(iteration int)) *Timer {
	timer := &Timer{}
	timer.task = loop.Spawn(func(t *Task) {
		for i := 0; count <= 0 || i < count; i++ {
			reason := t.loop.parkTimeoutOnly(t, periodMs)
			if timer.cancelled.Load() {
				return
			}
			if reason != WakeTimeout {
				return
			}
			fn(i)
		}
	})
	return timer
}

// Stop cancels the timer. If it has already fired (one-shot) or exhausted
// its count (ticker), Stop is a no-op. A ticker's in-flight parked wait is
// not interrupted; cancellation takes effect on the next scheduled firing.
// Safe to call from any goroutine.
func (t *Timer) Stop() {
	t.cancelled.Store(true)
}
