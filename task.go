package threadlet

var taskIDSeq paddedSeqCounter

// Task is the C5 component: a cooperative unit of execution pinned to one
// OS thread for life (§1 Non-goals). Go cannot switch an arbitrary machine
// stack from user code, so per §9's Design Notes allowance for a
// "language-level async runtime configured for single-threaded execution",
// each Task runs its entry function on its own goroutine and the
// "stackful context switch" is a synchronous, unbuffered channel handoff
// with the owning Loop's driver goroutine: exactly one side runs at a time.
type Task struct {
	ID     uint64
	loop   *Loop
	entry  func(*Task)
	status *fastStatus

	// wait record, valid only while status == StatusWaiting (§3).
	waitFD         int
	waitMask       InterestMask
	waitDeadlineMs int64
	wake           WakeReason

	panicVal any

	resumeCh chan struct{} // loop -> task: you may run
	yieldCh  chan struct{} // task -> loop: I have yielded or finished
}

// NewTask allocates a task bound to loop, running entry when first resumed.
// The task is not scheduled by this call (§4.4 Create).
func NewTask(loop *Loop, entry func(t *Task)) *Task {
	t := &Task{
		ID:       taskIDSeq.next(),
		loop:     loop,
		entry:    entry,
		status:   newFastStatus(StatusReady),
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan struct{}),
	}
	go t.run()
	return t
}

// Loop returns the task's owning event loop.
func (t *Task) Loop() *Loop { return t.loop }

// Status returns the task's current lifecycle state.
func (t *Task) Status() Status { return t.status.Load() }

// Finished reports whether the task reached FINISHED or ABORTED.
func (t *Task) Finished() bool {
	s := t.status.Load()
	return s == StatusFinished || s == StatusAborted
}

// WakeReason returns the reason the task was last unparked.
func (t *Task) WakeReason() WakeReason { return t.wake }

func (t *Task) run() {
	<-t.resumeCh
	defer func() {
		if r := recover(); r != nil {
			t.panicVal = r
			t.status.Store(StatusAborted)
		} else if t.status.Load() != StatusAborted {
			t.status.Store(StatusFinished)
		}
		t.yieldCh <- struct{}{}
	}()
	t.entry(t)
}

// yield unconditionally switches from the task's goroutine to the owning
// loop's driver goroutine (§4.4 Yield). The caller must have set t.status
// before calling; yield itself never changes status.
func (t *Task) yield() {
	t.yieldCh <- struct{}{}
	<-t.resumeCh
}

// resume is called from the loop's driver goroutine to run the task until
// its next yield or completion. The caller must have already set status to
// StatusRunning and current_task to t.
func (t *Task) resume() {
	t.resumeCh <- struct{}{}
	<-t.yieldCh
}

// Resume attaches an unscheduled or yielded task to the calling thread's
// loop ready queue (§4.4 Resume (external)). It is an error to resume a
// task on a loop other than the one that first scheduled it.
func (t *Task) Resume(loop *Loop) error {
	if loop != t.loop {
		return New(InvalidParam, "task resumed on a loop other than its owner")
	}
	if !t.status.TryTransition(StatusReady, StatusReady) && t.status.Load() != StatusReady {
		// Allow re-arming a task that yielded voluntarily (status left as
		// Ready by the caller before yield) but reject resuming a task that
		// is currently running, waiting, finished, or aborted.
		switch t.status.Load() {
		case StatusFinished, StatusAborted, StatusRunning, StatusWaiting:
			return New(InvalidParam, "task is not resumable in its current state")
		}
	}
	loop.enqueueReady(t)
	return nil
}

// Join blocks the calling task until target reaches FINISHED, bounded by
// timeoutMs (§4.4 Join). It must be called from within a task running on
// target's own loop, and re-checks target every joinPollMs, yielding to the
// loop between checks. Returns Timeout if the deadline elapses first.
func Join(self, target *Task, timeoutMs int64) *Error {
	const joinPollMs = 10
	if self.loop != target.loop {
		return New(InvalidParam, "join across loops is not supported")
	}
	if target.Finished() {
		return nil
	}
	deadline := self.loop.nowMs() + timeoutMs
	for {
		remaining := deadline - self.loop.nowMs()
		if remaining < 0 {
			remaining = 0
		}
		if remaining > joinPollMs {
			remaining = joinPollMs
		}
		reason := self.loop.parkTimeoutOnly(self, remaining)
		if target.Finished() {
			return nil
		}
		if reason == WakeTimeout && self.loop.nowMs() >= deadline {
			return New(Timeout, "join deadline exceeded")
		}
		if reason == WakeAborted {
			return New(Aborted, "join interrupted")
		}
	}
}
