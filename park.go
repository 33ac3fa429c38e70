package threadlet

// park.go implements the Park/Unpark primitive exposed to the socket
// adapter (§4.6): wait_fd registers interest and deadline, parks the
// calling task, and returns the wake reason once the loop resumes it.
// signal_fd synchronously unparks a waiter without OS-reported readiness.

// WaitFD executes inside task: registers fd with the poller for mask,
// inserts a waiter registry entry and (if deadlineMs > 0) a timeout heap
// entry, sets task status WAITING, yields to the scheduler context, and on
// resume returns the wake reason recorded on the task (§4.6).
func (l *Loop) WaitFD(task *Task, fd int, mask InterestMask, timeoutMs int64) WakeReason {
	if err := l.poller.Add(fd, mask); err != nil {
		// Registration failure: treat as an immediate abort so the caller
		// returns Aborted rather than hang forever.
		task.wake = WakeAborted
		return WakeAborted
	}

	var deadlineMs int64
	if timeoutMs > 0 {
		deadlineMs = l.cachedNowMs + timeoutMs
	}

	task.waitFD = fd
	task.waitMask = mask
	task.waitDeadlineMs = deadlineMs
	l.waiters.Add(fd, task, mask, deadlineMs)
	if deadlineMs > 0 {
		l.timeouts.Add(fd, deadlineMs)
	}

	task.status.Store(StatusWaiting)
	task.yield()

	return task.wake
}

// parkTimeoutOnly parks task on a synthetic, negative fd that is never
// registered with the poller, only with the timeout heap and waiter
// registry. This backs Join and the timer primitives (§6: "timers:
// one-shot/repeating, implemented as a task that yields on a timeout-only
// wait").
func (l *Loop) parkTimeoutOnly(task *Task, timeoutMs int64) WakeReason {
	fd := l.allocSyntheticFD()
	deadlineMs := l.cachedNowMs + timeoutMs
	if timeoutMs <= 0 {
		deadlineMs = l.cachedNowMs
	}

	task.waitFD = fd
	task.waitMask = 0
	task.waitDeadlineMs = deadlineMs
	l.waiters.Add(fd, task, 0, deadlineMs)
	l.timeouts.Add(fd, deadlineMs)

	task.status.Store(StatusWaiting)
	task.yield()

	return task.wake
}

// SignalFD synchronously unparks whoever is waiting on fd with the given
// reason, without the OS having reported readiness. Used by the socket
// destructor (with reason Aborted) and explicit cross-task wake.
func (l *Loop) SignalFD(fd int, reason WakeReason) {
	entry, ok := l.waiters.Lookup(fd)
	if !ok {
		return
	}
	l.waiters.Remove(fd)
	l.timeouts.Remove(fd)
	if fd >= 0 {
		_ = l.poller.Remove(fd)
	}
	entry.task.wake = reason
	l.enqueueReady(entry.task)
}

func (l *Loop) allocSyntheticFD() int {
	l.syntheticFDSeq--
	return l.syntheticFDSeq
}

func (l *Loop) enqueueReady(t *Task) {
	t.status.Store(StatusReady)
	l.ready.Enqueue(t)
}

func (l *Loop) nowMs() int64 {
	return l.cachedNowMs
}
