package threadlet

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestWaitFDReturnsReadyWithoutParkingWhenAlreadyReadable exercises the §8
// boundary behaviour: wait_fd(fd, READ, 0) on an fd that is already
// readable returns Ready on the very next tick rather than blocking.
func TestWaitFDReturnsReadyWithoutParkingWhenAlreadyReadable(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(); w.Close() })

	_, werr := w.Write([]byte("x"))
	require.NoError(t, werr)

	loop := newTestLoop(t)
	var reason WakeReason
	loop.Spawn(func(t *Task) {
		reason = t.loop.WaitFD(t, int(r.Fd()), InterestRead, 0)
		t.loop.Stop()
	})

	runLoopUntilDone(t, loop, 2*time.Second)
	require.Equal(t, WakeReady, reason)
}

// TestWaitFDTimesOutWithNoReadiness covers: a timeout of a few milliseconds
// on an fd with nothing to read returns Timeout rather than hanging.
func TestWaitFDTimesOutWithNoReadiness(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(); w.Close() })

	loop := newTestLoop(t)
	var reason WakeReason
	loop.Spawn(func(t *Task) {
		reason = t.loop.WaitFD(t, int(r.Fd()), InterestRead, 20)
		t.loop.Stop()
	})

	runLoopUntilDone(t, loop, 2*time.Second)
	require.Equal(t, WakeTimeout, reason)
}

// TestSignalFDAbortsWaiter covers the cross-task unpark path used by socket
// close: a task parked on SignalFD's fd is unparked with Aborted before any
// readiness or timeout would naturally fire.
func TestSignalFDAbortsWaiter(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(); w.Close() })

	loop := newTestLoop(t)
	fd := int(r.Fd())
	var reason WakeReason

	loop.Spawn(func(t *Task) {
		reason = t.loop.WaitFD(t, fd, InterestRead, 5000)
	})
	loop.Spawn(func(t *Task) {
		t.loop.parkTimeoutOnly(t, 20)
		t.loop.SignalFD(fd, WakeAborted)
		t.loop.Stop()
	})

	runLoopUntilDone(t, loop, 2*time.Second)
	require.Equal(t, WakeAborted, reason)
}

// TestParkTimeoutOnlyZeroFiresNextTick covers the synthetic-fd path used by
// Join and timers: a zero-delay park resolves to Timeout on the very next
// iteration rather than blocking indefinitely.
func TestParkTimeoutOnlyZeroFiresNextTick(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t)
	var reason WakeReason
	loop.Spawn(func(t *Task) {
		reason = t.loop.parkTimeoutOnly(t, 0)
		t.loop.Stop()
	})

	runLoopUntilDone(t, loop, 2*time.Second)
	require.Equal(t, WakeTimeout, reason)
}
