package threadlet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFastStatusLoadStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := newFastStatus(StatusReady)
	require.Equal(t, StatusReady, s.Load())

	s.Store(StatusRunning)
	require.Equal(t, StatusRunning, s.Load())
}

func TestFastStatusTryTransitionOnlyFromExpectedState(t *testing.T) {
	t.Parallel()

	s := newFastStatus(StatusReady)

	require.False(t, s.TryTransition(StatusRunning, StatusWaiting), "wrong expected 'from' must fail")
	require.Equal(t, StatusReady, s.Load())

	require.True(t, s.TryTransition(StatusReady, StatusRunning))
	require.Equal(t, StatusRunning, s.Load())

	// Repeating the same transition fails since the state has moved on.
	require.False(t, s.TryTransition(StatusReady, StatusRunning))
}

func TestStatusStringCoversAllValues(t *testing.T) {
	t.Parallel()

	cases := map[Status]string{
		StatusReady:    "ready",
		StatusRunning:  "running",
		StatusWaiting:  "waiting",
		StatusFinished: "finished",
		StatusAborted:  "aborted",
	}
	for status, want := range cases {
		require.Equal(t, want, status.String())
	}
	require.Equal(t, "unknown", Status(999).String())
}

func TestWakeReasonStringCoversAllValues(t *testing.T) {
	t.Parallel()

	require.Equal(t, "none", WakeNone.String())
	require.Equal(t, "ready", WakeReady.String())
	require.Equal(t, "timeout", WakeTimeout.String())
	require.Equal(t, "aborted", WakeAborted.String())
}

func TestRunStateDefaultsFalseAndToggles(t *testing.T) {
	t.Parallel()

	var r runState
	require.False(t, r.running())

	r.setRunning(true)
	require.True(t, r.running())

	r.setRunning(false)
	require.False(t, r.running())
}
