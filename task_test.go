package threadlet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	loop, err := NewLoop()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = loop.Close()
	})
	return loop
}

func runLoopUntilDone(t *testing.T, loop *Loop, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		loop.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("loop did not finish within the expected window")
	}
}

func TestTaskRunsToCompletion(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t)
	var ran bool
	task := loop.Spawn(func(t *Task) {
		ran = true
	})

	loop.Stop()
	runLoopUntilDone(t, loop, time.Second)

	require.True(t, ran)
	require.Equal(t, StatusFinished, task.Status())
	require.True(t, task.Finished())
}

func TestTaskPanicMarksAborted(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t)
	task := loop.Spawn(func(t *Task) {
		panic("boom")
	})

	loop.Stop()
	runLoopUntilDone(t, loop, time.Second)

	require.Equal(t, StatusAborted, task.Status())
	require.True(t, task.Finished())
}

func TestJoinWaitsForTargetCompletion(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t)
	var joinErr *Error
	var observedFinished bool

	target := loop.Spawn(func(t *Task) {
		_ = t.loop.parkTimeoutOnly(t, 30)
	})
	loop.Spawn(func(self *Task) {
		joinErr = Join(self, target, 5000)
		observedFinished = target.Finished()
	})

	loop.Stop()
	runLoopUntilDone(t, loop, 2*time.Second)

	require.Nil(t, joinErr)
	require.True(t, observedFinished)
}

func TestJoinTimesOutBeforeTargetFinishes(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t)
	var joinErr *Error

	target := loop.Spawn(func(t *Task) {
		_ = t.loop.parkTimeoutOnly(t, 500)
	})
	loop.Spawn(func(self *Task) {
		joinErr = Join(self, target, 20)
	})

	loop.Stop()
	runLoopUntilDone(t, loop, 2*time.Second)

	require.NotNil(t, joinErr)
	require.Equal(t, Timeout, joinErr.Kind)
}

func TestJoinAcrossLoopsRejected(t *testing.T) {
	t.Parallel()

	loopA := newTestLoop(t)
	loopB := newTestLoop(t)

	taskA := NewTask(loopA, func(t *Task) {})
	taskB := NewTask(loopB, func(t *Task) {})

	err := Join(taskA, taskB, 1000)
	require.NotNil(t, err)
	require.Equal(t, InvalidParam, err.Kind)
}

func TestResumeRejectsWrongLoop(t *testing.T) {
	t.Parallel()

	loopA := newTestLoop(t)
	loopB := newTestLoop(t)

	task := NewTask(loopA, func(t *Task) {})
	err := task.Resume(loopB)
	require.Error(t, err)
}
