package app

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRepeatingTaskRunsImmediatelyAndStops(t *testing.T) {
	var runs atomic.Int32
	task := newRepeatingTask(5 * time.Millisecond)
	task.start(true, func() { runs.Add(1) })

	waitFor(t, func() bool { return runs.Load() >= 3 }, "three runs")
	task.Stop()
	task.Stop()
	if !task.stopped() {
		t.Fatalf("task should report stopped")
	}

	time.Sleep(10 * time.Millisecond)
	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Fatalf("task kept running after Stop")
	}
}

func TestRepeatingTaskStopFromInsideFn(t *testing.T) {
	var runs atomic.Int32
	task := newRepeatingTask(5 * time.Millisecond)
	task.start(false, func() {
		runs.Add(1)
		task.Stop()
	})

	waitFor(t, func() bool { return runs.Load() == 1 }, "first tick")
	time.Sleep(30 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Fatalf("expected one run, got %d", got)
	}
}

func TestRepeatingTaskStoppedBeforeStart(t *testing.T) {
	var runs atomic.Int32
	task := newRepeatingTask(5 * time.Millisecond)
	task.Stop()
	task.start(true, func() { runs.Add(1) })

	time.Sleep(30 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Fatalf("stopped task ran %d times", got)
	}
}
