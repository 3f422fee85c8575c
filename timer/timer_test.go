package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManager_ScheduleFires(t *testing.T) {
	manager := NewManager()
	defer manager.Stop()

	fired := make(chan struct{})
	manager.Schedule(50*time.Millisecond, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduled task did not fire")
	}
}

func TestManager_CancelPreventsFire(t *testing.T) {
	manager := NewManager()
	defer manager.Stop()

	var fired atomic.Bool
	id := manager.Schedule(200*time.Millisecond, func() {
		fired.Store(true)
	})
	manager.Cancel(id)

	time.Sleep(500 * time.Millisecond)
	if fired.Load() {
		t.Error("Cancelled task must not fire")
	}
}

func TestManager_RepeatFiresRepeatedly(t *testing.T) {
	manager := NewManager()
	defer manager.Stop()

	var count atomic.Int32
	id := manager.Repeat(100*time.Millisecond, func() {
		count.Add(1)
	})
	defer manager.Cancel(id)

	deadline := time.After(3 * time.Second)
	for count.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("Repeating task fired %d time(s), expected at least 2", count.Load())
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestManager_CancelUnknownIsNoop(t *testing.T) {
	manager := NewManager()
	defer manager.Stop()

	manager.Cancel(12345)
}
