package app

import (
	"sync"
	"time"
)

// repeatingTask runs fn on a fixed interval on its own goroutine until stopped.
// fn invocations never overlap. Callers that need "no effect after Stop" must re-check
// their own state under their lock, since a tick may already be running when Stop is called.
type repeatingTask struct {
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

func newRepeatingTask(interval time.Duration) *repeatingTask {
	return &repeatingTask{
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// start launches the loop; when immediate is set fn also runs once right away.
func (t *repeatingTask) start(immediate bool, fn func()) {
	go func() {
		if immediate {
			if t.stopped() {
				return
			}
			fn()
		}

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				if t.stopped() {
					return
				}
				fn()
			}
		}
	}()
}

// Stop is idempotent and safe to call from inside fn.
func (t *repeatingTask) Stop() {
	t.once.Do(func() { close(t.stop) })
}

func (t *repeatingTask) stopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}
