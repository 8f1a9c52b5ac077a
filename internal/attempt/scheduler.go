package attempt

import (
	"sync"
	"time"
)

// Scheduler runs the machine's timed transitions: the once-per-second
// countdown and the settle delay before results are revealed. The returned
// cancel funcs are idempotent and safe to call from inside a callback.
type Scheduler interface {
	Every(d time.Duration, fn func()) (cancel func())
	After(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler is the wall-clock Scheduler backed by the time package.
type TimerScheduler struct{}

func (TimerScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (TimerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
