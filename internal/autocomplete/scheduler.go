package autocomplete

import (
	"sync"
	"time"
)

// Scheduler runs fn once after delay. The returned cancel prevents fn from
// running if it has not started yet.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) (cancel func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(delay time.Duration, fn func()) func()

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(delay time.Duration, fn func()) func() {
	return f(delay, fn)
}

// TimerScheduler schedules with time.AfterFunc. Callbacks run on the timer
// goroutine.
type TimerScheduler struct{}

// Schedule implements Scheduler.
func (TimerScheduler) Schedule(delay time.Duration, fn func()) func() {
	t := time.AfterFunc(delay, fn)
	var once sync.Once
	return func() { once.Do(func() { t.Stop() }) }
}
