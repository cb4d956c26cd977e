// Package scheduler provides a small in-process job scheduler.
//
// Jobs are identified by a stable name so that callers can cancel and
// re-register them across configuration reloads. Each job owns a goroutine
// that sleeps until the next computed run time, runs the job function, and
// reschedules itself.
//
// # Usage
//
//	sched := scheduler.New()
//	defer sched.Stop()
//
//	err := sched.Schedule("mpd-reconnect", scheduler.DailyAt(0, 0), func() {
//	    bridge.ReconnectAll()
//	})
//
// # Thread Safety
//
// All methods are safe for concurrent use. Job functions run on the job's
// own goroutine; panics are recovered and logged.
package scheduler
