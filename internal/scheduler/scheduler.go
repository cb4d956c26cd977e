package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Domain errors for the scheduler package.
var (
	// ErrStopped is returned when scheduling a job on a stopped scheduler.
	ErrStopped = errors.New("scheduler: stopped")

	// ErrInvalidJob is returned when a job is registered with a missing
	// name, schedule, or function.
	ErrInvalidJob = errors.New("scheduler: invalid job")
)

// NextFunc computes the next run time for a job. The returned time must be
// strictly after now, otherwise the job spins.
type NextFunc func(now time.Time) time.Time

// DailyAt returns a NextFunc that fires once a day at the given local time.
func DailyAt(hour, minute int) NextFunc {
	return func(now time.Time) time.Time {
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	}
}

// Every returns a NextFunc that fires at a fixed interval.
// Intended for tests and sub-daily maintenance jobs.
func Every(interval time.Duration) NextFunc {
	return func(now time.Time) time.Time {
		return now.Add(interval)
	}
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// job is a single scheduled unit owned by one goroutine.
type job struct {
	name string
	next NextFunc
	fn   func()
	done chan struct{}
}

// Scheduler runs named jobs on their own goroutines.
//
// Thread Safety: all methods are safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*job
	stopped bool
	wg      sync.WaitGroup

	// now is replaceable for tests.
	now func() time.Time

	logger   Logger
	loggerMu sync.RWMutex
}

// New creates an empty scheduler ready for use.
func New() *Scheduler {
	return &Scheduler{
		jobs: make(map[string]*job),
		now:  time.Now,
	}
}

// Schedule registers a job under a stable name and starts its goroutine.
// Registering a name that already exists cancels the previous job first,
// so reload paths can call Schedule without an explicit Cancel.
//
// Parameters:
//   - name: Stable job identifier (used by Cancel)
//   - next: Computes each successive run time
//   - fn: The job body; panics are recovered and logged
//
// Returns:
//   - error: ErrInvalidJob for missing arguments, ErrStopped after Stop()
func (s *Scheduler) Schedule(name string, next NextFunc, fn func()) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidJob)
	}
	if next == nil {
		return fmt.Errorf("%w: schedule is required", ErrInvalidJob)
	}
	if fn == nil {
		return fmt.Errorf("%w: function is required", ErrInvalidJob)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}

	if existing, ok := s.jobs[name]; ok {
		close(existing.done)
	}

	j := &job{
		name: name,
		next: next,
		fn:   fn,
		done: make(chan struct{}),
	}
	s.jobs[name] = j

	s.wg.Add(1)
	go s.run(j)

	s.logDebug("job scheduled", "job", name)
	return nil
}

// Cancel removes a job by name and stops its goroutine.
// Returns false when no job with that name exists.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return false
	}

	close(j.done)
	delete(s.jobs, name)
	s.logDebug("job cancelled", "job", name)
	return true
}

// Scheduled reports whether a job with the given name is registered.
func (s *Scheduler) Scheduled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}

// Stop cancels all jobs and waits for their goroutines to finish.
// Subsequent Schedule calls return ErrStopped. Safe to call multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for name, j := range s.jobs {
		close(j.done)
		delete(s.jobs, name)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// SetLogger sets the logger for the scheduler.
func (s *Scheduler) SetLogger(logger Logger) {
	s.loggerMu.Lock()
	s.logger = logger
	s.loggerMu.Unlock()
}

// run is the per-job goroutine: sleep until the next run time, execute,
// reschedule. Exits when the job's done channel closes.
func (s *Scheduler) run(j *job) {
	defer s.wg.Done()

	for {
		now := s.now()
		timer := time.NewTimer(j.next(now).Sub(now))

		select {
		case <-j.done:
			timer.Stop()
			return
		case <-timer.C:
			s.runJob(j)
		}
	}
}

// runJob executes the job body with panic recovery.
func (s *Scheduler) runJob(j *job) {
	defer func() {
		if r := recover(); r != nil {
			s.logError("job panic recovered", fmt.Errorf("job %s: %v", j.name, r))
		}
	}()
	j.fn()
}

// logDebug logs a debug message if logger is set.
func (s *Scheduler) logDebug(msg string, keysAndValues ...any) {
	s.loggerMu.RLock()
	logger := s.logger
	s.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (s *Scheduler) logError(msg string, err error) {
	s.loggerMu.RLock()
	logger := s.logger
	s.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
