package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDailyAt_BeforeTarget(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	next := DailyAt(23, 0)(now)

	want := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("DailyAt(23,0) from %v = %v, want %v", now, next, want)
	}
}

func TestDailyAt_AfterTargetRollsOver(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	next := DailyAt(0, 0)(now)

	want := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("DailyAt(0,0) from %v = %v, want %v", now, next, want)
	}
}

func TestDailyAt_ExactlyAtTargetRollsOver(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	next := DailyAt(0, 0)(now)

	if !next.After(now) {
		t.Errorf("DailyAt(0,0) at target time = %v, want strictly after %v", next, now)
	}
}

func TestSchedule_RunsJob(t *testing.T) {
	s := New()
	defer s.Stop()

	ran := make(chan struct{}, 1)
	err := s.Schedule("test-job", Every(5*time.Millisecond), func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run within timeout")
	}
}

func TestSchedule_Validation(t *testing.T) {
	s := New()
	defer s.Stop()

	if err := s.Schedule("", Every(time.Hour), func() {}); !errors.Is(err, ErrInvalidJob) {
		t.Errorf("Schedule with empty name = %v, want ErrInvalidJob", err)
	}
	if err := s.Schedule("j", nil, func() {}); !errors.Is(err, ErrInvalidJob) {
		t.Errorf("Schedule with nil schedule = %v, want ErrInvalidJob", err)
	}
	if err := s.Schedule("j", Every(time.Hour), nil); !errors.Is(err, ErrInvalidJob) {
		t.Errorf("Schedule with nil fn = %v, want ErrInvalidJob", err)
	}
}

func TestSchedule_ReplacesExisting(t *testing.T) {
	s := New()
	defer s.Stop()

	var first, second atomic.Int32

	if err := s.Schedule("job", Every(5*time.Millisecond), func() { first.Add(1) }); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	if err := s.Schedule("job", Every(5*time.Millisecond), func() { second.Add(1) }); err != nil {
		t.Fatalf("Schedule() replace error = %v", err)
	}

	// Wait for the replacement job to run, then confirm the first stopped.
	deadline := time.After(2 * time.Second)
	for second.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("replacement job did not run within timeout")
		case <-time.After(5 * time.Millisecond):
		}
	}

	firstCount := first.Load()
	time.Sleep(50 * time.Millisecond)
	if got := first.Load(); got != firstCount {
		t.Errorf("replaced job still running: count went %d -> %d", firstCount, got)
	}
}

func TestCancel(t *testing.T) {
	s := New()
	defer s.Stop()

	if err := s.Schedule("job", Every(time.Hour), func() {}); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	if !s.Scheduled("job") {
		t.Error("Scheduled(job) = false after Schedule")
	}
	if !s.Cancel("job") {
		t.Error("Cancel(job) = false, want true")
	}
	if s.Scheduled("job") {
		t.Error("Scheduled(job) = true after Cancel")
	}
	if s.Cancel("job") {
		t.Error("second Cancel(job) = true, want false")
	}
}

func TestSchedule_AfterStop(t *testing.T) {
	s := New()
	s.Stop()

	err := s.Schedule("job", Every(time.Hour), func() {})
	if !errors.Is(err, ErrStopped) {
		t.Errorf("Schedule after Stop = %v, want ErrStopped", err)
	}
}

func TestStop_Idempotent(t *testing.T) {
	s := New()
	if err := s.Schedule("job", Every(time.Hour), func() {}); err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	s.Stop()
	s.Stop() // must not panic or deadlock
}

func TestRunJob_RecoversPanic(t *testing.T) {
	s := New()
	defer s.Stop()

	ran := make(chan struct{}, 1)
	err := s.Schedule("panicky", Every(5*time.Millisecond), func() {
		select {
		case ran <- struct{}{}:
		default:
		}
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}

	// The job panics every run; the scheduler must survive at least two runs.
	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not keep running after panic")
		}
	}
}
