package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
	"github.com/preston-bernstein/nba-next-game-service/internal/testutil"
)

type stubWarmer struct {
	err    error
	calls  atomic.Int32
	notify chan struct{}
}

func (w *stubWarmer) Warm(ctx context.Context) error {
	w.calls.Add(1)
	if w.notify != nil {
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
	return w.err
}

func TestNewRejectsBadSchedule(t *testing.T) {
	if _, err := New(&stubWarmer{}, "every tuesday", nil, nil, nil); err == nil {
		t.Fatalf("expected invalid cron spec to fail")
	}
	s, err := New(&stubWarmer{}, "", nil, nil, nil)
	if err != nil || s.spec != DefaultSchedule {
		t.Fatalf("expected default schedule, got %v %q", err, s.spec)
	}
}

func TestRunRecordsSuccessAndFailure(t *testing.T) {
	w := &stubWarmer{}
	rec := metrics.NewRecorder()
	s, err := New(w, DefaultSchedule, time.UTC, nil, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	at := testutil.MustParseRFC3339("2025-11-08T12:00:00Z")
	s.now = testutil.NowAt(at)

	if s.Status().IsReady() {
		t.Fatalf("should not be ready before the first success")
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := s.Status()
	if !st.IsReady() || !st.LastSuccess.Equal(at) || st.ConsecutiveFailures != 0 {
		t.Fatalf("unexpected status after success %+v", st)
	}

	w.err = errors.New("schedule down")
	for i := 0; i < readyFailures; i++ {
		if err := s.Run(context.Background()); err == nil {
			t.Fatalf("expected warm error")
		}
	}
	st = s.Status()
	if st.IsReady() || st.ConsecutiveFailures != readyFailures || st.LastError != "schedule down" {
		t.Fatalf("unexpected status after failures %+v", st)
	}
	if !st.LastSuccess.Equal(at) {
		t.Fatalf("last success must survive failures")
	}
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	w := &stubWarmer{notify: make(chan struct{}, 1)}
	s, err := New(w, DefaultSchedule, time.UTC, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	s.Start(ctx)

	select {
	case <-w.notify:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the initial refresh")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop should be idempotent: %v", err)
	}
	if w.calls.Load() != 1 {
		t.Fatalf("expected a single initial run, got %d", w.calls.Load())
	}
}

func TestStopsOnContextCancel(t *testing.T) {
	w := &stubWarmer{notify: make(chan struct{}, 1)}
	s, err := New(w, DefaultSchedule, time.UTC, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	<-w.notify
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}

func TestStopBeforeStart(t *testing.T) {
	s, err := New(&stubWarmer{}, DefaultSchedule, time.UTC, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
