// Package refresh re-warms the next-game caches on a cron schedule.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
)

const (
	// DefaultSchedule runs every six hours on the hour.
	DefaultSchedule = "0 */6 * * *"
	runTimeout      = 2 * time.Minute
	stopTimeout     = 5 * time.Second
	readyFailures   = 3
)

// Warmer is the work each refresh performs.
type Warmer interface {
	Warm(ctx context.Context) error
}

// Status describes the recent health of the refresh loop.
type Status struct {
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
}

// IsReady reports whether a refresh has succeeded and the loop is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < readyFailures
}

// Scheduler runs Warm once at start and then on a cron schedule.
type Scheduler struct {
	warmer  Warmer
	spec    string
	loc     *time.Location
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	cron     *cron.Cron
	startMu  sync.Mutex
	started  bool
	stopOnce sync.Once
	stopped  chan struct{}
	runMu    sync.Mutex

	statusMu sync.RWMutex
	status   Status
}

// New validates spec and builds a Scheduler evaluated in loc.
func New(warmer Warmer, spec string, loc *time.Location, logger *slog.Logger, recorder *metrics.Recorder) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", spec, err)
	}
	return &Scheduler{
		warmer:  warmer,
		spec:    spec,
		loc:     loc,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
		stopped: make(chan struct{}),
	}, nil
}

// Start runs an initial refresh in the background and schedules the rest.
// It returns immediately; cancel ctx or call Stop to end the loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return
	}
	s.started = true
	s.startMu.Unlock()

	s.cron = cron.New(cron.WithLocation(s.loc))
	// spec was validated in New.
	_, _ = s.cron.AddFunc(s.spec, func() { _ = s.Run(ctx) })

	go func() { _ = s.Run(ctx) }()
	s.cron.Start()
	logging.Info(s.logger, "refresh scheduler started", "schedule", s.spec, "location", s.loc.String())

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop(context.Background())
		case <-s.stopped:
		}
	}()
}

// Stop halts the schedule and waits for a running refresh, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stopped)
		if s.cron == nil {
			return
		}
		wait := s.cron.Stop()
		timer := time.NewTimer(stopTimeout)
		defer timer.Stop()
		select {
		case <-wait.Done():
			logging.Info(s.logger, "refresh scheduler stopped")
		case <-ctx.Done():
			logging.Warn(s.logger, "refresh scheduler stop interrupted")
		case <-timer.C:
			logging.Warn(s.logger, "refresh scheduler stop timed out")
		}
	})
	return nil
}

// Run performs one refresh and records its outcome. Overlapping runs are serialized.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	start := s.now()
	s.recordAttempt(start)
	err := s.warmer.Warm(ctx)
	elapsed := s.now().Sub(start)
	s.metrics.RecordRefreshCycle(elapsed, err)
	if err != nil {
		logging.Error(s.logger, "refresh failed", err, logging.FieldDurationMS, elapsed.Milliseconds())
		s.recordFailure(err)
		return err
	}
	s.recordSuccess(start)
	logging.Info(s.logger, "refresh complete", logging.FieldDurationMS, elapsed.Milliseconds())
	return nil
}

func (s *Scheduler) recordAttempt(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.LastAttempt = at
}

func (s *Scheduler) recordSuccess(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures = 0
	s.status.LastError = ""
	s.status.LastSuccess = at
}

func (s *Scheduler) recordFailure(err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures++
	s.status.LastError = err.Error()
}

// Status returns a snapshot of the scheduler's recent health.
func (s *Scheduler) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}
