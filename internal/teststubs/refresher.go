package teststubs

import (
	"context"
	"sync"

	"github.com/preston-bernstein/nba-next-game-service/internal/refresh"
)

// StubRefresher records lifecycle calls in place of a refresh.Scheduler.
type StubRefresher struct {
	mu         sync.Mutex
	StartCalls int
	StopCalls  int
	RunCalls   int
	StopErr    error
	RunErr     error
	StatusVal  refresh.Status
}

func (r *StubRefresher) Start(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StartCalls++
}

func (r *StubRefresher) Stop(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StopCalls++
	return r.StopErr
}

func (r *StubRefresher) Run(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RunCalls++
	return r.RunErr
}

func (r *StubRefresher) Status() refresh.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.StatusVal
}

// Calls returns start, stop and run counts.
func (r *StubRefresher) Calls() (start, stop, run int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.StartCalls, r.StopCalls, r.RunCalls
}
