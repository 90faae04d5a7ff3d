package server

import (
	"context"

	"github.com/preston-bernstein/nba-next-game-service/internal/refresh"
)

// Refresher is the scheduled cache warm as the server drives it.
type Refresher interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Run(ctx context.Context) error
	Status() refresh.Status
}

var _ Refresher = (*refresh.Scheduler)(nil)
