package testutil

import (
	"context"

	"github.com/preston-bernstein/nba-next-game-service/internal/metrics"
)

// NewRecorderWithShutdown returns an in-memory recorder and a no-op shutdown, mirroring metrics.Setup.
func NewRecorderWithShutdown() (*metrics.Recorder, func(context.Context) error) {
	return metrics.NewRecorder(), func(context.Context) error { return nil }
}
