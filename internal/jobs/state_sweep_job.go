package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/w3art/marko/internal/repository"
)

type StateSweepJob struct {
	os repository.OAuthStateRepository
}

func NewStateSweepJob(os repository.OAuthStateRepository) *StateSweepJob {
	return &StateSweepJob{os: os}
}

// Sweep removes used and stale OAuth state tokens. States older than 30
// minutes can never be consumed, so they are safe to discard.
func (c *StateSweepJob) Sweep() {
	ctx := context.Background()

	removed, err := c.os.Sweep(ctx, time.Now().Add(-30*time.Minute))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if removed > 0 {
		slog.Info("Swept OAuth states", "removed", removed)
	}
}
