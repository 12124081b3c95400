package jobs

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/printnow/portal/pkg/backend"
	"github.com/printnow/portal/pkg/config"
)

func init() {
	Register("cleanup", cleanupJob{})
}

// cleanupJob removes expired magic links and sessions.
type cleanupJob struct{}

var _ Runner = cleanupJob{}

// Spec implements Runner.
func (cleanupJob) Spec(ctx context.Context) string {
	cfg := config.FromContext(ctx)
	if cfg == nil || cfg.Jobs.Cleanup == "" {
		return "@every 1h"
	}
	return cfg.Jobs.Cleanup
}

// Func implements Runner.
func (cleanupJob) Func(ctx context.Context) func() {
	be := backend.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("jobs.cleanup")
	return func() {
		links, sessions, err := be.DeleteExpired(ctx)
		if err != nil {
			logger.Error("error removing expired credentials", "err", err)
			return
		}
		if links > 0 || sessions > 0 {
			logger.Info("removed expired credentials", "magic_links", links, "sessions", sessions)
		}
	}
}
