package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tanvir4425/Mask-App-sub001/internal/config"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
	"github.com/tanvir4425/Mask-App-sub001/internal/repository"
)

// NewRecheckJob builds the periodic scheduler that re-enqueues posts stuck
// at "unverified" past the age threshold. Resolved posts are filtered out
// by the selection query and again by the orchestrator's terminal guard, so
// a re-check can never overwrite a settled verdict.
func NewRecheckJob(cfg config.RecheckConfig, results *repository.FactCheckRepo, svc *FactCheckService, log zerolog.Logger) *BatchJob {
	return &BatchJob{
		Name:     "recheck",
		Interval: cfg.Interval,
		Log:      log,
		Tick: func(ctx context.Context) error {
			cutoff := time.Now().Add(-cfg.MinAge)
			ids, err := results.StaleUnverified(ctx, cutoff, cfg.BatchSize)
			if err != nil {
				return err
			}
			for _, id := range ids {
				svc.Enqueue(id, model.EnqueueHint{Reason: "recheck"})
			}
			if len(ids) > 0 {
				log.Info().Int("posts", len(ids)).Msg("recheck: re-enqueued stale unverified posts")
			}
			return nil
		},
	}
}
