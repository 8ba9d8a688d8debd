package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// BatchJob is the shared shape of every periodic worker in this service:
// poll on a timer, select eligible subjects, act idempotently. The re-check
// scheduler, the retention worker and the rule-file poll are all instances.
type BatchJob struct {
	Name     string
	Interval time.Duration
	// RunOnStart runs one tick immediately instead of waiting a full
	// interval.
	RunOnStart bool
	// Tick does one cycle of work. It must be idempotent: running it twice
	// in a row without state changes must be a no-op the second time.
	Tick func(ctx context.Context) error
	// OnDuration is an optional metrics hook.
	OnDuration func(d time.Duration)

	Log zerolog.Logger

	running atomic.Bool
}

// Start runs the job loop until the context is cancelled. Ticks are
// independent: a slow tick never blocks the timer, and the re-entrancy
// guard skips a tick if the previous one is still running.
func (j *BatchJob) Start(ctx context.Context) {
	j.Log.Info().Str("job", j.Name).Dur("interval", j.Interval).Msg("batch job starting")

	if j.RunOnStart {
		j.runTick(ctx)
	}

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			go j.runTick(ctx)
		case <-ctx.Done():
			j.Log.Info().Str("job", j.Name).Msg("batch job stopping")
			return
		}
	}
}

func (j *BatchJob) runTick(ctx context.Context) {
	if !j.running.CompareAndSwap(false, true) {
		j.Log.Warn().Str("job", j.Name).Msg("previous tick still running, skipping")
		return
	}
	defer j.running.Store(false)

	start := time.Now()
	err := j.Tick(ctx)
	elapsed := time.Since(start)

	if j.OnDuration != nil {
		j.OnDuration(elapsed)
	}
	if err != nil {
		j.Log.Error().Err(err).Str("job", j.Name).Dur("elapsed", elapsed).Msg("tick failed")
		return
	}
	j.Log.Debug().Str("job", j.Name).Dur("elapsed", elapsed).Msg("tick complete")
}
