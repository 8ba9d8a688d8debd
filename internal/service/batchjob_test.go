package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBatchJob_RunOnStart(t *testing.T) {
	ticked := make(chan struct{}, 1)
	job := &BatchJob{
		Name:       "test",
		Interval:   time.Hour,
		RunOnStart: true,
		Log:        zerolog.Nop(),
		Tick: func(context.Context) error {
			ticked <- struct{}{}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go job.Start(ctx)

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("RunOnStart tick never fired")
	}
}

func TestBatchJob_OverlapGuard(t *testing.T) {
	var calls atomic.Int32
	job := &BatchJob{
		Name:     "test",
		Interval: time.Hour,
		Log:      zerolog.Nop(),
		Tick: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	}

	// Simulate a tick still in flight.
	job.running.Store(true)
	job.runTick(context.Background())
	if calls.Load() != 0 {
		t.Fatal("tick ran while a previous tick was marked running")
	}

	job.running.Store(false)
	job.runTick(context.Background())
	if calls.Load() != 1 {
		t.Fatalf("tick calls = %d, want 1", calls.Load())
	}
}

func TestBatchJob_OnDurationHook(t *testing.T) {
	var observed atomic.Bool
	job := &BatchJob{
		Name:       "test",
		Interval:   time.Hour,
		Log:        zerolog.Nop(),
		Tick:       func(context.Context) error { return nil },
		OnDuration: func(time.Duration) { observed.Store(true) },
	}

	job.runTick(context.Background())
	if !observed.Load() {
		t.Fatal("OnDuration hook not invoked")
	}
}
