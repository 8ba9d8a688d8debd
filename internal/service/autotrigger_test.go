package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tanvir4425/Mask-App-sub001/internal/config"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

// captureQueue records enqueued jobs synchronously, no drain loop.
type captureQueue struct {
	mu   sync.Mutex
	jobs []model.Job
}

func (q *captureQueue) Enqueue(job model.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

func (q *captureQueue) Start(context.Context) {}

func (q *captureQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func newTriggerFixture() (*AutoTrigger, *captureQueue) {
	queue := &captureQueue{}
	svc := &FactCheckService{cfg: config.FactCheckConfig{Enabled: true}, queue: queue}
	trigger := NewAutoTrigger(config.AutoTriggerConfig{
		MinReactions: 20,
		MinUnique:    10,
		Cooldown:     6 * time.Hour,
	}, svc)
	return trigger, queue
}

func TestAutoTrigger_Thresholds(t *testing.T) {
	tests := []struct {
		name      string
		reactions int
		unique    int
		want      bool
	}{
		{"both below", 5, 2, false},
		{"reactions only", 50, 3, false},
		{"unique only", 10, 15, false},
		{"both at threshold", 20, 10, true},
		{"both above", 100, 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger, queue := newTriggerFixture()
			got := trigger.OnReaction("post-1", tt.reactions, tt.unique)
			if got != tt.want {
				t.Errorf("OnReaction(%d, %d) = %v, want %v", tt.reactions, tt.unique, got, tt.want)
			}
			wantJobs := 0
			if tt.want {
				wantJobs = 1
			}
			if queue.Len() != wantJobs {
				t.Errorf("enqueued %d jobs, want %d", queue.Len(), wantJobs)
			}
		})
	}
}

func TestAutoTrigger_ForceAIHint(t *testing.T) {
	trigger, queue := newTriggerFixture()

	trigger.OnReaction("post-1", 25, 12)

	if queue.Len() != 1 {
		t.Fatalf("enqueued %d jobs, want 1", queue.Len())
	}
	job := queue.jobs[0]
	if !job.Hint.ForceAI {
		t.Error("engagement trigger should carry the force-AI hint")
	}
	if job.Hint.ForceOverride {
		t.Error("engagement trigger must not bypass the AI budget")
	}
}

func TestAutoTrigger_Cooldown(t *testing.T) {
	trigger, queue := newTriggerFixture()

	base := time.Now()
	trigger.now = func() time.Time { return base }

	if !trigger.OnReaction("post-1", 30, 15) {
		t.Fatal("first event should trigger")
	}
	if trigger.OnReaction("post-1", 40, 20) {
		t.Fatal("second event within cooldown should not trigger")
	}

	// A different post is unaffected by post-1's cooldown.
	if !trigger.OnReaction("post-2", 30, 15) {
		t.Fatal("independent post should trigger")
	}

	// After the cooldown window, post-1 can trigger again.
	trigger.now = func() time.Time { return base.Add(6*time.Hour + time.Minute) }
	if !trigger.OnReaction("post-1", 50, 25) {
		t.Fatal("event after cooldown should trigger")
	}

	if queue.Len() != 3 {
		t.Errorf("enqueued %d jobs, want 3", queue.Len())
	}
}
