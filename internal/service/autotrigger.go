package service

import (
	"sync"
	"time"

	"github.com/tanvir4425/Mask-App-sub001/internal/config"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

// AutoTrigger turns engagement spikes into fact-check enqueues: when both
// the reaction count and the unique-reactor count cross their thresholds,
// the post is enqueued with a force-AI hint, at most once per cooldown
// window. The debounce map lives in process memory — losing it on restart
// merely delays a re-trigger, it never corrupts classification.
type AutoTrigger struct {
	cfg config.AutoTriggerConfig
	svc *FactCheckService

	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func NewAutoTrigger(cfg config.AutoTriggerConfig, svc *FactCheckService) *AutoTrigger {
	return &AutoTrigger{
		cfg:  cfg,
		svc:  svc,
		last: make(map[string]time.Time),
		now:  time.Now,
	}
}

// OnReaction evaluates an engagement event. Returns true if it enqueued.
func (t *AutoTrigger) OnReaction(postID string, reactions, uniqueReactors int) bool {
	if reactions < t.cfg.MinReactions || uniqueReactors < t.cfg.MinUnique {
		return false
	}

	now := t.now()

	t.mu.Lock()
	if prev, ok := t.last[postID]; ok && now.Sub(prev) < t.cfg.Cooldown {
		t.mu.Unlock()
		return false
	}
	t.last[postID] = now
	if len(t.last) > 4096 {
		t.prune(now)
	}
	t.mu.Unlock()

	t.svc.Enqueue(postID, model.EnqueueHint{ForceAI: true, Reason: "engagement"})
	return true
}

// prune drops expired cooldown entries. Caller holds the lock.
func (t *AutoTrigger) prune(now time.Time) {
	for id, ts := range t.last {
		if now.Sub(ts) >= t.cfg.Cooldown {
			delete(t.last, id)
		}
	}
}
