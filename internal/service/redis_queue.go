package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

const (
	redisQueueKey = "factcheck:jobs"

	maxJobAttempts = 3
	baseBackoff    = 2 * time.Second
)

// RedisQueue is the durable queue backend: jobs survive process restarts on
// a Redis list and are retried with exponential backoff. Worker concurrency
// is 1 by convention — the AI rate budget is process-local, so fanning out
// workers requires centralizing the budget first.
type RedisQueue struct {
	rdb  *redis.Client
	proc Processor
	log  zerolog.Logger
}

func NewRedisQueue(rdb *redis.Client, proc Processor, log zerolog.Logger) *RedisQueue {
	return &RedisQueue{rdb: rdb, proc: proc, log: log}
}

// Enqueue pushes the job onto the Redis list. A push failure is logged and
// dropped — enqueueing is fire-and-forget and a lost job merely delays
// classification until the re-check scheduler or a manual trigger.
func (q *RedisQueue) Enqueue(job model.Job) {
	data, err := json.Marshal(job)
	if err != nil {
		q.log.Error().Err(err).Str("post", job.PostID).Msg("redis-queue: marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := q.rdb.LPush(ctx, redisQueueKey, data).Err(); err != nil {
		q.log.Error().Err(err).Str("post", job.PostID).Msg("redis-queue: push failed")
	}
}

func (q *RedisQueue) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	n, err := q.rdb.LLen(ctx, redisQueueKey).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// Start runs the single blocking-pop worker loop until the context ends.
func (q *RedisQueue) Start(ctx context.Context) {
	go q.workLoop(ctx)
}

func (q *RedisQueue) workLoop(ctx context.Context) {
	q.log.Info().Msg("redis-queue: worker started")
	for {
		if ctx.Err() != nil {
			q.log.Info().Msg("redis-queue: worker stopping")
			return
		}

		vals, err := q.rdb.BRPop(ctx, 5*time.Second, redisQueueKey).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.log.Warn().Err(err).Msg("redis-queue: pop failed, backing off")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		var job model.Job
		if err := json.Unmarshal([]byte(vals[1]), &job); err != nil {
			q.log.Error().Err(err).Msg("redis-queue: dropping malformed job")
			continue
		}

		q.runWithRetries(ctx, job)
	}
}

// runWithRetries attempts the job with bounded exponential backoff. A job
// that still fails after the last attempt is dropped; the re-check
// scheduler is the long-term retry path.
func (q *RedisQueue) runWithRetries(ctx context.Context, job model.Job) {
	backoff := baseBackoff
	for attempt := 1; attempt <= maxJobAttempts; attempt++ {
		err := q.proc.Process(ctx, job)
		if err == nil {
			return
		}

		q.log.Warn().Err(err).
			Str("post", job.PostID).
			Int("attempt", attempt).
			Msg("redis-queue: job failed")

		if attempt == maxJobAttempts {
			q.log.Error().Str("post", job.PostID).Msg("redis-queue: job dropped after retries")
			return
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return
		}
	}
}
