package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

// Processor consumes classification jobs. Errors are reported so durable
// backends can retry; the in-process queue only logs them.
type Processor interface {
	Process(ctx context.Context, job model.Job) error
}

// Queue hands jobs to a Processor. Enqueue is non-blocking and
// fire-and-forget: there is no cancel-in-flight primitive.
type Queue interface {
	Enqueue(job model.Job)
	Start(ctx context.Context)
	Len() int
}

// LocalQueue is the default in-process FIFO with a single-flight drain
// loop: concurrent enqueues append to the pending list and at most one
// drain goroutine runs at a time, which serializes classification within
// one process and naturally bounds AI-call concurrency.
type LocalQueue struct {
	proc Processor
	log  zerolog.Logger

	mu       sync.Mutex
	pending  []model.Job
	draining bool
	ctx      context.Context
}

func NewLocalQueue(proc Processor, log zerolog.Logger) *LocalQueue {
	return &LocalQueue{proc: proc, log: log, ctx: context.Background()}
}

// Start records the lifecycle context used by drain loops. Jobs enqueued
// before Start run against context.Background.
func (q *LocalQueue) Start(ctx context.Context) {
	q.mu.Lock()
	q.ctx = ctx
	q.mu.Unlock()
}

func (q *LocalQueue) Enqueue(job model.Job) {
	q.mu.Lock()
	q.pending = append(q.pending, job)
	startDrain := !q.draining
	if startDrain {
		q.draining = true
	}
	ctx := q.ctx
	q.mu.Unlock()

	if startDrain {
		go q.drain(ctx)
	}
}

func (q *LocalQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// drain pops jobs one at a time until the pending list is empty, then
// exits. A later Enqueue starts a fresh drain.
func (q *LocalQueue) drain(ctx context.Context) {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 || ctx.Err() != nil {
			q.draining = false
			q.mu.Unlock()
			return
		}
		job := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		if err := q.proc.Process(ctx, job); err != nil {
			q.log.Error().Err(err).Str("post", job.PostID).Msg("queue: job failed")
		}
	}
}
