package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tanvir4425/Mask-App-sub001/internal/classifier"
	"github.com/tanvir4425/Mask-App-sub001/internal/config"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
	"github.com/tanvir4425/Mask-App-sub001/internal/repository"
)

// PostStore is the read slice of the post repository the orchestrator needs.
type PostStore interface {
	FindByID(ctx context.Context, postID string) (*model.Post, error)
	Unchecked(ctx context.Context, limit int) ([]string, error)
}

// ResultStore persists and reads classification results.
type ResultStore interface {
	Insert(ctx context.Context, res *model.FactCheckResult) error
	LatestForPost(ctx context.Context, postID string) (*model.FactCheckResult, error)
	CountForAuthor(ctx context.Context, subjectType model.SubjectType, subjectID string) (repository.VerdictCounts, error)
}

// TrustStore holds the derived trust snapshots.
type TrustStore interface {
	Upsert(ctx context.Context, s *model.TrustSnapshot) error
	Find(ctx context.Context, subjectType model.SubjectType, subjectID string) (*model.TrustSnapshot, error)
}

// FactCheckService is the pipeline core: it receives enqueue requests, runs
// the classification cascade over an ordered stage list, persists the
// winning verdict and keeps the author's trust snapshot in sync.
type FactCheckService struct {
	cfg     config.FactCheckConfig
	posts   PostStore
	results ResultStore
	trusts  TrustStore
	trust   *TrustService
	stages  []classifier.Stage
	cache   *CacheService
	queue   Queue
	log     zerolog.Logger

	// Optional metric hooks, wired by the handler layer.
	OnProcessed func(stage string, verdict model.Verdict)
	OnSkipped   func(reason string)
}

func NewFactCheckService(
	cfg config.FactCheckConfig,
	posts PostStore,
	results ResultStore,
	trusts TrustStore,
	trust *TrustService,
	stages []classifier.Stage,
	cache *CacheService,
	log zerolog.Logger,
) *FactCheckService {
	return &FactCheckService{
		cfg:     cfg,
		posts:   posts,
		results: results,
		trusts:  trusts,
		trust:   trust,
		stages:  stages,
		cache:   cache,
		log:     log,
	}
}

// SetQueue attaches the queue backend. Separate from the constructor
// because the queue needs this service as its processor.
func (s *FactCheckService) SetQueue(q Queue) {
	s.queue = q
}

// BuildStages assembles the cascade in the configured order. Rules-first
// (the default) tries the local stages before spending AI budget; ai-first
// flips that. The heuristic runs last either way so it can act as the
// low-confidence fallback when everything else produced nothing.
func BuildStages(cfg config.FactCheckConfig, ai *classifier.AIStage, fileRules *classifier.FileRulesStage) []classifier.Stage {
	builtin := &classifier.BuiltinRulesStage{Enabled: cfg.RulesEnabled}
	heuristic := &classifier.HeuristicStage{Enabled: cfg.HeuristicsEnabled}

	if cfg.StageOrder == "ai-first" {
		return []classifier.Stage{ai, fileRules, builtin, heuristic}
	}
	return []classifier.Stage{fileRules, builtin, ai, heuristic}
}

// Enqueue schedules a post for classification. Non-blocking: callers never
// wait on the pipeline. A disabled pipeline swallows the request.
func (s *FactCheckService) Enqueue(postID string, hint model.EnqueueHint) {
	if !s.cfg.Enabled || s.queue == nil {
		return
	}
	s.queue.Enqueue(model.Job{PostID: postID, Hint: hint})
}

// Process runs one dequeued job through the cascade. It is the Processor
// behind whichever queue backend is active.
func (s *FactCheckService) Process(ctx context.Context, job model.Job) error {
	post, err := s.posts.FindByID(ctx, job.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		// Deleted mid-flight: a routine no-op, not an error.
		s.skip("post_missing")
		return nil
	}

	latest, err := s.results.LatestForPost(ctx, job.PostID)
	if err != nil {
		return err
	}
	if s.terminal(latest) {
		s.skip("already_resolved")
		return nil
	}

	// Restricted demo deployments with all local stages off: an untagged
	// post cannot produce anything, so skip without writing a no-op row.
	tagged := strings.Contains(strings.ToLower(post.Text), strings.ToLower(s.cfg.AITriggerTag))
	if s.cfg.AIDemoOnly && !tagged && !s.cfg.RulesEnabled && !s.cfg.HeuristicsEnabled {
		s.skip("demo_untagged")
		return nil
	}

	in := classifier.Input{Post: post, Hint: job.Hint}
	var winner *classifier.Result
	anyRan := false
	for _, stage := range s.stages {
		res, ran := stage.Attempt(ctx, in)
		anyRan = anyRan || ran
		if res != nil {
			winner = res
			break
		}
	}

	if winner == nil {
		if !anyRan && s.cfg.NoResultIfSkipped {
			s.skip("all_stages_skipped")
			return nil
		}
		if !anyRan {
			// Policy says record the attempt even though every stage was
			// gated off.
			winner = &classifier.Result{
				Verdict:    model.VerdictUnverified,
				Confidence: 0.5,
				Model:      "pipeline-skipped",
			}
		} else {
			// Stages ran but none produced a verdict; absence of a result
			// is indistinguishable from "not yet checked" by design.
			s.skip("no_verdict")
			return nil
		}
	}

	// Double-check: another worker may have resolved the post while the
	// cascade was running.
	latest, err = s.results.LatestForPost(ctx, job.PostID)
	if err != nil {
		return err
	}
	if s.terminal(latest) {
		s.skip("resolved_during_run")
		return nil
	}

	rec := model.FactCheckResult{
		PostID:     post.PostID,
		Claim:      winner.Claim,
		Verdict:    winner.Verdict,
		Confidence: winner.Confidence,
		Evidence:   winner.Evidence,
		Model:      winner.Model,
	}
	if err := s.results.Insert(ctx, &rec); err != nil {
		// Persistence failure aborts the job; the queue backend decides
		// whether to retry.
		s.log.Error().Err(err).Str("post", post.PostID).Msg("factcheck: result write failed")
		return err
	}

	if err := s.cache.InvalidateFactCheck(ctx, post.PostID); err != nil {
		s.log.Warn().Err(err).Str("post", post.PostID).Msg("factcheck: cache invalidate failed")
	}

	s.log.Info().
		Str("post", post.PostID).
		Str("verdict", string(rec.Verdict)).
		Str("model", rec.Model).
		Str("reason", job.Hint.Reason).
		Msg("factcheck: result recorded")
	if s.OnProcessed != nil {
		s.OnProcessed(rec.Model, rec.Verdict)
	}

	// Trust recompute is derived state: a failure here never rolls back
	// the result write, the snapshot just lags until the next recompute.
	// Only user authors are recomputed inline; page subjects go through
	// the admin recompute endpoint.
	if post.AuthorType == model.SubjectUser {
		if err := s.RecomputeTrust(ctx, post.AuthorType, post.AuthorID); err != nil {
			s.log.Warn().Err(err).Str("author", post.AuthorID).Msg("factcheck: trust recompute failed")
		}
	}
	return nil
}

// terminal applies the only-once policy: a resolved verdict is always
// terminal; with OnlyOnce set, any existing result is.
func (s *FactCheckService) terminal(latest *model.FactCheckResult) bool {
	if latest == nil {
		return false
	}
	if s.cfg.OnlyOnce {
		return true
	}
	return latest.Verdict.Resolved()
}

// RecomputeTrust re-aggregates all fact-check results for a subject's posts
// and upserts the derived snapshot.
func (s *FactCheckService) RecomputeTrust(ctx context.Context, subjectType model.SubjectType, subjectID string) error {
	counts, err := s.results.CountForAuthor(ctx, subjectType, subjectID)
	if err != nil {
		return err
	}

	good := counts.True
	bad := counts.False + counts.Misleading
	t := s.trust.Compute(good, bad)

	snap := model.TrustSnapshot{
		SubjectType:     subjectType,
		SubjectID:       subjectID,
		PostsChecked:    counts.Checked,
		PostsTrue:       counts.True,
		PostsFalse:      counts.False,
		PostsMisleading: counts.Misleading,
		Score:           t.Score,
		ConfLow:         t.ConfLow,
		ConfHigh:        t.ConfHigh,
		Tier:            t.Tier,
	}
	if err := s.trusts.Upsert(ctx, &snap); err != nil {
		return err
	}

	if err := s.cache.InvalidateTrust(ctx, string(subjectType), subjectID); err != nil {
		s.log.Warn().Err(err).Str("subject", subjectID).Msg("trust: cache invalidate failed")
	}
	return nil
}

// RunAll enqueues every post that has no result yet, bounded by limit.
// Admin tooling uses this to force a cycle outside the timer cadence.
func (s *FactCheckService) RunAll(ctx context.Context, limit int) (int, error) {
	ids, err := s.posts.Unchecked(ctx, limit)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.Enqueue(id, model.EnqueueHint{Reason: "admin-run-all"})
	}
	return len(ids), nil
}

// GetResult returns the verdict badge for a post, cache-aside. A post with
// no result yields {checked:false}, never an error.
func (s *FactCheckService) GetResult(ctx context.Context, postID string) (*model.FactCheckResponse, error) {
	if cached, err := s.cache.GetFactCheck(ctx, postID); err == nil && cached != nil {
		var resp model.FactCheckResponse
		if jerr := json.Unmarshal(cached, &resp); jerr == nil {
			return &resp, nil
		}
	}

	latest, err := s.results.LatestForPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	resp := &model.FactCheckResponse{PostID: postID}
	if latest != nil {
		resp.Checked = true
		resp.Verdict = latest.Verdict
		resp.Confidence = latest.Confidence
		resp.Claim = latest.Claim
		resp.Evidence = latest.Evidence
		resp.Model = latest.Model
		resp.CheckedAt = latest.CreatedAt.Format(time.RFC3339)
	}

	if err := s.cache.SetFactCheck(ctx, postID, resp); err != nil {
		s.log.Warn().Err(err).Str("post", postID).Msg("factcheck: cache set failed")
	}
	return resp, nil
}

// GetTrust returns the trust snapshot for a subject, cache-aside. An
// unscored subject gets the prior mean with a provisional tier.
func (s *FactCheckService) GetTrust(ctx context.Context, subjectType model.SubjectType, subjectID string) (*model.TrustResponse, error) {
	if cached, err := s.cache.GetTrust(ctx, string(subjectType), subjectID); err == nil && cached != nil {
		var resp model.TrustResponse
		if jerr := json.Unmarshal(cached, &resp); jerr == nil {
			return &resp, nil
		}
	}

	snap, err := s.trusts.Find(ctx, subjectType, subjectID)
	if err != nil {
		return nil, err
	}

	var resp *model.TrustResponse
	if snap == nil {
		t := s.trust.Compute(0, 0)
		resp = &model.TrustResponse{
			SubjectType: subjectType,
			SubjectID:   subjectID,
			Score:       t.Score,
			ConfLow:     t.ConfLow,
			ConfHigh:    t.ConfHigh,
			Tier:        t.Tier,
		}
	} else {
		resp = &model.TrustResponse{
			SubjectType:  snap.SubjectType,
			SubjectID:    snap.SubjectID,
			Score:        snap.Score,
			ConfLow:      snap.ConfLow,
			ConfHigh:     snap.ConfHigh,
			Tier:         snap.Tier,
			PostsChecked: snap.PostsChecked,
			UpdatedAt:    snap.UpdatedAt.Format(time.RFC3339),
		}
	}

	if err := s.cache.SetTrust(ctx, string(subjectType), subjectID, resp); err != nil {
		s.log.Warn().Err(err).Str("subject", subjectID).Msg("trust: cache set failed")
	}
	return resp, nil
}

// QueueLen exposes the queue depth for metrics.
func (s *FactCheckService) QueueLen() int {
	if s.queue == nil {
		return 0
	}
	return s.queue.Len()
}

func (s *FactCheckService) skip(reason string) {
	if s.OnSkipped != nil {
		s.OnSkipped(reason)
	}
}
