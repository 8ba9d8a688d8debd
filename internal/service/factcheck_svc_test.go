package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tanvir4425/Mask-App-sub001/internal/classifier"
	"github.com/tanvir4425/Mask-App-sub001/internal/config"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
	"github.com/tanvir4425/Mask-App-sub001/internal/repository"
)

func TestBuildStages_Order(t *testing.T) {
	ai := &classifier.AIStage{}
	fileRules := &classifier.FileRulesStage{}

	tests := []struct {
		name  string
		order string
		want  []string
	}{
		{"rules first default", "rules-first", []string{"rules-file", "rules-builtin", "ai", "heuristic"}},
		{"ai first", "ai-first", []string{"ai", "rules-file", "rules-builtin", "heuristic"}},
		{"unknown falls back to rules first", "whatever", []string{"rules-file", "rules-builtin", "ai", "heuristic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages := BuildStages(config.FactCheckConfig{StageOrder: tt.order}, ai, fileRules)
			if len(stages) != len(tt.want) {
				t.Fatalf("got %d stages, want %d", len(stages), len(tt.want))
			}
			for i, s := range stages {
				if s.Name() != tt.want[i] {
					t.Errorf("stage %d = %s, want %s", i, s.Name(), tt.want[i])
				}
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	resolved := &model.FactCheckResult{Verdict: model.VerdictFalse}
	unverified := &model.FactCheckResult{Verdict: model.VerdictUnverified}

	tests := []struct {
		name     string
		onlyOnce bool
		latest   *model.FactCheckResult
		want     bool
	}{
		{"no result", false, nil, false},
		{"resolved verdict is terminal", false, resolved, true},
		{"unverified is recheckable", false, unverified, false},
		{"only-once: unverified is terminal too", true, unverified, true},
		{"only-once: no result still processable", true, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &FactCheckService{cfg: config.FactCheckConfig{OnlyOnce: tt.onlyOnce}}
			if got := svc.terminal(tt.latest); got != tt.want {
				t.Errorf("terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Process orchestration tests over in-memory stores ---

type fakePosts struct {
	byID map[string]*model.Post
}

func (f *fakePosts) FindByID(_ context.Context, postID string) (*model.Post, error) {
	return f.byID[postID], nil
}

func (f *fakePosts) Unchecked(context.Context, int) ([]string, error) {
	return nil, nil
}

// fakeResults tracks inserts and answers LatestForPost either from a
// scripted sequence (one entry per call) or from the last inserted row.
type fakeResults struct {
	script      []*model.FactCheckResult
	latestCalls int
	inserts     []model.FactCheckResult
	counts      repository.VerdictCounts
}

func (f *fakeResults) Insert(_ context.Context, res *model.FactCheckResult) error {
	f.inserts = append(f.inserts, *res)
	return nil
}

func (f *fakeResults) LatestForPost(context.Context, string) (*model.FactCheckResult, error) {
	if f.latestCalls < len(f.script) {
		r := f.script[f.latestCalls]
		f.latestCalls++
		return r, nil
	}
	f.latestCalls++
	if n := len(f.inserts); n > 0 {
		return &f.inserts[n-1], nil
	}
	return nil, nil
}

func (f *fakeResults) CountForAuthor(context.Context, model.SubjectType, string) (repository.VerdictCounts, error) {
	return f.counts, nil
}

type fakeTrusts struct {
	upserts []model.TrustSnapshot
}

func (f *fakeTrusts) Upsert(_ context.Context, s *model.TrustSnapshot) error {
	f.upserts = append(f.upserts, *s)
	return nil
}

func (f *fakeTrusts) Find(context.Context, model.SubjectType, string) (*model.TrustSnapshot, error) {
	return nil, nil
}

// stubStage returns a fixed result, or reports itself gated off.
type stubStage struct {
	name string
	res  *classifier.Result
	ran  bool
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Attempt(context.Context, classifier.Input) (*classifier.Result, bool) {
	return s.res, s.ran
}

func newProcessFixture(cfg config.FactCheckConfig, results *fakeResults, stages []classifier.Stage) (*FactCheckService, *fakeTrusts, *[]string) {
	posts := &fakePosts{byID: map[string]*model.Post{
		"p1": {PostID: "p1", AuthorID: "u1", AuthorType: model.SubjectUser, Text: "the tower is 330 m tall"},
	}}
	trusts := &fakeTrusts{}
	trust := NewTrustService(config.TrustConfig{PriorAlpha: 8, PriorBeta: 8, MaturityMin: 10})
	svc := NewFactCheckService(cfg, posts, results, trusts, trust, stages, &CacheService{}, zerolog.Nop())

	skips := &[]string{}
	svc.OnSkipped = func(reason string) { *skips = append(*skips, reason) }
	return svc, trusts, skips
}

func TestProcess_ResolvedPostIsNotReprocessed(t *testing.T) {
	results := &fakeResults{
		script: []*model.FactCheckResult{{PostID: "p1", Verdict: model.VerdictFalse}},
	}
	stage := &stubStage{name: "stub", res: &classifier.Result{Verdict: model.VerdictTrue, Confidence: 0.9, Model: "stub"}, ran: true}
	svc, _, skips := newProcessFixture(config.FactCheckConfig{Enabled: true}, results, []classifier.Stage{stage})

	if err := svc.Process(context.Background(), model.Job{PostID: "p1"}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(results.inserts) != 0 {
		t.Fatalf("inserted %d rows for a resolved post, want 0", len(results.inserts))
	}
	if len(*skips) != 1 || (*skips)[0] != "already_resolved" {
		t.Errorf("skips = %v, want [already_resolved]", *skips)
	}
}

func TestProcess_ResultAppearingMidCascadeWins(t *testing.T) {
	// First latest-check sees nothing, the re-check after the cascade sees
	// a result written by a concurrent worker.
	results := &fakeResults{
		script: []*model.FactCheckResult{
			nil,
			{PostID: "p1", Verdict: model.VerdictMisleading},
		},
	}
	stage := &stubStage{name: "stub", res: &classifier.Result{Verdict: model.VerdictTrue, Confidence: 0.9, Model: "stub"}, ran: true}
	svc, _, skips := newProcessFixture(config.FactCheckConfig{Enabled: true}, results, []classifier.Stage{stage})

	if err := svc.Process(context.Background(), model.Job{PostID: "p1"}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(results.inserts) != 0 {
		t.Fatalf("inserted %d rows despite a concurrent result, want 0", len(results.inserts))
	}
	if len(*skips) != 1 || (*skips)[0] != "resolved_during_run" {
		t.Errorf("skips = %v, want [resolved_during_run]", *skips)
	}
}

func TestProcess_AllStagesGatedWritesNothing(t *testing.T) {
	results := &fakeResults{}
	gated := &stubStage{name: "stub", res: nil, ran: false}
	svc, _, skips := newProcessFixture(
		config.FactCheckConfig{Enabled: true, NoResultIfSkipped: true},
		results, []classifier.Stage{gated})

	if err := svc.Process(context.Background(), model.Job{PostID: "p1"}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(results.inserts) != 0 {
		t.Fatalf("inserted %d rows with every stage gated, want 0", len(results.inserts))
	}
	if len(*skips) != 1 || (*skips)[0] != "all_stages_skipped" {
		t.Errorf("skips = %v, want [all_stages_skipped]", *skips)
	}
}

func TestProcess_RepeatedJobInsertsOnce(t *testing.T) {
	results := &fakeResults{counts: repository.VerdictCounts{Checked: 1, False: 1}}
	stage := &stubStage{name: "stub", res: &classifier.Result{Verdict: model.VerdictFalse, Confidence: 0.95, Model: "stub"}, ran: true}
	svc, trusts, _ := newProcessFixture(config.FactCheckConfig{Enabled: true}, results, []classifier.Stage{stage})

	if err := svc.Process(context.Background(), model.Job{PostID: "p1"}); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	if len(results.inserts) != 1 {
		t.Fatalf("inserted %d rows, want 1", len(results.inserts))
	}
	if len(trusts.upserts) != 1 {
		t.Fatalf("trust upserts = %d, want 1 (inline recompute for user author)", len(trusts.upserts))
	}

	// The same job again: the now-resolved result is terminal.
	if err := svc.Process(context.Background(), model.Job{PostID: "p1"}); err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if len(results.inserts) != 1 {
		t.Fatalf("repeated job grew inserts to %d, want still 1", len(results.inserts))
	}
}

func TestProcess_MissingPostIsNoop(t *testing.T) {
	results := &fakeResults{}
	stage := &stubStage{name: "stub", res: &classifier.Result{Verdict: model.VerdictTrue, Confidence: 0.9, Model: "stub"}, ran: true}
	svc, _, skips := newProcessFixture(config.FactCheckConfig{Enabled: true}, results, []classifier.Stage{stage})

	if err := svc.Process(context.Background(), model.Job{PostID: "ghost"}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(results.inserts) != 0 {
		t.Fatalf("inserted %d rows for a missing post, want 0", len(results.inserts))
	}
	if len(*skips) != 1 || (*skips)[0] != "post_missing" {
		t.Errorf("skips = %v, want [post_missing]", *skips)
	}
}
