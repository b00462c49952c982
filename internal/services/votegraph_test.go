package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/config"
	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/data/repos/testutil"
)

func newVoteAnalysisForTest(t *testing.T) (VoteAnalysisService, *gorm.DB) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	svc := NewVoteAnalysisService(tx, log, config.Default(), repos.NewVoteRepo(tx, log))
	return svc, tx
}

func TestAnalyzeUserVotingMutual(t *testing.T) {
	svc, tx := newVoteAnalysisForTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	subject := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	partners := make([]uuid.UUID, 3)
	for i := range partners {
		p := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
		partners[i] = p.ID
		testutil.SeedUpvote(t, ctx, tx, subject.ID, p.ID, now.Add(-time.Duration(i+1)*time.Hour))
		testutil.SeedUpvote(t, ctx, tx, p.ID, subject.ID, now.Add(-time.Duration(i+2)*time.Hour))
	}

	report, err := svc.AnalyzeUserVoting(ctx, subject.ID, 0)
	if err != nil {
		t.Fatalf("AnalyzeUserVoting: %v", err)
	}
	if !report.IsSuspicious {
		t.Fatalf("expected suspicious report")
	}
	if len(report.Patterns) != 1 || report.Patterns[0].Pattern != PatternMutualVoting {
		t.Fatalf("patterns=%+v, want one %s", report.Patterns, PatternMutualVoting)
	}
	p := report.Patterns[0]
	if p.Confidence != 1.0 || p.VoteCount != 3 {
		t.Fatalf("confidence=%v count=%d, want 1.0/3", p.Confidence, p.VoteCount)
	}
	if math.Abs(report.RiskScore-0.3) > 1e-9 {
		t.Fatalf("risk=%v, want 0.3", report.RiskScore)
	}
	if report.Recommendation != RecommendationAllow {
		t.Fatalf("recommendation=%q, want %q", report.Recommendation, RecommendationAllow)
	}
}

func TestAnalyzeUserVotingMutualBelowMinCount(t *testing.T) {
	svc, tx := newVoteAnalysisForTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	subject := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	for i := 0; i < 2; i++ {
		p := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
		testutil.SeedUpvote(t, ctx, tx, subject.ID, p.ID, now.Add(-time.Hour))
		testutil.SeedUpvote(t, ctx, tx, p.ID, subject.ID, now.Add(-2*time.Hour))
	}

	report, err := svc.AnalyzeUserVoting(ctx, subject.ID, 0)
	if err != nil {
		t.Fatalf("AnalyzeUserVoting: %v", err)
	}
	// Ratio is 1.0 but only two reciprocating partners.
	for _, p := range report.Patterns {
		if p.Pattern == PatternMutualVoting {
			t.Fatalf("mutual voting fired below min count: %+v", p)
		}
	}
}

func TestAnalyzeUserVotingRing(t *testing.T) {
	svc, tx := newVoteAnalysisForTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	b := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	c := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	testutil.SeedUpvote(t, ctx, tx, a.ID, b.ID, now.Add(-3*time.Hour))
	testutil.SeedUpvote(t, ctx, tx, b.ID, c.ID, now.Add(-2*time.Hour))
	testutil.SeedUpvote(t, ctx, tx, c.ID, a.ID, now.Add(-time.Hour))

	report, err := svc.AnalyzeUserVoting(ctx, a.ID, 0)
	if err != nil {
		t.Fatalf("AnalyzeUserVoting: %v", err)
	}
	if len(report.Patterns) != 1 || report.Patterns[0].Pattern != PatternVoteRing {
		t.Fatalf("patterns=%+v, want one %s", report.Patterns, PatternVoteRing)
	}
	p := report.Patterns[0]
	if p.Confidence != 0.9 || p.VoteCount != 3 {
		t.Fatalf("confidence=%v size=%d, want 0.9/3", p.Confidence, p.VoteCount)
	}
	if math.Abs(report.RiskScore-0.63) > 1e-9 {
		t.Fatalf("risk=%v, want 0.63", report.RiskScore)
	}
	if report.Recommendation != RecommendationWarn {
		t.Fatalf("recommendation=%q, want %q", report.Recommendation, RecommendationWarn)
	}
}

func TestAnalyzeUserVotingNoPatterns(t *testing.T) {
	svc, tx := newVoteAnalysisForTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	subject := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	other := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	testutil.SeedUpvote(t, ctx, tx, subject.ID, other.ID, now.Add(-time.Hour))

	report, err := svc.AnalyzeUserVoting(ctx, subject.ID, 0)
	if err != nil {
		t.Fatalf("AnalyzeUserVoting: %v", err)
	}
	if report.IsSuspicious || report.RiskScore != 0 || len(report.Patterns) != 0 {
		t.Fatalf("expected clean report, got %+v", report)
	}
	if report.Recommendation != RecommendationAllow {
		t.Fatalf("recommendation=%q, want %q", report.Recommendation, RecommendationAllow)
	}
}

func TestAnalyzeContentVotingBurst(t *testing.T) {
	svc, tx := newVoteAnalysisForTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	target := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	contentID := uuid.New()
	for i := 0; i < 3; i++ {
		voter := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
		at := now.Add(-60 * time.Second).Add(time.Duration(i*10) * time.Second)
		testutil.SeedContentUpvote(t, ctx, tx, voter.ID, target.ID, contentID, "answer", at)
	}

	report, err := svc.AnalyzeContentVoting(ctx, contentID, "answer")
	if err != nil {
		t.Fatalf("AnalyzeContentVoting: %v", err)
	}
	if !report.IsSuspicious {
		t.Fatalf("expected burst to be flagged")
	}
	if len(report.Patterns) != 1 || report.Patterns[0].Pattern != PatternCoordinated {
		t.Fatalf("patterns=%+v, want one %s", report.Patterns, PatternCoordinated)
	}
	p := report.Patterns[0]
	// Three upvotes with a 10 second mean gap.
	if math.Abs(p.Confidence-(1.0-10.0/60.0)) > 1e-6 {
		t.Fatalf("confidence=%v, want ~0.8333", p.Confidence)
	}
	if report.RiskScore != 0.5 || report.Recommendation != RecommendationWarn {
		t.Fatalf("risk=%v recommendation=%q, want 0.5/%q", report.RiskScore, report.Recommendation, RecommendationWarn)
	}
}

func TestAnalyzeContentVotingSlowVotes(t *testing.T) {
	svc, tx := newVoteAnalysisForTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	target := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	contentID := uuid.New()
	for i := 0; i < 3; i++ {
		voter := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
		at := now.Add(-4 * time.Minute).Add(time.Duration(i*90) * time.Second)
		testutil.SeedContentUpvote(t, ctx, tx, voter.ID, target.ID, contentID, "answer", at)
	}

	report, err := svc.AnalyzeContentVoting(ctx, contentID, "answer")
	if err != nil {
		t.Fatalf("AnalyzeContentVoting: %v", err)
	}
	if report.IsSuspicious || len(report.Patterns) != 0 {
		t.Fatalf("expected clean report for slow votes, got %+v", report)
	}
}

func TestFindCycleDepthCap(t *testing.T) {
	// A long chain that only closes past the depth cap must not report a
	// cycle.
	ids := make([]uuid.UUID, 15)
	for i := range ids {
		ids[i] = uuid.New()
	}
	graph := make(map[uuid.UUID][]uuid.UUID)
	for i := 0; i < len(ids)-1; i++ {
		graph[ids[i]] = append(graph[ids[i]], ids[i+1])
	}
	graph[ids[len(ids)-1]] = append(graph[ids[len(ids)-1]], ids[0])

	if cycle := findCycle(graph, ids[0], 3, 10); cycle != nil {
		t.Fatalf("depth cap ignored, got cycle of %d", len(cycle))
	}
	if cycle := findCycle(graph, ids[0], 3, 20); cycle == nil {
		t.Fatalf("expected cycle with a deeper cap")
	}
}

func TestFindCycleIgnoresShortCycles(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	graph := map[uuid.UUID][]uuid.UUID{
		a: {b},
		b: {a},
	}
	if cycle := findCycle(graph, a, 3, 10); cycle != nil {
		t.Fatalf("two-user loop should not count as a ring, got %v", cycle)
	}
}
