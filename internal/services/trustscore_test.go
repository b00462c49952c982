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
	"github.com/yungbote/neurobridge-trust/internal/domain/learning"
	"github.com/yungbote/neurobridge-trust/internal/domain/trust"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
)

func newTrustServiceForTest(t *testing.T) (TrustService, *gorm.DB) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	cfg := config.Default()

	votes := repos.NewVoteRepo(tx, log)
	clustering := NewClusteringService(tx, log, cfg, repos.NewActivityLogRepo(tx, log), votes)
	svc := NewTrustService(tx, log, cfg, nil,
		repos.NewUserRepo(tx, log),
		repos.NewMasteryRepo(tx, log),
		repos.NewFactCheckRepo(tx, log),
		repos.NewAnswerRepo(tx, log),
		votes,
		repos.NewAbuseFlagRepo(tx, log),
		repos.NewSnapshotRepo(tx, log),
		clustering,
	)
	return svc, tx
}

func TestTierForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.0, trust.TierRestricted},
		{0.29, trust.TierRestricted},
		{0.30, trust.TierNovice},
		{0.49, trust.TierNovice},
		{0.50, trust.TierContributor},
		{0.69, trust.TierContributor},
		{0.70, trust.TierExpert},
		{0.84, trust.TierExpert},
		{0.85, trust.TierTrusted},
		{1.0, trust.TierTrusted},
	}
	for _, c := range cases {
		if got := TierForScore(c.score); got != c.want {
			t.Fatalf("TierForScore(%v)=%q, want %q", c.score, got, c.want)
		}
	}
}

func TestAccountAgeTrust(t *testing.T) {
	now := time.Now().UTC()

	if got := accountAgeTrust(now, now); got != 0 {
		t.Fatalf("accountAgeTrust(now)=%v, want 0", got)
	}
	if got := accountAgeTrust(now.Add(time.Hour), now); got != 0 {
		t.Fatalf("accountAgeTrust(future)=%v, want 0", got)
	}

	got := accountAgeTrust(now.AddDate(-1, 0, 0), now)
	want := 1.0 - 1.0/(1.0+365.0/30.0)
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("accountAgeTrust(365d)=%v, want ~%v", got, want)
	}
	if got <= accountAgeTrust(now.AddDate(0, 0, -30), now) {
		t.Fatalf("older account should score higher")
	}
}

func TestGiniCoefficient(t *testing.T) {
	cases := []struct {
		name   string
		counts []int
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []int{7}, 0},
		{"even", []int{3, 3, 3}, 0},
		{"skewed", []int{1, 9}, 0.4},
		{"all zero", []int{0, 0, 0}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := giniCoefficient(c.counts); math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("giniCoefficient(%v)=%v, want %v", c.counts, got, c.want)
			}
		})
	}
}

func TestEntropyBand(t *testing.T) {
	cases := []struct {
		partners int
		want     float64
	}{
		{0, 0.2},
		{1, 0.2},
		{2, 0.5},
		{4, 0.5},
		{5, 0.7},
		{9, 0.7},
		{10, 1.0},
		{50, 1.0},
	}
	for _, c := range cases {
		if got := entropyBand(c.partners); got != c.want {
			t.Fatalf("entropyBand(%d)=%v, want %v", c.partners, got, c.want)
		}
	}
}

func TestCalculateTrustScoreUnknownSubject(t *testing.T) {
	svc, tx := newTrustServiceForTest(t)
	ctx := context.Background()
	unknown := uuid.New()

	result, err := svc.CalculateTrustScore(ctx, unknown)
	if err != nil {
		t.Fatalf("CalculateTrustScore: %v", err)
	}
	if math.Abs(result.Score-0.495) > 1e-9 {
		t.Fatalf("score=%v, want 0.495", result.Score)
	}
	if result.Tier != trust.TierNovice {
		t.Fatalf("tier=%q, want %q", result.Tier, trust.TierNovice)
	}

	// The default blend is never persisted.
	log := testutil.Logger(t)
	snap, err := repos.NewSnapshotRepo(tx, log).GetByUser(dbctx.Context{Ctx: ctx}, unknown)
	if err != nil {
		t.Fatalf("snapshot read: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected no snapshot for unknown subject, got %+v", snap)
	}
}

func TestCalculateTrustScoreNewUser(t *testing.T) {
	svc, tx := newTrustServiceForTest(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, tx, time.Now().UTC().AddDate(-1, 0, 0))

	result, err := svc.CalculateTrustScore(ctx, u.ID)
	if err != nil {
		t.Fatalf("CalculateTrustScore: %v", err)
	}

	c := result.Components
	if c.MasteryReliability != 0.5 || c.FactCheckRecord != 0.5 || c.CommunityValidation != 0.5 {
		t.Fatalf("neutral components wrong: %+v", c)
	}
	if c.InteractionEntropy != 0.2 {
		t.Fatalf("entropy=%v, want 0.2", c.InteractionEntropy)
	}
	if c.VotePatternScore != 1.0 {
		t.Fatalf("vote pattern=%v, want 1.0 with no voting history", c.VotePatternScore)
	}
	if c.SimilarityFlags != 1.0 || c.AbuseFlags != 1.0 || c.IPClusteringRisk != 1.0 {
		t.Fatalf("penalty components wrong: %+v", c)
	}

	wantScore := 0.5*0.20 + 0.5*0.20 + 0.5*0.15 + c.AccountAgeTrust*0.10 +
		0.2*0.10 + 1.0*0.10 + 1.0*0.05 + 1.0*0.05 + 1.0*0.05
	if math.Abs(result.Score-wantScore) > 1e-9 {
		t.Fatalf("score=%v, want %v", result.Score, wantScore)
	}
	if result.Tier != trust.TierContributor {
		t.Fatalf("tier=%q, want %q", result.Tier, trust.TierContributor)
	}

	log := testutil.Logger(t)
	snap, err := repos.NewSnapshotRepo(tx, log).GetByUser(dbctx.Context{Ctx: ctx}, u.ID)
	if err != nil {
		t.Fatalf("snapshot read: %v", err)
	}
	if snap == nil {
		t.Fatalf("expected persisted snapshot")
	}
	if snap.Tier != result.Tier || math.Abs(snap.Score-result.Score) > 1e-9 {
		t.Fatalf("snapshot %v/%q does not match result %v/%q", snap.Score, snap.Tier, result.Score, result.Tier)
	}
}

func TestCalculateTrustScoreComponentInputs(t *testing.T) {
	svc, tx := newTrustServiceForTest(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, tx, time.Now().UTC().AddDate(-1, 0, 0))

	topics := []string{"algebra", "geometry", "calculus", "physics", "chemistry"}
	for _, topic := range topics {
		testutil.SeedMastery(t, ctx, tx, u.ID, topic, 0.8)
	}
	for i := 0; i < 8; i++ {
		verdict := learning.VerdictPass
		if i >= 6 {
			verdict = learning.VerdictFail
		}
		testutil.SeedFactCheck(t, ctx, tx, u.ID, verdict, time.Now().UTC().Add(-time.Duration(i)*time.Hour))
	}
	testutil.SeedAnswer(t, ctx, tx, u.ID, 9, 1)
	testutil.SeedFlag(t, ctx, tx, u.ID, trust.FlagDuplicateContent, trust.SeverityMedium, false)
	testutil.SeedFlag(t, ctx, tx, u.ID, trust.FlagVoteManipulation, trust.SeverityLow, true)

	result, err := svc.CalculateTrustScore(ctx, u.ID)
	if err != nil {
		t.Fatalf("CalculateTrustScore: %v", err)
	}
	c := result.Components

	// Five identical mastery records: avg 0.8, variance 0.
	if math.Abs(c.MasteryReliability-(0.8*0.7+1.0*0.3)) > 1e-9 {
		t.Fatalf("mastery=%v, want 0.86", c.MasteryReliability)
	}
	if math.Abs(c.FactCheckRecord-0.75) > 1e-9 {
		t.Fatalf("fact check=%v, want 0.75", c.FactCheckRecord)
	}
	if math.Abs(c.CommunityValidation-0.9) > 1e-9 {
		t.Fatalf("community=%v, want 0.9", c.CommunityValidation)
	}
	// One unresolved duplicate flag: 0.85 similarity penalty, 0.8 overall.
	if math.Abs(c.SimilarityFlags-0.85) > 1e-9 {
		t.Fatalf("similarity flags=%v, want 0.85", c.SimilarityFlags)
	}
	if math.Abs(c.AbuseFlags-0.8) > 1e-9 {
		t.Fatalf("abuse flags=%v, want 0.8", c.AbuseFlags)
	}
}

func TestGetTrustScoreServesSnapshot(t *testing.T) {
	svc, tx := newTrustServiceForTest(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	u := testutil.SeedUser(t, ctx, tx, time.Now().UTC().AddDate(0, -6, 0))

	snapshots := repos.NewSnapshotRepo(tx, log)
	if err := snapshots.Upsert(dbctx.Context{Ctx: ctx}, &trust.TrustSnapshot{
		UserID: u.ID,
		Score:  0.72,
		Tier:   trust.TierExpert,
	}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	result, err := svc.GetTrustScore(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetTrustScore: %v", err)
	}
	if result.Score != 0.72 || result.Tier != trust.TierExpert {
		t.Fatalf("got %v/%q, want snapshot 0.72/%q", result.Score, result.Tier, trust.TierExpert)
	}
}

func TestGetTrustScoreComputesWhenMissing(t *testing.T) {
	svc, tx := newTrustServiceForTest(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, tx, time.Now().UTC().AddDate(-2, 0, 0))

	result, err := svc.GetTrustScore(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetTrustScore: %v", err)
	}
	if result.UserID != u.ID {
		t.Fatalf("user id mismatch: %v", result.UserID)
	}
	if result.Score <= 0 || result.Score > 1 {
		t.Fatalf("score out of range: %v", result.Score)
	}
}
