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

func newClusteringForTest(t *testing.T) (ClusteringService, *gorm.DB) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	svc := NewClusteringService(tx, log, config.Default(),
		repos.NewActivityLogRepo(tx, log), repos.NewVoteRepo(tx, log))
	return svc, tx
}

func TestAnalyzeSockPuppetsSharedNetworkOnly(t *testing.T) {
	svc, tx := newClusteringForTest(t)
	ctx := context.Background()
	now := time.Now().UTC()
	hash := HashNetworkAddress("203.0.113.7")

	subject := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	other := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	testutil.SeedActivity(t, ctx, tx, subject.ID, hash, now.Add(-time.Hour))
	testutil.SeedActivity(t, ctx, tx, other.ID, hash, now.Add(-2*time.Hour))

	report, err := svc.AnalyzeSockPuppets(ctx, subject.ID, 0)
	if err != nil {
		t.Fatalf("AnalyzeSockPuppets: %v", err)
	}
	if len(report.Clusters) != 1 {
		t.Fatalf("clusters=%d, want 1", len(report.Clusters))
	}
	c := report.Clusters[0]
	if c.SharedNetwork != RedactedNetwork {
		t.Fatalf("shared network %q leaked, want %q", c.SharedNetwork, RedactedNetwork)
	}
	if c.NetworkHash != hash {
		t.Fatalf("network hash=%q, want %q", c.NetworkHash, hash)
	}
	if len(c.Users) != 2 || c.InteractionCount != 0 {
		t.Fatalf("cluster=%+v, want 2 users and no interactions", c)
	}
	// Two users, no interactions: confidence 0.2, risk 0.15 * 0.2.
	if math.Abs(c.Confidence-0.2) > 1e-9 {
		t.Fatalf("confidence=%v, want 0.2", c.Confidence)
	}
	if math.Abs(report.RiskScore-0.03) > 1e-9 {
		t.Fatalf("risk=%v, want 0.03", report.RiskScore)
	}
	if report.IsSuspicious || report.Recommendation != RecommendationAllow {
		t.Fatalf("expected benign report, got %+v", report)
	}
}

func TestAnalyzeSockPuppetsInteractingCluster(t *testing.T) {
	svc, tx := newClusteringForTest(t)
	ctx := context.Background()
	now := time.Now().UTC()
	hash := HashNetworkAddress("198.51.100.4")

	members := make([]uuid.UUID, 5)
	for i := range members {
		u := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
		members[i] = u.ID
		testutil.SeedActivity(t, ctx, tx, u.ID, hash, now.Add(-time.Duration(i+1)*time.Hour))
	}
	for i := 0; i < 6; i++ {
		testutil.SeedUpvote(t, ctx, tx, members[0], members[1], now.Add(-time.Duration(i+1)*time.Hour))
	}

	report, err := svc.AnalyzeSockPuppets(ctx, members[0], 0)
	if err != nil {
		t.Fatalf("AnalyzeSockPuppets: %v", err)
	}
	if len(report.Clusters) != 1 {
		t.Fatalf("clusters=%d, want 1", len(report.Clusters))
	}
	c := report.Clusters[0]
	if len(c.Users) != 5 || c.InteractionCount != 6 {
		t.Fatalf("cluster=%+v, want 5 users and 6 interactions", c)
	}
	if c.Confidence != 1.0 {
		t.Fatalf("confidence=%v, want capped 1.0", c.Confidence)
	}
	if report.RiskScore != 1.0 {
		t.Fatalf("risk=%v, want capped 1.0", report.RiskScore)
	}
	if !report.IsSuspicious || report.Recommendation != RecommendationInvestigate {
		t.Fatalf("expected investigate, got %+v", report)
	}
}

func TestAnalyzeSockPuppetsSingletonNetwork(t *testing.T) {
	svc, tx := newClusteringForTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	subject := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	testutil.SeedActivity(t, ctx, tx, subject.ID, HashNetworkAddress("192.0.2.10"), now.Add(-time.Hour))

	report, err := svc.AnalyzeSockPuppets(ctx, subject.ID, 0)
	if err != nil {
		t.Fatalf("AnalyzeSockPuppets: %v", err)
	}
	if len(report.Clusters) != 0 || report.IsSuspicious || report.RiskScore != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestAnalyzeSockPuppetsIgnoresOtherNetworks(t *testing.T) {
	svc, tx := newClusteringForTest(t)
	ctx := context.Background()
	now := time.Now().UTC()

	subject := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
	testutil.SeedActivity(t, ctx, tx, subject.ID, HashNetworkAddress("192.0.2.20"), now.Add(-time.Hour))

	// A crowded network the subject never touched.
	otherHash := HashNetworkAddress("192.0.2.30")
	for i := 0; i < 4; i++ {
		u := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -1, 0))
		testutil.SeedActivity(t, ctx, tx, u.ID, otherHash, now.Add(-time.Hour))
	}

	report, err := svc.AnalyzeSockPuppets(ctx, subject.ID, 0)
	if err != nil {
		t.Fatalf("AnalyzeSockPuppets: %v", err)
	}
	if len(report.Clusters) != 0 {
		t.Fatalf("subject pulled into foreign cluster: %+v", report.Clusters)
	}
}
