package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-trust/internal/config"
	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-trust/internal/services"
)

func TestRecomputeActiveUsers(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	ctx := context.Background()
	cfg := config.Default()
	now := time.Now().UTC()

	votes := repos.NewVoteRepo(tx, log)
	activity := repos.NewActivityLogRepo(tx, log)
	snapshots := repos.NewSnapshotRepo(tx, log)
	clustering := services.NewClusteringService(tx, log, cfg, activity, votes)
	trustSvc := services.NewTrustService(tx, log, cfg, nil,
		repos.NewUserRepo(tx, log),
		repos.NewMasteryRepo(tx, log),
		repos.NewFactCheckRepo(tx, log),
		repos.NewAnswerRepo(tx, log),
		votes,
		repos.NewAbuseFlagRepo(tx, log),
		snapshots,
		clustering,
	)

	a := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -3, 0))
	b := testutil.SeedUser(t, ctx, tx, now.AddDate(0, -6, 0))
	stale := testutil.SeedUser(t, ctx, tx, now.AddDate(-1, 0, 0))
	testutil.SeedActivity(t, ctx, tx, a.ID, services.HashNetworkAddress("203.0.113.1"), now.Add(-time.Hour))
	testutil.SeedActivity(t, ctx, tx, b.ID, services.HashNetworkAddress("203.0.113.2"), now.Add(-2*time.Hour))
	testutil.SeedActivity(t, ctx, tx, stale.ID, services.HashNetworkAddress("203.0.113.3"), now.Add(-72*time.Hour))

	activities := NewSweepActivities(log, activity, trustSvc)
	result, err := activities.RecomputeActiveUsers(ctx)
	if err != nil {
		t.Fatalf("RecomputeActiveUsers: %v", err)
	}
	if result.ActiveUsers != 2 {
		t.Fatalf("active users=%d, want 2 within the window", result.ActiveUsers)
	}
	if result.Recomputed != 2 || result.Failed != 0 {
		t.Fatalf("recomputed=%d failed=%d, want 2/0", result.Recomputed, result.Failed)
	}

	snapA, err := snapshots.GetByUser(dbctx.Context{Ctx: ctx}, a.ID)
	if err != nil || snapA == nil {
		t.Fatalf("snapshot for active user missing: %v", err)
	}
	snapStale, err := snapshots.GetByUser(dbctx.Context{Ctx: ctx}, stale.ID)
	if err != nil {
		t.Fatalf("snapshot read: %v", err)
	}
	if snapStale != nil {
		t.Fatalf("stale user recomputed outside the window")
	}
}
