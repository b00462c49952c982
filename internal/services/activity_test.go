package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/config"
	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-trust/internal/domain/community"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
)

func newActivityForTest(t *testing.T) (ActivityService, *gorm.DB) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	svc := NewActivityService(tx, log, config.Default(),
		repos.NewActivityLogRepo(tx, log), repos.NewVoteRepo(tx, log))
	return svc, tx
}

func TestRecordActivityHashesNetworkAddress(t *testing.T) {
	svc, tx := newActivityForTest(t)
	ctx := context.Background()
	userID := uuid.New()
	address := "203.0.113.55"

	if err := svc.RecordActivity(ctx, userID, address, "device-abc", community.ActivityLogin); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}

	log := testutil.Logger(t)
	since := time.Now().UTC().Add(-time.Minute)
	entries, err := repos.NewActivityLogRepo(tx, log).ListSince(dbctx.Context{Ctx: ctx}, since)
	if err != nil {
		t.Fatalf("ListSince: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%d, want 1", len(entries))
	}
	e := entries[0]
	if e.NetworkHash != HashNetworkAddress(address) {
		t.Fatalf("network hash=%q, want sha256 of the address", e.NetworkHash)
	}
	if e.NetworkHash == address {
		t.Fatalf("raw network address was persisted")
	}
	if e.DeviceSignature != "device-abc" || e.ActivityType != community.ActivityLogin {
		t.Fatalf("entry=%+v", e)
	}
}

func TestHashNetworkAddressDeterministic(t *testing.T) {
	a := HashNetworkAddress("198.51.100.1")
	b := HashNetworkAddress("198.51.100.1")
	c := HashNetworkAddress("198.51.100.2")
	if a != b {
		t.Fatalf("hash not deterministic: %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("distinct addresses collided")
	}
	if len(a) != 64 {
		t.Fatalf("hash length=%d, want 64 hex chars", len(a))
	}
}

func TestRecordVote(t *testing.T) {
	svc, tx := newActivityForTest(t)
	ctx := context.Background()
	voter, target := uuid.New(), uuid.New()
	contentID := uuid.New()

	if err := svc.RecordVote(ctx, voter, target, community.VoteTypeUp, contentID, "answer"); err != nil {
		t.Fatalf("RecordVote: %v", err)
	}

	log := testutil.Logger(t)
	votes, err := repos.NewVoteRepo(tx, log).GetVotesBy(dbctx.Context{Ctx: ctx}, voter, time.Time{}, "")
	if err != nil {
		t.Fatalf("GetVotesBy: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("votes=%d, want 1", len(votes))
	}
	if votes[0].TargetUserID != target || votes[0].ContentID != contentID {
		t.Fatalf("vote=%+v", votes[0])
	}
}

func TestRecordVoteRejectsBadType(t *testing.T) {
	svc, _ := newActivityForTest(t)
	ctx := context.Background()

	if err := svc.RecordVote(ctx, uuid.New(), uuid.New(), "SIDEWAYS", uuid.New(), "answer"); err == nil {
		t.Fatalf("expected error for invalid vote type")
	}
	if err := svc.RecordVote(ctx, uuid.Nil, uuid.New(), community.VoteTypeUp, uuid.New(), "answer"); err == nil {
		t.Fatalf("expected error for nil voter")
	}
}
