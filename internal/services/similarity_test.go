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
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
)

func newSimilarityForTest(t *testing.T) (SimilarityService, *gorm.DB) {
	t.Helper()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	cfg := config.Default()
	vectorizer := NewVectorizer(cfg.Similarity.EmbeddingDims, nil)
	svc := NewSimilarityService(tx, log, cfg, vectorizer, repos.NewFingerprintRepo(tx, log))
	return svc, tx
}

func TestCheckSimilarityFirstSubmission(t *testing.T) {
	svc, tx := newSimilarityForTest(t)
	ctx := context.Background()

	report, err := svc.CheckSimilarity(ctx, uuid.New(), "answer", uuid.New(),
		"photosynthesis converts light energy into chemical energy", true)
	if err != nil {
		t.Fatalf("CheckSimilarity: %v", err)
	}
	if report.IsDuplicate || report.Recommendation != RecommendationAllow {
		t.Fatalf("first submission flagged: %+v", report)
	}
	if len(report.Matches) != 0 {
		t.Fatalf("matches=%d, want 0", len(report.Matches))
	}

	log := testutil.Logger(t)
	since := time.Now().UTC().AddDate(0, 0, -1)
	stored, err := repos.NewFingerprintRepo(tx, log).FindRecentByType(dbctx.Context{Ctx: ctx}, "answer", since, 10)
	if err != nil {
		t.Fatalf("fingerprint read: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored fingerprints=%d, want 1", len(stored))
	}
}

func TestCheckSimilarityExactCopyDifferentOwner(t *testing.T) {
	svc, _ := newSimilarityForTest(t)
	ctx := context.Background()
	text := "The mitochondria is the powerhouse of the cell."

	if _, err := svc.CheckSimilarity(ctx, uuid.New(), "answer", uuid.New(), text, true); err != nil {
		t.Fatalf("seed check: %v", err)
	}

	// Same text modulo case and whitespace, submitted by someone else.
	report, err := svc.CheckSimilarity(ctx, uuid.New(), "answer", uuid.New(),
		"the MITOCHONDRIA is   the powerhouse\tof the cell.", true)
	if err != nil {
		t.Fatalf("CheckSimilarity: %v", err)
	}
	if !report.IsDuplicate {
		t.Fatalf("exact copy not detected: %+v", report)
	}
	if report.Confidence != 1.0 {
		t.Fatalf("confidence=%v, want 1.0 for hash match", report.Confidence)
	}
	if report.Recommendation != RecommendationBlock {
		t.Fatalf("recommendation=%q, want %q", report.Recommendation, RecommendationBlock)
	}
}

func TestCheckSimilaritySameOwnerRepost(t *testing.T) {
	svc, _ := newSimilarityForTest(t)
	ctx := context.Background()
	owner := uuid.New()
	text := "Newton's second law relates force, mass and acceleration."

	if _, err := svc.CheckSimilarity(ctx, uuid.New(), "answer", owner, text, true); err != nil {
		t.Fatalf("seed check: %v", err)
	}

	report, err := svc.CheckSimilarity(ctx, uuid.New(), "answer", owner, text, true)
	if err != nil {
		t.Fatalf("CheckSimilarity: %v", err)
	}
	if !report.IsDuplicate {
		t.Fatalf("repost not detected: %+v", report)
	}
	if report.Recommendation != RecommendationWarn {
		t.Fatalf("recommendation=%q, want %q for own repost", report.Recommendation, RecommendationWarn)
	}
}

func TestCheckSimilarityDuplicateNotStored(t *testing.T) {
	svc, tx := newSimilarityForTest(t)
	ctx := context.Background()
	text := "Water boils at one hundred degrees Celsius at sea level."

	if _, err := svc.CheckSimilarity(ctx, uuid.New(), "answer", uuid.New(), text, true); err != nil {
		t.Fatalf("seed check: %v", err)
	}
	if _, err := svc.CheckSimilarity(ctx, uuid.New(), "answer", uuid.New(), text, true); err != nil {
		t.Fatalf("duplicate check: %v", err)
	}

	log := testutil.Logger(t)
	since := time.Now().UTC().AddDate(0, 0, -1)
	stored, err := repos.NewFingerprintRepo(tx, log).FindRecentByType(dbctx.Context{Ctx: ctx}, "answer", since, 10)
	if err != nil {
		t.Fatalf("fingerprint read: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored fingerprints=%d, want the duplicate dropped", len(stored))
	}
}

func TestCheckSimilarityAutoStoreDisabled(t *testing.T) {
	svc, tx := newSimilarityForTest(t)
	ctx := context.Background()

	if _, err := svc.CheckSimilarity(ctx, uuid.New(), "answer", uuid.New(),
		"an ephemeral probe that must leave no trace", false); err != nil {
		t.Fatalf("CheckSimilarity: %v", err)
	}

	log := testutil.Logger(t)
	since := time.Now().UTC().AddDate(0, 0, -1)
	stored, err := repos.NewFingerprintRepo(tx, log).FindRecentByType(dbctx.Context{Ctx: ctx}, "answer", since, 10)
	if err != nil {
		t.Fatalf("fingerprint read: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("stored fingerprints=%d, want 0 with auto store off", len(stored))
	}
}

func TestCheckSimilarityUnrelatedContent(t *testing.T) {
	svc, _ := newSimilarityForTest(t)
	ctx := context.Background()

	if _, err := svc.CheckSimilarity(ctx, uuid.New(), "answer", uuid.New(),
		"gravity pulls objects toward each other", true); err != nil {
		t.Fatalf("seed check: %v", err)
	}

	report, err := svc.CheckSimilarity(ctx, uuid.New(), "answer", uuid.New(),
		"1848 was a year of widespread European revolutions", true)
	if err != nil {
		t.Fatalf("CheckSimilarity: %v", err)
	}
	if report.IsDuplicate || report.Recommendation != RecommendationAllow {
		t.Fatalf("unrelated content flagged: %+v", report)
	}
}
