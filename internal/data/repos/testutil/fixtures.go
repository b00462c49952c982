package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/domain/community"
	"github.com/yungbote/neurobridge-trust/internal/domain/learning"
	"github.com/yungbote/neurobridge-trust/internal/domain/trust"
	"github.com/yungbote/neurobridge-trust/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, createdAt time.Time) *user.User {
	tb.Helper()
	u := &user.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("%s@test.local", uuid.NewString()[:8]),
		CreatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedUpvote(tb testing.TB, ctx context.Context, tx *gorm.DB, voterID, targetID uuid.UUID, at time.Time) *community.VoteRecord {
	tb.Helper()
	v := &community.VoteRecord{
		ID:           uuid.New(),
		VoterID:      voterID,
		TargetUserID: targetID,
		VoteType:     community.VoteTypeUp,
		ContentID:    uuid.New(),
		ContentType:  "answer",
		CreatedAt:    at,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed upvote: %v", err)
	}
	return v
}

func SeedContentUpvote(tb testing.TB, ctx context.Context, tx *gorm.DB, voterID, targetID, contentID uuid.UUID, contentType string, at time.Time) *community.VoteRecord {
	tb.Helper()
	v := &community.VoteRecord{
		ID:           uuid.New(),
		VoterID:      voterID,
		TargetUserID: targetID,
		VoteType:     community.VoteTypeUp,
		ContentID:    contentID,
		ContentType:  contentType,
		CreatedAt:    at,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed content upvote: %v", err)
	}
	return v
}

func SeedAnswer(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, up, down int) *community.Answer {
	tb.Helper()
	a := &community.Answer{
		ID:        uuid.New(),
		UserID:    userID,
		Body:      "answer body",
		Upvotes:   up,
		Downvotes: down,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed answer: %v", err)
	}
	return a
}

func SeedActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, networkHash string, at time.Time) *community.ActivityLogEntry {
	tb.Helper()
	e := &community.ActivityLogEntry{
		ID:           uuid.New(),
		UserID:       userID,
		NetworkHash:  networkHash,
		ActivityType: community.ActivityLogin,
		CreatedAt:    at,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed activity: %v", err)
	}
	return e
}

func SeedMastery(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, topic string, mastery float64) *learning.MasteryRecord {
	tb.Helper()
	m := &learning.MasteryRecord{
		ID:      uuid.New(),
		UserID:  userID,
		Topic:   topic,
		Mastery: mastery,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed mastery: %v", err)
	}
	return m
}

func SeedFactCheck(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, verdict string, at time.Time) *learning.FactCheckResult {
	tb.Helper()
	f := &learning.FactCheckResult{
		ID:        uuid.New(),
		UserID:    userID,
		ClaimID:   uuid.New(),
		Verdict:   verdict,
		CreatedAt: at,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed fact check: %v", err)
	}
	return f
}

func SeedFlag(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, flagType, severity string, resolved bool) *trust.AbuseFlag {
	tb.Helper()
	f := &trust.AbuseFlag{
		ID:       uuid.New(),
		UserID:   userID,
		FlagType: flagType,
		Severity: severity,
		Resolved: resolved,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed flag: %v", err)
	}
	return f
}
