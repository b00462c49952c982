package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/config"
	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/domain/community"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/neurobridge-trust/internal/pkg/errors"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

// ActivityService captures activity events for the clustering window. The
// raw network identifier is hashed before anything touches the store.
type ActivityService interface {
	RecordActivity(ctx context.Context, userID uuid.UUID, networkAddress, deviceSignature, activityType string) error
	RecordVote(ctx context.Context, voterID, targetUserID uuid.UUID, voteType string, contentID uuid.UUID, contentType string) error
}

type activityService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      config.Config
	activity repos.ActivityLogRepo
	votes    repos.VoteRepo
}

func NewActivityService(db *gorm.DB, log *logger.Logger, cfg config.Config, activity repos.ActivityLogRepo, votes repos.VoteRepo) ActivityService {
	return &activityService{
		db:       db,
		log:      log.With("service", "ActivityService"),
		cfg:      cfg,
		activity: activity,
		votes:    votes,
	}
}

// HashNetworkAddress is the one-way hash applied to every network
// identifier at capture time.
func HashNetworkAddress(address string) string {
	sum := sha256.Sum256([]byte(address))
	return hex.EncodeToString(sum[:])
}

func (s *activityService) RecordActivity(ctx context.Context, userID uuid.UUID, networkAddress, deviceSignature, activityType string) error {
	if userID == uuid.Nil || activityType == "" {
		return fmt.Errorf("record activity: %w: user id and activity type are required", pkgerrors.ErrInvalidArgument)
	}

	entry := &community.ActivityLogEntry{
		UserID:          userID,
		NetworkHash:     HashNetworkAddress(networkAddress),
		DeviceSignature: deviceSignature,
		ActivityType:    activityType,
	}

	qctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.StoreTimeoutSecs)*time.Second)
	defer cancel()
	if _, err := s.activity.Append(dbctx.Context{Ctx: qctx}, []*community.ActivityLogEntry{entry}); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (s *activityService) RecordVote(ctx context.Context, voterID, targetUserID uuid.UUID, voteType string, contentID uuid.UUID, contentType string) error {
	if voterID == uuid.Nil || targetUserID == uuid.Nil {
		return fmt.Errorf("record vote: %w: voter and target are required", pkgerrors.ErrInvalidArgument)
	}
	if voteType != community.VoteTypeUp && voteType != community.VoteTypeDown {
		return fmt.Errorf("record vote: %w: vote type %q", pkgerrors.ErrInvalidArgument, voteType)
	}

	row := &community.VoteRecord{
		VoterID:      voterID,
		TargetUserID: targetUserID,
		VoteType:     voteType,
		ContentID:    contentID,
		ContentType:  contentType,
	}

	qctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.StoreTimeoutSecs)*time.Second)
	defer cancel()
	if _, err := s.votes.Create(dbctx.Context{Ctx: qctx}, []*community.VoteRecord{row}); err != nil {
		return fmt.Errorf("append vote: %w", err)
	}
	return nil
}
