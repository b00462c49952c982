package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/config"
	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/domain/trust"
	"github.com/yungbote/neurobridge-trust/internal/observability"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/neurobridge-trust/internal/pkg/errors"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

// FlagService turns detector reports into immutable abuse flag rows.
type FlagService interface {
	FlagVoteManipulation(ctx context.Context, userID uuid.UUID, report *VoteAnalysisReport) error
	FlagDuplicateContent(ctx context.Context, userID uuid.UUID, report *SimilarityReport) error
	FlagSockPuppet(ctx context.Context, userID uuid.UUID, report *ClusteringReport) error
	ListFlags(ctx context.Context, userID uuid.UUID, limit int) ([]*trust.AbuseFlag, error)
}

type flagService struct {
	db    *gorm.DB
	log   *logger.Logger
	cfg   config.Config
	flags repos.AbuseFlagRepo
}

func NewFlagService(db *gorm.DB, log *logger.Logger, cfg config.Config, flags repos.AbuseFlagRepo) FlagService {
	return &flagService{
		db:    db,
		log:   log.With("service", "FlagService"),
		cfg:   cfg,
		flags: flags,
	}
}

func (s *flagService) FlagVoteManipulation(ctx context.Context, userID uuid.UUID, report *VoteAnalysisReport) error {
	if report == nil {
		return fmt.Errorf("flag vote manipulation: %w: report is required", pkgerrors.ErrInvalidArgument)
	}
	severity := trust.SeverityLow
	switch {
	case report.RiskScore >= 0.7:
		severity = trust.SeverityHigh
	case report.RiskScore >= 0.4:
		severity = trust.SeverityMedium
	}

	patternNames := make([]string, 0, len(report.Patterns))
	for _, p := range report.Patterns {
		patternNames = append(patternNames, p.Pattern)
	}
	evidence := map[string]interface{}{
		"risk_score":     report.RiskScore,
		"patterns":       patternNames,
		"recommendation": report.Recommendation,
	}
	return s.append(ctx, userID, trust.FlagVoteManipulation, severity,
		report.Recommendation == RecommendationInvestigate, evidence)
}

func (s *flagService) FlagDuplicateContent(ctx context.Context, userID uuid.UUID, report *SimilarityReport) error {
	if report == nil {
		return fmt.Errorf("flag duplicate content: %w: report is required", pkgerrors.ErrInvalidArgument)
	}
	severity := trust.SeverityMedium
	if report.Recommendation == RecommendationBlock {
		severity = trust.SeverityHigh
	}
	evidence := map[string]interface{}{
		"confidence":     report.Confidence,
		"matches_count":  len(report.Matches),
		"recommendation": report.Recommendation,
		"content_id":     report.ContentID,
		"content_type":   report.ContentType,
	}
	return s.append(ctx, userID, trust.FlagDuplicateContent, severity,
		report.Recommendation == RecommendationBlock, evidence)
}

func (s *flagService) FlagSockPuppet(ctx context.Context, userID uuid.UUID, report *ClusteringReport) error {
	if report == nil {
		return fmt.Errorf("flag sock puppet: %w: report is required", pkgerrors.ErrInvalidArgument)
	}
	severity := trust.SeverityMedium
	switch {
	case report.RiskScore >= 0.7:
		severity = trust.SeverityCritical
	case report.RiskScore >= 0.4:
		severity = trust.SeverityHigh
	}

	clusterSummaries := make([]map[string]interface{}, 0, len(report.Clusters))
	for _, c := range report.Clusters {
		clusterSummaries = append(clusterSummaries, map[string]interface{}{
			"users_count":       len(c.Users),
			"interaction_count": c.InteractionCount,
			"confidence":        c.Confidence,
		})
	}
	evidence := map[string]interface{}{
		"risk_score":     report.RiskScore,
		"clusters":       clusterSummaries,
		"recommendation": report.Recommendation,
	}
	return s.append(ctx, userID, trust.FlagSockPuppet, severity,
		report.Recommendation == RecommendationInvestigate, evidence)
}

func (s *flagService) ListFlags(ctx context.Context, userID uuid.UUID, limit int) ([]*trust.AbuseFlag, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("list flags: %w: user id is required", pkgerrors.ErrInvalidArgument)
	}
	qctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.StoreTimeoutSecs)*time.Second)
	defer cancel()
	return s.flags.ListByUser(dbctx.Context{Ctx: qctx}, userID, limit)
}

func (s *flagService) append(ctx context.Context, userID uuid.UUID, flagType, severity string, autoModerated bool, evidence map[string]interface{}) error {
	if userID == uuid.Nil {
		return fmt.Errorf("record flag: %w: user id is required", pkgerrors.ErrInvalidArgument)
	}
	raw, err := json.Marshal(evidence)
	if err != nil {
		return fmt.Errorf("marshal evidence: %w", err)
	}

	qctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.StoreTimeoutSecs)*time.Second)
	defer cancel()
	row := &trust.AbuseFlag{
		UserID:        userID,
		FlagType:      flagType,
		Severity:      severity,
		Evidence:      raw,
		AutoModerated: autoModerated,
	}
	if err := s.flags.Append(dbctx.Context{Ctx: qctx}, row); err != nil {
		return fmt.Errorf("append abuse flag: %w", err)
	}
	observability.Current().ObserveFlagWritten(flagType, severity)
	s.log.Warn("Abuse flag recorded", "user_id", userID, "flag_type", flagType, "severity", severity)
	return nil
}
