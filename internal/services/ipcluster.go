package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/config"
	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/observability"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/neurobridge-trust/internal/pkg/errors"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

// RedactedNetwork is the placeholder returned in place of any raw network
// identifier.
const RedactedNetwork = "[REDACTED]"

type ClusteringService interface {
	AnalyzeSockPuppets(ctx context.Context, userID uuid.UUID, lookbackDays int) (*ClusteringReport, error)
}

type clusteringService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      config.Config
	activity repos.ActivityLogRepo
	votes    repos.VoteRepo
}

func NewClusteringService(db *gorm.DB, log *logger.Logger, cfg config.Config, activity repos.ActivityLogRepo, votes repos.VoteRepo) ClusteringService {
	return &clusteringService{
		db:       db,
		log:      log.With("service", "ClusteringService"),
		cfg:      cfg,
		activity: activity,
		votes:    votes,
	}
}

func (s *clusteringService) AnalyzeSockPuppets(ctx context.Context, userID uuid.UUID, lookbackDays int) (*ClusteringReport, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("analyze sock puppets: %w: user id is required", pkgerrors.ErrInvalidArgument)
	}
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.Clustering.LookbackDays
	}

	clusters, err := s.detectClusters(ctx, userID, lookbackDays)
	if err != nil {
		return nil, err
	}

	var risk float64
	for _, c := range clusters {
		clusterRisk := float64(len(c.Users)-1) * 0.15
		if c.InteractionCount >= s.cfg.Clustering.InteractionThreshold {
			clusterRisk += 0.4
		}
		risk += clusterRisk * c.Confidence
	}
	if risk > 1.0 {
		risk = 1.0
	}

	recommendation := RecommendationAllow
	switch {
	case risk >= 0.7:
		recommendation = RecommendationInvestigate
	case risk >= 0.4:
		recommendation = RecommendationWarn
	}

	report := &ClusteringReport{
		UserID:         userID,
		IsSuspicious:   len(clusters) > 0 && risk >= 0.3,
		Clusters:       clusters,
		RiskScore:      risk,
		Recommendation: recommendation,
		AnalyzedAt:     time.Now().UTC(),
	}
	observability.Current().ObserveDetectorRun("clustering", recommendation)
	s.log.Info("Sock puppet analysis complete", "user_id", userID, "risk_score", risk, "clusters", len(clusters))
	return report, nil
}

// detectClusters groups the activity window by network hash and keeps the
// hashes shared by enough users that include the subject. Pairwise vote
// traffic among cluster members over the interaction window feeds the
// confidence.
func (s *clusteringService) detectClusters(ctx context.Context, userID uuid.UUID, lookbackDays int) ([]NetworkCluster, error) {
	since := time.Now().UTC().AddDate(0, 0, -lookbackDays)

	qctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.StoreTimeoutSecs)*time.Second)
	entries, err := s.activity.ListSince(dbctx.Context{Ctx: qctx}, since)
	cancel()
	if err != nil {
		if pkgerrors.IsStoreUnreachable(err) {
			return nil, fmt.Errorf("detect clusters: %w", err)
		}
		s.log.Warn("Activity read failed, substituting empty window", "error", err)
		observability.Current().ObserveSubstitution("clustering", "activity_read_failed")
		return nil, nil
	}

	byNetwork := make(map[string]map[uuid.UUID]struct{})
	for _, e := range entries {
		if e.NetworkHash == "" {
			continue
		}
		users, ok := byNetwork[e.NetworkHash]
		if !ok {
			users = make(map[uuid.UUID]struct{})
			byNetwork[e.NetworkHash] = users
		}
		users[e.UserID] = struct{}{}
	}

	interactionSince := time.Now().UTC().AddDate(0, 0, -s.cfg.Clustering.InteractionWindowDays)
	var clusters []NetworkCluster
	for hash, userSet := range byNetwork {
		if len(userSet) < s.cfg.Clustering.MinClusterSize {
			continue
		}
		if _, ok := userSet[userID]; !ok {
			continue
		}

		members := make([]uuid.UUID, 0, len(userSet))
		for id := range userSet {
			members = append(members, id)
		}
		sort.Slice(members, func(i, j int) bool { return members[i].String() < members[j].String() })

		interactions := 0
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				interactions += s.countInteractions(ctx, members[i], members[j], interactionSince)
			}
		}

		confidence := float64(len(members)-1)*0.2 + float64(interactions)*0.1
		if confidence > 1.0 {
			confidence = 1.0
		}
		clusters = append(clusters, NetworkCluster{
			SharedNetwork:    RedactedNetwork,
			NetworkHash:      hash,
			Users:            members,
			InteractionCount: interactions,
			Confidence:       confidence,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Confidence != clusters[j].Confidence {
			return clusters[i].Confidence > clusters[j].Confidence
		}
		return clusters[i].NetworkHash < clusters[j].NetworkHash
	})
	return clusters, nil
}

func (s *clusteringService) countInteractions(ctx context.Context, a, b uuid.UUID, since time.Time) int {
	qctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.StoreTimeoutSecs)*time.Second)
	defer cancel()
	n, err := s.votes.CountBetween(dbctx.Context{Ctx: qctx}, a, b, since)
	if err != nil {
		s.log.Warn("Interaction count failed, substituting zero", "error", err)
		observability.Current().ObserveSubstitution("clustering", "interaction_count_failed")
		return 0
	}
	return int(n)
}
