package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/config"
	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/domain/community"
	"github.com/yungbote/neurobridge-trust/internal/observability"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/neurobridge-trust/internal/pkg/errors"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type VoteAnalysisService interface {
	AnalyzeUserVoting(ctx context.Context, userID uuid.UUID, lookbackDays int) (*VoteAnalysisReport, error)
	AnalyzeContentVoting(ctx context.Context, contentID uuid.UUID, contentType string) (*VoteAnalysisReport, error)
}

type voteAnalysisService struct {
	db    *gorm.DB
	log   *logger.Logger
	cfg   config.Config
	votes repos.VoteRepo
}

func NewVoteAnalysisService(db *gorm.DB, log *logger.Logger, cfg config.Config, votes repos.VoteRepo) VoteAnalysisService {
	return &voteAnalysisService{
		db:    db,
		log:   log.With("service", "VoteAnalysisService"),
		cfg:   cfg,
		votes: votes,
	}
}

func (s *voteAnalysisService) AnalyzeUserVoting(ctx context.Context, userID uuid.UUID, lookbackDays int) (*VoteAnalysisReport, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("analyze user voting: %w: user id is required", pkgerrors.ErrInvalidArgument)
	}
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.VoteAnalysis.LookbackDays
	}
	since := time.Now().UTC().AddDate(0, 0, -lookbackDays)

	var patterns []VotePattern
	if p, err := s.detectMutualVoting(ctx, userID, since); err != nil {
		return nil, err
	} else if p != nil {
		patterns = append(patterns, *p)
	}
	if p, err := s.detectVoteRing(ctx, userID, since); err != nil {
		return nil, err
	} else if p != nil {
		patterns = append(patterns, *p)
	}

	report := s.buildReport(userID, patterns)
	observability.Current().ObserveDetectorRun("vote_analysis", report.Recommendation)
	s.log.Info("Vote analysis complete", "user_id", userID, "risk_score", report.RiskScore, "patterns", len(patterns))
	return report, nil
}

func (s *voteAnalysisService) AnalyzeContentVoting(ctx context.Context, contentID uuid.UUID, contentType string) (*VoteAnalysisReport, error) {
	if contentID == uuid.Nil || contentType == "" {
		return nil, fmt.Errorf("analyze content voting: %w: content id and type are required", pkgerrors.ErrInvalidArgument)
	}

	var patterns []VotePattern
	p, err := s.detectCoordinatedVoting(ctx, contentID, contentType)
	if err != nil {
		return nil, err
	}
	if p != nil {
		patterns = append(patterns, *p)
	}

	report := &VoteAnalysisReport{
		Patterns:       patterns,
		IsSuspicious:   len(patterns) > 0,
		Recommendation: RecommendationAllow,
		AnalyzedAt:     time.Now().UTC(),
	}
	if report.IsSuspicious {
		report.RiskScore = 0.5
		report.Recommendation = RecommendationWarn
	}
	observability.Current().ObserveDetectorRun("vote_analysis", report.Recommendation)
	return report, nil
}

// detectMutualVoting flags a subject whose upvote targets overwhelmingly
// upvote them back: mutual ratio at or above the threshold AND at least
// the minimum mutual count. Confidence is the ratio itself.
func (s *voteAnalysisService) detectMutualVoting(ctx context.Context, userID uuid.UUID, since time.Time) (*VotePattern, error) {
	votesBy, err := s.queryVotes(ctx, "mutual_voting", func(dbc dbctx.Context) ([]*community.VoteRecord, error) {
		return s.votes.GetVotesBy(dbc, userID, since, community.VoteTypeUp)
	})
	if err != nil {
		return nil, err
	}
	votesFor, err := s.queryVotes(ctx, "mutual_voting", func(dbc dbctx.Context) ([]*community.VoteRecord, error) {
		return s.votes.GetVotesFor(dbc, userID, since, community.VoteTypeUp)
	})
	if err != nil {
		return nil, err
	}

	votedFor := make(map[uuid.UUID]struct{})
	for _, v := range votesBy {
		votedFor[v.TargetUserID] = struct{}{}
	}
	if len(votedFor) == 0 {
		return nil, nil
	}
	votedBy := make(map[uuid.UUID]struct{})
	for _, v := range votesFor {
		votedBy[v.VoterID] = struct{}{}
	}

	var mutual []uuid.UUID
	for id := range votedFor {
		if _, ok := votedBy[id]; ok {
			mutual = append(mutual, id)
		}
	}

	ratio := float64(len(mutual)) / float64(len(votedFor))
	if ratio < s.cfg.VoteAnalysis.MutualRatioThreshold || len(mutual) < s.cfg.VoteAnalysis.MutualMinCount {
		return nil, nil
	}

	return &VotePattern{
		Pattern:     PatternMutualVoting,
		Users:       append([]uuid.UUID{userID}, mutual...),
		Confidence:  ratio,
		VoteCount:   len(mutual),
		Description: fmt.Sprintf("%d of %d upvote targets reciprocated", len(mutual), len(votedFor)),
	}, nil
}

// detectVoteRing walks the upvote graph from the subject looking for a
// path that returns to the subject. Each path carries its own visited set
// so sibling branches stay independent; depth is capped so the scan stays
// bounded on dense graphs.
func (s *voteAnalysisService) detectVoteRing(ctx context.Context, userID uuid.UUID, since time.Time) (*VotePattern, error) {
	votes, err := s.queryVotes(ctx, "vote_ring", func(dbc dbctx.Context) ([]*community.VoteRecord, error) {
		return s.votes.GetAllUpvotes(dbc, since)
	})
	if err != nil {
		return nil, err
	}

	graph := make(map[uuid.UUID][]uuid.UUID)
	seen := make(map[uuid.UUID]map[uuid.UUID]struct{})
	for _, v := range votes {
		if v.VoterID == v.TargetUserID {
			continue
		}
		edges, ok := seen[v.VoterID]
		if !ok {
			edges = make(map[uuid.UUID]struct{})
			seen[v.VoterID] = edges
		}
		if _, dup := edges[v.TargetUserID]; dup {
			continue
		}
		edges[v.TargetUserID] = struct{}{}
		graph[v.VoterID] = append(graph[v.VoterID], v.TargetUserID)
	}

	cycle := findCycle(graph, userID, s.cfg.VoteAnalysis.RingMinSize, s.cfg.VoteAnalysis.RingMaxDepth)
	if cycle == nil {
		return nil, nil
	}

	ringSize := len(cycle) - 1
	return &VotePattern{
		Pattern:     PatternVoteRing,
		Users:       cycle,
		Confidence:  0.9,
		VoteCount:   ringSize,
		Description: fmt.Sprintf("upvote cycle of %d users", ringSize),
	}, nil
}

func findCycle(graph map[uuid.UUID][]uuid.UUID, start uuid.UUID, minSize, maxDepth int) []uuid.UUID {
	var walk func(current uuid.UUID, path []uuid.UUID, visited map[uuid.UUID]struct{}) []uuid.UUID
	walk = func(current uuid.UUID, path []uuid.UUID, visited map[uuid.UUID]struct{}) []uuid.UUID {
		if _, ok := visited[current]; ok {
			if current == start && len(path) >= minSize {
				return append(append([]uuid.UUID{}, path...), current)
			}
			return nil
		}
		if len(path) > maxDepth {
			return nil
		}
		visited[current] = struct{}{}
		next := append(append([]uuid.UUID{}, path...), current)
		for _, neighbor := range graph[current] {
			branch := make(map[uuid.UUID]struct{}, len(visited))
			for k := range visited {
				branch[k] = struct{}{}
			}
			if cycle := walk(neighbor, next, branch); cycle != nil {
				return cycle
			}
		}
		return nil
	}
	return walk(start, nil, make(map[uuid.UUID]struct{}))
}

// detectCoordinatedVoting flags bursts: at least the minimum upvote count
// on one content item with a mean inter-arrival gap under the window.
func (s *voteAnalysisService) detectCoordinatedVoting(ctx context.Context, contentID uuid.UUID, contentType string) (*VotePattern, error) {
	since := time.Now().UTC().Add(-time.Duration(s.cfg.VoteAnalysis.ContentLookbackMins) * time.Minute)
	votes, err := s.queryVotes(ctx, "coordinated_voting", func(dbc dbctx.Context) ([]*community.VoteRecord, error) {
		return s.votes.ListByContent(dbc, contentID, contentType, since)
	})
	if err != nil {
		return nil, err
	}
	if len(votes) < s.cfg.VoteAnalysis.CoordinatedMinVotes {
		return nil, nil
	}

	var total float64
	for i := 1; i < len(votes); i++ {
		total += votes[i].CreatedAt.Sub(votes[i-1].CreatedAt).Seconds()
	}
	meanGap := total / float64(len(votes)-1)
	if meanGap >= s.cfg.VoteAnalysis.CoordinatedGapSecs {
		return nil, nil
	}

	voters := make([]uuid.UUID, 0, len(votes))
	for _, v := range votes {
		voters = append(voters, v.VoterID)
	}
	confidence := 1.0 - meanGap/s.cfg.VoteAnalysis.CoordinatedGapSecs
	if confidence > 0.95 {
		confidence = 0.95
	}
	return &VotePattern{
		Pattern:     PatternCoordinated,
		Users:       voters,
		Confidence:  confidence,
		VoteCount:   len(votes),
		Description: fmt.Sprintf("%d upvotes with mean gap %.1fs", len(votes), meanGap),
	}, nil
}

// buildReport aggregates pattern risk as weight times confidence, capped
// at 1.0, and maps it onto the recommendation bands.
func (s *voteAnalysisService) buildReport(userID uuid.UUID, patterns []VotePattern) *VoteAnalysisReport {
	var risk float64
	for _, p := range patterns {
		switch p.Pattern {
		case PatternMutualVoting:
			risk += 0.3 * p.Confidence
		case PatternVoteRing:
			risk += 0.7 * p.Confidence
		case PatternCoordinated:
			risk += 0.5 * p.Confidence
		}
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

	return &VoteAnalysisReport{
		UserID:         userID,
		IsSuspicious:   len(patterns) > 0,
		Patterns:       patterns,
		RiskScore:      risk,
		Recommendation: recommendation,
		AnalyzedAt:     time.Now().UTC(),
	}
}

// queryVotes runs one bounded store read. A failed or timed-out query is
// substituted with an empty result; only an unreachable store aborts the
// analysis.
func (s *voteAnalysisService) queryVotes(ctx context.Context, component string, query func(dbctx.Context) ([]*community.VoteRecord, error)) ([]*community.VoteRecord, error) {
	qctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.StoreTimeoutSecs)*time.Second)
	defer cancel()
	rows, err := query(dbctx.Context{Ctx: qctx})
	if err != nil {
		if pkgerrors.IsStoreUnreachable(err) {
			return nil, fmt.Errorf("%s: %w", component, err)
		}
		s.log.Warn("Vote query failed, substituting empty history", "component", component, "error", err)
		observability.Current().ObserveSubstitution(component, "vote_query_failed")
		return nil, nil
	}
	return rows, nil
}
