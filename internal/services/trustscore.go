package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/config"
	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/domain/community"
	"github.com/yungbote/neurobridge-trust/internal/domain/learning"
	"github.com/yungbote/neurobridge-trust/internal/domain/trust"
	"github.com/yungbote/neurobridge-trust/internal/domain/user"
	"github.com/yungbote/neurobridge-trust/internal/observability"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/neurobridge-trust/internal/pkg/errors"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
	"github.com/yungbote/neurobridge-trust/internal/platform/envutil"
)

type TrustService interface {
	// CalculateTrustScore recomputes all nine components, persists the
	// snapshot and returns the fresh result.
	CalculateTrustScore(ctx context.Context, userID uuid.UUID) (*TrustResult, error)
	// GetTrustScore serves the cached or persisted snapshot, computing
	// only when neither exists.
	GetTrustScore(ctx context.Context, userID uuid.UUID) (*TrustResult, error)
}

type trustService struct {
	db         *gorm.DB
	log        *logger.Logger
	cfg        config.Config
	cache      *goredis.Client
	users      repos.UserRepo
	mastery    repos.MasteryRepo
	factChecks repos.FactCheckRepo
	answers    repos.AnswerRepo
	votes      repos.VoteRepo
	flags      repos.AbuseFlagRepo
	snapshots  repos.SnapshotRepo
	clustering ClusteringService
}

func NewTrustService(
	db *gorm.DB,
	log *logger.Logger,
	cfg config.Config,
	cache *goredis.Client,
	users repos.UserRepo,
	mastery repos.MasteryRepo,
	factChecks repos.FactCheckRepo,
	answers repos.AnswerRepo,
	votes repos.VoteRepo,
	flags repos.AbuseFlagRepo,
	snapshots repos.SnapshotRepo,
	clustering ClusteringService,
) TrustService {
	return &trustService{
		db:         db,
		log:        log.With("service", "TrustService"),
		cfg:        cfg,
		cache:      cache,
		users:      users,
		mastery:    mastery,
		factChecks: factChecks,
		answers:    answers,
		votes:      votes,
		flags:      flags,
		snapshots:  snapshots,
		clustering: clustering,
	}
}

func cacheKey(userID uuid.UUID) string { return "trust:score:" + userID.String() }

func cacheTTL() time.Duration {
	return envutil.DurationSeconds("TRUST_CACHE_TTL_SECONDS", 300)
}

func (s *trustService) GetTrustScore(ctx context.Context, userID uuid.UUID) (*TrustResult, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("get trust score: %w: user id is required", pkgerrors.ErrInvalidArgument)
	}

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey(userID)).Bytes()
		if err == nil {
			var cached TrustResult
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		} else if err != goredis.Nil {
			s.log.Warn("Cache read failed", "user_id", userID, "error", err)
		}
	}

	qctx, cancel := context.WithTimeout(ctx, s.storeTimeout())
	snap, err := s.snapshots.GetByUser(dbctx.Context{Ctx: qctx}, userID)
	cancel()
	if err != nil && pkgerrors.IsStoreUnreachable(err) {
		return nil, fmt.Errorf("get trust snapshot: %w", err)
	}
	if snap != nil {
		result := snapshotResult(snap)
		s.writeCache(ctx, result)
		return result, nil
	}
	return s.CalculateTrustScore(ctx, userID)
}

func (s *trustService) CalculateTrustScore(ctx context.Context, userID uuid.UUID) (*TrustResult, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("calculate trust score: %w: user id is required", pkgerrors.ErrInvalidArgument)
	}

	ctx, span := otel.Tracer("services").Start(ctx, "TrustService.CalculateTrustScore")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID.String()))

	subject, err := s.loadSubject(ctx, userID)
	if err != nil {
		return nil, err
	}
	if subject == nil {
		// Unknown subject: the documented default blend, computed from
		// the component defaults rather than hard-coded.
		result := s.assemble(userID, defaultComponents())
		s.log.Info("Unknown subject, returning default trust blend", "user_id", userID, "score", result.Score)
		return result, nil
	}

	var comps TrustComponents
	comps.AccountAgeTrust = accountAgeTrust(subject.CreatedAt, time.Now().UTC())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		comps.MasteryReliability = s.masteryReliability(gctx, userID)
		return nil
	})
	g.Go(func() error {
		comps.FactCheckRecord = s.factCheckRecord(gctx, userID)
		return nil
	})
	g.Go(func() error {
		comps.CommunityValidation = s.communityValidation(gctx, userID)
		return nil
	})
	g.Go(func() error {
		comps.InteractionEntropy = s.interactionEntropy(gctx, userID)
		return nil
	})
	g.Go(func() error {
		comps.VotePatternScore = s.votePatternScore(gctx, userID)
		return nil
	})
	g.Go(func() error {
		comps.SimilarityFlags = s.similarityFlagPenalty(gctx, userID)
		return nil
	})
	g.Go(func() error {
		comps.AbuseFlags = s.abuseFlagPenalty(gctx, userID)
		return nil
	})
	g.Go(func() error {
		risk, err := s.ipClusteringRisk(gctx, userID)
		if err != nil {
			return err
		}
		comps.IPClusteringRisk = risk
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("calculate trust score: %w", err)
	}

	result := s.assemble(userID, comps)
	s.persist(ctx, result)
	observability.Current().ObserveTrustComputed()
	s.log.Info("Trust score computed", "user_id", userID, "score", result.Score, "tier", result.Tier)
	return result, nil
}

// assemble folds the components into the weighted composite and maps the
// tier bands.
func (s *trustService) assemble(userID uuid.UUID, c TrustComponents) *TrustResult {
	w := s.cfg.Weights
	score := c.MasteryReliability*w.MasteryReliability +
		c.FactCheckRecord*w.FactCheckRecord +
		c.CommunityValidation*w.CommunityValidation +
		c.AccountAgeTrust*w.AccountAgeTrust +
		c.InteractionEntropy*w.InteractionEntropy +
		c.VotePatternScore*w.VotePatternScore +
		c.SimilarityFlags*w.SimilarityFlags +
		c.AbuseFlags*w.AbuseFlags +
		c.IPClusteringRisk*w.IPClusteringRisk
	score = clamp01(score)
	return &TrustResult{
		UserID:     userID,
		Score:      score,
		Tier:       TierForScore(score),
		Components: c,
		ComputedAt: time.Now().UTC(),
	}
}

func (s *trustService) loadSubject(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	qctx, cancel := context.WithTimeout(ctx, s.storeTimeout())
	defer cancel()
	subject, err := s.users.GetByID(dbctx.Context{Ctx: qctx}, userID)
	if err != nil {
		if pkgerrors.IsStoreUnreachable(err) {
			return nil, fmt.Errorf("load subject: %w", err)
		}
		s.log.Warn("Subject read failed, treating as unknown", "user_id", userID, "error", err)
		observability.Current().ObserveSubstitution("trust_subject", "user_read_failed")
		return nil, nil
	}
	return subject, nil
}

// defaultComponents is the blend used for a subject with no record at all.
// Interaction entropy takes the lowest band (no partners); vote pattern
// takes the neutral 0.5 like the other insufficient-data components.
func defaultComponents() TrustComponents {
	return TrustComponents{
		MasteryReliability:  0.5,
		FactCheckRecord:     0.5,
		CommunityValidation: 0.5,
		AccountAgeTrust:     0.0,
		InteractionEntropy:  0.2,
		VotePatternScore:    0.5,
		SimilarityFlags:     1.0,
		AbuseFlags:          1.0,
		IPClusteringRisk:    1.0,
	}
}

func (s *trustService) masteryReliability(ctx context.Context, userID uuid.UUID) float64 {
	records, ok := queryRows(s, ctx, "mastery_reliability", func(dbc dbctx.Context) ([]*learning.MasteryRecord, error) {
		return s.mastery.ListByUser(dbc, userID)
	})
	if !ok || len(records) < 5 {
		return 0.5
	}

	var sum float64
	for _, r := range records {
		sum += r.Mastery
	}
	avg := sum / float64(len(records))

	var variance float64
	for _, r := range records {
		variance += (r.Mastery - avg) * (r.Mastery - avg)
	}
	variance /= float64(len(records))

	consistency := math.Max(0, 1.0-variance)
	return clamp01(avg*0.7 + consistency*0.3)
}

func (s *trustService) factCheckRecord(ctx context.Context, userID uuid.UUID) float64 {
	checks, ok := queryRows(s, ctx, "fact_check_record", func(dbc dbctx.Context) ([]*learning.FactCheckResult, error) {
		return s.factChecks.ListRecentByUser(dbc, userID, 100)
	})
	if !ok || len(checks) == 0 {
		return 0.5
	}
	passed := 0
	for _, c := range checks {
		if c.Verdict == learning.VerdictPass {
			passed++
		}
	}
	return float64(passed) / float64(len(checks))
}

func (s *trustService) communityValidation(ctx context.Context, userID uuid.UUID) float64 {
	answers, ok := queryRows(s, ctx, "community_validation", func(dbc dbctx.Context) ([]*community.Answer, error) {
		return s.answers.ListByUser(dbc, userID)
	})
	if !ok || len(answers) == 0 {
		return 0.5
	}
	var up, down int
	for _, a := range answers {
		up += a.Upvotes
		down += a.Downvotes
	}
	if up+down == 0 {
		return 0.5
	}
	return clamp01(float64(up) / float64(up+down))
}

func (s *trustService) interactionEntropy(ctx context.Context, userID uuid.UUID) float64 {
	partners, ok := queryRows(s, ctx, "interaction_entropy", func(dbc dbctx.Context) ([]uuid.UUID, error) {
		return s.votes.DistinctTargetUserIDs(dbc, userID)
	})
	if !ok {
		return entropyBand(0)
	}
	return entropyBand(len(partners))
}

func entropyBand(partners int) float64 {
	switch {
	case partners < 2:
		return 0.2
	case partners < 5:
		return 0.5
	case partners < 10:
		return 0.7
	default:
		return 1.0
	}
}

func (s *trustService) votePatternScore(ctx context.Context, userID uuid.UUID) float64 {
	votes, ok := queryRows(s, ctx, "vote_pattern_score", func(dbc dbctx.Context) ([]*community.VoteRecord, error) {
		return s.votes.GetVotesBy(dbc, userID, time.Time{}, "")
	})
	if !ok || len(votes) < 5 {
		return 1.0
	}

	counts := make(map[uuid.UUID]int)
	for _, v := range votes {
		counts[v.TargetUserID]++
	}
	dist := make([]int, 0, len(counts))
	for _, c := range counts {
		dist = append(dist, c)
	}
	return clamp01(1.0 - giniCoefficient(dist))
}

// giniCoefficient measures inequality of the sorted count distribution.
// 0 for a single target or a perfectly even spread.
func giniCoefficient(counts []int) float64 {
	n := len(counts)
	if n <= 1 {
		return 0
	}
	sort.Ints(counts)
	var sum, weighted int
	for i, c := range counts {
		sum += c
		weighted += (i + 1) * c
	}
	if sum == 0 {
		return 0
	}
	return float64(2*weighted)/(float64(n)*float64(sum)) - float64(n+1)/float64(n)
}

func (s *trustService) similarityFlagPenalty(ctx context.Context, userID uuid.UUID) float64 {
	qctx, cancel := context.WithTimeout(ctx, s.storeTimeout())
	defer cancel()
	n, err := s.flags.CountUnresolved(dbctx.Context{Ctx: qctx}, userID, trust.FlagDuplicateContent)
	if err != nil {
		s.log.Warn("Similarity flag count failed, substituting no-flag default", "user_id", userID, "error", err)
		observability.Current().ObserveSubstitution("similarity_flags", "flag_count_failed")
		return 1.0
	}
	return math.Max(0, 1.0-0.15*float64(n))
}

func (s *trustService) abuseFlagPenalty(ctx context.Context, userID uuid.UUID) float64 {
	qctx, cancel := context.WithTimeout(ctx, s.storeTimeout())
	defer cancel()
	n, err := s.flags.CountUnresolved(dbctx.Context{Ctx: qctx}, userID, "")
	if err != nil {
		s.log.Warn("Abuse flag count failed, substituting no-flag default", "user_id", userID, "error", err)
		observability.Current().ObserveSubstitution("abuse_flags", "flag_count_failed")
		return 1.0
	}
	return math.Max(0, 1.0-0.2*float64(n))
}

func (s *trustService) ipClusteringRisk(ctx context.Context, userID uuid.UUID) (float64, error) {
	report, err := s.clustering.AnalyzeSockPuppets(ctx, userID, 0)
	if err != nil {
		if pkgerrors.IsStoreUnreachable(err) {
			return 0, err
		}
		s.log.Warn("Clustering analysis failed, substituting no-risk default", "user_id", userID, "error", err)
		observability.Current().ObserveSubstitution("ip_clustering_risk", "clustering_failed")
		return 1.0, nil
	}
	return clamp01(1.0 - report.RiskScore), nil
}

func accountAgeTrust(createdAt, now time.Time) float64 {
	days := now.Sub(createdAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return clamp01(1.0 - 1.0/(1.0+days/30))
}

func TierForScore(score float64) string {
	switch {
	case score < 0.30:
		return trust.TierRestricted
	case score < 0.50:
		return trust.TierNovice
	case score < 0.70:
		return trust.TierContributor
	case score < 0.85:
		return trust.TierExpert
	default:
		return trust.TierTrusted
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// queryRows is the shared bounded-read helper for slice-valued component
// inputs. ok=false means the neutral default applies.
func queryRows[T any](s *trustService, ctx context.Context, component string, fn func(dbctx.Context) ([]T, error)) ([]T, bool) {
	qctx, cancel := context.WithTimeout(ctx, s.storeTimeout())
	defer cancel()
	rows, err := fn(dbctx.Context{Ctx: qctx})
	if err != nil {
		s.log.Warn("Component read failed, substituting neutral default", "component", component, "error", err)
		observability.Current().ObserveSubstitution(component, "store_read_failed")
		return nil, false
	}
	return rows, true
}

func (s *trustService) storeTimeout() time.Duration {
	return time.Duration(s.cfg.StoreTimeoutSecs) * time.Second
}

func (s *trustService) persist(ctx context.Context, result *TrustResult) {
	snap := &trust.TrustSnapshot{
		UserID:              result.UserID,
		Score:               result.Score,
		MasteryReliability:  result.Components.MasteryReliability,
		FactCheckRecord:     result.Components.FactCheckRecord,
		CommunityValidation: result.Components.CommunityValidation,
		AccountAgeTrust:     result.Components.AccountAgeTrust,
		InteractionEntropy:  result.Components.InteractionEntropy,
		VotePatternScore:    result.Components.VotePatternScore,
		SimilarityFlags:     result.Components.SimilarityFlags,
		AbuseFlags:          result.Components.AbuseFlags,
		IPClusteringRisk:    result.Components.IPClusteringRisk,
		Tier:                result.Tier,
	}

	qctx, cancel := context.WithTimeout(ctx, s.storeTimeout())
	defer cancel()
	if err := s.snapshots.Upsert(dbctx.Context{Ctx: qctx}, snap); err != nil {
		s.log.Warn("Snapshot upsert failed", "user_id", result.UserID, "error", err)
		observability.Current().ObserveSubstitution("trust_snapshot", "upsert_failed")
	}
	if err := s.users.UpdateTrust(dbctx.Context{Ctx: qctx}, result.UserID, result.Score, result.Tier); err != nil {
		s.log.Warn("User trust update failed", "user_id", result.UserID, "error", err)
		observability.Current().ObserveSubstitution("trust_snapshot", "user_update_failed")
	}
	s.writeCache(ctx, result)
}

func (s *trustService) writeCache(ctx context.Context, result *TrustResult) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(result.UserID), raw, cacheTTL()).Err(); err != nil {
		s.log.Warn("Cache write failed", "user_id", result.UserID, "error", err)
	}
}

func snapshotResult(snap *trust.TrustSnapshot) *TrustResult {
	return &TrustResult{
		UserID: snap.UserID,
		Score:  snap.Score,
		Tier:   snap.Tier,
		Components: TrustComponents{
			MasteryReliability:  snap.MasteryReliability,
			FactCheckRecord:     snap.FactCheckRecord,
			CommunityValidation: snap.CommunityValidation,
			AccountAgeTrust:     snap.AccountAgeTrust,
			InteractionEntropy:  snap.InteractionEntropy,
			VotePatternScore:    snap.VotePatternScore,
			SimilarityFlags:     snap.SimilarityFlags,
			AbuseFlags:          snap.AbuseFlags,
			IPClusteringRisk:    snap.IPClusteringRisk,
		},
		ComputedAt: snap.UpdatedAt,
	}
}
