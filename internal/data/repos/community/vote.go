package community

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/domain/community"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type VoteRepo interface {
	Create(dbc dbctx.Context, rows []*community.VoteRecord) ([]*community.VoteRecord, error)

	// GetVotesBy returns votes cast by a user since the window start,
	// optionally filtered by vote type ("" = all).
	GetVotesBy(dbc dbctx.Context, voterID uuid.UUID, since time.Time, voteType string) ([]*community.VoteRecord, error)
	// GetVotesFor returns votes received by a user since the window start.
	GetVotesFor(dbc dbctx.Context, targetUserID uuid.UUID, since time.Time, voteType string) ([]*community.VoteRecord, error)
	// GetAllUpvotes returns every upvote in the window, for vote-graph
	// construction.
	GetAllUpvotes(dbc dbctx.Context, since time.Time) ([]*community.VoteRecord, error)
	// ListByContent returns upvotes on one content item ordered oldest
	// first, for burst detection.
	ListByContent(dbc dbctx.Context, contentID uuid.UUID, contentType string, since time.Time) ([]*community.VoteRecord, error)
	// CountBetween counts votes exchanged between two users (both
	// directions) since the window start.
	CountBetween(dbc dbctx.Context, a, b uuid.UUID, since time.Time) (int64, error)
	// DistinctTargetUserIDs returns the distinct users a voter has ever
	// voted on.
	DistinctTargetUserIDs(dbc dbctx.Context, voterID uuid.UUID) ([]uuid.UUID, error)
}

type voteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVoteRepo(db *gorm.DB, baseLog *logger.Logger) VoteRepo {
	return &voteRepo{db: db, log: baseLog.With("repo", "VoteRepo")}
}

func (r *voteRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := r.db
	if dbc.Tx != nil {
		t = dbc.Tx
	}
	return t.WithContext(dbc.Ctx)
}

func (r *voteRepo) Create(dbc dbctx.Context, rows []*community.VoteRecord) ([]*community.VoteRecord, error) {
	if len(rows) == 0 {
		return []*community.VoteRecord{}, nil
	}
	if err := r.handle(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *voteRepo) GetVotesBy(dbc dbctx.Context, voterID uuid.UUID, since time.Time, voteType string) ([]*community.VoteRecord, error) {
	q := r.handle(dbc).
		Where("voter_id = ? AND created_at >= ?", voterID, since)
	if voteType != "" {
		q = q.Where("vote_type = ?", voteType)
	}
	var out []*community.VoteRecord
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *voteRepo) GetVotesFor(dbc dbctx.Context, targetUserID uuid.UUID, since time.Time, voteType string) ([]*community.VoteRecord, error) {
	q := r.handle(dbc).
		Where("target_user_id = ? AND created_at >= ?", targetUserID, since)
	if voteType != "" {
		q = q.Where("vote_type = ?", voteType)
	}
	var out []*community.VoteRecord
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *voteRepo) GetAllUpvotes(dbc dbctx.Context, since time.Time) ([]*community.VoteRecord, error) {
	var out []*community.VoteRecord
	if err := r.handle(dbc).
		Where("vote_type = ? AND created_at >= ?", community.VoteTypeUp, since).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *voteRepo) ListByContent(dbc dbctx.Context, contentID uuid.UUID, contentType string, since time.Time) ([]*community.VoteRecord, error) {
	var out []*community.VoteRecord
	if err := r.handle(dbc).
		Where("content_id = ? AND content_type = ? AND vote_type = ? AND created_at >= ?",
			contentID, contentType, community.VoteTypeUp, since).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *voteRepo) CountBetween(dbc dbctx.Context, a, b uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.handle(dbc).
		Model(&community.VoteRecord{}).
		Where("created_at >= ?", since).
		Where(
			r.db.Where("voter_id = ? AND target_user_id = ?", a, b).
				Or("voter_id = ? AND target_user_id = ?", b, a),
		).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *voteRepo) DistinctTargetUserIDs(dbc dbctx.Context, voterID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if err := r.handle(dbc).
		Model(&community.VoteRecord{}).
		Distinct("target_user_id").
		Where("voter_id = ?", voterID).
		Pluck("target_user_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
