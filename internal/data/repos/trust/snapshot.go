package trust

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/neurobridge-trust/internal/domain/trust"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type SnapshotRepo interface {
	// Upsert overwrites the single snapshot row per user, last-writer-wins.
	Upsert(dbc dbctx.Context, row *trust.TrustSnapshot) error
	GetByUser(dbc dbctx.Context, userID uuid.UUID) (*trust.TrustSnapshot, error)
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return &snapshotRepo{db: db, log: baseLog.With("repo", "SnapshotRepo")}
}

func (r *snapshotRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := r.db
	if dbc.Tx != nil {
		t = dbc.Tx
	}
	return t.WithContext(dbc.Ctx)
}

func (r *snapshotRepo) Upsert(dbc dbctx.Context, row *trust.TrustSnapshot) error {
	row.UpdatedAt = time.Now()
	return r.handle(dbc).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score", "mastery_reliability", "fact_check_record",
				"community_validation", "account_age_trust", "interaction_entropy",
				"vote_pattern_score", "similarity_flags", "abuse_flags",
				"ip_clustering_risk", "tier", "updated_at",
			}),
		}).
		Create(row).Error
}

func (r *snapshotRepo) GetByUser(dbc dbctx.Context, userID uuid.UUID) (*trust.TrustSnapshot, error) {
	var out []*trust.TrustSnapshot
	if err := r.handle(dbc).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
