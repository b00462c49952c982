package trust

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/domain/trust"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type AbuseFlagRepo interface {
	// Append adds a flag record. Flags are never mutated or deleted here;
	// resolution belongs to the moderation workflow.
	Append(dbc dbctx.Context, row *trust.AbuseFlag) error
	// CountUnresolved counts a user's open flags, optionally restricted to
	// one flag type ("" = all types).
	CountUnresolved(dbc dbctx.Context, userID uuid.UUID, flagType string) (int64, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*trust.AbuseFlag, error)
}

type abuseFlagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAbuseFlagRepo(db *gorm.DB, baseLog *logger.Logger) AbuseFlagRepo {
	return &abuseFlagRepo{db: db, log: baseLog.With("repo", "AbuseFlagRepo")}
}

func (r *abuseFlagRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := r.db
	if dbc.Tx != nil {
		t = dbc.Tx
	}
	return t.WithContext(dbc.Ctx)
}

func (r *abuseFlagRepo) Append(dbc dbctx.Context, row *trust.AbuseFlag) error {
	return r.handle(dbc).Create(row).Error
}

func (r *abuseFlagRepo) CountUnresolved(dbc dbctx.Context, userID uuid.UUID, flagType string) (int64, error) {
	q := r.handle(dbc).
		Model(&trust.AbuseFlag{}).
		Where("user_id = ? AND resolved = ?", userID, false)
	if flagType != "" {
		q = q.Where("flag_type = ?", flagType)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *abuseFlagRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*trust.AbuseFlag, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []*trust.AbuseFlag
	if err := r.handle(dbc).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
