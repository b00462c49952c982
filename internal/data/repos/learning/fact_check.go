package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/domain/learning"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type FactCheckRepo interface {
	Create(dbc dbctx.Context, rows []*learning.FactCheckResult) ([]*learning.FactCheckResult, error)
	// ListRecentByUser returns the newest results first, capped at limit.
	ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*learning.FactCheckResult, error)
}

type factCheckRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactCheckRepo(db *gorm.DB, baseLog *logger.Logger) FactCheckRepo {
	return &factCheckRepo{db: db, log: baseLog.With("repo", "FactCheckRepo")}
}

func (r *factCheckRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := r.db
	if dbc.Tx != nil {
		t = dbc.Tx
	}
	return t.WithContext(dbc.Ctx)
}

func (r *factCheckRepo) Create(dbc dbctx.Context, rows []*learning.FactCheckResult) ([]*learning.FactCheckResult, error) {
	if len(rows) == 0 {
		return []*learning.FactCheckResult{}, nil
	}
	if err := r.handle(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *factCheckRepo) ListRecentByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*learning.FactCheckResult, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []*learning.FactCheckResult
	if err := r.handle(dbc).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
