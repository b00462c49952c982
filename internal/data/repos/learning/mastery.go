package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/domain/learning"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type MasteryRepo interface {
	Create(dbc dbctx.Context, rows []*learning.MasteryRecord) ([]*learning.MasteryRecord, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*learning.MasteryRecord, error)
}

type masteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMasteryRepo(db *gorm.DB, baseLog *logger.Logger) MasteryRepo {
	return &masteryRepo{db: db, log: baseLog.With("repo", "MasteryRepo")}
}

func (r *masteryRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := r.db
	if dbc.Tx != nil {
		t = dbc.Tx
	}
	return t.WithContext(dbc.Ctx)
}

func (r *masteryRepo) Create(dbc dbctx.Context, rows []*learning.MasteryRecord) ([]*learning.MasteryRecord, error) {
	if len(rows) == 0 {
		return []*learning.MasteryRecord{}, nil
	}
	if err := r.handle(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *masteryRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*learning.MasteryRecord, error) {
	var out []*learning.MasteryRecord
	if err := r.handle(dbc).
		Where("user_id = ?", userID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
