package community

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/domain/community"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type AnswerRepo interface {
	Create(dbc dbctx.Context, rows []*community.Answer) ([]*community.Answer, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*community.Answer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

func (r *answerRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := r.db
	if dbc.Tx != nil {
		t = dbc.Tx
	}
	return t.WithContext(dbc.Ctx)
}

func (r *answerRepo) Create(dbc dbctx.Context, rows []*community.Answer) ([]*community.Answer, error) {
	if len(rows) == 0 {
		return []*community.Answer{}, nil
	}
	if err := r.handle(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *answerRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*community.Answer, error) {
	var out []*community.Answer
	if err := r.handle(dbc).
		Where("user_id = ?", userID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
