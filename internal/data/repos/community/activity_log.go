package community

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/domain/community"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type ActivityLogRepo interface {
	// Append adds entries to the activity log. There is no update or
	// delete path; the log is append-only.
	Append(dbc dbctx.Context, rows []*community.ActivityLogEntry) ([]*community.ActivityLogEntry, error)

	ListSince(dbc dbctx.Context, since time.Time) ([]*community.ActivityLogEntry, error)
	ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*community.ActivityLogEntry, error)
	// DistinctUserIDsSince returns every user with logged activity in the
	// window, for periodic trust sweeps.
	DistinctUserIDsSince(dbc dbctx.Context, since time.Time) ([]uuid.UUID, error)
}

type activityLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return &activityLogRepo{db: db, log: baseLog.With("repo", "ActivityLogRepo")}
}

func (r *activityLogRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := r.db
	if dbc.Tx != nil {
		t = dbc.Tx
	}
	return t.WithContext(dbc.Ctx)
}

func (r *activityLogRepo) Append(dbc dbctx.Context, rows []*community.ActivityLogEntry) ([]*community.ActivityLogEntry, error) {
	if len(rows) == 0 {
		return []*community.ActivityLogEntry{}, nil
	}
	if err := r.handle(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *activityLogRepo) ListSince(dbc dbctx.Context, since time.Time) ([]*community.ActivityLogEntry, error) {
	var out []*community.ActivityLogEntry
	if err := r.handle(dbc).
		Where("created_at >= ?", since).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityLogRepo) ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*community.ActivityLogEntry, error) {
	var out []*community.ActivityLogEntry
	if err := r.handle(dbc).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityLogRepo) DistinctUserIDsSince(dbc dbctx.Context, since time.Time) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if err := r.handle(dbc).
		Model(&community.ActivityLogEntry{}).
		Distinct("user_id").
		Where("created_at >= ?", since).
		Pluck("user_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
