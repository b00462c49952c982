package trust

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/neurobridge-trust/internal/domain/trust"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type FingerprintRepo interface {
	// FindRecentByType returns fingerprints of one content type created in
	// the window, newest first, capped at limit to bound the scan.
	FindRecentByType(dbc dbctx.Context, contentType string, since time.Time, limit int) ([]*trust.ContentFingerprint, error)
	// Upsert writes a fingerprint keyed by (content_id, content_type),
	// last-writer-wins.
	Upsert(dbc dbctx.Context, row *trust.ContentFingerprint) error
}

type fingerprintRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFingerprintRepo(db *gorm.DB, baseLog *logger.Logger) FingerprintRepo {
	return &fingerprintRepo{db: db, log: baseLog.With("repo", "FingerprintRepo")}
}

func (r *fingerprintRepo) handle(dbc dbctx.Context) *gorm.DB {
	t := r.db
	if dbc.Tx != nil {
		t = dbc.Tx
	}
	return t.WithContext(dbc.Ctx)
}

func (r *fingerprintRepo) FindRecentByType(dbc dbctx.Context, contentType string, since time.Time, limit int) ([]*trust.ContentFingerprint, error) {
	if limit <= 0 {
		limit = 1000
	}
	var out []*trust.ContentFingerprint
	if err := r.handle(dbc).
		Where("content_type = ? AND created_at >= ?", contentType, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fingerprintRepo) Upsert(dbc dbctx.Context, row *trust.ContentFingerprint) error {
	row.UpdatedAt = time.Now()
	return r.handle(dbc).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "content_id"}, {Name: "content_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"owner_id", "content_hash", "embedding", "text_length", "updated_at",
			}),
		}).
		Create(row).Error
}
