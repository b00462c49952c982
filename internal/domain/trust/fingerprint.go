package trust

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentFingerprint is the (exact hash, embedding) pair used for duplicate
// detection. One row per (content id, content type), overwritten on edit.
type ContentFingerprint struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_fingerprint_content,unique" json:"content_id"`
	ContentType string         `gorm:"column:content_type;not null;index:idx_fingerprint_content,unique" json:"content_type"`
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	ContentHash string         `gorm:"column:content_hash;not null;index" json:"content_hash"`
	Embedding   datatypes.JSON `gorm:"type:jsonb;column:embedding" json:"embedding"`
	TextLength  int            `gorm:"column:text_length;not null;default:0" json:"text_length"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (ContentFingerprint) TableName() string { return "content_fingerprints" }

func (f *ContentFingerprint) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
