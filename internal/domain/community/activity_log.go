package community

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityLogin         = "login"
	ActivityAnswerPosted  = "answer_posted"
	ActivityDoubtPosted   = "doubt_posted"
	ActivityCommentPosted = "comment_posted"
	ActivityVoteCast      = "vote_cast"
)

// ActivityLogEntry is append-only. NetworkHash is the one-way hash of the
// caller's network identifier, computed at capture; the raw identifier is
// never persisted.
type ActivityLogEntry struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	NetworkHash     string    `gorm:"column:network_hash;not null;index" json:"network_hash"`
	DeviceSignature string    `gorm:"column:device_signature" json:"device_signature"`
	ActivityType    string    `gorm:"column:activity_type;not null" json:"activity_type"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
}

func (ActivityLogEntry) TableName() string { return "activity_log_entries" }

func (e *ActivityLogEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
