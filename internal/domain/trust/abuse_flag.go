package trust

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	FlagVoteManipulation = "VOTE_MANIPULATION"
	FlagDuplicateContent = "DUPLICATE_CONTENT"
	FlagSockPuppet       = "SOCK_PUPPET"
)

const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// AbuseFlag is an append-only moderation record. Resolution happens in a
// separate moderation workflow; this service only ever creates rows and
// counts unresolved ones.
type AbuseFlag struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	FlagType      string         `gorm:"column:flag_type;not null;index" json:"flag_type"`
	Severity      string         `gorm:"column:severity;not null" json:"severity"`
	Evidence      datatypes.JSON `gorm:"type:jsonb;column:evidence" json:"evidence"`
	AutoModerated bool           `gorm:"column:auto_moderated;not null;default:false" json:"auto_moderated"`
	Resolved      bool           `gorm:"column:resolved;not null;default:false;index" json:"resolved"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
}

func (AbuseFlag) TableName() string { return "abuse_flags" }

func (f *AbuseFlag) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
