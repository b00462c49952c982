package learning

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/neurobridge-trust/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MasteryRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_mastery_user_topic,unique" json:"user_id"`
	User       *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Topic      string         `gorm:"column:topic;not null;index:idx_mastery_user_topic,unique" json:"topic"`
	Mastery    float64        `gorm:"column:mastery;not null" json:"mastery"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	LastUpdate time.Time      `gorm:"column:last_update;not null" json:"last_update"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MasteryRecord) TableName() string { return "mastery_records" }

func (m *MasteryRecord) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.LastUpdate.IsZero() {
		m.LastUpdate = time.Now().UTC()
	}
	return nil
}
