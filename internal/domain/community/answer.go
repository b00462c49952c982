package community

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/neurobridge-trust/internal/domain/user"
	"gorm.io/gorm"
)

// Answer keeps denormalized vote counters so community-validation reads do
// not walk the vote log.
type Answer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *user.User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Body      string         `gorm:"type:text" json:"body"`
	Upvotes   int            `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int            `gorm:"not null;default:0" json:"downvotes"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Answer) TableName() string { return "answers" }

func (a *Answer) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
