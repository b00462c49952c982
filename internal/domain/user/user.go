package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User carries the cached trust output alongside identity. Trust fields are
// written only by the trust calculator; accounts are archived via DeletedAt,
// never hard-deleted.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string         `gorm:"column:display_name" json:"display_name"`
	TrustScore  float64        `gorm:"column:trust_score;not null;default:0" json:"trust_score"`
	TrustTier   string         `gorm:"column:trust_tier" json:"trust_tier"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
