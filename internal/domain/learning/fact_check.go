package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	VerdictPass      = "PASS"
	VerdictFail      = "FAIL"
	VerdictUncertain = "UNCERTAIN"
)

// FactCheckResult is one validation verdict over a user claim, written by
// the external fact-checking pipeline and read here for the track-record
// component.
type FactCheckResult struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	ClaimID   uuid.UUID      `gorm:"type:uuid" json:"claim_id"`
	Verdict   string         `gorm:"column:verdict;not null" json:"verdict"`
	Details   datatypes.JSON `gorm:"type:jsonb;column:details" json:"details"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (FactCheckResult) TableName() string { return "fact_check_results" }

func (f *FactCheckResult) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
