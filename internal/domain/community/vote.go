package community

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/domain/user"
)

const (
	VoteTypeUp   = "UPVOTE"
	VoteTypeDown = "DOWNVOTE"
)

// VoteRecord is one edge of the vote graph. Rows are append-only; there is
// no update or delete path.
type VoteRecord struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	VoterID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"voter_id"`
	Voter        *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:VoterID;references:ID" json:"voter,omitempty"`
	TargetUserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"target_user_id"`
	VoteType     string     `gorm:"column:vote_type;not null;index" json:"vote_type"`
	ContentID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_vote_content" json:"content_id"`
	ContentType  string     `gorm:"column:content_type;not null;index:idx_vote_content" json:"content_type"`
	CreatedAt    time.Time  `gorm:"not null;index" json:"created_at"`
}

func (VoteRecord) TableName() string { return "vote_records" }

func (v *VoteRecord) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
