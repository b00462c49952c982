package trust

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TierRestricted  = "Restricted"
	TierNovice      = "Novice"
	TierContributor = "Contributor"
	TierExpert      = "Expert"
	TierTrusted     = "Trusted"
)

// TrustSnapshot holds the latest composite score and its nine components.
// One row per user, last-writer-wins on recompute.
type TrustSnapshot struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Score               float64   `gorm:"column:score;not null" json:"score"`
	MasteryReliability  float64   `gorm:"column:mastery_reliability;not null" json:"mastery_reliability"`
	FactCheckRecord     float64   `gorm:"column:fact_check_record;not null" json:"fact_check_record"`
	CommunityValidation float64   `gorm:"column:community_validation;not null" json:"community_validation"`
	AccountAgeTrust     float64   `gorm:"column:account_age_trust;not null" json:"account_age_trust"`
	InteractionEntropy  float64   `gorm:"column:interaction_entropy;not null" json:"interaction_entropy"`
	VotePatternScore    float64   `gorm:"column:vote_pattern_score;not null" json:"vote_pattern_score"`
	SimilarityFlags     float64   `gorm:"column:similarity_flags;not null" json:"similarity_flags"`
	AbuseFlags          float64   `gorm:"column:abuse_flags;not null" json:"abuse_flags"`
	IPClusteringRisk    float64   `gorm:"column:ip_clustering_risk;not null" json:"ip_clustering_risk"`
	Tier                string    `gorm:"column:tier;not null" json:"tier"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (TrustSnapshot) TableName() string { return "trust_snapshots" }

func (s *TrustSnapshot) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
