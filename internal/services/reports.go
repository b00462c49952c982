package services

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation is the graded outcome every detector report carries.
// ALLOW means nothing actionable was found; BLOCK is reserved for
// near-exact duplicate content.
const (
	RecommendationAllow       = "ALLOW"
	RecommendationWarn        = "WARN"
	RecommendationBlock       = "BLOCK"
	RecommendationInvestigate = "INVESTIGATE"
)

const (
	PatternMutualVoting = "MUTUAL_VOTING"
	PatternVoteRing     = "VOTE_RING"
	PatternCoordinated  = "COORDINATED"
)

type SimilarityMatch struct {
	ContentID   uuid.UUID `json:"content_id"`
	ContentType string    `json:"content_type"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Similarity  float64   `json:"similarity"`
	CreatedAt   time.Time `json:"created_at"`
}

type SimilarityReport struct {
	ContentID      uuid.UUID         `json:"content_id"`
	ContentType    string            `json:"content_type"`
	IsDuplicate    bool              `json:"is_duplicate"`
	Confidence     float64           `json:"confidence"`
	Matches        []SimilarityMatch `json:"matches"`
	Recommendation string            `json:"recommendation"`
	CheckedAt      time.Time         `json:"checked_at"`
}

type VotePattern struct {
	Pattern     string      `json:"pattern"`
	Users       []uuid.UUID `json:"users"`
	Confidence  float64     `json:"confidence"`
	VoteCount   int         `json:"vote_count"`
	Description string      `json:"description"`
}

type VoteAnalysisReport struct {
	UserID         uuid.UUID     `json:"user_id"`
	IsSuspicious   bool          `json:"is_suspicious"`
	Patterns       []VotePattern `json:"patterns"`
	RiskScore      float64       `json:"risk_score"`
	Recommendation string        `json:"recommendation"`
	AnalyzedAt     time.Time     `json:"analyzed_at"`
}

// NetworkCluster never carries a raw network identifier. SharedNetwork is
// always the redacted placeholder; NetworkHash is the one-way hash recorded
// at capture time.
type NetworkCluster struct {
	SharedNetwork    string      `json:"shared_network"`
	NetworkHash      string      `json:"network_hash"`
	Users            []uuid.UUID `json:"users"`
	InteractionCount int         `json:"interaction_count"`
	Confidence       float64     `json:"confidence"`
}

type ClusteringReport struct {
	UserID         uuid.UUID        `json:"user_id"`
	IsSuspicious   bool             `json:"is_suspicious"`
	Clusters       []NetworkCluster `json:"clusters"`
	RiskScore      float64          `json:"risk_score"`
	Recommendation string           `json:"recommendation"`
	AnalyzedAt     time.Time        `json:"analyzed_at"`
}

type TrustComponents struct {
	MasteryReliability  float64 `json:"mastery_reliability"`
	FactCheckRecord     float64 `json:"fact_check_record"`
	CommunityValidation float64 `json:"community_validation"`
	AccountAgeTrust     float64 `json:"account_age_trust"`
	InteractionEntropy  float64 `json:"interaction_entropy"`
	VotePatternScore    float64 `json:"vote_pattern_score"`
	SimilarityFlags     float64 `json:"similarity_flags"`
	AbuseFlags          float64 `json:"abuse_flags"`
	IPClusteringRisk    float64 `json:"ip_clustering_risk"`
}

type TrustResult struct {
	UserID     uuid.UUID       `json:"user_id"`
	Score      float64         `json:"score"`
	Tier       string          `json:"tier"`
	Components TrustComponents `json:"components"`
	ComputedAt time.Time       `json:"computed_at"`
}
