package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-trust/internal/platform/envutil"
)

// Weights are the nine trust component weights. They must sum to exactly 1.0.
type Weights struct {
	MasteryReliability  float64 `yaml:"mastery_reliability"`
	FactCheckRecord     float64 `yaml:"fact_check_record"`
	CommunityValidation float64 `yaml:"community_validation"`
	AccountAgeTrust     float64 `yaml:"account_age_trust"`
	InteractionEntropy  float64 `yaml:"interaction_entropy"`
	VotePatternScore    float64 `yaml:"vote_pattern_score"`
	SimilarityFlags     float64 `yaml:"similarity_flags"`
	AbuseFlags          float64 `yaml:"abuse_flags"`
	IPClusteringRisk    float64 `yaml:"ip_clustering_risk"`
}

type Similarity struct {
	ExactThreshold    float64 `yaml:"exact_threshold"`
	HighThreshold     float64 `yaml:"high_threshold"`
	ModerateThreshold float64 `yaml:"moderate_threshold"`
	LookbackDays      int     `yaml:"lookback_days"`
	CandidateLimit    int     `yaml:"candidate_limit"`
	MatchLimit        int     `yaml:"match_limit"`
	EmbeddingDims     int     `yaml:"embedding_dims"`
}

type VoteAnalysis struct {
	MutualRatioThreshold float64 `yaml:"mutual_ratio_threshold"`
	MutualMinCount       int     `yaml:"mutual_min_count"`
	RingMinSize          int     `yaml:"ring_min_size"`
	RingMaxDepth         int     `yaml:"ring_max_depth"`
	CoordinatedGapSecs   float64 `yaml:"coordinated_gap_secs"`
	CoordinatedMinVotes  int     `yaml:"coordinated_min_votes"`
	ContentLookbackMins  int     `yaml:"content_lookback_mins"`
	LookbackDays         int     `yaml:"lookback_days"`
}

type Clustering struct {
	MinClusterSize        int `yaml:"min_cluster_size"`
	InteractionThreshold  int `yaml:"interaction_threshold"`
	LookbackDays          int `yaml:"lookback_days"`
	InteractionWindowDays int `yaml:"interaction_window_days"`
}

type Config struct {
	Weights      Weights      `yaml:"weights"`
	Similarity   Similarity   `yaml:"similarity"`
	VoteAnalysis VoteAnalysis `yaml:"vote_analysis"`
	Clustering   Clustering   `yaml:"clustering"`
	// StoreTimeoutSecs bounds every individual store call made by a
	// detector; on expiry the component substitutes its neutral default.
	StoreTimeoutSecs int `yaml:"store_timeout_secs"`
}

func Default() Config {
	return Config{
		Weights: Weights{
			MasteryReliability:  0.20,
			FactCheckRecord:     0.20,
			CommunityValidation: 0.15,
			AccountAgeTrust:     0.10,
			InteractionEntropy:  0.10,
			VotePatternScore:    0.10,
			SimilarityFlags:     0.05,
			AbuseFlags:          0.05,
			IPClusteringRisk:    0.05,
		},
		Similarity: Similarity{
			ExactThreshold:    0.98,
			HighThreshold:     0.90,
			ModerateThreshold: 0.75,
			LookbackDays:      90,
			CandidateLimit:    1000,
			MatchLimit:        10,
			EmbeddingDims:     384,
		},
		VoteAnalysis: VoteAnalysis{
			MutualRatioThreshold: 0.8,
			MutualMinCount:       3,
			RingMinSize:          3,
			RingMaxDepth:         10,
			CoordinatedGapSecs:   60,
			CoordinatedMinVotes:  3,
			ContentLookbackMins:  5,
			LookbackDays:         30,
		},
		Clustering: Clustering{
			MinClusterSize:        2,
			InteractionThreshold:  5,
			LookbackDays:          7,
			InteractionWindowDays: 30,
		},
		StoreTimeoutSecs: 5,
	}
}

// Load builds the config from compiled defaults, an optional YAML overlay
// (TRUST_CONFIG_PATH) and env overrides, then validates it.
func Load() (Config, error) {
	cfg := Default()

	if path := envutil.String("TRUST_CONFIG_PATH", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Similarity.LookbackDays = envutil.Int("SIMILARITY_LOOKBACK_DAYS", cfg.Similarity.LookbackDays)
	cfg.VoteAnalysis.LookbackDays = envutil.Int("VOTE_LOOKBACK_DAYS", cfg.VoteAnalysis.LookbackDays)
	cfg.Clustering.LookbackDays = envutil.Int("CLUSTER_LOOKBACK_DAYS", cfg.Clustering.LookbackDays)
	cfg.StoreTimeoutSecs = envutil.Int("STORE_TIMEOUT_SECS", cfg.StoreTimeoutSecs)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	w := c.Weights
	sum := w.MasteryReliability + w.FactCheckRecord + w.CommunityValidation +
		w.AccountAgeTrust + w.InteractionEntropy + w.VotePatternScore +
		w.SimilarityFlags + w.AbuseFlags + w.IPClusteringRisk
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("component weights must sum to 1.0, got %v", sum)
	}
	if c.Similarity.ModerateThreshold > c.Similarity.HighThreshold ||
		c.Similarity.HighThreshold > c.Similarity.ExactThreshold {
		return fmt.Errorf("similarity thresholds must be ordered moderate <= high <= exact")
	}
	if c.VoteAnalysis.RingMaxDepth <= 0 {
		return fmt.Errorf("ring max depth must be positive")
	}
	if c.Clustering.MinClusterSize < 2 {
		return fmt.Errorf("min cluster size must be at least 2")
	}
	return nil
}
