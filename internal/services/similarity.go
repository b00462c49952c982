package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-trust/internal/config"
	"github.com/yungbote/neurobridge-trust/internal/data/repos"
	"github.com/yungbote/neurobridge-trust/internal/domain/trust"
	"github.com/yungbote/neurobridge-trust/internal/observability"
	"github.com/yungbote/neurobridge-trust/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/neurobridge-trust/internal/pkg/errors"
	"github.com/yungbote/neurobridge-trust/internal/pkg/logger"
)

type SimilarityService interface {
	CheckSimilarity(ctx context.Context, contentID uuid.UUID, contentType string, ownerID uuid.UUID, text string, autoStore bool) (*SimilarityReport, error)
}

type similarityService struct {
	db           *gorm.DB
	log          *logger.Logger
	cfg          config.Config
	vectorizer   Vectorizer
	fingerprints repos.FingerprintRepo
}

func NewSimilarityService(db *gorm.DB, log *logger.Logger, cfg config.Config, vectorizer Vectorizer, fingerprints repos.FingerprintRepo) SimilarityService {
	return &similarityService{
		db:           db,
		log:          log.With("service", "SimilarityService"),
		cfg:          cfg,
		vectorizer:   vectorizer,
		fingerprints: fingerprints,
	}
}

// NormalizeText lowercases and collapses all whitespace runs to single
// spaces. Hashing and vectorization both run over the normalized form.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// ContentHash is the BLAKE2b-256 digest of the normalized text, hex encoded.
func ContentHash(text string) string {
	sum := blake2b.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}

func (s *similarityService) CheckSimilarity(ctx context.Context, contentID uuid.UUID, contentType string, ownerID uuid.UUID, text string, autoStore bool) (*SimilarityReport, error) {
	if contentID == uuid.Nil || contentType == "" {
		return nil, fmt.Errorf("check similarity: %w: content id and type are required", pkgerrors.ErrInvalidArgument)
	}

	normalized := NormalizeText(text)
	hash := ContentHash(text)
	embedding, err := s.vectorizer.Vectorize(ctx, normalized)
	if err != nil {
		// The trigram strategy never fails; an embeddings API outage
		// degrades the check to hash-only matching.
		s.log.Warn("Vectorize failed, degrading to hash-only matching", "content_id", contentID, "error", err)
		observability.Current().ObserveSubstitution("similarity", "vectorize_failed")
		embedding = make([]float64, s.vectorizer.Dims())
	}

	matches, err := s.findMatches(ctx, contentType, hash, embedding)
	if err != nil {
		return nil, err
	}

	report := &SimilarityReport{
		ContentID:      contentID,
		ContentType:    contentType,
		Matches:        matches,
		Recommendation: RecommendationAllow,
		CheckedAt:      time.Now().UTC(),
	}

	var exactBest, highBest float64
	exactDifferentOwner := false
	for _, m := range matches {
		if m.Similarity >= s.cfg.Similarity.ExactThreshold {
			if m.Similarity > exactBest {
				exactBest = m.Similarity
			}
			if m.OwnerID != ownerID {
				exactDifferentOwner = true
			}
		} else if m.Similarity >= s.cfg.Similarity.HighThreshold && m.Similarity > highBest {
			highBest = m.Similarity
		}
	}

	switch {
	case exactBest > 0:
		report.IsDuplicate = true
		report.Confidence = exactBest
		if exactDifferentOwner {
			report.Recommendation = RecommendationBlock
			s.log.Warn("Near-exact match from different owner", "content_id", contentID, "confidence", exactBest)
		} else {
			report.Recommendation = RecommendationWarn
			s.log.Info("Owner reposting own content", "content_id", contentID)
		}
	case highBest > 0:
		report.IsDuplicate = true
		report.Confidence = highBest
		report.Recommendation = RecommendationWarn
	case len(matches) > 0:
		report.Confidence = matches[0].Similarity
	}

	if autoStore && !report.IsDuplicate {
		if err := s.storeFingerprint(ctx, contentID, contentType, ownerID, normalized, hash, embedding); err != nil {
			s.log.Warn("Fingerprint store failed", "content_id", contentID, "error", err)
			observability.Current().ObserveSubstitution("similarity", "fingerprint_store_failed")
		}
	}

	observability.Current().ObserveDetectorRun("similarity", report.Recommendation)
	return report, nil
}

func (s *similarityService) findMatches(ctx context.Context, contentType, hash string, embedding []float64) ([]SimilarityMatch, error) {
	qctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.StoreTimeoutSecs)*time.Second)
	defer cancel()

	since := time.Now().UTC().AddDate(0, 0, -s.cfg.Similarity.LookbackDays)
	candidates, err := s.fingerprints.FindRecentByType(dbctx.Context{Ctx: qctx}, contentType, since, s.cfg.Similarity.CandidateLimit)
	if err != nil {
		if pkgerrors.IsStoreUnreachable(err) {
			return nil, fmt.Errorf("find similar content: %w", err)
		}
		s.log.Warn("Corpus read failed, substituting empty corpus", "content_type", contentType, "error", err)
		observability.Current().ObserveSubstitution("similarity", "corpus_read_failed")
		return nil, nil
	}

	matches := make([]SimilarityMatch, 0, 4)
	for _, c := range candidates {
		if c.ContentHash == hash {
			matches = append(matches, SimilarityMatch{
				ContentID:   c.ContentID,
				ContentType: c.ContentType,
				OwnerID:     c.OwnerID,
				Similarity:  1.0,
				CreatedAt:   c.CreatedAt,
			})
			continue
		}
		var stored []float64
		if len(c.Embedding) > 0 {
			if err := json.Unmarshal(c.Embedding, &stored); err != nil {
				continue
			}
		}
		sim := cosineSimilarity(embedding, stored)
		if sim >= s.cfg.Similarity.ModerateThreshold {
			matches = append(matches, SimilarityMatch{
				ContentID:   c.ContentID,
				ContentType: c.ContentType,
				OwnerID:     c.OwnerID,
				Similarity:  sim,
				CreatedAt:   c.CreatedAt,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > s.cfg.Similarity.MatchLimit {
		matches = matches[:s.cfg.Similarity.MatchLimit]
	}
	return matches, nil
}

func (s *similarityService) storeFingerprint(ctx context.Context, contentID uuid.UUID, contentType string, ownerID uuid.UUID, normalized, hash string, embedding []float64) error {
	raw, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	qctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.StoreTimeoutSecs)*time.Second)
	defer cancel()
	return s.fingerprints.Upsert(dbctx.Context{Ctx: qctx}, &trust.ContentFingerprint{
		ContentID:   contentID,
		ContentType: contentType,
		OwnerID:     ownerID,
		ContentHash: hash,
		Embedding:   raw,
		TextLength:  len(normalized),
	})
}
