package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"os"

	"github.com/yungbote/neurobridge-trust/internal/platform/openai"
)

// Vectorizer turns normalized text into a fixed-length embedding used for
// cosine comparison against the stored fingerprint corpus.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) ([]float64, error)
	Dims() int
}

// NewVectorizer picks the strategy from VECTORIZER ("trigram" or "openai").
// The trigram strategy needs no credentials and is the default.
func NewVectorizer(dims int, oai openai.Client) Vectorizer {
	if os.Getenv("VECTORIZER") == "openai" && oai != nil {
		return &OpenAIVectorizer{client: oai, dims: dims}
	}
	return &TrigramVectorizer{dims: dims}
}

// TrigramVectorizer hashes character trigrams into a fixed number of
// buckets and normalizes by the trigram count. Deterministic, so the same
// text always yields the same vector.
type TrigramVectorizer struct {
	dims int
}

func (v *TrigramVectorizer) Dims() int { return v.dims }

func (v *TrigramVectorizer) Vectorize(_ context.Context, text string) ([]float64, error) {
	out := make([]float64, v.dims)
	runes := []rune(text)
	if len(runes) < 3 {
		return out, nil
	}
	total := len(runes) - 2
	for i := 0; i < total; i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+3])))
		out[h.Sum32()%uint32(v.dims)]++
	}
	for i := range out {
		out[i] /= float64(total)
	}
	return out, nil
}

// OpenAIVectorizer delegates to the embeddings API and truncates or pads
// the response to the configured dimensionality so stored fingerprints
// stay comparable across strategies.
type OpenAIVectorizer struct {
	client openai.Client
	dims   int
}

func (v *OpenAIVectorizer) Dims() int { return v.dims }

func (v *OpenAIVectorizer) Vectorize(ctx context.Context, text string) ([]float64, error) {
	vecs, err := v.client.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed: empty response")
	}
	out := make([]float64, v.dims)
	copy(out, vecs[0])
	return out, nil
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
