package services

import (
	"context"
	"math"
	"testing"
)

func TestTrigramVectorizerDeterministic(t *testing.T) {
	v := &TrigramVectorizer{dims: 384}

	a, err := v.Vectorize(context.Background(), "the quick brown fox jumps over the lazy dog")
	if err != nil {
		t.Fatalf("vectorize: %v", err)
	}
	b, err := v.Vectorize(context.Background(), "the quick brown fox jumps over the lazy dog")
	if err != nil {
		t.Fatalf("vectorize: %v", err)
	}

	if len(a) != 384 || len(b) != 384 {
		t.Fatalf("dims=%d,%d, want 384", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestTrigramVectorizerShortText(t *testing.T) {
	v := &TrigramVectorizer{dims: 384}
	out, err := v.Vectorize(context.Background(), "ab")
	if err != nil {
		t.Fatalf("vectorize: %v", err)
	}
	for i, x := range out {
		if x != 0 {
			t.Fatalf("expected zero vector for short text, out[%d]=%v", i, x)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float64{0.3, 0.1, 0.6}
	if got := cosineSimilarity(a, a); math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("cosine(a,a)=%v, want 1.0", got)
	}

	zero := []float64{0, 0, 0}
	if got := cosineSimilarity(a, zero); got != 0 {
		t.Fatalf("cosine(a,0)=%v, want 0", got)
	}
	if got := cosineSimilarity(zero, a); got != 0 {
		t.Fatalf("cosine(0,a)=%v, want 0", got)
	}

	orthA := []float64{1, 0}
	orthB := []float64{0, 1}
	if got := cosineSimilarity(orthA, orthB); got != 0 {
		t.Fatalf("cosine(orthogonal)=%v, want 0", got)
	}
}

func TestTrigramVectorizerDiscriminates(t *testing.T) {
	v := &TrigramVectorizer{dims: 384}
	ctx := context.Background()

	a, _ := v.Vectorize(ctx, "gravity pulls objects toward each other")
	b, _ := v.Vectorize(ctx, "the french revolution began in 1789")

	if got := cosineSimilarity(a, a); math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("cosine(a,a)=%v, want 1.0", got)
	}
	if got := cosineSimilarity(a, b); got > 0.6 {
		t.Fatalf("unrelated texts too similar: cosine=%v", got)
	}
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("  The QUICK\t\tbrown   FOX\n")
	if got != "the quick brown fox" {
		t.Fatalf("NormalizeText=%q", got)
	}
	if ContentHash("Hello  WORLD") != ContentHash("hello world") {
		t.Fatalf("hash should match after normalization")
	}
	if ContentHash("hello world") == ContentHash("hello there") {
		t.Fatalf("hash should differ for different text")
	}
}
