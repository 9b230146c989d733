// Package embedding converts document text into fixed-length vectors.
// Two backends exist: the OpenAI embeddings API (1536 dims) and a local
// text-embeddings-inference service running all-MiniLM-L6-v2 (384 dims).
// A collection commits to one backend for its lifetime.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Client is one embedding backend.
type Client interface {
	// Embed returns a vector of exactly Dimension() entries.
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	// Model names the backend model, recorded in stored payloads.
	Model() string
}

var (
	// ErrDimension means the backend returned a vector of the wrong length.
	ErrDimension = errors.New("embedding: vector length does not match backend dimension")
	// ErrZeroVector means the backend returned all zeros, which signals an
	// API failure rather than a legitimate embedding.
	ErrZeroVector = errors.New("embedding: vector is all zeros")
)

// Validate rejects vectors that must not be stored: wrong length or all
// zeros. Zero-padding is never acceptable.
func Validate(vec []float32, dim int) error {
	if len(vec) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimension, len(vec), dim)
	}
	for _, v := range vec {
		if v != 0 {
			return nil
		}
	}
	return ErrZeroVector
}

// CosineSimilarity is used by tests and the in-memory store fakes; the real
// store ranks server-side.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
