package vectordb

import (
	"context"
	"math"
)

// Index defines the interface for storing documents and answering
// nearest-neighbor queries over their embeddings.
//
// The contract is append-only: ingestion owns document lifecycle, and the
// advisory pipeline never updates or deletes.
type Index interface {
	// Add appends a document and its embedding.
	Add(ctx context.Context, doc Document) error

	// Search returns up to k matches with cosine distance below
	// maxDistance, ordered ascending by distance.
	Search(ctx context.Context, vector []float32, k int, maxDistance float64) ([]Match, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the stored embedding dimensionality.
	Dimensions() int
}

// CosineDistance computes 1 - cosine similarity between two vectors.
// For L2-normalized inputs the result lies in [0,2], and in practice in
// [0,1] for natural-language embeddings.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
