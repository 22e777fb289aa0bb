package embeddings

import "context"

// Embedder generates text embeddings. Query fingerprints and incident
// fragments go through the same embedder so their vectors share a space.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
