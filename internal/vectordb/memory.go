package vectordb

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/dbaops/sql-advisor/internal/embeddings"
)

const collectionName = "incidents"

// MemoryIndex keeps the corpus in a chromem-go collection. It serves tests
// and ephemeral runs where persistence is not wanted.
type MemoryIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	dims       int
}

// NewMemoryIndex creates an empty in-memory index. The embedder is only
// consulted by chromem when a document arrives without a precomputed
// embedding; the advisory pipeline always supplies vectors.
func NewMemoryIndex(embedder embeddings.Embedder, dims int) (*MemoryIndex, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("invalid embedding dimensionality %d", dims)
	}

	cdb := chromem.NewDB()
	col, err := cdb.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &MemoryIndex{db: cdb, collection: col, dims: dims}, nil
}

func (m *MemoryIndex) Dimensions() int {
	return m.dims
}

func (m *MemoryIndex) Add(ctx context.Context, doc Document) error {
	if len(doc.Embedding) != m.dims {
		return fmt.Errorf("embedding has %d dimensions, index expects %d", len(doc.Embedding), m.dims)
	}

	cdoc := chromem.Document{
		// Source ids are only unique within a source type.
		ID:        string(doc.SourceType) + "/" + doc.SourceID,
		Content:   doc.Content,
		Embedding: doc.Embedding,
		Metadata: map[string]string{
			"source_type": string(doc.SourceType),
			"source_id":   doc.SourceID,
		},
	}
	return m.collection.AddDocuments(ctx, []chromem.Document{cdoc}, 1)
}

func (m *MemoryIndex) Search(ctx context.Context, vector []float32, k int, maxDistance float64) ([]Match, error) {
	if k <= 0 || len(vector) == 0 {
		return nil, nil
	}

	// chromem-go requires nResults <= collection size.
	count := m.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := m.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		dist := 1 - float64(r.Similarity)
		if dist >= maxDistance {
			continue
		}
		matches = append(matches, Match{
			Document: Document{
				SourceType: SourceType(r.Metadata["source_type"]),
				SourceID:   r.Metadata["source_id"],
				Content:    r.Content,
				Embedding:  r.Embedding,
			},
			Distance:   dist,
			Similarity: 1 - dist,
		})
	}
	return matches, nil
}

func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	return m.collection.Count(), nil
}
