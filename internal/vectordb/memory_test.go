package vectordb

import (
	"context"
	"testing"
)

// noopEmbedder satisfies embeddings.Embedder for index construction; the
// tests always supply precomputed vectors.
type noopEmbedder struct{ dims int }

func (n *noopEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, n.dims)
	}
	return out, nil
}
func (n *noopEmbedder) Dimensions() int { return n.dims }
func (n *noopEmbedder) Name() string    { return "noop" }

func TestMemoryIndex_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemoryIndex(&noopEmbedder{dims: 8}, 8)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}

	docs := []Document{
		{SourceType: SourceJira, SourceID: "MDEV-100", Content: "slow subquery", Embedding: unitVector(8, 0, 0)},
		{SourceType: SourceJira, SourceID: "MDEV-200", Content: "full scan", Embedding: unitVector(8, 0, 0.5)},
		{SourceType: SourceDocumentation, SourceID: "docs/joins", Content: "join tuning", Embedding: unitVector(8, 4, 0)},
	}
	for _, d := range docs {
		if err := idx.Add(ctx, d); err != nil {
			t.Fatalf("Add(%s): %v", d.SourceID, err)
		}
	}

	matches, err := idx.Search(ctx, unitVector(8, 0, 0), 10, 0.9)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Document.SourceID != "MDEV-100" {
		t.Errorf("closest match = %s, want MDEV-100", matches[0].Document.SourceID)
	}
	if matches[0].Document.SourceType != SourceJira {
		t.Errorf("source type lost: %q", matches[0].Document.SourceType)
	}
}

func TestMemoryIndex_EmptySearch(t *testing.T) {
	idx, err := NewMemoryIndex(&noopEmbedder{dims: 8}, 8)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}

	matches, err := idx.Search(context.Background(), unitVector(8, 0, 0), 5, 1.0)
	if err != nil {
		t.Fatalf("Search on empty index: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches from empty index", len(matches))
	}
}

func TestMemoryIndex_DimensionMismatch(t *testing.T) {
	idx, err := NewMemoryIndex(&noopEmbedder{dims: 8}, 8)
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	err = idx.Add(context.Background(), Document{SourceType: SourceJira, SourceID: "X", Embedding: make([]float32, 3)})
	if err == nil {
		t.Error("expected error for mismatched embedding dimensionality")
	}
}
