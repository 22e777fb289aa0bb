package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/dbaops/sql-advisor/internal/embeddings"
	"github.com/dbaops/sql-advisor/internal/vectordb"
)

// embedBatchSize bounds one embedding call. Small enough to stay under
// provider payload limits, large enough to amortize the round trip.
const embedBatchSize = 32

// Ingester embeds fragments and stores them in a vector index.
type Ingester struct {
	provider *embeddings.Provider
	index    vectordb.Index

	// Progress enables a terminal progress bar during Run.
	Progress bool
}

// NewIngester creates an ingester over the given provider and index.
func NewIngester(provider *embeddings.Provider, index vectordb.Index) *Ingester {
	return &Ingester{provider: provider, index: index}
}

// Stats summarizes one ingestion run.
type Stats struct {
	Embedded int
	Skipped  int
}

// Run embeds all fragments in batches and appends them to the index under
// the given source type. Fragments with empty content are skipped. The
// first error aborts the run; fragments stored before the error remain in
// the index.
func (in *Ingester) Run(ctx context.Context, sourceType vectordb.SourceType, frags []Fragment) (Stats, error) {
	var stats Stats

	valid := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if strings.TrimSpace(f.Content) == "" || f.SourceID == "" {
			stats.Skipped++
			continue
		}
		valid = append(valid, f)
	}
	if len(valid) == 0 {
		return stats, nil
	}

	var bar *progressbar.ProgressBar
	if in.Progress {
		bar = progressbar.Default(int64(len(valid)), "embedding")
	}

	for start := 0; start < len(valid); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[start:end]

		texts := make([]string, len(batch))
		for i, f := range batch {
			texts[i] = f.Content
		}

		vecs, err := in.provider.EmbedBatch(ctx, texts)
		if err != nil {
			return stats, fmt.Errorf("embedding batch at %d: %w", start, err)
		}
		if len(vecs) != len(batch) {
			return stats, fmt.Errorf("embedding batch at %d: got %d vectors for %d fragments", start, len(vecs), len(batch))
		}

		for i, f := range batch {
			doc := vectordb.Document{
				SourceType: sourceType,
				SourceID:   f.SourceID,
				Content:    f.Content,
				Embedding:  vecs[i],
			}
			if err := in.index.Add(ctx, doc); err != nil {
				return stats, fmt.Errorf("storing %s: %w", f.SourceID, err)
			}
			stats.Embedded++
			if bar != nil {
				_ = bar.Add(1)
			}
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return stats, nil
}
