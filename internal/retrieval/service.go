package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbaops/sql-advisor/internal/embeddings"
	"github.com/dbaops/sql-advisor/internal/vectordb"
)

const (
	// DefaultLimit is how many unique incidents a retrieval returns.
	DefaultLimit = 3
	// DefaultThreshold is the maximum cosine distance for a relevant match.
	DefaultThreshold = 0.7
)

// Service wraps the vector index with base-id deduplication and context
// formatting. A single ticket contributes several embedded fragments
// (summary, SQL snippets from description and comments); without
// deduplication one ticket would crowd distinct tickets out of the top-k.
type Service struct {
	provider *embeddings.Provider
	index    vectordb.Index
}

// NewService creates a retrieval service over the given embedding provider
// and index.
func NewService(provider *embeddings.Provider, index vectordb.Index) *Service {
	return &Service{provider: provider, index: index}
}

// FindSimilar embeds a fingerprint and returns up to limit matches below
// threshold, deduplicated by base id, keeping the closest fragment per
// ticket. The index is asked for 2x limit raw results to absorb
// deduplication loss; if fewer unique tickets exist it returns what is
// available rather than re-querying.
func (s *Service) FindSimilar(ctx context.Context, fingerprint string, limit int, threshold float64) ([]vectordb.Match, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if strings.TrimSpace(fingerprint) == "" {
		return nil, nil
	}

	vector, err := s.provider.Embed(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("embedding fingerprint: %w", err)
	}
	if vector == nil {
		return nil, nil
	}

	raw, err := s.index.Search(ctx, vector, 2*limit, threshold)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return Deduplicate(raw, limit), nil
}

// Deduplicate collapses fragment matches to one per base id, keeping the
// first (closest) occurrence, truncated to limit. Input order is assumed
// ascending by distance.
func Deduplicate(matches []vectordb.Match, limit int) []vectordb.Match {
	seen := make(map[string]bool, len(matches))
	var out []vectordb.Match
	for _, m := range matches {
		base := vectordb.BaseID(m.Document.SourceID)
		if seen[base] {
			continue
		}
		seen[base] = true
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// FormatContext renders matches as the context block handed to the rewrite
// model: one entry per incident with its relevance percentage and content.
func FormatContext(matches []vectordb.Match) string {
	if len(matches) == 0 {
		return "No similar issues found in knowledge base."
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		content := m.Document.Content
		if len(content) > 500 {
			content = content[:500]
		}
		parts = append(parts, fmt.Sprintf("[%s] (relevance: %.1f%%)\n%s",
			m.Document.SourceID, m.Similarity*100, content))
	}
	return strings.Join(parts, "\n\n")
}

// Title extracts a short display title from a document: its first content
// line, truncated, falling back to the source id.
func Title(doc vectordb.Document) string {
	content := strings.TrimSpace(doc.Content)
	if content == "" {
		return doc.SourceID
	}
	line := content
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	if len(line) > 80 {
		line = line[:80]
	}
	return line
}
