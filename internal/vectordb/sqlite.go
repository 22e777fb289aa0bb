package vectordb

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/dbaops/sql-advisor/internal/db"
)

// SQLiteIndex persists documents in a doc_embeddings table and ranks
// matches by cosine distance computed over the stored vectors. The corpus
// is small (thousands of incident fragments), so a full scan per query is
// cheaper than maintaining an approximate index.
type SQLiteIndex struct {
	db   *db.DB
	dims int
}

// NewSQLiteIndex creates an index over the given database. dims fixes the
// embedding dimensionality; adding a vector of any other length is a
// configuration error.
func NewSQLiteIndex(database *db.DB, dims int) (*SQLiteIndex, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("invalid embedding dimensionality %d", dims)
	}
	return &SQLiteIndex{db: database, dims: dims}, nil
}

func (s *SQLiteIndex) Dimensions() int {
	return s.dims
}

func (s *SQLiteIndex) Add(ctx context.Context, doc Document) error {
	if len(doc.Embedding) != s.dims {
		return fmt.Errorf("embedding has %d dimensions, index expects %d", len(doc.Embedding), s.dims)
	}

	blob, err := serializeEmbedding(doc.Embedding)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO doc_embeddings (source_type, source_id, content, embedding) VALUES (?, ?, ?, ?)`,
		string(doc.SourceType), doc.SourceID, doc.Content, blob,
	)
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.SourceID, err)
	}
	return nil
}

func (s *SQLiteIndex) Search(ctx context.Context, vector []float32, k int, maxDistance float64) ([]Match, error) {
	if k <= 0 || len(vector) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_type, source_id, content, embedding FROM doc_embeddings`)
	if err != nil {
		return nil, fmt.Errorf("scanning doc_embeddings: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			sourceType string
			sourceID   string
			content    string
			blob       []byte
		)
		if err := rows.Scan(&sourceType, &sourceID, &content, &blob); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		embedding, err := deserializeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", sourceID, err)
		}

		dist := CosineDistance(vector, embedding)
		if dist >= maxDistance {
			continue
		}

		matches = append(matches, Match{
			Document: Document{
				SourceType: SourceType(sourceType),
				SourceID:   sourceID,
				Content:    content,
				Embedding:  embedding,
			},
			Distance:   dist,
			Similarity: 1 - dist,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating doc_embeddings: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM doc_embeddings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// CountByType returns document counts grouped by source type.
func (s *SQLiteIndex) CountByType(ctx context.Context) (map[SourceType]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_type, COUNT(*) FROM doc_embeddings GROUP BY source_type`)
	if err != nil {
		return nil, fmt.Errorf("counting documents by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[SourceType]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[SourceType(st)] = n
	}
	return counts, rows.Err()
}

// serializeEmbedding converts a float32 slice to little-endian bytes for
// BLOB storage.
func serializeEmbedding(embedding []float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, embedding); err != nil {
		return nil, fmt.Errorf("serializing embedding: %w", err)
	}
	return buf.Bytes(), nil
}

// deserializeEmbedding converts stored bytes back to a float32 slice.
func deserializeEmbedding(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding blob of %d bytes", len(data))
	}
	embedding := make([]float32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, embedding); err != nil {
		return nil, fmt.Errorf("deserializing embedding: %w", err)
	}
	return embedding, nil
}
