package vectordb

import "strings"

// SourceType categorizes where a stored document came from.
type SourceType string

const (
	SourceJira          SourceType = "jira"
	SourceDocumentation SourceType = "documentation"
)

// Document is one embedded record of the incident corpus. Documents are
// immutable once ingested; the advisory pipeline only reads them.
type Document struct {
	SourceType SourceType
	// SourceID identifies the ticket or page. It may carry a "#fragment"
	// suffix when the record is a sub-chunk of a larger ticket
	// (e.g. "MDEV-1234#comment-2").
	SourceID  string
	Content   string
	Embedding []float32
}

// BaseID returns the deduplication key for a source id: the portion before
// the first "#" fragment marker.
func BaseID(sourceID string) string {
	if i := strings.Index(sourceID, "#"); i >= 0 {
		return sourceID[:i]
	}
	return sourceID
}

// Match pairs a document with its cosine distance from a query vector.
// Similarity is always 1 - Distance.
type Match struct {
	Document   Document
	Distance   float64
	Similarity float64
}
