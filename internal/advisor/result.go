package advisor

import (
	"github.com/dbaops/sql-advisor/internal/rewrite"
	"github.com/dbaops/sql-advisor/internal/rules"
)

// SimilarIssue is one historical incident surfaced alongside an advisory.
type SimilarIssue struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
	Summary    string  `json:"summary"`
	// Analysis is the model's note on how this incident relates to the
	// current query, empty when the model tier did not run.
	Analysis string `json:"analysis,omitempty"`
}

// Result is a complete advisory for one query.
type Result struct {
	ID          string `json:"id"`
	SQL         string `json:"sql"`
	Fingerprint string `json:"fingerprint"`

	RiskScore    int             `json:"risk_score"`
	RiskLevel    rules.Severity  `json:"risk_level"`
	Reason       string          `json:"reason"`
	Analysis     string          `json:"analysis"`
	SuggestedFix string          `json:"suggested_fix,omitempty"`
	Findings     []rules.Finding `json:"findings,omitempty"`

	SimilarIssues []SimilarIssue `json:"similar_issues,omitempty"`
	Rewrite       rewrite.Plan   `json:"rewrite"`

	// Confidence is a coarse self-assessment in [0,1); it never reaches 1
	// because the advisor reasons over patterns, not execution plans.
	Confidence float64 `json:"confidence"`

	// Degraded lists pipeline stages that failed and were skipped. A
	// degraded result is still served rather than erroring the request.
	Degraded []string `json:"degraded,omitempty"`

	// Cached is true when this result was served from the TTL cache. It is
	// an in-band serving marker, not part of the advisory: it never
	// serializes, so repeated calls within the TTL produce byte-identical
	// output.
	Cached bool `json:"-"`
}
