package rewrite

import (
	"fmt"
	"strings"

	"github.com/dbaops/sql-advisor/internal/retrieval"
	"github.com/dbaops/sql-advisor/internal/rules"
	"github.com/dbaops/sql-advisor/internal/vectordb"
)

const systemPrompt = `You are a senior database engineer reviewing SQL for performance problems.
Rewrite the query to remove the detected anti-patterns while preserving its result set.
Respond with a single JSON object and nothing else:
{"sql": "<rewritten query>", "suggested_ddl": "<CREATE INDEX statement or empty string>", "jira_analysis": {"<ticket id>": "<how that ticket relates to this query>"}}
If no safe rewrite exists, return the original query unchanged in "sql".`

func buildPrompt(sql string, findings []rules.Finding, matches []vectordb.Match) string {
	var b strings.Builder
	b.WriteString("Query:\n")
	b.WriteString(sql)
	b.WriteString("\n\nDetected issues:\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "- %s (%s): %s\n", f.Rule, f.Severity, f.Message)
	}
	b.WriteString("\nSimilar past incidents:\n")
	b.WriteString(retrieval.FormatContext(matches))
	b.WriteString("\n")
	return b.String()
}
