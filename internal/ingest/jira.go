package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	maxDescriptionChars = 800
	maxDescriptionSQL   = 3
	maxCommentsPerIssue = 10
	maxSQLPerComment    = 2
)

// jiraExport mirrors the JSON produced by Jira's issue export.
type jiraExport struct {
	Issues []jiraIssue `json:"issues"`
}

type jiraIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Comment     struct {
			Comments []jiraComment `json:"comments"`
		} `json:"comment"`
	} `json:"fields"`
}

type jiraComment struct {
	Body   string `json:"body"`
	Author struct {
		DisplayName string `json:"displayName"`
	} `json:"author"`
}

// Fragment is one embeddable chunk extracted from a ticket. The source id
// carries a "#" fragment suffix for everything but the ticket summary, so
// retrieval can deduplicate fragments back to their ticket.
type Fragment struct {
	SourceID string
	Content  string
}

var (
	codeBlockRe  = regexp.MustCompile(`(?s)\{code(?::[a-zA-Z]+)?\}(.*?)\{code\}`)
	noformatRe   = regexp.MustCompile(`(?s)\{noformat\}(.*?)\{noformat\}`)
	panelRe      = regexp.MustCompile(`(?s)\{panel[^}]*\}(.*?)\{panel\}`)
	mentionRe    = regexp.MustCompile(`\[~[^\]]+\]`)
	linkRe       = regexp.MustCompile(`\[([^|\]]+)\|[^\]]+\]`)
	colorRe      = regexp.MustCompile(`\{color[^}]*\}`)
	multiBlankRe = regexp.MustCompile(`\n{3,}`)

	sqlKeywordsRe = regexp.MustCompile(`(?is)\b(SELECT|UPDATE|DELETE|INSERT)\b`)
)

// cleanText strips Jira wiki markup, keeping code and noformat block
// contents inline so the summary chunk still mentions what the ticket is
// about.
func cleanText(s string) string {
	s = codeBlockRe.ReplaceAllString(s, "$1")
	s = noformatRe.ReplaceAllString(s, "$1")
	s = panelRe.ReplaceAllString(s, "$1")
	s = mentionRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = colorRe.ReplaceAllString(s, "")
	s = multiBlankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// extractSQL pulls SQL statements out of {code} blocks. Blocks without a
// recognizable DML keyword are ignored so stack traces and config dumps do
// not pollute the index.
func extractSQL(text string, limit int) []string {
	var out []string
	for _, m := range codeBlockRe.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[1])
		if body == "" || !sqlKeywordsRe.MatchString(body) {
			continue
		}
		out = append(out, body)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// issueFragments expands one ticket into its fragments: a summary chunk,
// SQL snippets from the description, and SQL snippets from the first
// comments.
func issueFragments(issue jiraIssue) []Fragment {
	if issue.Key == "" {
		return nil
	}

	var frags []Fragment

	desc := cleanText(issue.Fields.Description)
	summary := fmt.Sprintf("[%s] %s", issue.Key, strings.TrimSpace(issue.Fields.Summary))
	if desc != "" {
		truncated := desc
		if len(truncated) > maxDescriptionChars {
			truncated = truncated[:maxDescriptionChars]
		}
		summary += "\n\n" + truncated
	}
	frags = append(frags, Fragment{SourceID: issue.Key, Content: summary})

	for i, sql := range extractSQL(issue.Fields.Description, maxDescriptionSQL) {
		frags = append(frags, Fragment{
			SourceID: fmt.Sprintf("%s#sql-desc-%d", issue.Key, i),
			Content:  fmt.Sprintf("[%s] SQL from description:\n%s", issue.Key, sql),
		})
	}

	comments := issue.Fields.Comment.Comments
	if len(comments) > maxCommentsPerIssue {
		comments = comments[:maxCommentsPerIssue]
	}
	for j, c := range comments {
		for k, sql := range extractSQL(c.Body, maxSQLPerComment) {
			author := c.Author.DisplayName
			if author == "" {
				author = "unknown"
			}
			frags = append(frags, Fragment{
				SourceID: fmt.Sprintf("%s#comment-%d-sql-%d", issue.Key, j, k),
				Content:  fmt.Sprintf("[%s] SQL from comment by %s:\n%s", issue.Key, author, sql),
			})
		}
	}

	return frags
}

// LoadJiraExport parses a Jira JSON export file into per-ticket fragments.
func LoadJiraExport(path string) ([]Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jira export: %w", err)
	}
	var export jiraExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parsing jira export %s: %w", path, err)
	}

	var frags []Fragment
	for _, issue := range export.Issues {
		frags = append(frags, issueFragments(issue)...)
	}
	return frags, nil
}
