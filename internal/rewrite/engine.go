package rewrite

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/dbaops/sql-advisor/internal/llm"
	"github.com/dbaops/sql-advisor/internal/rules"
	"github.com/dbaops/sql-advisor/internal/vectordb"
)

var sqlKeywordRe = regexp.MustCompile(`(?is)^\s*(SELECT|UPDATE|DELETE|INSERT|WITH)\b`)

// Engine produces rewrite plans for flagged queries. The heuristic tier is
// always available; the model tier runs only when a provider is configured.
type Engine struct {
	provider llm.Provider
	model    string
	schema   map[string][]string
	timeout  time.Duration
}

// NewEngine builds a rewrite engine. provider may be nil, in which case only
// heuristic transformations are applied. schema maps lowercased table names
// to their column lists and drives SELECT * expansion.
func NewEngine(provider llm.Provider, model string, schema map[string][]string, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Engine{provider: provider, model: model, schema: schema, timeout: timeout}
}

// Rewrite applies the two rewrite tiers and returns a plan. It never fails:
// when nothing can be improved, or every tier's output is unusable, the plan
// carries the original query with no transformations. Rewrites are driven by
// the findings, so a query with no findings is returned untouched.
func (e *Engine) Rewrite(ctx context.Context, sql string, findings []rules.Finding, matches []vectordb.Match) Plan {
	plan := Plan{OriginalSQL: sql, RewrittenSQL: sql}
	if strings.TrimSpace(sql) == "" || len(findings) == 0 {
		return plan
	}

	flagged := map[string]bool{}
	for _, f := range findings {
		flagged[f.Rule] = true
	}

	// Subquery restructuring runs before SELECT * expansion so the expanded
	// column list is qualified against the post-join shape.
	if flagged[rules.RuleInSubquery] {
		if out, ok := restructureInSubquery(plan.RewrittenSQL); ok {
			plan.RewrittenSQL = out
			plan.Transformations = append(plan.Transformations, TransformInSubqueryToJoin)
		}
	}
	if flagged[rules.RuleSelectStar] || flagged[rules.RuleFullScan] {
		if out, ok := expandSelectStar(plan.RewrittenSQL, e.schema); ok {
			plan.RewrittenSQL = out
			plan.Transformations = append(plan.Transformations, TransformSelectStar)
		}
	}
	plan.SuggestedDDL = proposeIndexDDL(plan.RewrittenSQL)

	if e.provider != nil {
		e.modelTier(ctx, &plan, findings, matches)
	}

	if !sqlKeywordRe.MatchString(plan.RewrittenSQL) {
		return Plan{OriginalSQL: sql, RewrittenSQL: sql}
	}
	return plan
}

// modelResponse is the JSON shape the model is asked to produce.
type modelResponse struct {
	SQL          string            `json:"sql"`
	SuggestedDDL string            `json:"suggested_ddl"`
	JiraAnalysis map[string]string `json:"jira_analysis"`
}

func (e *Engine) modelTier(ctx context.Context, plan *Plan, findings []rules.Finding, matches []vectordb.Match) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildPrompt(plan.RewrittenSQL, findings, matches)},
		},
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		return
	}

	parsed, ok := parseModelOutput(resp.Content)
	if !ok {
		return
	}
	candidate := strings.TrimSpace(parsed.SQL)
	if !sqlKeywordRe.MatchString(candidate) {
		return
	}
	if candidate != plan.RewrittenSQL {
		plan.RewrittenSQL = candidate
		plan.Transformations = append(plan.Transformations, TransformModelRewrite)
	}
	if parsed.SuggestedDDL != "" {
		plan.SuggestedDDL = parsed.SuggestedDDL
	}
	if len(parsed.JiraAnalysis) > 0 {
		plan.TicketAnalysis = parsed.JiraAnalysis
	}
}

var (
	jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	sqlFenceRe  = regexp.MustCompile("(?s)```sql\\s*(.*?)\\s*```")
)

// parseModelOutput accepts the requested JSON object, a fenced JSON block,
// or as a last resort a fenced SQL block with no metadata.
func parseModelOutput(content string) (modelResponse, bool) {
	content = strings.TrimSpace(content)

	var r modelResponse
	if err := json.Unmarshal([]byte(content), &r); err == nil && r.SQL != "" {
		return r, true
	}
	if m := jsonFenceRe.FindStringSubmatch(content); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &r); err == nil && r.SQL != "" {
			return r, true
		}
	}
	if m := sqlFenceRe.FindStringSubmatch(content); m != nil {
		return modelResponse{SQL: strings.TrimSpace(m[1])}, true
	}
	return modelResponse{}, false
}
