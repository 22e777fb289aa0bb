package rewrite

// Transformation names recorded in a Plan.
const (
	TransformInSubqueryToJoin = "in_subquery_to_join"
	TransformSelectStar       = "select_star_expansion"
	TransformModelRewrite     = "model_rewrite"
)

// Plan is the outcome of a rewrite attempt. RewrittenSQL == OriginalSQL
// with no transformations is a valid terminal state meaning no safe
// rewrite was found.
type Plan struct {
	OriginalSQL     string
	RewrittenSQL    string
	Transformations []string
	// SuggestedDDL carries an index proposal (CREATE INDEX ...) when one
	// could be derived, empty otherwise.
	SuggestedDDL string
	// TicketAnalysis maps incident base ids to the model's per-ticket
	// notes, populated only by the model tier.
	TicketAnalysis map[string]string
}

// Changed reports whether any transformation was applied.
func (p Plan) Changed() bool {
	return len(p.Transformations) > 0 && p.RewrittenSQL != p.OriginalSQL
}
