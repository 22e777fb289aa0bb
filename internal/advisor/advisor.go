package advisor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dbaops/sql-advisor/internal/fingerprint"
	"github.com/dbaops/sql-advisor/internal/retrieval"
	"github.com/dbaops/sql-advisor/internal/rewrite"
	"github.com/dbaops/sql-advisor/internal/rules"
	"github.com/dbaops/sql-advisor/internal/vectordb"
)

// Stage names recorded in Result.Degraded.
const (
	StageRetrieval = "retrieval"
)

// Retriever finds historical incidents similar to a fingerprint.
type Retriever interface {
	FindSimilar(ctx context.Context, fingerprint string, limit int, threshold float64) ([]vectordb.Match, error)
}

// Rewriter produces a rewrite plan for a flagged query.
type Rewriter interface {
	Rewrite(ctx context.Context, sql string, findings []rules.Finding, matches []vectordb.Match) rewrite.Plan
}

// Options tunes the advisory pipeline.
type Options struct {
	RetrievalLimit    int
	DistanceThreshold float64
	RetrievalTimeout  time.Duration
	CacheTTL          time.Duration
}

// Advisor runs the full pipeline for a query: fingerprint, retrieval,
// rule analysis, rewrite. Results are cached per fingerprint, and
// concurrent requests for the same fingerprint share one computation.
type Advisor struct {
	retriever Retriever
	analyzer  *rules.Analyzer
	rewriter  Rewriter
	opts      Options

	cache  *resultCache
	flight singleflight.Group
}

// New builds an advisor. retriever and rewriter may be nil: a nil
// retriever marks every result degraded on the retrieval stage, a nil
// rewriter yields identity rewrite plans.
func New(retriever Retriever, analyzer *rules.Analyzer, rewriter Rewriter, opts Options) *Advisor {
	if opts.RetrievalLimit <= 0 {
		opts.RetrievalLimit = retrieval.DefaultLimit
	}
	if opts.DistanceThreshold <= 0 {
		opts.DistanceThreshold = retrieval.DefaultThreshold
	}
	if opts.RetrievalTimeout <= 0 {
		opts.RetrievalTimeout = 10 * time.Second
	}
	if analyzer == nil {
		analyzer = rules.NewAnalyzer()
	}
	return &Advisor{
		retriever: retriever,
		analyzer:  analyzer,
		rewriter:  rewriter,
		opts:      opts,
		cache:     newResultCache(opts.CacheTTL),
	}
}

// Advise produces an advisory for one query. Equal fingerprints within the
// cache TTL return the same result; concurrent calls with the same
// fingerprint collapse into a single pipeline run.
func (a *Advisor) Advise(ctx context.Context, sql string) (Result, error) {
	if strings.TrimSpace(sql) == "" {
		return Result{
			ID:        uuid.NewString(),
			SQL:       sql,
			RiskScore: 0,
			RiskLevel: rules.SeverityLow,
			Reason:    "Empty query",
			Analysis:  "Nothing to analyze.",
			Rewrite:   rewrite.Plan{},
		}, nil
	}

	fp := fingerprint.Normalize(sql)

	if r, ok := a.cache.Get(fp); ok {
		r.Cached = true
		return r, nil
	}

	v, err, _ := a.flight.Do(fp, func() (interface{}, error) {
		if r, ok := a.cache.Get(fp); ok {
			r.Cached = true
			return r, nil
		}
		// Finish the computation and populate the cache even if the caller
		// that triggered it goes away; followers of the same flight still
		// want the result.
		r := a.compute(context.WithoutCancel(ctx), sql, fp)
		a.cache.Put(fp, r)
		return r, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

func (a *Advisor) compute(ctx context.Context, sql, fp string) Result {
	stmt := rules.NewStatement(sql, fp)

	var (
		matches  []vectordb.Match
		degraded []string
		pre      rules.Assessment
	)

	// Retrieval is network-bound; the rule pass runs alongside it. When
	// retrieval does return matches the rules are re-evaluated with them,
	// which is cheap and only changes the outcome for queries no
	// structural rule flagged.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if a.retriever == nil {
			degraded = append(degraded, StageRetrieval)
			return nil
		}
		rctx, cancel := context.WithTimeout(gctx, a.opts.RetrievalTimeout)
		defer cancel()
		m, err := a.retriever.FindSimilar(rctx, fp, a.opts.RetrievalLimit, a.opts.DistanceThreshold)
		if err != nil {
			degraded = append(degraded, StageRetrieval)
			return nil
		}
		matches = m
		return nil
	})
	g.Go(func() error {
		pre = a.analyzer.Analyze(stmt, nil)
		return nil
	})
	_ = g.Wait()

	assessment := pre
	if len(matches) > 0 {
		assessment = a.analyzer.Analyze(stmt, matches)
	}

	plan := rewrite.Plan{OriginalSQL: sql, RewrittenSQL: sql}
	if a.rewriter != nil {
		plan = a.rewriter.Rewrite(ctx, sql, assessment.Findings, matches)
	}

	return Result{
		ID:            uuid.NewString(),
		SQL:           sql,
		Fingerprint:   fp,
		RiskScore:     assessment.RiskScore,
		RiskLevel:     assessment.RiskLevel,
		Reason:        assessment.Reason,
		Analysis:      assessment.Analysis,
		SuggestedFix:  assessment.SuggestedFix,
		Findings:      assessment.Findings,
		SimilarIssues: similarIssues(matches, plan),
		Rewrite:       plan,
		Confidence:    confidence(assessment, matches, plan),
		Degraded:      degraded,
	}
}

// similarIssues converts raw matches into the advisory's incident list,
// attaching per-ticket model notes when the rewrite tier produced them.
func similarIssues(matches []vectordb.Match, plan rewrite.Plan) []SimilarIssue {
	if len(matches) == 0 {
		return nil
	}
	out := make([]SimilarIssue, 0, len(matches))
	for _, m := range matches {
		base := vectordb.BaseID(m.Document.SourceID)
		summary := m.Document.Content
		if len(summary) > 200 {
			summary = summary[:200]
		}
		out = append(out, SimilarIssue{
			ID:         base,
			Title:      retrieval.Title(m.Document),
			Similarity: m.Similarity,
			Summary:    summary,
			Analysis:   plan.TicketAnalysis[base],
		})
	}
	return out
}

// confidence grades how much to trust the advisory. Structural findings
// anchor it, close historical matches and a successful model rewrite
// nudge it up, and it is capped below certainty.
func confidence(assessment rules.Assessment, matches []vectordb.Match, plan rewrite.Plan) float64 {
	var c float64
	switch {
	case len(assessment.Findings) > 0 && assessment.Findings[0].Severity == rules.SeverityHigh:
		c = 0.85
	case len(assessment.Findings) > 0 && assessment.Findings[0].Severity == rules.SeverityMedium:
		c = 0.7
	default:
		c = 0.5
	}
	if len(matches) > 0 && matches[0].Distance < 0.3 {
		c += 0.1
	}
	for _, tr := range plan.Transformations {
		if tr == rewrite.TransformModelRewrite {
			c += 0.05
			break
		}
	}
	if c > 0.95 {
		c = 0.95
	}
	return c
}
