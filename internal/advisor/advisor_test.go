package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dbaops/sql-advisor/internal/rewrite"
	"github.com/dbaops/sql-advisor/internal/rules"
	"github.com/dbaops/sql-advisor/internal/vectordb"
)

type fakeRetriever struct {
	calls   atomic.Int64
	delay   time.Duration
	matches []vectordb.Match
	err     error
}

func (f *fakeRetriever) FindSimilar(ctx context.Context, fp string, limit int, threshold float64) ([]vectordb.Match, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.matches, f.err
}

type fakeRewriter struct {
	calls atomic.Int64
	plan  func(sql string) rewrite.Plan
}

func (f *fakeRewriter) Rewrite(ctx context.Context, sql string, findings []rules.Finding, matches []vectordb.Match) rewrite.Plan {
	f.calls.Add(1)
	if f.plan != nil {
		return f.plan(sql)
	}
	return rewrite.Plan{OriginalSQL: sql, RewrittenSQL: sql}
}

func match(sourceID string, distance float64) vectordb.Match {
	return vectordb.Match{
		Document: vectordb.Document{
			SourceType: vectordb.SourceJira,
			SourceID:   sourceID,
			Content:    "Slow query on " + sourceID,
		},
		Distance:   distance,
		Similarity: 1 - distance,
	}
}

func newTestAdvisor(ret *fakeRetriever, rw *fakeRewriter, ttl time.Duration) *Advisor {
	return New(ret, rules.NewAnalyzer(), rw, Options{CacheTTL: ttl})
}

func TestAdviseEmptyQuery(t *testing.T) {
	ret := &fakeRetriever{}
	rw := &fakeRewriter{}
	a := newTestAdvisor(ret, rw, time.Minute)

	r, err := a.Advise(context.Background(), "   ")
	if err != nil {
		t.Fatal(err)
	}
	if r.RiskScore != 0 || r.RiskLevel != rules.SeverityLow {
		t.Errorf("risk = %d %s", r.RiskScore, r.RiskLevel)
	}
	if r.ID == "" {
		t.Error("missing result id")
	}
	if ret.calls.Load() != 0 || rw.calls.Load() != 0 {
		t.Errorf("collaborators called for empty query: retriever=%d rewriter=%d", ret.calls.Load(), rw.calls.Load())
	}
}

func TestAdviseCacheHitSkipsPipeline(t *testing.T) {
	ret := &fakeRetriever{}
	rw := &fakeRewriter{}
	a := newTestAdvisor(ret, rw, time.Minute)

	first, err := a.Advise(context.Background(), "SELECT id FROM orders WHERE id = 42")
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached {
		t.Error("first result marked cached")
	}

	// Different literal, same fingerprint.
	second, err := a.Advise(context.Background(), "SELECT id FROM orders WHERE id = 99")
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Error("second result not served from cache")
	}
	if second.ID != first.ID || second.RiskScore != first.RiskScore {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
	if ret.calls.Load() != 1 || rw.calls.Load() != 1 {
		t.Errorf("pipeline ran on cache hit: retriever=%d rewriter=%d", ret.calls.Load(), rw.calls.Load())
	}

	// The serving marker stays out of the serialized advisory.
	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Errorf("serialized results differ:\n%s\n%s", firstJSON, secondJSON)
	}
}

func TestAdviseCacheExpiry(t *testing.T) {
	ret := &fakeRetriever{}
	a := newTestAdvisor(ret, &fakeRewriter{}, time.Minute)

	now := time.Now()
	a.cache.now = func() time.Time { return now }

	if _, err := a.Advise(context.Background(), "SELECT id FROM orders"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute)
	r, err := a.Advise(context.Background(), "SELECT id FROM orders")
	if err != nil {
		t.Fatal(err)
	}
	if r.Cached {
		t.Error("expired entry served from cache")
	}
	if ret.calls.Load() != 2 {
		t.Errorf("retriever calls = %d, want 2", ret.calls.Load())
	}
}

func TestAdviseSingleFlight(t *testing.T) {
	ret := &fakeRetriever{delay: 50 * time.Millisecond}
	a := newTestAdvisor(ret, &fakeRewriter{}, time.Minute)

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := a.Advise(context.Background(), "SELECT id FROM orders WHERE id = 1")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = r
		}(i)
	}
	wg.Wait()

	if got := ret.calls.Load(); got != 1 {
		t.Errorf("retriever calls = %d, want 1", got)
	}
	for _, r := range results[1:] {
		if r.ID != results[0].ID {
			t.Errorf("concurrent callers got different results: %s vs %s", r.ID, results[0].ID)
		}
	}
}

func TestAdviseDegradedRetrieval(t *testing.T) {
	ret := &fakeRetriever{err: errors.New("index unavailable")}
	a := newTestAdvisor(ret, &fakeRewriter{}, 0)

	r, err := a.Advise(context.Background(), "SELECT * FROM orders")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Degraded) != 1 || r.Degraded[0] != StageRetrieval {
		t.Errorf("degraded = %v", r.Degraded)
	}
	// Structural analysis still runs.
	if r.RiskScore != 85 || r.RiskLevel != rules.SeverityHigh {
		t.Errorf("risk = %d %s", r.RiskScore, r.RiskLevel)
	}
	if len(r.SimilarIssues) != 0 {
		t.Errorf("similar issues present despite degraded retrieval: %v", r.SimilarIssues)
	}
}

func TestAdviseHistoricalMatchFallback(t *testing.T) {
	ret := &fakeRetriever{matches: []vectordb.Match{match("DB-7#sql-desc-0", 0.2)}}
	a := newTestAdvisor(ret, &fakeRewriter{}, 0)

	r, err := a.Advise(context.Background(), "SELECT id FROM orders WHERE id = 1")
	if err != nil {
		t.Fatal(err)
	}
	if r.RiskScore != 55 || r.RiskLevel != rules.SeverityMedium {
		t.Errorf("risk = %d %s", r.RiskScore, r.RiskLevel)
	}
	if len(r.SimilarIssues) != 1 || r.SimilarIssues[0].ID != "DB-7" {
		t.Errorf("similar issues = %+v", r.SimilarIssues)
	}
}

func TestAdviseStructuralRuleBeatsHistory(t *testing.T) {
	ret := &fakeRetriever{matches: []vectordb.Match{match("DB-7#sql-desc-0", 0.2)}}
	a := newTestAdvisor(ret, &fakeRewriter{}, 0)

	r, err := a.Advise(context.Background(), "SELECT * FROM orders")
	if err != nil {
		t.Fatal(err)
	}
	if r.RiskScore != 85 {
		t.Errorf("risk score = %d, want the full scan score", r.RiskScore)
	}
	if len(r.SimilarIssues) != 1 {
		t.Errorf("history dropped: %+v", r.SimilarIssues)
	}
}

func TestAdviseTicketAnalysisAttached(t *testing.T) {
	ret := &fakeRetriever{matches: []vectordb.Match{match("DB-7#sql-desc-0", 0.2)}}
	rw := &fakeRewriter{plan: func(sql string) rewrite.Plan {
		return rewrite.Plan{
			OriginalSQL:     sql,
			RewrittenSQL:    "SELECT id FROM orders",
			Transformations: []string{rewrite.TransformModelRewrite},
			TicketAnalysis:  map[string]string{"DB-7": "same table, same scan"},
		}
	}}
	a := newTestAdvisor(ret, rw, 0)

	r, err := a.Advise(context.Background(), "SELECT * FROM orders")
	if err != nil {
		t.Fatal(err)
	}
	if r.SimilarIssues[0].Analysis != "same table, same scan" {
		t.Errorf("analysis = %q", r.SimilarIssues[0].Analysis)
	}
}

func TestConfidenceBounds(t *testing.T) {
	high := rules.Assessment{Findings: []rules.Finding{{Severity: rules.SeverityHigh}}}
	modelPlan := rewrite.Plan{Transformations: []string{rewrite.TransformModelRewrite}}
	closeMatches := []vectordb.Match{match("DB-1#x", 0.1)}

	if c := confidence(high, closeMatches, modelPlan); c != 0.95 {
		t.Errorf("capped confidence = %v, want 0.95", c)
	}
	if c := confidence(rules.Assessment{}, nil, rewrite.Plan{}); c != 0.5 {
		t.Errorf("baseline confidence = %v, want 0.5", c)
	}
	med := rules.Assessment{Findings: []rules.Finding{{Severity: rules.SeverityMedium}}}
	if c := confidence(med, nil, rewrite.Plan{}); c != 0.7 {
		t.Errorf("medium confidence = %v, want 0.7", c)
	}
}
