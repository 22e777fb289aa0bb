package rules

import (
	"regexp"
	"strings"
)

var (
	sleepRe       = regexp.MustCompile(`\bSLEEP\s*\(`)
	commaJoinRe   = regexp.MustCompile(`\bFROM\s+\w+\s*,\s*\w+`)
	inSubqueryRe  = regexp.MustCompile(`\bIN\s*\(\s*SELECT\b`)
	notInSubRe    = regexp.MustCompile(`\bNOT\s+IN\s*\(\s*SELECT\b`)
	multiOrRe     = regexp.MustCompile(`\bWHERE\b.*\bOR\b.*\bOR\b`)
	correlatedRe  = regexp.MustCompile(`\bSELECT\b[^(]*\(\s*SELECT\b`)
	leadingWildRe = regexp.MustCompile(`\bLIKE\s+['"]%`)
	selectStarRe  = regexp.MustCompile(`\bSELECT\s+\*`)
)

type explicitDelayRule struct{}

func (explicitDelayRule) Name() string { return RuleExplicitDelay }

func (explicitDelayRule) Match(stmt Statement) *Finding {
	if !sleepRe.MatchString(stmt.upperFP) {
		return nil
	}
	return &Finding{
		Rule:         RuleExplicitDelay,
		Severity:     SeverityHigh,
		Score:        95,
		Message:      "Execution delay detected via SLEEP() function",
		Analysis:     "Query explicitly pauses execution, causing artificial performance degradation and connection holding.",
		SuggestedFix: "Remove SLEEP() functions from production code.",
	}
}

type fullScanRule struct{}

func (fullScanRule) Name() string { return RuleFullScan }

func (fullScanRule) Match(stmt Statement) *Finding {
	if !selectStarRe.MatchString(stmt.upperFP) || strings.Contains(stmt.upperFP, "WHERE") {
		return nil
	}
	return &Finding{
		Rule:         RuleFullScan,
		Severity:     SeverityHigh,
		Score:        85,
		Message:      "SELECT * without WHERE clause - likely full table scan",
		Analysis:     "Full table scan detected. No filtering will cause all rows to be examined.",
		SuggestedFix: "Add a WHERE clause to filter results, or specify only needed columns.",
	}
}

type cartesianProductRule struct{}

func (cartesianProductRule) Name() string { return RuleCartesianProduct }

func (cartesianProductRule) Match(stmt Statement) *Finding {
	crossJoin := strings.Contains(stmt.upperFP, "CROSS JOIN")
	commaJoin := commaJoinRe.MatchString(stmt.upperFP) && !strings.Contains(stmt.upperFP, "WHERE")
	if !crossJoin && !commaJoin {
		return nil
	}
	return &Finding{
		Rule:         RuleCartesianProduct,
		Severity:     SeverityHigh,
		Score:        80,
		Message:      "Potential cartesian product - no join condition detected",
		Analysis:     "Missing join conditions can create cartesian products with massive row counts.",
		SuggestedFix: "Add an explicit join condition between the tables.",
	}
}

type leadingWildcardRule struct{}

func (leadingWildcardRule) Name() string { return RuleLeadingWildcard }

func (leadingWildcardRule) Match(stmt Statement) *Finding {
	// Matched against the raw statement: the fingerprint replaces string
	// literals with placeholders and loses the wildcard position.
	if !leadingWildRe.MatchString(stmt.upperSQL) {
		return nil
	}
	return &Finding{
		Rule:         RuleLeadingWildcard,
		Severity:     SeverityMedium,
		Score:        70,
		Message:      "Leading wildcard in LIKE - cannot use index",
		Analysis:     "Leading wildcard patterns prevent index usage, causing full scans.",
		SuggestedFix: "Consider FULLTEXT search or restructuring the query.",
	}
}

type inSubqueryRule struct{}

func (inSubqueryRule) Name() string { return RuleInSubquery }

func (inSubqueryRule) Match(stmt Statement) *Finding {
	// NOT IN (SELECT ...) is covered by its own hint rule.
	if !inSubqueryRe.MatchString(stmt.upperFP) || notInSubRe.MatchString(stmt.upperFP) {
		return nil
	}
	return &Finding{
		Rule:         RuleInSubquery,
		Severity:     SeverityMedium,
		Score:        60,
		Message:      "Subquery in IN clause - may cause performance issues",
		Analysis:     "Subqueries in IN clauses can be inefficient. Consider rewriting as JOIN.",
		SuggestedFix: "Convert the IN subquery to an INNER JOIN.",
	}
}

// Hint rules refine the explanation and feed the rewrite engine, but never
// set the risk score.

type selectStarHint struct{}

func (selectStarHint) Name() string { return RuleSelectStar }

func (selectStarHint) Match(stmt Statement) *Finding {
	if !selectStarRe.MatchString(stmt.upperFP) {
		return nil
	}
	return &Finding{
		Rule:     RuleSelectStar,
		Severity: SeverityLow,
		Message:  "SELECT * - retrieves all columns unnecessarily",
		Analysis: "Specify only required columns instead of SELECT *.",
	}
}

type notInSubqueryHint struct{}

func (notInSubqueryHint) Name() string { return RuleNotInSubquery }

func (notInSubqueryHint) Match(stmt Statement) *Finding {
	if !notInSubRe.MatchString(stmt.upperFP) {
		return nil
	}
	return &Finding{
		Rule:     RuleNotInSubquery,
		Severity: SeverityLow,
		Message:  "NOT IN (SELECT ...) - can be slow with NULLs",
		Analysis: "Consider LEFT JOIN + IS NULL or NOT EXISTS.",
	}
}

type multipleOrHint struct{}

func (multipleOrHint) Name() string { return RuleMultipleOr }

func (multipleOrHint) Match(stmt Statement) *Finding {
	if !multiOrRe.MatchString(stmt.upperFP) {
		return nil
	}
	return &Finding{
		Rule:     RuleMultipleOr,
		Severity: SeverityLow,
		Message:  "Multiple OR conditions - may prevent index optimization",
		Analysis: "Consider splitting into UNION ALL for index usage.",
	}
}

type orderByNoLimitHint struct{}

func (orderByNoLimitHint) Name() string { return RuleOrderByNoLimit }

func (orderByNoLimitHint) Match(stmt Statement) *Finding {
	if !strings.Contains(stmt.upperFP, "ORDER BY") || strings.Contains(stmt.upperFP, "LIMIT") {
		return nil
	}
	return &Finding{
		Rule:     RuleOrderByNoLimit,
		Severity: SeverityLow,
		Message:  "ORDER BY without LIMIT - sorts entire result set",
		Analysis: "Add LIMIT if only top N results are needed.",
	}
}

type correlatedSubqueryHint struct{}

func (correlatedSubqueryHint) Name() string { return RuleCorrelatedSubquery }

func (correlatedSubqueryHint) Match(stmt Statement) *Finding {
	// a (SELECT ...) inside the select list, before any IN/WHERE context
	if !correlatedRe.MatchString(stmt.upperFP) || inSubqueryRe.MatchString(stmt.upperFP) {
		return nil
	}
	return &Finding{
		Rule:     RuleCorrelatedSubquery,
		Severity: SeverityLow,
		Message:  "Correlated subquery in SELECT - executes per row",
		Analysis: "Consider rewriting as JOIN with aggregation.",
	}
}
