package rules

import "strings"

// Severity labels the risk contribution of a finding.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Rule names. The rewrite engine keys its transformations off these, so
// they are part of the package contract.
const (
	RuleExplicitDelay      = "explicit_delay"
	RuleFullScan           = "unfiltered_full_scan"
	RuleCartesianProduct   = "cartesian_product"
	RuleLeadingWildcard    = "leading_wildcard_like"
	RuleInSubquery         = "in_subquery"
	RuleHistoricalMatch    = "historical_match"
	RuleSelectStar         = "select_star"
	RuleNotInSubquery      = "not_in_subquery"
	RuleMultipleOr         = "multiple_or_conditions"
	RuleOrderByNoLimit     = "order_by_without_limit"
	RuleCorrelatedSubquery = "correlated_select_subquery"
)

// Finding is one matched anti-pattern.
type Finding struct {
	Rule         string
	Severity     Severity
	Score        int
	Message      string
	Analysis     string
	SuggestedFix string
}

// Statement carries the two views of a query that rules match against.
// Most rules work on the fingerprint (canonical, literal-free); the
// leading-wildcard rule needs the raw text because literal replacement
// erases the wildcard position.
type Statement struct {
	SQL         string
	Fingerprint string

	upperSQL string
	upperFP  string
}

// NewStatement builds a Statement from raw SQL and its fingerprint.
func NewStatement(sql, fp string) Statement {
	return Statement{
		SQL:         sql,
		Fingerprint: fp,
		upperSQL:    strings.ToUpper(sql),
		upperFP:     strings.ToUpper(fp),
	}
}

// Rule is a single anti-pattern check. Match returns nil when the rule
// does not apply. Rules are stateless and deterministic.
type Rule interface {
	Name() string
	Match(stmt Statement) *Finding
}
