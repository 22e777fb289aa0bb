package rewrite

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// outerCol IN (SELECT innerCol FROM table [WHERE pred])
	inSubqueryRe = regexp.MustCompile(`(?is)(\w+(?:\.\w+)?)\s+IN\s*\(\s*SELECT\s+(\w+)\s+FROM\s+(\w+)(?:\s+WHERE\s+(.+?))?\s*\)`)

	selectStarRe = regexp.MustCompile(`(?is)^\s*SELECT\s+\*\s+FROM\s+(\w+)`)
	fromTableRe  = regexp.MustCompile(`(?is)\bFROM\s+(\w+)`)

	whereEqRe = regexp.MustCompile(`(?i)\bWHERE\b(.+?)(?:\bGROUP\s+BY\b|\bORDER\s+BY\b|\bLIMIT\b|$)`)
	eqColRe   = regexp.MustCompile(`(?i)\b(?:(\w+)\.)?(\w+)\s*=\s*(?:'[^']*'|"[^"]*"|\d+|\?)`)

	danglingWhereCondRe = regexp.MustCompile(`(?i)\bWHERE\s+(AND|OR)\s+`)
	whereBeforeParenRe  = regexp.MustCompile(`(?i)\bWHERE\s+\)`)
	trailingWhereRe     = regexp.MustCompile(`(?i)\s+WHERE\s*$`)
)

// restructureInSubquery converts an uncorrelated IN (SELECT ...) predicate
// into an INNER JOIN on the subquery's table. The joined table keeps its own
// name rather than gaining an alias so any predicate lifted out of the
// subquery stays readable.
func restructureInSubquery(sql string) (string, bool) {
	m := inSubqueryRe.FindStringSubmatch(sql)
	if m == nil {
		return sql, false
	}
	full, outerCol, innerCol, table, pred := m[0], m[1], m[2], m[3], strings.TrimSpace(m[4])

	join := "INNER JOIN " + table + " ON " + outerCol + " = " + table + "." + innerCol
	if pred != "" {
		pred = qualifyPredicate(pred, table)
		join += " AND " + pred
	}

	// The IN predicate usually sits directly after WHERE. Splice the join in
	// before that WHERE so the remaining conditions survive.
	whereForm := regexp.MustCompile(`(?is)\s+WHERE\s+` + regexp.QuoteMeta(full))
	var out string
	if whereForm.MatchString(sql) {
		out = whereForm.ReplaceAllString(sql, " "+join+" WHERE ")
	} else {
		out = strings.Replace(sql, full, join, 1)
	}

	out = danglingWhereCondRe.ReplaceAllString(out, "WHERE ")
	out = whereBeforeParenRe.ReplaceAllString(out, ")")
	out = trailingWhereRe.ReplaceAllString(out, "")
	out = strings.TrimSpace(regexp.MustCompile(`\s+`).ReplaceAllString(out, " "))
	return out, true
}

// qualifyPredicate prefixes bare column references on the left side of
// comparisons with the subquery table name.
func qualifyPredicate(pred, table string) string {
	bareCol := regexp.MustCompile(`(?i)(^|\s|\()(\w+)(\s*(?:=|<>|!=|<=|>=|<|>|\bLIKE\b|\bIN\b))`)
	return bareCol.ReplaceAllString(pred, "${1}"+table+".${2}${3}")
}

// expandSelectStar replaces a leading SELECT * with the known column list of
// the FROM table. Columns are qualified with the table name so the expansion
// stays valid after a join has been added.
func expandSelectStar(sql string, schema map[string][]string) (string, bool) {
	m := selectStarRe.FindStringSubmatch(sql)
	if m == nil {
		return sql, false
	}
	cols, ok := schema[strings.ToLower(m[1])]
	if !ok || len(cols) == 0 {
		return sql, false
	}
	qualified := make([]string, len(cols))
	for i, c := range cols {
		qualified[i] = m[1] + "." + c
	}
	starForm := regexp.MustCompile(`(?is)^(\s*SELECT\s+)\*`)
	return starForm.ReplaceAllString(sql, "${1}"+strings.Join(qualified, ", ")), true
}

// proposeIndexDDL derives a single-column index suggestion from the first
// equality predicate in the WHERE clause of the outer query.
func proposeIndexDDL(sql string) string {
	fm := fromTableRe.FindStringSubmatch(sql)
	if fm == nil {
		return ""
	}
	table := fm[1]
	wm := whereEqRe.FindStringSubmatch(sql)
	if wm == nil {
		return ""
	}
	seen := map[string]bool{}
	var cols []string
	for _, em := range eqColRe.FindAllStringSubmatch(wm[1], -1) {
		owner, col := em[1], em[2]
		if owner != "" && !strings.EqualFold(owner, table) {
			continue
		}
		key := strings.ToLower(col)
		if seen[key] {
			continue
		}
		seen[key] = true
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return ""
	}
	sort.Strings(cols)
	return fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s(%s)", table, strings.Join(cols, "_"), table, strings.Join(cols, ", "))
}
