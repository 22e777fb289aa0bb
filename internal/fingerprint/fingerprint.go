package fingerprint

import (
	"regexp"
	"strings"
)

// Placeholder is the token substituted for every literal value.
const Placeholder = "?"

var (
	numberRe       = regexp.MustCompile(`\b\d+\b`)
	singleQuotedRe = regexp.MustCompile(`'[^']*'`)
	doubleQuotedRe = regexp.MustCompile(`"[^"]*"`)
	parenRe        = regexp.MustCompile(`[()]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a SQL statement into its fingerprint: literal
// values become placeholders, parentheses are set off as their own tokens,
// and whitespace runs collapse to a single space. Two statements differing
// only in literal values normalize to the same fingerprint, which makes the
// result usable as a cache key and as embedding input.
//
// This is deliberately not a SQL lexer. Comments, hex literals, and
// vendor-specific literal forms pass through untouched; the downstream
// consumers (embedding similarity, substring rules) tolerate that.
func Normalize(sql string) string {
	if sql == "" {
		return ""
	}

	s := numberRe.ReplaceAllString(sql, Placeholder)
	s = singleQuotedRe.ReplaceAllString(s, Placeholder)
	s = doubleQuotedRe.ReplaceAllString(s, Placeholder)
	s = parenRe.ReplaceAllStringFunc(s, func(p string) string { return " " + p + " " })
	s = whitespaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// QueryType returns the leading keyword of a statement, uppercased
// (SELECT, UPDATE, ...), or "UNKNOWN" for empty input.
func QueryType(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}
