// Package segment splits raw document text into clause candidates.
package segment

import (
	"regexp"
	"strings"
)

// MinClauseLength is the noise floor: trimmed segments shorter than this are dropped.
const MinClauseLength = 40

// Clause is one blank-line-delimited segment of the document, in document order.
type Clause struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

var blankLines = regexp.MustCompile(`\n[ \t]*\n+`)

// Split breaks raw text on blank-line boundaries, trims each segment and
// discards segments below MinClauseLength. It is pure and idempotent;
// the only failure mode is an empty result.
func Split(text string) []Clause {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	parts := blankLines.Split(normalized, -1)

	clauses := make([]Clause, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if len(trimmed) < MinClauseLength {
			continue
		}
		clauses = append(clauses, Clause{Index: len(clauses), Text: trimmed})
	}
	return clauses
}

// JoinText renders clauses back into a single prompt-ready block, preserving order.
func JoinText(clauses []Clause) string {
	var b strings.Builder
	for i, clause := range clauses {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(clause.Text)
	}
	return b.String()
}
