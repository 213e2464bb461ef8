package rules

import "strings"

const (
	// RuleSeparator divides a rule head from its body.
	RuleSeparator = ":-"

	// LiteralSeparator ends every body literal except the last. It assumes
	// each literal closes with a parenthesis.
	LiteralSeparator = "),"

	// TableSeparator marks a service-derived table inside a policy,
	// e.g. "nova:servers".
	TableSeparator = ":"
)

// Format makes a rule's text human readable: a line break after the head
// separator and after every body literal. Text without a rule separator is a
// fact and is returned unchanged. Only the first rule separator splits; any
// later occurrence stays inside the body.
func Format(text string) string {
	head, body, ok := strings.Cut(text, RuleSeparator)
	if !ok {
		return text
	}

	literals := strings.Split(body, LiteralSeparator)
	for i, lit := range literals {
		literals[i] = strings.TrimSpace(lit)
	}

	return head + RuleSeparator + "\n" + strings.Join(literals, LiteralSeparator+"\n")
}
