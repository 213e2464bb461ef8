package rules

import "strings"

// Head is the parsed head literal of a rule.
type Head struct {
	// Table is the head literal name, the table the rule defines.
	Table string

	// Columns are the head arguments, trimmed, in order.
	Columns []string
}

// ParseHead parses the head of a rule. It reports false when the text has no
// rule separator or the head has no "(" followed later by ")".
func ParseHead(text string) (Head, bool) {
	head, _, ok := strings.Cut(text, RuleSeparator)
	if !ok {
		return Head{}, false
	}
	head = strings.TrimSpace(head)

	open := strings.Index(head, "(")
	if open < 0 {
		return Head{}, false
	}
	closing := strings.Index(head, ")")
	if closing < open {
		return Head{}, false
	}

	args := strings.Split(head[open+1:closing], ",")
	columns := make([]string, len(args))
	for i, a := range args {
		columns[i] = strings.TrimSpace(a)
	}

	return Head{
		Table:   strings.TrimSpace(head[:open]),
		Columns: columns,
	}, true
}

// Defines reports whether the rule's head literal defines table, i.e. the
// trimmed head starts with the table name immediately followed by "(".
func Defines(text, table string) bool {
	head, _, ok := strings.Cut(text, RuleSeparator)
	if !ok {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(head), table+"(")
}
