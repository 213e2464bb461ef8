package monitor

import (
	"sort"

	"congress-hq/dashboard/pkg/history"
	"congress-hq/dashboard/pkg/violations"
)

// Change is a violation count that differs between two scans.
type Change struct {
	Policy string `json:"policy"`
	Table  string `json:"table"`
	Before int    `json:"before"`
	After  int    `json:"after"`
}

// Increased reports whether the count went up.
func (c Change) Increased() bool {
	return c.After > c.Before
}

// Diff compares the violation counts of two scans. prev may be nil, in which
// case every count in cur is a change from zero. Changes are ordered by
// policy then table.
func Diff(prev, cur *history.Scan) []Change {
	before := countsOf(prev)
	after := countsOf(cur)

	var changes []Change
	for policy, tables := range after {
		for table, n := range tables {
			if was := before[policy][table]; was != n {
				changes = append(changes, Change{Policy: policy, Table: table, Before: was, After: n})
			}
		}
	}
	for policy, tables := range before {
		for table, n := range tables {
			if _, still := after[policy][table]; !still {
				changes = append(changes, Change{Policy: policy, Table: table, Before: n})
			}
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Policy != changes[j].Policy {
			return changes[i].Policy < changes[j].Policy
		}
		return changes[i].Table < changes[j].Table
	})
	return changes
}

func countsOf(scan *history.Scan) map[string]map[string]int {
	out := make(map[string]map[string]int)
	if scan == nil {
		return out
	}
	for _, sum := range scan.Summaries {
		for _, table := range []string{violations.TableError, violations.TableWarning} {
			if n := sum.Counts[table]; n > 0 {
				if out[sum.Name] == nil {
					out[sum.Name] = make(map[string]int, 2)
				}
				out[sum.Name][table] = n
			}
		}
	}
	return out
}
