package rules

import "strings"

// IsQualified reports whether a policy table name is service-derived,
// i.e. contains the table qualifier.
func IsQualified(table string) bool {
	return strings.Contains(table, TableSeparator)
}

// SplitQualified splits a service-derived table name "svc:tbl" into its
// originating service and the true table name. It reports false for
// unqualified names.
func SplitQualified(table string) (service, name string, ok bool) {
	return strings.Cut(table, TableSeparator)
}
