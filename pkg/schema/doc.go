// Package schema resolves the ordered column names of a table.
//
// Service tables, and service tables embedded in a policy under a qualified
// name ("nova:servers"), carry a driver-reported schema which is returned
// verbatim. Policy tables have no declared schema: their columns are
// inferred from the head of the first rule, in backend order, that defines
// the table. This mirrors the policy engine's own first-match head
// resolution, so a table defined by several rules of different arity shows
// the columns of the first one.
//
// An unknown policy schema is not an error. It resolves to an empty column
// list, which the row materializer turns into positional columns.
package schema
