// Package rows materializes positional backend rows into named records.
//
// A materialized table carries an explicit Layout: Named when the resolved
// column list matches the row width, Positional otherwise. Positional
// layouts name columns "0" .. "width-1". The layout applies to the whole row
// set; one table never mixes named and positional records.
package rows

import (
	"encoding/json"
	"strconv"
)

// LayoutKind distinguishes the two layout variants.
type LayoutKind string

const (
	// KindNamed uses resolved column names.
	KindNamed LayoutKind = "named"

	// KindPositional uses synthesized numeric column names. It is the
	// degraded presentation for unresolved schemas and arity mismatches.
	KindPositional LayoutKind = "positional"
)

// Layout is the column layout of one materialized table.
type Layout struct {
	kind    LayoutKind
	columns []string
}

// Named returns a layout over the given column names.
func Named(columns []string) Layout {
	return Layout{kind: KindNamed, columns: append([]string(nil), columns...)}
}

// Positional returns a layout of width numbered columns.
func Positional(width int) Layout {
	columns := make([]string, width)
	for i := range columns {
		columns[i] = strconv.Itoa(i)
	}
	return Layout{kind: KindPositional, columns: columns}
}

// Choose picks the layout for rows of the given width against the resolved
// columns. Named requires a non-empty column list of exactly that width.
func Choose(columns []string, width int) Layout {
	if len(columns) > 0 && len(columns) == width {
		return Named(columns)
	}
	return Positional(width)
}

// Kind returns the layout variant.
func (l Layout) Kind() LayoutKind {
	if l.kind == "" {
		return KindPositional
	}
	return l.kind
}

// Columns returns the column names, in order.
func (l Layout) Columns() []string {
	return append([]string(nil), l.columns...)
}

// Width returns the number of columns.
func (l Layout) Width() int {
	return len(l.columns)
}

// IsPositional reports whether the layout is the positional fallback.
func (l Layout) IsPositional() bool {
	return l.Kind() == KindPositional
}

type layoutJSON struct {
	Kind    LayoutKind `json:"kind"`
	Columns []string   `json:"columns"`
}

// MarshalJSON implements json.Marshaler.
func (l Layout) MarshalJSON() ([]byte, error) {
	columns := l.columns
	if columns == nil {
		columns = []string{}
	}
	return json.Marshal(layoutJSON{Kind: l.Kind(), Columns: columns})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var v layoutJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	l.kind = v.Kind
	l.columns = v.Columns
	return nil
}
