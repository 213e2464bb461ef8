package rows

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"congress-hq/dashboard/pkg/congress"
)

// Field is one named value of a record.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is one materialized row.
type Record struct {
	// ID is the backend row id, or the row's zero-based position in its
	// materialization when the backend supplied none.
	ID string

	// Fields are in layout column order.
	Fields []Field
}

// Get returns the value of the named field.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON encodes the record as {"id": ..., "values": {...}} keeping
// field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"id":`)
	buf.Write(id)
	buf.WriteString(`,"values":{`)
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// Table is a materialized table: one layout and the records shaped by it.
// It is built per request and never shared.
type Table struct {
	Layout  Layout   `json:"layout"`
	Records []Record `json:"records"`
}

// Len returns the number of records.
func (t Table) Len() int {
	return len(t.Records)
}

// RowWidthError reports a row whose width does not match the table layout.
type RowWidthError struct {
	Index int
	Want  int
	Got   int
}

// Error implements the error interface.
func (e *RowWidthError) Error() string {
	return fmt.Sprintf("row %d has %d values, layout needs %d", e.Index, e.Got, e.Want)
}

// Width returns the field count of the first row, or 0 for no rows.
func Width(rows []congress.Row) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0].Data)
}

// Materialize converts rows into named records using the resolved columns.
// The layout is chosen once from the first row's width (see Choose). A row
// whose width differs from the layout is an error.
func Materialize(rows []congress.Row, columns []string) (Table, error) {
	layout := Choose(columns, Width(rows))
	return MaterializeWith(rows, layout)
}

// MaterializeWith converts rows using an explicit layout.
func MaterializeWith(rows []congress.Row, layout Layout) (Table, error) {
	names := layout.columns
	records := make([]Record, len(rows))

	for i, row := range rows {
		if len(row.Data) != len(names) {
			return Table{}, &RowWidthError{Index: i, Want: len(names), Got: len(row.Data)}
		}

		fields := make([]Field, len(names))
		for j, name := range names {
			fields[j] = Field{Name: name, Value: row.Data[j]}
		}

		id := row.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		records[i] = Record{ID: id, Fields: fields}
	}

	return Table{Layout: layout, Records: records}, nil
}
