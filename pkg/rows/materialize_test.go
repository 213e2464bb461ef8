package rows

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"congress-hq/dashboard/pkg/congress"
)

func makeRows(width int, values ...string) []congress.Row {
	var rows []congress.Row
	for i := 0; i+width <= len(values); i += width {
		rows = append(rows, congress.Row{Data: values[i : i+width]})
	}
	return rows
}

func TestMaterialize_Named(t *testing.T) {
	rows := makeRows(4,
		"a1", "b1", "c1", "d1",
		"a2", "b2", "c2", "d2",
		"a3", "b3", "c3", "d3",
	)
	columns := []string{"a", "b", "c", "d"}

	table, err := Materialize(rows, columns)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	if table.Layout.Kind() != KindNamed {
		t.Fatalf("layout kind = %q, want %q", table.Layout.Kind(), KindNamed)
	}
	if table.Len() != 3 {
		t.Fatalf("record count = %d, want 3", table.Len())
	}
	for i, rec := range table.Records {
		if rec.ID != []string{"0", "1", "2"}[i] {
			t.Errorf("record[%d].ID = %q, want %d", i, rec.ID, i)
		}
		if len(rec.Fields) != 4 {
			t.Fatalf("record[%d] has %d fields, want 4", i, len(rec.Fields))
		}
		for j, f := range rec.Fields {
			if f.Name != columns[j] || f.Value != rows[i].Data[j] {
				t.Errorf("record[%d].Fields[%d] = %+v, want {%s %s}", i, j, f, columns[j], rows[i].Data[j])
			}
		}
	}
}

func TestMaterialize_PositionalFallback(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{"no resolved columns", nil},
		{"arity mismatch", []string{"x", "y", "z"}},
	}

	rows := makeRows(2, "1", "2", "3", "4")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Materialize(rows, tt.columns)
			if err != nil {
				t.Fatalf("Materialize() error = %v", err)
			}
			if !table.Layout.IsPositional() {
				t.Fatalf("layout kind = %q, want positional", table.Layout.Kind())
			}
			want := []string{"0", "1"}
			if got := table.Layout.Columns(); !reflect.DeepEqual(got, want) {
				t.Errorf("columns = %v, want %v", got, want)
			}
			for i, rec := range table.Records {
				for j, f := range rec.Fields {
					if f.Name != want[j] {
						t.Errorf("record[%d] field %d named %q, want %q", i, j, f.Name, want[j])
					}
				}
			}
		})
	}
}

func TestMaterialize_NoRows(t *testing.T) {
	table, err := Materialize(nil, []string{"a"})
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if !table.Layout.IsPositional() || table.Layout.Width() != 0 {
		t.Errorf("layout = %v/%d, want positional width 0", table.Layout.Kind(), table.Layout.Width())
	}
	if table.Len() != 0 {
		t.Errorf("record count = %d, want 0", table.Len())
	}
}

func TestMaterialize_BackendIDKept(t *testing.T) {
	rows := []congress.Row{
		{ID: "r-7", Data: []string{"x"}},
		{Data: []string{"y"}},
	}

	table, err := Materialize(rows, []string{"v"})
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if table.Records[0].ID != "r-7" || table.Records[1].ID != "1" {
		t.Errorf("ids = %q, %q, want r-7, 1", table.Records[0].ID, table.Records[1].ID)
	}
}

func TestMaterialize_ShortRow(t *testing.T) {
	rows := []congress.Row{
		{Data: []string{"a", "b"}},
		{Data: []string{"c"}},
	}

	_, err := Materialize(rows, []string{"x", "y"})

	var wErr *RowWidthError
	if !errors.As(err, &wErr) {
		t.Fatalf("error = %v, want *RowWidthError", err)
	}
	if wErr.Index != 1 || wErr.Want != 2 || wErr.Got != 1 {
		t.Errorf("RowWidthError = %+v", wErr)
	}
}

func TestMaterialize_LongRow(t *testing.T) {
	rows := []congress.Row{
		{Data: []string{"a", "b"}},
		{Data: []string{"c", "d", "extra"}},
	}

	table, err := Materialize(rows, []string{"x", "y"})

	var wErr *RowWidthError
	if !errors.As(err, &wErr) {
		t.Fatalf("error = %v, want *RowWidthError (table %+v)", err, table)
	}
	if wErr.Index != 1 || wErr.Want != 2 || wErr.Got != 3 {
		t.Errorf("RowWidthError = %+v", wErr)
	}
}

func TestRecord_MarshalJSON(t *testing.T) {
	rec := Record{ID: "0", Fields: []Field{{Name: "b", Value: "2"}, {Name: "a", Value: "1"}}}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"id":"0","values":{"b":"2","a":"1"}}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestLayout_JSON(t *testing.T) {
	data, err := json.Marshal(Positional(2))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"kind":"positional","columns":["0","1"]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var l Layout
	if err := json.Unmarshal([]byte(`{"kind":"named","columns":["a"]}`), &l); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if l.Kind() != KindNamed || l.Width() != 1 {
		t.Errorf("Unmarshal() = %v/%d", l.Kind(), l.Width())
	}
}
