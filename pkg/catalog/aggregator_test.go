package catalog

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/congress/memory"
)

type fakeRecorder struct {
	mu     sync.Mutex
	builds []int
	skips  []string
}

func (f *fakeRecorder) RecordCatalogBuild(withColumns bool, entries int, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds = append(f.builds, entries)
}

func (f *fakeRecorder) RecordCatalogSkip(kind, op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skips = append(f.skips, kind+"/"+op)
}

func newTestBackend() *memory.Backend {
	return memory.New(memory.Snapshot{
		Policies: []memory.PolicyData{
			{
				Policy: congress.Policy{
					Name: "classification",
					Rules: []congress.Rule{
						{Text: "error(vm, reason) :- nova:servers(vm, name, status), bad(status, reason)"},
						{Text: "bad(s, r) :- flagged(s, r)"},
					},
				},
				Tables: []memory.TableData{
					{Name: "error"},
					{Name: "bad"},
					{Name: "nova:servers"},
					{Name: "nova:flavors"},
				},
			},
			{
				Policy: congress.Policy{Name: "action"},
				Tables: []memory.TableData{{Name: "execute"}},
			},
		},
		DataSources: []memory.DataSourceData{
			{
				DataSource: congress.DataSource{ID: "ds-nova", Name: "nova"},
				Tables: []memory.TableData{
					{Name: "servers", Columns: []congress.Column{{Name: "id"}, {Name: "name"}, {Name: "status"}}},
					{Name: "flavors", Columns: []congress.Column{{Name: "id"}, {Name: "ram"}}},
				},
			},
			{
				DataSource: congress.DataSource{ID: "ds-neutron", Name: "neutronv2"},
				Tables: []memory.TableData{
					{Name: "ports", Columns: []congress.Column{{Name: "id"}}},
				},
			},
		},
	})
}

func TestBuild(t *testing.T) {
	a := NewAggregator(newTestBackend())

	c := a.Build(context.Background())

	wantOrder := []string{"classification", "action", "nova", "neutronv2"}
	if got := c.Datasources(); !reflect.DeepEqual(got, wantOrder) {
		t.Fatalf("Datasources() = %v, want %v", got, wantOrder)
	}

	tables, _ := c.Tables("classification")
	if want := []string{"error", "bad"}; !reflect.DeepEqual(tables, want) {
		t.Errorf("classification tables = %v, want %v (qualified tables excluded)", tables, want)
	}

	tables, _ = c.Tables("nova")
	if want := []string{"servers", "flavors"}; !reflect.DeepEqual(tables, want) {
		t.Errorf("nova tables = %v, want %v", tables, want)
	}
}

func TestBuild_PolicyTableFailureIsContained(t *testing.T) {
	backend := newTestBackend()
	backend.FailOn(congress.OpListPolicyTables, "classification", errors.New("timeout"))
	rec := &fakeRecorder{}
	a := NewAggregator(backend, WithRecorder(rec))

	c := a.Build(context.Background())

	if _, ok := c.Entry("classification"); ok {
		t.Error("failed policy should be omitted")
	}
	want := []string{"action", "nova", "neutronv2"}
	if got := c.Datasources(); !reflect.DeepEqual(got, want) {
		t.Errorf("Datasources() = %v, want %v", got, want)
	}
	if len(rec.skips) != 1 || rec.skips[0] != "policy/"+congress.OpListPolicyTables {
		t.Errorf("recorded skips = %v", rec.skips)
	}
	if len(rec.builds) != 1 || rec.builds[0] != 3 {
		t.Errorf("recorded builds = %v, want [3]", rec.builds)
	}
}

func TestBuild_ServiceTableFailureIsContained(t *testing.T) {
	backend := newTestBackend()
	backend.FailOn(congress.OpListDataSourceTables, "ds-nova", errors.New("driver down"))
	a := NewAggregator(backend)

	c := a.Build(context.Background())

	want := []string{"classification", "action", "neutronv2"}
	if got := c.Datasources(); !reflect.DeepEqual(got, want) {
		t.Errorf("Datasources() = %v, want %v", got, want)
	}
}

func TestBuild_ListingFailuresEmptyOneHalf(t *testing.T) {
	tests := []struct {
		name string
		op   string
		want []string
	}{
		{"policies unavailable", congress.OpListPolicies, []string{"nova", "neutronv2"}},
		{"data sources unavailable", congress.OpListDataSources, []string{"classification", "action"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newTestBackend()
			backend.FailOn(tt.op, "", errors.New("unreachable"))

			c := NewAggregator(backend).Build(context.Background())

			if got := c.Datasources(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Datasources() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildWithColumns(t *testing.T) {
	a := NewAggregator(newTestBackend())

	c := a.BuildWithColumns(context.Background())

	tests := []struct {
		datasource string
		table      string
		want       []string
	}{
		{"classification", "error", []string{"vm", "reason"}},
		{"classification", "bad", []string{"s", "r"}},
		{"action", "execute", []string{}},
		{"nova", "servers", []string{"id", "name", "status"}},
		{"neutronv2", "ports", []string{"id"}},
	}

	for _, tt := range tests {
		got, ok := c.Columns(tt.datasource, tt.table)
		if !ok {
			t.Errorf("Columns(%q, %q) not found", tt.datasource, tt.table)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Columns(%q, %q) = %#v, want %#v", tt.datasource, tt.table, got, tt.want)
		}
	}
}

func TestBuildWithColumns_FailuresAreContained(t *testing.T) {
	backend := newTestBackend()
	backend.FailOn(congress.OpListRules, "classification", errors.New("boom"))
	backend.FailOn(congress.OpGetDataSourceSchema, "ds-neutron", errors.New("boom"))

	c := NewAggregator(backend).BuildWithColumns(context.Background())

	want := []string{"action", "nova"}
	if got := c.Datasources(); !reflect.DeepEqual(got, want) {
		t.Errorf("Datasources() = %v, want %v", got, want)
	}
}

func TestBuildWithColumns_RecordsEverySkip(t *testing.T) {
	backend := newTestBackend()
	rec := &fakeRecorder{}

	NewAggregator(backend, WithRecorder(rec)).BuildWithColumns(context.Background())
	if len(rec.skips) != 0 {
		t.Errorf("recorded skips = %v, want none", rec.skips)
	}

	backend.FailOn(congress.OpListRules, "classification", errors.New("boom"))
	backend.FailOn(congress.OpGetDataSourceSchema, "ds-neutron", errors.New("boom"))
	rec = &fakeRecorder{}

	c := NewAggregator(backend, WithRecorder(rec)).BuildWithColumns(context.Background())

	want := []string{
		"policy/" + congress.OpListRules,
		"service/" + congress.OpGetDataSourceSchema,
	}
	if !reflect.DeepEqual(rec.skips, want) {
		t.Errorf("recorded skips = %v, want %v", rec.skips, want)
	}
	if len(rec.builds) != 1 || rec.builds[0] != len(c.Entries) {
		t.Errorf("recorded builds = %v, want [%d]", rec.builds, len(c.Entries))
	}
}
