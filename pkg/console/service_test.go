package console

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/congress/memory"
	"congress-hq/dashboard/pkg/rows"
	"congress-hq/dashboard/pkg/schema"
)

func newTestBackend() *memory.Backend {
	return memory.New(memory.Snapshot{
		Policies: []memory.PolicyData{
			{
				Policy: congress.Policy{ID: "p-1", Name: "classification"},
				Tables: []memory.TableData{
					{Name: "error", Rows: []congress.Row{
						{Data: []string{"vm-1", "bad image"}},
						{Data: []string{"vm-2", "no owner"}},
					}},
					{Name: "ragged", Rows: []congress.Row{
						{Data: []string{"a", "b", "c"}},
					}},
					{Name: "nova:servers", Rows: []congress.Row{
						{Data: []string{"vm-1", "ACTIVE"}},
					}},
					{Name: "glance:images", Rows: []congress.Row{
						{Data: []string{"img-1"}},
					}},
				},
			},
		},
		DataSources: []memory.DataSourceData{
			{
				DataSource: congress.DataSource{ID: "ds-nova", Name: "nova", Driver: "nova", Enabled: true},
				Status:     &congress.DataSourceStatus{Initialized: true, NumberOfUpdates: 4, LastUpdated: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
				Tables: []memory.TableData{
					{
						Name:    "servers",
						Columns: []congress.Column{{Name: "id"}, {Name: "status"}},
						Rows: []congress.Row{
							{Data: []string{"vm-1", "ACTIVE"}},
							{Data: []string{"vm-2", "SHUTOFF"}},
						},
					},
					{Name: "flavors"},
				},
			},
			{
				DataSource: congress.DataSource{ID: "ds-neutron", Name: "neutronv2", Driver: "neutronv2"},
				Status:     &congress.DataSourceStatus{Initialized: false},
			},
		},
		Drivers: []congress.Driver{{ID: "nova"}, {ID: "neutronv2"}},
		Library: []congress.Policy{
			{Name: "disallowed-images", ID: "None", Rules: []congress.Rule{
				{Text: "warning(vm) :- nova:servers(id=vm, image_id=img), not approved(img)"},
			}},
		},
	})
}

func withRules(b *memory.Backend) *memory.Backend {
	snap := b.Snapshot()
	snap.Policies[0].Rules = []congress.Rule{
		{ID: "r-1", Text: "error(vm, reason) :- nova:servers(id=vm), bad(vm, reason)"},
	}
	b.Replace(snap)
	return b
}

func TestTableView_PolicyTable(t *testing.T) {
	s := NewService(withRules(newTestBackend()), nil)

	view, err := s.TableView(context.Background(), schema.OriginPolicy, "classification", "error")
	if err != nil {
		t.Fatalf("TableView() error = %v", err)
	}

	if view.Origin != schema.OriginPolicy {
		t.Errorf("Origin = %q, want policy", view.Origin)
	}
	if got := view.Layout.Columns(); !reflect.DeepEqual(got, []string{"vm", "reason"}) {
		t.Errorf("Columns() = %v, want [vm reason]", got)
	}
	if len(view.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(view.Records))
	}
	if v, _ := view.Records[1].Get("reason"); v != "no owner" {
		t.Errorf("record 1 reason = %q, want no owner", v)
	}
	if view.Records[1].ID != "1" {
		t.Errorf("record 1 ID = %q, want 1", view.Records[1].ID)
	}
}

func TestTableView_PolicyTableWithoutRulesIsPositional(t *testing.T) {
	s := NewService(newTestBackend(), nil)

	view, err := s.TableView(context.Background(), schema.OriginPolicy, "classification", "ragged")
	if err != nil {
		t.Fatalf("TableView() error = %v", err)
	}
	if !view.Layout.IsPositional() || view.Layout.Width() != 3 {
		t.Errorf("Layout = %v/%d, want positional width 3", view.Layout.Kind(), view.Layout.Width())
	}
	if got := view.Layout.Columns(); !reflect.DeepEqual(got, []string{"0", "1", "2"}) {
		t.Errorf("Columns() = %v", got)
	}
}

func TestTableView_ServiceDerived(t *testing.T) {
	s := NewService(newTestBackend(), nil)

	view, err := s.TableView(context.Background(), schema.OriginPolicy, "classification", "nova:servers")
	if err != nil {
		t.Fatalf("TableView() error = %v", err)
	}

	if view.Origin != schema.OriginServiceDerived {
		t.Errorf("Origin = %q, want service-derived", view.Origin)
	}
	if view.Ref.Owner != "ds-nova" || view.Ref.Table != "servers" {
		t.Errorf("Ref = %+v", view.Ref)
	}
	// Rows come from the policy, columns from the driver.
	if len(view.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(view.Records))
	}
	if v, _ := view.Records[0].Get("status"); v != "ACTIVE" {
		t.Errorf("status = %q, want ACTIVE", v)
	}
}

func TestTableView_UnknownServicePrefixStaysPolicy(t *testing.T) {
	s := NewService(newTestBackend(), nil)

	view, err := s.TableView(context.Background(), schema.OriginPolicy, "classification", "glance:images")
	if err != nil {
		t.Fatalf("TableView() error = %v", err)
	}
	if view.Origin != schema.OriginPolicy {
		t.Errorf("Origin = %q, want policy", view.Origin)
	}
	if !view.Layout.IsPositional() {
		t.Errorf("Layout kind = %v, want positional", view.Layout.Kind())
	}
}

func TestTableView_ServiceTable(t *testing.T) {
	s := NewService(newTestBackend(), nil)

	view, err := s.TableView(context.Background(), schema.OriginService, "nova", "servers")
	if err != nil {
		t.Fatalf("TableView() error = %v", err)
	}
	if view.Layout.Kind() != rows.KindNamed {
		t.Errorf("Layout kind = %v, want named", view.Layout.Kind())
	}
	if v, _ := view.Records[1].Get("status"); v != "SHUTOFF" {
		t.Errorf("record 1 status = %q, want SHUTOFF", v)
	}
}

func TestTableView_SchemaFailureDegrades(t *testing.T) {
	backend := newTestBackend()
	backend.FailOn(congress.OpGetDataSourceTableSchema, "", errors.New("driver down"))
	s := NewService(backend, nil)

	view, err := s.TableView(context.Background(), schema.OriginService, "nova", "servers")
	if err != nil {
		t.Fatalf("TableView() error = %v", err)
	}
	if !view.Layout.IsPositional() || view.Layout.Width() != 2 {
		t.Errorf("Layout = %v/%d, want positional width 2", view.Layout.Kind(), view.Layout.Width())
	}
}

func TestTableView_RowFailureIsReturned(t *testing.T) {
	backend := newTestBackend()
	injected := errors.New("timeout")
	backend.FailOn(congress.OpListDataSourceRows, "", injected)
	s := NewService(backend, nil)

	_, err := s.TableView(context.Background(), schema.OriginService, "nova", "servers")
	if !errors.Is(err, injected) {
		t.Errorf("TableView() error = %v, want %v", err, injected)
	}
}

func TestTableView_InvalidKind(t *testing.T) {
	s := NewService(newTestBackend(), nil)

	_, err := s.TableView(context.Background(), schema.OriginServiceDerived, "classification", "error")
	if !errors.Is(err, ErrInvalidKind) {
		t.Errorf("TableView() error = %v, want ErrInvalidKind", err)
	}
}

func TestDatasourceTables(t *testing.T) {
	s := NewService(newTestBackend(), nil)

	tables, err := s.DatasourceTables(context.Background(), "ds-nova")
	if err != nil {
		t.Fatalf("DatasourceTables() error = %v", err)
	}

	want := []DatasourceTable{
		{ID: "ds-nova-servers", TableID: "servers", Name: "servers", DatasourceID: "ds-nova"},
		{ID: "ds-nova-flavors", TableID: "flavors", Name: "flavors", DatasourceID: "ds-nova"},
	}
	if !reflect.DeepEqual(tables, want) {
		t.Errorf("DatasourceTables() = %+v, want %+v", tables, want)
	}
}

func TestDatasourceDetail(t *testing.T) {
	s := NewService(newTestBackend(), nil)

	tests := []struct {
		id    string
		state string
	}{
		{"ds-nova", StatusActive},
		{"ds-neutron", StatusNotActive},
	}
	for _, tt := range tests {
		detail, err := s.DatasourceDetail(context.Background(), tt.id)
		if err != nil {
			t.Fatalf("DatasourceDetail(%q) error = %v", tt.id, err)
		}
		if detail.State != tt.state {
			t.Errorf("DatasourceDetail(%q).State = %q, want %q", tt.id, detail.State, tt.state)
		}
	}

	if _, err := s.DatasourceDetail(context.Background(), "missing"); !congress.IsNotFound(err) {
		t.Errorf("DatasourceDetail(missing) error = %v, want not found", err)
	}
}

func TestDatasourceStatuses(t *testing.T) {
	s := NewService(newTestBackend(), nil)

	statuses, err := s.DatasourceStatuses(context.Background())
	if err != nil {
		t.Fatalf("DatasourceStatuses() error = %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("len = %d, want 2", len(statuses))
	}
	if statuses[0].Service != "nova" || statuses[0].NumberOfUpdates != 4 || !statuses[0].Initialized {
		t.Errorf("statuses[0] = %+v", statuses[0])
	}
	if statuses[1].Service != "neutronv2" || statuses[1].Driver != "neutronv2" {
		t.Errorf("statuses[1] = %+v", statuses[1])
	}
}

func TestDatasourceStatuses_FailurePropagates(t *testing.T) {
	backend := newTestBackend()
	backend.FailOn(congress.OpGetDataSourceStatus, "ds-neutron", errors.New("unreachable"))
	s := NewService(backend, nil)

	if _, err := s.DatasourceStatuses(context.Background()); err == nil {
		t.Error("DatasourceStatuses() error = nil, want status failure")
	}
}

func TestPolicyRules(t *testing.T) {
	s := NewService(withRules(newTestBackend()), nil)

	listed, err := s.PolicyRules(context.Background(), "classification")
	if err != nil {
		t.Fatalf("PolicyRules() error = %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("len = %d, want 1", len(listed))
	}
	want := "error(vm, reason) :-\nnova:servers(id=vm),\nbad(vm, reason)"
	if listed[0].FormattedText != want {
		t.Errorf("FormattedText = %q, want %q", listed[0].FormattedText, want)
	}
}

func TestLibrary(t *testing.T) {
	s := NewService(newTestBackend(), nil)
	ctx := context.Background()

	policies, err := s.LibraryPolicies(ctx)
	if err != nil {
		t.Fatalf("LibraryPolicies() error = %v", err)
	}
	if len(policies) != 1 || policies[0].ID != "disallowed-images" {
		t.Errorf("LibraryPolicies() = %+v, want name-derived id", policies)
	}
	if policies[0].FormattedRules[0].ID == "" {
		t.Error("library rule ID is empty, want synthesized id")
	}

	p, err := s.LibraryPolicy(ctx, "disallowed-images")
	if err != nil {
		t.Fatalf("LibraryPolicy() error = %v", err)
	}
	if len(p.FormattedRules) != 1 {
		t.Errorf("FormattedRules = %+v", p.FormattedRules)
	}

	drivers, err := s.Drivers(ctx)
	if err != nil || len(drivers) != 2 {
		t.Errorf("Drivers() = %v, %v", drivers, err)
	}
}
