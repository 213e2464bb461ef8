package snapshot

import (
	"context"
	"fmt"

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/congress/memory"
)

// Capture reads the complete state of a backend. Any failed call aborts the
// capture, except a missing data source status, which is recorded as absent.
func Capture(ctx context.Context, c congress.Client) (memory.Snapshot, error) {
	var snap memory.Snapshot

	policies, err := c.ListPolicies(ctx)
	if err != nil {
		return snap, fmt.Errorf("capture policies: %w", err)
	}
	for _, p := range policies {
		pd, err := capturePolicy(ctx, c, p)
		if err != nil {
			return snap, err
		}
		snap.Policies = append(snap.Policies, pd)
	}

	datasources, err := c.ListDataSources(ctx)
	if err != nil {
		return snap, fmt.Errorf("capture datasources: %w", err)
	}
	for _, ds := range datasources {
		dd, err := captureDataSource(ctx, c, ds)
		if err != nil {
			return snap, err
		}
		snap.DataSources = append(snap.DataSources, dd)
	}

	if snap.Drivers, err = c.ListDrivers(ctx); err != nil {
		return snap, fmt.Errorf("capture drivers: %w", err)
	}
	if snap.Library, err = c.ListLibraryPolicies(ctx); err != nil {
		return snap, fmt.Errorf("capture library: %w", err)
	}

	return snap, nil
}

func capturePolicy(ctx context.Context, c congress.Client, p congress.Policy) (memory.PolicyData, error) {
	pd := memory.PolicyData{Policy: p}

	rules, err := c.ListRules(ctx, p.Name)
	if err != nil {
		return pd, fmt.Errorf("capture rules of %q: %w", p.Name, err)
	}
	pd.Rules = rules

	tables, err := c.ListPolicyTables(ctx, p.Name)
	if err != nil {
		return pd, fmt.Errorf("capture tables of %q: %w", p.Name, err)
	}
	for _, t := range tables {
		name := t.DisplayName()
		rows, err := c.ListPolicyRows(ctx, p.Name, name)
		if err != nil {
			return pd, fmt.Errorf("capture rows of %s/%s: %w", p.Name, name, err)
		}
		pd.Tables = append(pd.Tables, memory.TableData{Name: name, Rows: rows})
	}
	return pd, nil
}

func captureDataSource(ctx context.Context, c congress.Client, ds congress.DataSource) (memory.DataSourceData, error) {
	dd := memory.DataSourceData{DataSource: ds}

	schemas, err := c.GetDataSourceSchema(ctx, ds.ID)
	if err != nil {
		return dd, fmt.Errorf("capture schema of %q: %w", ds.Name, err)
	}
	columns := make(map[string][]congress.Column, len(schemas))
	for _, s := range schemas {
		columns[s.TableID] = s.Columns
	}

	tables, err := c.ListDataSourceTables(ctx, ds.ID)
	if err != nil {
		return dd, fmt.Errorf("capture tables of %q: %w", ds.Name, err)
	}
	for _, t := range tables {
		name := t.DisplayName()
		rows, err := c.ListDataSourceRows(ctx, ds.ID, name)
		if err != nil {
			return dd, fmt.Errorf("capture rows of %s/%s: %w", ds.Name, name, err)
		}
		dd.Tables = append(dd.Tables, memory.TableData{Name: name, Columns: columns[name], Rows: rows})
	}

	status, err := c.GetDataSourceStatus(ctx, ds.ID)
	switch {
	case err == nil:
		dd.Status = status
	case congress.IsNotFound(err):
	default:
		return dd, fmt.Errorf("capture status of %q: %w", ds.Name, err)
	}

	return dd, nil
}
