// Package memory provides an in-memory congress.Client.
//
// The backend holds a Snapshot and answers every facade call from it. Calls
// can be made to fail on demand with FailOn, which is how aggregation tests
// exercise partial-failure handling.
package memory

import (
	"context"
	"fmt"
	"sync"

	"congress-hq/dashboard/pkg/congress"
)

// Backend is an in-memory congress.Client.
type Backend struct {
	mu       sync.RWMutex
	snap     Snapshot
	failures map[failureKey]error
}

type failureKey struct {
	op     string
	target string
}

var _ congress.Client = (*Backend)(nil)

// New creates a backend serving the given snapshot.
func New(snap Snapshot) *Backend {
	return &Backend{
		snap:     snap,
		failures: make(map[failureKey]error),
	}
}

// Replace swaps the served snapshot.
func (b *Backend) Replace(snap Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = snap
}

// Snapshot returns the served snapshot.
func (b *Backend) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap
}

// FailOn makes the operation op fail with err whenever it addresses target.
// An empty target matches every call of op. Table-scoped calls are addressed
// as "<owner>/<table>".
func (b *Backend) FailOn(op, target string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[failureKey{op: op, target: target}] = err
}

// ClearFailures removes all injected failures.
func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[failureKey]error)
}

// fail returns the injected error for op/target, if any. Caller holds mu.
func (b *Backend) fail(op, target string) error {
	if err, ok := b.failures[failureKey{op: op, target: target}]; ok {
		return congress.NewBackendError(op, target, err)
	}
	if err, ok := b.failures[failureKey{op: op}]; ok {
		return congress.NewBackendError(op, target, err)
	}
	return nil
}

func notFound(op, target string) error {
	return congress.NewBackendError(op, target, fmt.Errorf("%s: %w", target, congress.ErrNotFound))
}

func (b *Backend) policy(name string) *PolicyData {
	for i := range b.snap.Policies {
		p := &b.snap.Policies[i]
		if p.Name == name || (p.ID != "" && p.ID == name) {
			return p
		}
	}
	return nil
}

func (b *Backend) datasource(key string) *DataSourceData {
	for i := range b.snap.DataSources {
		ds := &b.snap.DataSources[i]
		if ds.ID == key || ds.Name == key {
			return ds
		}
	}
	return nil
}

func findTable(tables []TableData, name string) *TableData {
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i]
		}
	}
	return nil
}

func copyRows(rows []congress.Row) []congress.Row {
	out := make([]congress.Row, len(rows))
	for i, r := range rows {
		out[i] = congress.Row{ID: r.ID, Data: append([]string(nil), r.Data...)}
	}
	return out
}

// ListPolicies implements congress.PolicyReader.
func (b *Backend) ListPolicies(ctx context.Context) ([]congress.Policy, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.fail(congress.OpListPolicies, ""); err != nil {
		return nil, err
	}
	out := make([]congress.Policy, len(b.snap.Policies))
	for i, p := range b.snap.Policies {
		out[i] = p.Policy
		out[i].Rules = nil
	}
	return out, nil
}

// ListRules implements congress.PolicyReader.
func (b *Backend) ListRules(ctx context.Context, policy string) ([]congress.Rule, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.fail(congress.OpListRules, policy); err != nil {
		return nil, err
	}
	p := b.policy(policy)
	if p == nil {
		return nil, notFound(congress.OpListRules, policy)
	}
	return append([]congress.Rule(nil), p.Rules...), nil
}

// ListPolicyTables implements congress.PolicyReader.
func (b *Backend) ListPolicyTables(ctx context.Context, policy string) ([]congress.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.fail(congress.OpListPolicyTables, policy); err != nil {
		return nil, err
	}
	p := b.policy(policy)
	if p == nil {
		return nil, notFound(congress.OpListPolicyTables, policy)
	}
	out := make([]congress.Table, len(p.Tables))
	for i, t := range p.Tables {
		out[i] = congress.Table{ID: t.Name}
	}
	return out, nil
}

// ListPolicyRows implements congress.PolicyReader.
func (b *Backend) ListPolicyRows(ctx context.Context, policy, table string) ([]congress.Row, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	target := policy + "/" + table
	if err := b.fail(congress.OpListPolicyRows, target); err != nil {
		return nil, err
	}
	p := b.policy(policy)
	if p == nil {
		return nil, notFound(congress.OpListPolicyRows, policy)
	}
	t := findTable(p.Tables, table)
	if t == nil {
		return nil, notFound(congress.OpListPolicyRows, target)
	}
	return copyRows(t.Rows), nil
}

// ListDataSources implements congress.DataSourceReader.
func (b *Backend) ListDataSources(ctx context.Context) ([]congress.DataSource, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.fail(congress.OpListDataSources, ""); err != nil {
		return nil, err
	}
	out := make([]congress.DataSource, len(b.snap.DataSources))
	for i, ds := range b.snap.DataSources {
		out[i] = ds.DataSource
	}
	return out, nil
}

// ListDataSourceTables implements congress.DataSourceReader.
func (b *Backend) ListDataSourceTables(ctx context.Context, datasource string) ([]congress.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.fail(congress.OpListDataSourceTables, datasource); err != nil {
		return nil, err
	}
	ds := b.datasource(datasource)
	if ds == nil {
		return nil, notFound(congress.OpListDataSourceTables, datasource)
	}
	out := make([]congress.Table, len(ds.Tables))
	for i, t := range ds.Tables {
		out[i] = congress.Table{ID: t.Name}
	}
	return out, nil
}

// ListDataSourceRows implements congress.DataSourceReader.
func (b *Backend) ListDataSourceRows(ctx context.Context, datasource, table string) ([]congress.Row, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	target := datasource + "/" + table
	if err := b.fail(congress.OpListDataSourceRows, target); err != nil {
		return nil, err
	}
	ds := b.datasource(datasource)
	if ds == nil {
		return nil, notFound(congress.OpListDataSourceRows, datasource)
	}
	t := findTable(ds.Tables, table)
	if t == nil {
		return nil, notFound(congress.OpListDataSourceRows, target)
	}
	return copyRows(t.Rows), nil
}

// GetDataSourceSchema implements congress.DataSourceReader.
func (b *Backend) GetDataSourceSchema(ctx context.Context, datasource string) ([]congress.TableSchema, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.fail(congress.OpGetDataSourceSchema, datasource); err != nil {
		return nil, err
	}
	ds := b.datasource(datasource)
	if ds == nil {
		return nil, notFound(congress.OpGetDataSourceSchema, datasource)
	}
	out := make([]congress.TableSchema, len(ds.Tables))
	for i, t := range ds.Tables {
		out[i] = congress.TableSchema{
			TableID: t.Name,
			Columns: append([]congress.Column(nil), t.Columns...),
		}
	}
	return out, nil
}

// GetDataSourceTableSchema implements congress.DataSourceReader.
func (b *Backend) GetDataSourceTableSchema(ctx context.Context, datasource, table string) (*congress.TableSchema, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	target := datasource + "/" + table
	if err := b.fail(congress.OpGetDataSourceTableSchema, target); err != nil {
		return nil, err
	}
	ds := b.datasource(datasource)
	if ds == nil {
		return nil, notFound(congress.OpGetDataSourceTableSchema, datasource)
	}
	t := findTable(ds.Tables, table)
	if t == nil {
		return nil, notFound(congress.OpGetDataSourceTableSchema, target)
	}
	return &congress.TableSchema{
		TableID: t.Name,
		Columns: append([]congress.Column(nil), t.Columns...),
	}, nil
}

// GetDataSourceStatus implements congress.DataSourceReader.
func (b *Backend) GetDataSourceStatus(ctx context.Context, datasource string) (*congress.DataSourceStatus, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.fail(congress.OpGetDataSourceStatus, datasource); err != nil {
		return nil, err
	}
	ds := b.datasource(datasource)
	if ds == nil || ds.Status == nil {
		return nil, notFound(congress.OpGetDataSourceStatus, datasource)
	}
	status := *ds.Status
	if status.Service == "" {
		status.Service = ds.Name
	}
	return &status, nil
}

// ListDrivers implements congress.DataSourceReader.
func (b *Backend) ListDrivers(ctx context.Context) ([]congress.Driver, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.fail(congress.OpListDrivers, ""); err != nil {
		return nil, err
	}
	return append([]congress.Driver(nil), b.snap.Drivers...), nil
}

// ListLibraryPolicies implements congress.LibraryReader.
func (b *Backend) ListLibraryPolicies(ctx context.Context) ([]congress.Policy, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.fail(congress.OpListLibraryPolicies, ""); err != nil {
		return nil, err
	}
	out := make([]congress.Policy, len(b.snap.Library))
	for i, p := range b.snap.Library {
		out[i] = p
		out[i].Rules = append([]congress.Rule(nil), p.Rules...)
	}
	return out, nil
}

// GetLibraryPolicy implements congress.LibraryReader.
func (b *Backend) GetLibraryPolicy(ctx context.Context, name string) (*congress.Policy, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.fail(congress.OpGetLibraryPolicy, name); err != nil {
		return nil, err
	}
	for _, p := range b.snap.Library {
		if p.Name == name || p.ID == name {
			out := p
			out.Rules = append([]congress.Rule(nil), p.Rules...)
			return &out, nil
		}
	}
	return nil, notFound(congress.OpGetLibraryPolicy, name)
}
