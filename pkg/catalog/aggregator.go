package catalog

import (
	"context"
	"log/slog"
	"time"

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/rules"
	"congress-hq/dashboard/pkg/schema"
)

// Backend is the part of the facade the aggregator reads.
type Backend interface {
	congress.PolicyReader
	congress.DataSourceReader
}

// Recorder receives build outcomes. The metrics collector implements it.
type Recorder interface {
	RecordCatalogBuild(withColumns bool, entries int, duration time.Duration)
	RecordCatalogSkip(kind, op string)
}

type noopRecorder struct{}

func (noopRecorder) RecordCatalogBuild(bool, int, time.Duration) {}
func (noopRecorder) RecordCatalogSkip(string, string)            {}

// Aggregator builds catalogs.
type Aggregator struct {
	backend  Backend
	recorder Recorder
	logger   *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRecorder sets the build outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAggregator creates an aggregator over backend.
func NewAggregator(backend Backend, opts ...Option) *Aggregator {
	a := &Aggregator{
		backend:  backend,
		recorder: noopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "catalog.aggregator")
	return a
}

// Build lists every table of every policy and data source. Service-derived
// tables inside a policy are left out of the policy's entry; they appear
// under their data source.
func (a *Aggregator) Build(ctx context.Context) *Catalog {
	start := time.Now()

	c := &Catalog{}
	for _, p := range a.policies(ctx) {
		tables, ok := a.policyTables(ctx, p.Name)
		if !ok {
			continue
		}
		c.Entries = append(c.Entries, Entry{Datasource: p.Name, Kind: KindPolicy, Tables: tables})
	}
	for _, ds := range a.datasources(ctx) {
		tables, ok := a.serviceTables(ctx, ds)
		if !ok {
			continue
		}
		c.Entries = append(c.Entries, Entry{Datasource: ds.Name, Kind: KindService, Tables: tables})
	}

	a.recorder.RecordCatalogBuild(false, len(c.Entries), time.Since(start))
	return c
}

// BuildWithColumns is Build with the columns of every table resolved.
// Policy tables are resolved against one rule listing per policy; data
// source tables come from one driver schema call per data source.
func (a *Aggregator) BuildWithColumns(ctx context.Context) *Catalog {
	start := time.Now()

	c := &Catalog{}
	for _, p := range a.policies(ctx) {
		tables, ok := a.policyTables(ctx, p.Name)
		if !ok {
			continue
		}
		if !a.resolvePolicyColumns(ctx, p.Name, tables) {
			continue
		}
		c.Entries = append(c.Entries, Entry{Datasource: p.Name, Kind: KindPolicy, Tables: tables})
	}
	for _, ds := range a.datasources(ctx) {
		tables, ok := a.serviceSchema(ctx, ds)
		if !ok {
			continue
		}
		c.Entries = append(c.Entries, Entry{Datasource: ds.Name, Kind: KindService, Tables: tables})
	}

	a.recorder.RecordCatalogBuild(true, len(c.Entries), time.Since(start))
	return c
}

func (a *Aggregator) policies(ctx context.Context) []congress.Policy {
	policies, err := congress.ListPolicies(ctx, a.backend)
	if err != nil {
		a.logger.ErrorContext(ctx, "unable to list policies", "error", err)
		a.recorder.RecordCatalogSkip(string(KindPolicy), congress.OpListPolicies)
		return nil
	}
	return policies
}

func (a *Aggregator) datasources(ctx context.Context) []congress.DataSource {
	datasources, err := a.backend.ListDataSources(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "unable to list data sources", "error", err)
		a.recorder.RecordCatalogSkip(string(KindService), congress.OpListDataSources)
		return nil
	}
	return datasources
}

func (a *Aggregator) policyTables(ctx context.Context, policy string) ([]Table, bool) {
	listed, err := a.backend.ListPolicyTables(ctx, policy)
	if err != nil {
		a.logger.ErrorContext(ctx, "unable to get tables for policy",
			"policy", policy,
			"error", err,
		)
		a.recorder.RecordCatalogSkip(string(KindPolicy), congress.OpListPolicyTables)
		return nil, false
	}

	tables := make([]Table, 0, len(listed))
	for _, t := range listed {
		name := t.DisplayName()
		if rules.IsQualified(name) {
			continue
		}
		tables = append(tables, Table{Name: name})
	}
	return tables, true
}

func (a *Aggregator) resolvePolicyColumns(ctx context.Context, policy string, tables []Table) bool {
	policyRules, err := a.backend.ListRules(ctx, policy)
	if err != nil {
		a.logger.ErrorContext(ctx, "unable to get rules for policy",
			"policy", policy,
			"error", err,
		)
		a.recorder.RecordCatalogSkip(string(KindPolicy), congress.OpListRules)
		return false
	}

	// Qualified tables never reach here, so every column list comes from
	// the rule heads and needs no further backend call.
	for i := range tables {
		tables[i].Columns = schema.ColumnsFromRules(policyRules, tables[i].Name)
	}
	return true
}

func (a *Aggregator) serviceTables(ctx context.Context, ds congress.DataSource) ([]Table, bool) {
	listed, err := a.backend.ListDataSourceTables(ctx, ds.ID)
	if err != nil {
		a.logger.ErrorContext(ctx, "unable to get tables for data source",
			"datasource", ds.Name,
			"datasource_id", ds.ID,
			"error", err,
		)
		a.recorder.RecordCatalogSkip(string(KindService), congress.OpListDataSourceTables)
		return nil, false
	}

	tables := make([]Table, len(listed))
	for i, t := range listed {
		tables[i] = Table{Name: t.DisplayName()}
	}
	return tables, true
}

func (a *Aggregator) serviceSchema(ctx context.Context, ds congress.DataSource) ([]Table, bool) {
	schemas, err := a.backend.GetDataSourceSchema(ctx, ds.ID)
	if err != nil {
		a.logger.ErrorContext(ctx, "unable to get schema for data source",
			"datasource", ds.Name,
			"datasource_id", ds.ID,
			"error", err,
		)
		a.recorder.RecordCatalogSkip(string(KindService), congress.OpGetDataSourceSchema)
		return nil, false
	}

	tables := make([]Table, len(schemas))
	for i, s := range schemas {
		tables[i] = Table{Name: s.TableID, Columns: s.ColumnNames()}
	}
	return tables, true
}
