// Package console serves the read views of the policy engine admin console.
//
// A Service composes the schema resolver, the row materializer and the
// backend facade into per-request value objects. Nothing is cached between
// calls: every view is rebuilt from the backend.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/rows"
	"congress-hq/dashboard/pkg/rules"
	"congress-hq/dashboard/pkg/schema"
)

// ErrInvalidKind is returned for a table request that is neither a policy
// nor a service table.
var ErrInvalidKind = errors.New("table kind must be policy or service")

// Service builds console views.
type Service struct {
	backend  congress.Client
	resolver *schema.Resolver
	logger   *slog.Logger
}

// NewService creates a service over backend. A nil logger uses slog.Default.
func NewService(backend congress.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		backend:  backend,
		resolver: schema.NewResolver(backend, logger),
		logger:   logger.With("component", "console.service"),
	}
}

// TableView is the detail view of one table: its rows under the resolved
// column layout.
type TableView struct {
	Datasource string          `json:"datasource"`
	Table      string          `json:"table"`
	Origin     schema.Origin   `json:"origin"`
	Ref        schema.TableRef `json:"ref"`
	Layout     rows.Layout     `json:"layout"`
	Records    []rows.Record   `json:"records"`
}

// TableView builds the detail view of a table. kind is OriginPolicy for a
// table listed by policy datasource, or OriginService for a table published
// by data source datasource (identifier or name).
//
// A qualified policy table whose prefix names an existing data source is
// shown as service-derived: its rows come from the policy and its columns
// from the driver schema. A failed schema lookup degrades to a positional
// layout; a failed row listing is returned.
func (s *Service) TableView(ctx context.Context, kind schema.Origin, datasource, table string) (*TableView, error) {
	ref, err := s.classify(ctx, kind, datasource, table)
	if err != nil {
		return nil, err
	}

	listed, err := s.listRows(ctx, ref, datasource, table)
	if err != nil {
		return nil, fmt.Errorf("unable to get rows in table %q, data source %q: %w", table, datasource, err)
	}

	columns, err := s.resolver.Columns(ctx, ref)
	if err != nil {
		s.logger.WarnContext(ctx, "schema unavailable, showing positional columns",
			"datasource", datasource,
			"table", table,
			"origin", ref.Origin,
			"error", err,
		)
		columns = []string{}
	}

	materialized, err := rows.Materialize(listed, columns)
	if err != nil {
		return nil, fmt.Errorf("unable to get data for table %q, data source %q: %w", table, datasource, err)
	}

	return &TableView{
		Datasource: datasource,
		Table:      table,
		Origin:     ref.Origin,
		Ref:        ref,
		Layout:     materialized.Layout,
		Records:    materialized.Records,
	}, nil
}

func (s *Service) classify(ctx context.Context, kind schema.Origin, datasource, table string) (schema.TableRef, error) {
	switch kind {
	case schema.OriginService:
		return schema.ServiceTable(datasource, table), nil
	case schema.OriginPolicy:
	default:
		return schema.TableRef{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	ref, err := schema.Classify(ctx, s.backend, datasource, table)
	if err != nil {
		// Without the data source list the prefix cannot be checked. The
		// rows still come from the policy.
		s.logger.WarnContext(ctx, "unable to classify table, treating as policy table",
			"policy", datasource,
			"table", table,
			"error", err,
		)
		return schema.PolicyTable(datasource, table), nil
	}
	return ref, nil
}

func (s *Service) listRows(ctx context.Context, ref schema.TableRef, datasource, table string) ([]congress.Row, error) {
	if ref.Origin == schema.OriginService {
		return s.backend.ListDataSourceRows(ctx, datasource, table)
	}
	return s.backend.ListPolicyRows(ctx, datasource, table)
}

// DatasourceTable is one table of a data source. ID joins the data source and
// table identifiers so it is unique across data sources.
type DatasourceTable struct {
	ID           string `json:"id"`
	TableID      string `json:"table_id"`
	Name         string `json:"name"`
	DatasourceID string `json:"datasource_id"`
}

// DatasourceTables lists the tables of one data source.
func (s *Service) DatasourceTables(ctx context.Context, datasourceID string) ([]DatasourceTable, error) {
	tables, err := s.backend.ListDataSourceTables(ctx, datasourceID)
	if err != nil {
		return nil, fmt.Errorf("unable to get tables list for service %q: %w", datasourceID, err)
	}

	out := make([]DatasourceTable, len(tables))
	for i, t := range tables {
		out[i] = DatasourceTable{
			ID:           datasourceID + "-" + t.ID,
			TableID:      t.ID,
			Name:         t.DisplayName(),
			DatasourceID: datasourceID,
		}
	}
	return out, nil
}

// Status labels.
const (
	StatusActive    = "Active"
	StatusNotActive = "Not Active"
)

// DatasourceDetail is a data source with its runtime status.
type DatasourceDetail struct {
	congress.DataSource
	State         string                     `json:"status"`
	RuntimeStatus *congress.DataSourceStatus `json:"runtime"`
}

// DatasourceDetail returns a data source, addressed by identifier, with its
// status.
func (s *Service) DatasourceDetail(ctx context.Context, datasourceID string) (*DatasourceDetail, error) {
	ds, err := congress.DataSourceByID(ctx, s.backend, datasourceID)
	if err != nil {
		return nil, fmt.Errorf("unable to get data source %q: %w", datasourceID, err)
	}

	status, err := s.backend.GetDataSourceStatus(ctx, ds.Name)
	if err != nil {
		return nil, fmt.Errorf("unable to get status for data source %q: %w", datasourceID, err)
	}

	return &DatasourceDetail{
		DataSource:    *ds,
		State:         stateLabel(status.Initialized),
		RuntimeStatus: status,
	}, nil
}

func stateLabel(initialized bool) string {
	if initialized {
		return StatusActive
	}
	return StatusNotActive
}

// DatasourceStatus is a data source merged with its status record.
type DatasourceStatus struct {
	congress.DataSource
	congress.DataSourceStatus
}

// DatasourceStatuses lists every data source with its status. The first
// status failure aborts the listing.
func (s *Service) DatasourceStatuses(ctx context.Context) ([]DatasourceStatus, error) {
	datasources, err := s.backend.ListDataSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get data source status list: %w", err)
	}

	out := make([]DatasourceStatus, 0, len(datasources))
	for _, ds := range datasources {
		status, err := s.backend.GetDataSourceStatus(ctx, ds.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "unable to get data source status",
				"datasource", ds.Name,
				"error", err,
			)
			return nil, fmt.Errorf("unable to get status for data source %q: %w", ds.Name, err)
		}
		merged := DatasourceStatus{DataSource: ds, DataSourceStatus: *status}
		merged.Service = ds.Name
		out = append(out, merged)
	}
	return out, nil
}

// PolicyRule is a rule with its text laid out one literal per line.
type PolicyRule struct {
	congress.Rule
	FormattedText string `json:"formatted_rule"`
}

// PolicyRules lists the rules of a policy in backend order.
func (s *Service) PolicyRules(ctx context.Context, policy string) ([]PolicyRule, error) {
	listed, err := congress.ListRules(ctx, s.backend, policy)
	if err != nil {
		return nil, fmt.Errorf("unable to get rules in policy %q: %w", policy, err)
	}
	return formatRules(listed), nil
}

func formatRules(listed []congress.Rule) []PolicyRule {
	out := make([]PolicyRule, len(listed))
	for i, r := range listed {
		out[i] = PolicyRule{Rule: r, FormattedText: rules.Format(r.Text)}
	}
	return out
}

// LibraryPolicy is a library policy with formatted rules.
type LibraryPolicy struct {
	congress.Policy
	FormattedRules []PolicyRule `json:"formatted_rules"`
}

// LibraryPolicies lists the policy library.
func (s *Service) LibraryPolicies(ctx context.Context) ([]LibraryPolicy, error) {
	policies, err := s.backend.ListLibraryPolicies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list library policies failed: %w", err)
	}
	congress.NormalizePolicies(policies)

	out := make([]LibraryPolicy, len(policies))
	for i, p := range policies {
		out[i] = LibraryPolicy{Policy: p, FormattedRules: formatRules(p.Rules)}
	}
	return out, nil
}

// LibraryPolicy returns one library policy by name.
func (s *Service) LibraryPolicy(ctx context.Context, name string) (*LibraryPolicy, error) {
	p, err := s.backend.GetLibraryPolicy(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("unable to get library policy %q: %w", name, err)
	}
	normalized := congress.NormalizePolicies([]congress.Policy{*p})[0]
	return &LibraryPolicy{Policy: normalized, FormattedRules: formatRules(normalized.Rules)}, nil
}

// Drivers lists the supported data source drivers.
func (s *Service) Drivers(ctx context.Context) ([]congress.Driver, error) {
	drivers, err := s.backend.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to get driver list: %w", err)
	}
	return drivers, nil
}
