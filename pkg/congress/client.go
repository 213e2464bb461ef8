package congress

import "context"

// Operation names, used in BackendError and by failure injection.
const (
	OpListPolicies             = "list_policies"
	OpListRules                = "list_rules"
	OpListPolicyTables         = "list_policy_tables"
	OpListPolicyRows           = "list_policy_rows"
	OpListDataSources          = "list_datasources"
	OpListDataSourceTables     = "list_datasource_tables"
	OpListDataSourceRows       = "list_datasource_rows"
	OpGetDataSourceSchema      = "get_datasource_schema"
	OpGetDataSourceTableSchema = "get_datasource_table_schema"
	OpGetDataSourceStatus      = "get_datasource_status"
	OpListDrivers              = "list_drivers"
	OpListLibraryPolicies      = "list_library_policies"
	OpGetLibraryPolicy         = "get_library_policy"
)

// PolicyReader reads policies and their derived tables.
type PolicyReader interface {
	ListPolicies(ctx context.Context) ([]Policy, error)

	// ListRules returns the rules of a policy in backend order. The order is
	// significant: schema inference takes the first matching rule head.
	ListRules(ctx context.Context, policy string) ([]Rule, error)

	ListPolicyTables(ctx context.Context, policy string) ([]Table, error)
	ListPolicyRows(ctx context.Context, policy, table string) ([]Row, error)
}

// DataSourceReader reads services, their tables and their driver schemas.
// Data source arguments accept either the identifier or the name.
type DataSourceReader interface {
	ListDataSources(ctx context.Context) ([]DataSource, error)
	ListDataSourceTables(ctx context.Context, datasource string) ([]Table, error)
	ListDataSourceRows(ctx context.Context, datasource, table string) ([]Row, error)
	GetDataSourceSchema(ctx context.Context, datasource string) ([]TableSchema, error)
	GetDataSourceTableSchema(ctx context.Context, datasource, table string) (*TableSchema, error)
	GetDataSourceStatus(ctx context.Context, datasource string) (*DataSourceStatus, error)
	ListDrivers(ctx context.Context) ([]Driver, error)
}

// LibraryReader reads the policy library.
type LibraryReader interface {
	ListLibraryPolicies(ctx context.Context) ([]Policy, error)
	GetLibraryPolicy(ctx context.Context, name string) (*Policy, error)
}

// Client is the complete backend facade.
type Client interface {
	PolicyReader
	DataSourceReader
	LibraryReader
}
