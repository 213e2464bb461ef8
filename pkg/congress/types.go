package congress

import "time"

// Policy is a named rule set hosted by the policy engine.
type Policy struct {
	// ID is the backend identifier. It may be empty for system policies;
	// see NormalizePolicies.
	ID string `json:"id" yaml:"id,omitempty"`

	// Name is the display name. Policy-scoped calls are addressed by name.
	Name string `json:"name" yaml:"name"`

	OwnerID     string `json:"owner_id" yaml:"owner_id,omitempty"`
	Description string `json:"description" yaml:"description,omitempty"`

	// Kind is the engine-specific policy kind (e.g. "nonrecursive").
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Rules is populated by library listings only. Live policies are read
	// through Client.ListRules.
	Rules []Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Rule is one rule of a policy.
type Rule struct {
	ID      string `json:"id" yaml:"id,omitempty"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// Text is the raw rule source, e.g. "error(x) :- nova:servers(x, y)".
	Text string `json:"rule" yaml:"rule"`
}

// DataSource is a driver-backed service feeding tables into the engine.
type DataSource struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Driver      string            `json:"driver" yaml:"driver"`
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Config      map[string]string `json:"config,omitempty" yaml:"config,omitempty"`
}

// DataSourceStatus is the runtime status reported for one data source.
type DataSourceStatus struct {
	Service         string    `json:"service" yaml:"service,omitempty"`
	LastUpdated     time.Time `json:"last_updated" yaml:"last_updated"`
	Subscribers     []string  `json:"subscribers" yaml:"subscribers,omitempty"`
	Subscriptions   []string  `json:"subscriptions" yaml:"subscriptions,omitempty"`
	LastError       *string   `json:"last_error" yaml:"last_error,omitempty"`
	Initialized     bool      `json:"initialized" yaml:"initialized"`
	NumberOfUpdates int       `json:"number_of_updates" yaml:"number_of_updates"`
}

// Table is a table as listed by the backend.
type Table struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// DisplayName returns the table name, falling back to its identifier.
func (t Table) DisplayName() string {
	if t.Name == "" {
		return t.ID
	}
	return t.Name
}

// Row is a positional tuple. Values carry no field names until materialized
// against a column list.
type Row struct {
	// ID is set when the backend supplies one; usually empty.
	ID   string   `json:"id,omitempty" yaml:"id,omitempty"`
	Data []string `json:"data" yaml:"data"`
}

// Column is a named column. Columns are untyped.
type Column struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// TableSchema is the driver-reported schema of one service table.
type TableSchema struct {
	TableID string   `json:"table_id" yaml:"table_id"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// ColumnNames returns the column names in declaration order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Driver describes a data source driver supported by the backend.
type Driver struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}
