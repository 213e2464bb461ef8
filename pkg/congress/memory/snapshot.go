package memory

import "congress-hq/dashboard/pkg/congress"

// Snapshot is the complete serializable state of a backend. It is the shape
// of fixture files and the unit exchanged with the SQLite snapshot store.
type Snapshot struct {
	Policies    []PolicyData      `yaml:"policies" json:"policies"`
	DataSources []DataSourceData  `yaml:"datasources" json:"datasources"`
	Drivers     []congress.Driver `yaml:"drivers,omitempty" json:"drivers,omitempty"`
	Library     []congress.Policy `yaml:"library,omitempty" json:"library,omitempty"`
}

// PolicyData is a policy together with its rules and derived tables.
type PolicyData struct {
	congress.Policy `yaml:",inline"`
	Tables          []TableData `yaml:"tables,omitempty" json:"tables,omitempty"`
}

// DataSourceData is a data source together with its status and tables.
type DataSourceData struct {
	congress.DataSource `yaml:",inline"`
	Status              *congress.DataSourceStatus `yaml:"status,omitempty" json:"status,omitempty"`
	Tables              []TableData                `yaml:"tables,omitempty" json:"tables,omitempty"`
}

// TableData is one table with its rows. Columns are only meaningful for
// data source tables, where they form the driver schema.
type TableData struct {
	Name    string            `yaml:"name" json:"name"`
	Columns []congress.Column `yaml:"columns,omitempty" json:"columns,omitempty"`
	Rows    []congress.Row    `yaml:"rows,omitempty" json:"rows,omitempty"`
}
