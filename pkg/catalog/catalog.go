// Package catalog merges policy-hosted and service-hosted table listings into
// one cross-backend catalog.
//
// A catalog is built fresh on every call and is never cached. Failures are
// contained per entry: a policy or data source whose tables cannot be listed
// is logged and omitted, and a failure to list policies (or data sources)
// empties only that half of the catalog.
package catalog

// Kind tells whether a catalog entry is a policy or a data source.
type Kind string

const (
	// KindPolicy is an entry listing the tables a policy hosts.
	KindPolicy Kind = "policy"
	// KindService is an entry listing a data source's own tables.
	KindService Kind = "service"
)

// Table is one table of a catalog entry.
type Table struct {
	Name string `json:"table"`

	// Columns is nil in a catalog built without columns.
	Columns []string `json:"columns,omitempty"`
}

// Entry lists the tables of one policy or data source.
type Entry struct {
	Datasource string  `json:"datasource"`
	Kind       Kind    `json:"kind"`
	Tables     []Table `json:"tables"`
}

// TableNames returns the entry's table names in order.
func (e Entry) TableNames() []string {
	names := make([]string, len(e.Tables))
	for i, t := range e.Tables {
		names[i] = t.Name
	}
	return names
}

// Catalog is an ordered list of entries: policies first, in backend order,
// then data sources, in backend order.
type Catalog struct {
	Entries []Entry `json:"entries"`
}

// Entry returns the first entry for datasource.
func (c *Catalog) Entry(datasource string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Datasource == datasource {
			return e, true
		}
	}
	return Entry{}, false
}

// Tables returns the table names of datasource.
func (c *Catalog) Tables(datasource string) ([]string, bool) {
	e, ok := c.Entry(datasource)
	if !ok {
		return nil, false
	}
	return e.TableNames(), true
}

// Columns returns the resolved columns of table in datasource.
func (c *Catalog) Columns(datasource, table string) ([]string, bool) {
	e, ok := c.Entry(datasource)
	if !ok {
		return nil, false
	}
	for _, t := range e.Tables {
		if t.Name == table {
			return t.Columns, true
		}
	}
	return nil, false
}

// Datasources returns the entry names in order.
func (c *Catalog) Datasources() []string {
	names := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		names[i] = e.Datasource
	}
	return names
}
