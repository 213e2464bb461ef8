package schema

import (
	"context"
	"errors"
	"fmt"

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/rules"
)

// Origin classifies where a table's data and schema come from.
type Origin string

const (
	// OriginPolicy is a table defined by policy rules.
	OriginPolicy Origin = "policy"

	// OriginService is a table published by a data source driver.
	OriginService Origin = "service"

	// OriginServiceDerived is a service table surfaced inside a policy
	// under a qualified name.
	OriginServiceDerived Origin = "service-derived"
)

// HasDeclaredSchema reports whether the driver reports the schema for tables
// of this origin.
func (o Origin) HasDeclaredSchema() bool {
	return o == OriginService || o == OriginServiceDerived
}

// TableRef addresses one table for schema resolution.
type TableRef struct {
	Origin Origin `json:"origin"`

	// Owner is the policy name for policy tables and the data source
	// identifier (or name) for service and service-derived tables.
	Owner string `json:"owner"`

	// Table is the true table name, without a service qualifier.
	Table string `json:"table"`

	// Policy is the hosting policy of a service-derived table. Its rows are
	// read from this policy under the qualified name.
	Policy string `json:"policy,omitempty"`

	// Service is the data source name qualifying a service-derived table.
	Service string `json:"service,omitempty"`
}

// PolicyTable returns a reference to a policy-native table.
func PolicyTable(policy, table string) TableRef {
	return TableRef{Origin: OriginPolicy, Owner: policy, Table: table}
}

// ServiceTable returns a reference to a service-native table.
func ServiceTable(datasource, table string) TableRef {
	return TableRef{Origin: OriginService, Owner: datasource, Table: table}
}

// QualifiedName is the name under which the hosting policy lists the table.
func (r TableRef) QualifiedName() string {
	if r.Origin == OriginServiceDerived {
		return r.Service + rules.TableSeparator + r.Table
	}
	return r.Table
}

// Classify decides the origin of a table listed by a policy. A qualified name
// whose service part names an existing data source is service-derived and
// resolves against that data source; anything else stays policy-native.
func Classify(ctx context.Context, ds congress.DataSourceReader, policy, table string) (TableRef, error) {
	service, name, ok := rules.SplitQualified(table)
	if !ok {
		return PolicyTable(policy, table), nil
	}

	source, err := congress.DataSourceByName(ctx, ds, service)
	if err != nil {
		if errors.Is(err, congress.ErrNotFound) {
			return PolicyTable(policy, table), nil
		}
		return TableRef{}, fmt.Errorf("classify table %q: %w", table, err)
	}

	return TableRef{
		Origin:  OriginServiceDerived,
		Owner:   source.ID,
		Table:   name,
		Policy:  policy,
		Service: service,
	}, nil
}
