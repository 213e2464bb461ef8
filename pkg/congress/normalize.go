package congress

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// noneID is what the backend reports for policies that were never assigned
// an identifier.
const noneID = "None"

// NormalizePolicies fills in missing policy identifiers with the policy name.
// The slice is modified in place and returned for convenience.
func NormalizePolicies(policies []Policy) []Policy {
	for i := range policies {
		if policies[i].ID == "" || policies[i].ID == noneID {
			policies[i].ID = policies[i].Name
		}
		NormalizeRules(policies[i].Rules)
	}
	return policies
}

// NormalizeRules assigns a random identifier to every rule that has none.
func NormalizeRules(rules []Rule) []Rule {
	for i := range rules {
		if rules[i].ID == "" || rules[i].ID == noneID {
			rules[i].ID = uuid.NewString()
		}
	}
	return rules
}

// ListPolicies lists policies with identifiers normalized.
func ListPolicies(ctx context.Context, c PolicyReader) ([]Policy, error) {
	policies, err := c.ListPolicies(ctx)
	if err != nil {
		return nil, err
	}
	return NormalizePolicies(policies), nil
}

// ListRules lists the rules of a policy with identifiers normalized.
func ListRules(ctx context.Context, c PolicyReader, policy string) ([]Rule, error) {
	rules, err := c.ListRules(ctx, policy)
	if err != nil {
		return nil, err
	}
	return NormalizeRules(rules), nil
}

// PolicyByName returns the policy with the given display name.
func PolicyByName(ctx context.Context, c PolicyReader, name string) (*Policy, error) {
	policies, err := ListPolicies(ctx, c)
	if err != nil {
		return nil, err
	}
	for i := range policies {
		if policies[i].Name == name {
			return &policies[i], nil
		}
	}
	return nil, fmt.Errorf("policy %q: %w", name, ErrNotFound)
}

// DataSourceByID returns the data source with the given identifier.
func DataSourceByID(ctx context.Context, c DataSourceReader, id string) (*DataSource, error) {
	return findDataSource(ctx, c, func(ds DataSource) bool { return ds.ID == id }, id)
}

// DataSourceByName returns the data source with the given name.
func DataSourceByName(ctx context.Context, c DataSourceReader, name string) (*DataSource, error) {
	return findDataSource(ctx, c, func(ds DataSource) bool { return ds.Name == name }, name)
}

func findDataSource(ctx context.Context, c DataSourceReader, match func(DataSource) bool, key string) (*DataSource, error) {
	datasources, err := c.ListDataSources(ctx)
	if err != nil {
		return nil, err
	}
	for i := range datasources {
		if match(datasources[i]) {
			return &datasources[i], nil
		}
	}
	return nil, fmt.Errorf("data source %q: %w", key, ErrNotFound)
}
