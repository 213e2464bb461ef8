package schema

import (
	"context"
	"fmt"
	"log/slog"

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/rules"
)

// Backend is the part of the facade the resolver reads.
type Backend interface {
	congress.PolicyReader
	congress.DataSourceReader
}

// Resolver computes ordered column lists.
type Resolver struct {
	backend Backend
	logger  *slog.Logger
}

// NewResolver creates a resolver over backend. A nil logger uses slog.Default.
func NewResolver(backend Backend, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		backend: backend,
		logger:  logger.With("component", "schema.resolver"),
	}
}

// Columns resolves the column names of ref. Policy tables list the policy's
// rules first; use ColumnsWithRules to reuse an already fetched rule list.
//
// Errors from the backend are returned unchanged. There is no fallback for a
// failed driver schema request.
func (r *Resolver) Columns(ctx context.Context, ref TableRef) ([]string, error) {
	if ref.Origin.HasDeclaredSchema() {
		return r.serviceColumns(ctx, ref)
	}

	policyRules, err := r.backend.ListRules(ctx, ref.Owner)
	if err != nil {
		return nil, err
	}
	return r.ColumnsWithRules(ctx, ref, policyRules)
}

// ColumnsWithRules resolves the column names of ref using policyRules as the
// available rule set for policy-native tables. Within one catalog build the
// same rule list is reused for every table of a policy, so the columns stay
// stable for that build.
func (r *Resolver) ColumnsWithRules(ctx context.Context, ref TableRef, policyRules []congress.Rule) ([]string, error) {
	if ref.Origin.HasDeclaredSchema() {
		return r.serviceColumns(ctx, ref)
	}

	columns := ColumnsFromRules(policyRules, ref.Table)
	if len(columns) == 0 {
		r.logger.DebugContext(ctx, "no rule head defines table",
			"policy", ref.Owner,
			"table", ref.Table,
			"rules", len(policyRules),
		)
	}
	return columns, nil
}

func (r *Resolver) serviceColumns(ctx context.Context, ref TableRef) ([]string, error) {
	schema, err := r.backend.GetDataSourceTableSchema(ctx, ref.Owner, ref.Table)
	if err != nil {
		return nil, fmt.Errorf("schema for %s table %q of %q: %w", ref.Origin, ref.Table, ref.Owner, err)
	}
	return schema.ColumnNames(), nil
}

// ColumnsFromRules infers the columns of table from the first rule whose head
// literal defines it. Rules whose head has no closed argument list are
// skipped. The result is empty, never nil, when no rule matches.
func ColumnsFromRules(policyRules []congress.Rule, table string) []string {
	for _, rule := range policyRules {
		if !rules.Defines(rule.Text, table) {
			continue
		}
		head, ok := rules.ParseHead(rule.Text)
		if !ok {
			continue
		}
		return head.Columns
	}
	return []string{}
}
