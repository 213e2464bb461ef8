package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"congress-hq/dashboard/pkg/congress"
)

var _ congress.Client = (*Store)(nil)

func notFound(op, target string) error {
	return congress.NewBackendError(op, target, fmt.Errorf("%s: %w", target, congress.ErrNotFound))
}

// policyName resolves a policy name or identifier to its name.
func (s *Store) policyName(ctx context.Context, op, key string) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM policies WHERE name = ? OR (id <> '' AND id = ?) ORDER BY seq LIMIT 1",
		key, key,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound(op, key)
	}
	if err != nil {
		return "", congress.NewBackendError(op, key, err)
	}
	return name, nil
}

// datasourceID resolves a data source identifier or name to its identifier.
func (s *Store) datasourceID(ctx context.Context, op, key string) (id, name string, err error) {
	err = s.db.QueryRowContext(ctx,
		"SELECT id, name FROM datasources WHERE id = ? OR name = ? ORDER BY seq LIMIT 1",
		key, key,
	).Scan(&id, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", notFound(op, key)
	}
	if err != nil {
		return "", "", congress.NewBackendError(op, key, err)
	}
	return id, name, nil
}

// ListPolicies implements congress.PolicyReader.
func (s *Store) ListPolicies(ctx context.Context) ([]congress.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, owner_id, description, kind FROM policies ORDER BY seq")
	if err != nil {
		return nil, congress.NewBackendError(congress.OpListPolicies, "", err)
	}
	defer rows.Close()

	out := []congress.Policy{}
	for rows.Next() {
		var p congress.Policy
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerID, &p.Description, &p.Kind); err != nil {
			return nil, congress.NewBackendError(congress.OpListPolicies, "", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, congress.NewBackendError(congress.OpListPolicies, "", err)
	}
	return out, nil
}

// ListRules implements congress.PolicyReader.
func (s *Store) ListRules(ctx context.Context, policy string) ([]congress.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, err := s.policyName(ctx, congress.OpListRules, policy)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, comment, rule FROM rules WHERE policy = ? ORDER BY seq", name)
	if err != nil {
		return nil, congress.NewBackendError(congress.OpListRules, policy, err)
	}
	defer rows.Close()

	out := []congress.Rule{}
	for rows.Next() {
		var r congress.Rule
		if err := rows.Scan(&r.ID, &r.Name, &r.Comment, &r.Text); err != nil {
			return nil, congress.NewBackendError(congress.OpListRules, policy, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, congress.NewBackendError(congress.OpListRules, policy, err)
	}
	return out, nil
}

// ListPolicyTables implements congress.PolicyReader.
func (s *Store) ListPolicyTables(ctx context.Context, policy string) ([]congress.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, err := s.policyName(ctx, congress.OpListPolicyTables, policy)
	if err != nil {
		return nil, err
	}
	return s.tableNames(ctx, congress.OpListPolicyTables, policy,
		"SELECT name FROM policy_tables WHERE policy = ? ORDER BY seq", name)
}

// ListPolicyRows implements congress.PolicyReader.
func (s *Store) ListPolicyRows(ctx context.Context, policy, table string) ([]congress.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, err := s.policyName(ctx, congress.OpListPolicyRows, policy)
	if err != nil {
		return nil, err
	}
	return s.rows(ctx, congress.OpListPolicyRows, policy+"/"+table,
		"SELECT rows FROM policy_tables WHERE policy = ? AND name = ?", name, table)
}

// ListDataSources implements congress.DataSourceReader.
func (s *Store) ListDataSources(ctx context.Context) ([]congress.DataSource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, driver, enabled, description, config FROM datasources ORDER BY seq")
	if err != nil {
		return nil, congress.NewBackendError(congress.OpListDataSources, "", err)
	}
	defer rows.Close()

	out := []congress.DataSource{}
	for rows.Next() {
		var (
			ds     congress.DataSource
			config sql.NullString
		)
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Driver, &ds.Enabled, &ds.Description, &config); err != nil {
			return nil, congress.NewBackendError(congress.OpListDataSources, "", err)
		}
		if config.Valid {
			if err := json.Unmarshal([]byte(config.String), &ds.Config); err != nil {
				return nil, congress.NewBackendError(congress.OpListDataSources, ds.Name, err)
			}
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, congress.NewBackendError(congress.OpListDataSources, "", err)
	}
	return out, nil
}

// ListDataSourceTables implements congress.DataSourceReader.
func (s *Store) ListDataSourceTables(ctx context.Context, datasource string) ([]congress.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, _, err := s.datasourceID(ctx, congress.OpListDataSourceTables, datasource)
	if err != nil {
		return nil, err
	}
	return s.tableNames(ctx, congress.OpListDataSourceTables, datasource,
		"SELECT name FROM datasource_tables WHERE datasource = ? ORDER BY seq", id)
}

// ListDataSourceRows implements congress.DataSourceReader.
func (s *Store) ListDataSourceRows(ctx context.Context, datasource, table string) ([]congress.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, _, err := s.datasourceID(ctx, congress.OpListDataSourceRows, datasource)
	if err != nil {
		return nil, err
	}
	return s.rows(ctx, congress.OpListDataSourceRows, datasource+"/"+table,
		"SELECT rows FROM datasource_tables WHERE datasource = ? AND name = ?", id, table)
}

// GetDataSourceSchema implements congress.DataSourceReader.
func (s *Store) GetDataSourceSchema(ctx context.Context, datasource string) ([]congress.TableSchema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op := congress.OpGetDataSourceSchema
	id, _, err := s.datasourceID(ctx, op, datasource)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, columns FROM datasource_tables WHERE datasource = ? ORDER BY seq", id)
	if err != nil {
		return nil, congress.NewBackendError(op, datasource, err)
	}
	defer rows.Close()

	out := []congress.TableSchema{}
	for rows.Next() {
		var (
			schema  congress.TableSchema
			colData string
		)
		if err := rows.Scan(&schema.TableID, &colData); err != nil {
			return nil, congress.NewBackendError(op, datasource, err)
		}
		if err := json.Unmarshal([]byte(colData), &schema.Columns); err != nil {
			return nil, congress.NewBackendError(op, datasource+"/"+schema.TableID, err)
		}
		out = append(out, schema)
	}
	if err := rows.Err(); err != nil {
		return nil, congress.NewBackendError(op, datasource, err)
	}
	return out, nil
}

// GetDataSourceTableSchema implements congress.DataSourceReader.
func (s *Store) GetDataSourceTableSchema(ctx context.Context, datasource, table string) (*congress.TableSchema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op := congress.OpGetDataSourceTableSchema
	target := datasource + "/" + table
	id, _, err := s.datasourceID(ctx, op, datasource)
	if err != nil {
		return nil, err
	}

	var colData string
	err = s.db.QueryRowContext(ctx,
		"SELECT columns FROM datasource_tables WHERE datasource = ? AND name = ?", id, table,
	).Scan(&colData)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(op, target)
	}
	if err != nil {
		return nil, congress.NewBackendError(op, target, err)
	}

	schema := &congress.TableSchema{TableID: table}
	if err := json.Unmarshal([]byte(colData), &schema.Columns); err != nil {
		return nil, congress.NewBackendError(op, target, err)
	}
	return schema, nil
}

// GetDataSourceStatus implements congress.DataSourceReader.
func (s *Store) GetDataSourceStatus(ctx context.Context, datasource string) (*congress.DataSourceStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op := congress.OpGetDataSourceStatus
	id, name, err := s.datasourceID(ctx, op, datasource)
	if err != nil {
		return nil, err
	}

	var data sql.NullString
	if err := s.db.QueryRowContext(ctx,
		"SELECT status FROM datasources WHERE id = ?", id,
	).Scan(&data); err != nil {
		return nil, congress.NewBackendError(op, datasource, err)
	}
	if !data.Valid {
		return nil, notFound(op, datasource)
	}

	var status congress.DataSourceStatus
	if err := json.Unmarshal([]byte(data.String), &status); err != nil {
		return nil, congress.NewBackendError(op, datasource, err)
	}
	if status.Service == "" {
		status.Service = name
	}
	return &status, nil
}

// ListDrivers implements congress.DataSourceReader.
func (s *Store) ListDrivers(ctx context.Context) ([]congress.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, description FROM drivers ORDER BY seq")
	if err != nil {
		return nil, congress.NewBackendError(congress.OpListDrivers, "", err)
	}
	defer rows.Close()

	out := []congress.Driver{}
	for rows.Next() {
		var d congress.Driver
		if err := rows.Scan(&d.ID, &d.Description); err != nil {
			return nil, congress.NewBackendError(congress.OpListDrivers, "", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, congress.NewBackendError(congress.OpListDrivers, "", err)
	}
	return out, nil
}

// ListLibraryPolicies implements congress.LibraryReader.
func (s *Store) ListLibraryPolicies(ctx context.Context) ([]congress.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT policy FROM library ORDER BY seq")
	if err != nil {
		return nil, congress.NewBackendError(congress.OpListLibraryPolicies, "", err)
	}
	defer rows.Close()

	out := []congress.Policy{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, congress.NewBackendError(congress.OpListLibraryPolicies, "", err)
		}
		var p congress.Policy
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, congress.NewBackendError(congress.OpListLibraryPolicies, "", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, congress.NewBackendError(congress.OpListLibraryPolicies, "", err)
	}
	return out, nil
}

// GetLibraryPolicy implements congress.LibraryReader.
func (s *Store) GetLibraryPolicy(ctx context.Context, name string) (*congress.Policy, error) {
	policies, err := s.ListLibraryPolicies(ctx)
	if err != nil {
		return nil, congress.NewBackendError(congress.OpGetLibraryPolicy, name, err)
	}
	for i := range policies {
		if policies[i].Name == name || (policies[i].ID != "" && policies[i].ID == name) {
			return &policies[i], nil
		}
	}
	return nil, notFound(congress.OpGetLibraryPolicy, name)
}

func (s *Store) tableNames(ctx context.Context, op, target, query string, args ...any) ([]congress.Table, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, congress.NewBackendError(op, target, err)
	}
	defer rows.Close()

	out := []congress.Table{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, congress.NewBackendError(op, target, err)
		}
		out = append(out, congress.Table{ID: name})
	}
	if err := rows.Err(); err != nil {
		return nil, congress.NewBackendError(op, target, err)
	}
	return out, nil
}

func (s *Store) rows(ctx context.Context, op, target, query string, args ...any) ([]congress.Row, error) {
	var data string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(op, target)
	}
	if err != nil {
		return nil, congress.NewBackendError(op, target, err)
	}

	var out []congress.Row
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, congress.NewBackendError(op, target, err)
	}
	return out, nil
}
