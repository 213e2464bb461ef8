package health

import (
	"context"
	"errors"

	"congress-hq/dashboard/pkg/congress"
)

// BackendCheck reports the backend healthy when it can list data sources.
func BackendCheck(backend congress.DataSourceReader) CheckFunc {
	return func(ctx context.Context) error {
		_, err := backend.ListDataSources(ctx)
		return err
	}
}

// Pinger is implemented by stores that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck wraps a Pinger as a check.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if p == nil {
			return errors.New("not configured")
		}
		return p.Ping(ctx)
	}
}
