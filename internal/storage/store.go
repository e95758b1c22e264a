package storage

import (
	"context"
	"strings"

	"github.com/Skufu/triage/internal/consult"
)

// Store is the relational consultation log.
type Store interface {
	consult.Recorder
	Migrate(ctx context.Context) error
	Recent(ctx context.Context, limit int) ([]consult.Record, error)
	Ping(ctx context.Context) error
	Close()
}

// Open picks the backend from the URL: postgres:// and postgresql:// URLs go
// to PostgreSQL, anything else is treated as a SQLite file path.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	u := strings.ToLower(databaseURL)
	if strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://") {
		return OpenPostgres(ctx, databaseURL)
	}
	return OpenSQLite(ctx, databaseURL)
}
