package sql

import (
	"context"
	"embed"
	"io/fs"
	"sync"

	tern "github.com/jackc/tern/v2/migrate"
	"github.com/leg100/lastquery/internal/logr"
)

var (
	mu sync.Mutex

	//go:embed migrations/*.sql
	migrations embed.FS
)

func migrate(ctx context.Context, logger logr.Logger, connString string) error {
	mu.Lock()
	defer mu.Unlock()

	conn, err := connect(ctx, logger, connString)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, "schema_version")
	if err != nil {
		return err
	}
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	if err := m.LoadMigrations(fsys); err != nil {
		return err
	}
	m.OnStart = func(sequence int32, name, direction, sql string) {
		logger.Info("migrating database", "sequence", sequence, "name", name, "direction", direction)
	}
	return m.Migrate(ctx)
}
