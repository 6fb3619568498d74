package system

import (
	"context"
	"fmt"

	"github.com/chadspratt/do-again-list/internal/cli"
)

// schemaStore is implemented by both the SQLite and Postgres stores.
type schemaStore interface {
	Migrate(ctx context.Context) (int, error)
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()
	if err := ctx.Store.Load(bg); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	store, ok := ctx.Store.(schemaStore)
	if !ok {
		return fmt.Errorf("%s storage does not support migrations", ctx.Store.Dialect())
	}

	count, err := store.Migrate(bg)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("Successfully applied %d migration(s).\n", count)
	}
	return nil
}
