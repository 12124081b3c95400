package migrate

import (
	"context"

	"github.com/printnow/portal/pkg/db"
)

const (
	createAuthTablesName    = "auth"
	createAuthTablesVersion = 2
)

// createAuthTables adds magic link tokens and login sessions.
var createAuthTables = Migration{
	Version: createAuthTablesVersion,
	Name:    createAuthTablesName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		return migrateUp(ctx, tx, createAuthTablesVersion, createAuthTablesName)
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		return migrateDown(ctx, tx, createAuthTablesVersion, createAuthTablesName)
	},
}
