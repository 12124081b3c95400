package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/db/internal/test"
)

func TestMigrate(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)

	is.NoErr(Migrate(ctx, dbx))
	v, err := Version(ctx, dbx)
	is.NoErr(err)
	is.Equal(v, int64(len(migrations)))

	// Running again is a no-op.
	is.NoErr(Migrate(ctx, dbx))
}

func TestRollback(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx, err := test.OpenSqlite(ctx, t)
	is.NoErr(err)

	is.True(errors.Is(Rollback(ctx, dbx), ErrNoMigrations))

	is.NoErr(Migrate(ctx, dbx))
	for range migrations {
		is.NoErr(Rollback(ctx, dbx))
	}
	v, err := Version(ctx, dbx)
	is.NoErr(err)
	is.Equal(v, int64(0))
	is.True(errors.Is(Rollback(ctx, dbx), ErrNoMigrations))

	// Tables can be recreated after a full rollback.
	is.NoErr(Migrate(ctx, dbx))
}

func TestToSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"create tables": "create_tables",
		"auth":          "auth",
		"CreateTables":  "create_tables",
		"add-indexes":   "add_indexes",
	} {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) => %q, want %q", in, got, want)
		}
	}
}
