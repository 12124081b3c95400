package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/backend"
	"github.com/printnow/portal/pkg/cache/lru"
	"github.com/printnow/portal/pkg/config"
	"github.com/printnow/portal/pkg/store/database"
	"github.com/printnow/portal/pkg/test"
)

func TestCleanupRegistered(t *testing.T) {
	is := is.New(t)
	j, ok := Get("cleanup")
	is.True(ok)
	is.Equal(j.Name, "cleanup")
	is.Equal(len(List()), 1)
	is.Equal(j.Runner.Spec(context.TODO()), "@every 1h")

	cfg := config.DefaultConfig()
	cfg.Jobs.Cleanup = "*/5 * * * *"
	is.Equal(j.Runner.Spec(config.WithContext(context.TODO(), cfg)), "*/5 * * * *")
}

func TestCleanup(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	is.NoErr(cfg.Validate())
	ctx := config.WithContext(context.TODO(), cfg)

	dbx := test.OpenDB(ctx, t)
	c, err := lru.NewCache(ctx)
	is.NoErr(err)
	be, err := backend.New(ctx, cfg, dbx, database.New(ctx, dbx), backend.WithCache(c))
	is.NoErr(err)
	t.Cleanup(func() { _ = be.Close() })
	ctx = backend.WithContext(ctx, be)

	_, err = be.AddUser(ctx, "ada@example.com", "Ada")
	is.NoErr(err)
	_, err = be.CreateToken(ctx, "ada@example.com", "test", time.Millisecond)
	is.NoErr(err)
	_, err = be.CreateToken(ctx, "ada@example.com", "test", time.Hour)
	is.NoErr(err)
	time.Sleep(10 * time.Millisecond)

	cleanupJob{}.Func(ctx)()

	links, sessions, err := be.DeleteExpired(ctx)
	is.NoErr(err)
	is.Equal(links, int64(0))
	is.Equal(sessions, int64(0))
}
