package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/printnow/portal/pkg/backend"
	"github.com/printnow/portal/pkg/cache"
	"github.com/printnow/portal/pkg/config"
	"github.com/printnow/portal/pkg/db"
	"github.com/printnow/portal/pkg/realtime"
	"github.com/printnow/portal/pkg/store"
	"github.com/printnow/portal/pkg/store/database"
	"github.com/spf13/cobra"
)

// InitBackendContext initializes the backend context.
// It opens the database, the cache and the realtime broker configured in
// the config found in the command context.
func InitBackendContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return config.ErrNilConfig
	}
	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	dbx, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DataSource)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	ctx = db.WithContext(ctx, dbx)
	dbstore := database.New(ctx, dbx)
	ctx = store.WithContext(ctx, dbstore)

	ca, err := cache.New(ctx, cfg.Cache.Driver, cache.WithSize(cfg.Cache.Size), cache.WithTTL(cfg.Cache.TTL))
	if err != nil {
		return fmt.Errorf("create %q cache: %w", cfg.Cache.Driver, err)
	}
	ctx = cache.WithContext(ctx, ca)

	broker, err := realtime.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create realtime broker: %w", err)
	}

	be, err := backend.New(ctx, cfg, dbx, dbstore, backend.WithCache(ca), backend.WithBroker(broker))
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	ctx = backend.WithContext(ctx, be)

	cmd.SetContext(ctx)

	return nil
}

// CloseDBContext waits for pending backend work and closes the database.
func CloseDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if be := backend.FromContext(ctx); be != nil {
		if err := be.Close(); err != nil {
			return fmt.Errorf("close backend: %w", err)
		}
	}
	dbx := db.FromContext(ctx)
	if dbx != nil {
		if err := dbx.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}
