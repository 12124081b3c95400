package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/printnow/portal/cmd/portal/admin"
	"github.com/printnow/portal/cmd/portal/customer"
	"github.com/printnow/portal/cmd/portal/org"
	"github.com/printnow/portal/cmd/portal/serve"
	"github.com/printnow/portal/cmd/portal/user"
	_ "github.com/printnow/portal/internal/init" // cache drivers
	"github.com/printnow/portal/pkg/config"
	logr "github.com/printnow/portal/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	rootCmd = &cobra.Command{
		Use:          "portal",
		Short:        "A print shop job tracker with a customer portal",
		Long:         "Portal tracks print jobs on kanban boards and shares them with customers through access codes.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.AddCommand(
		manCmd,
		serve.Command,
		admin.Command,
		user.Command,
		org.Command,
		customer.Command,
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	if cfg.Exist() {
		if err := cfg.ParseFile(); err != nil {
			fmt.Fprintf(os.Stderr, "parse config file: %v\n", err)
			return 1
		}
	} else if err := cfg.WriteConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "write config file: %v\n", err)
		return 1
	}

	if err := cfg.ParseEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	ctx = config.WithContext(ctx, cfg)
	logger, f, err := logr.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		return 1
	}
	if f != nil {
		defer f.Close() //nolint:errcheck
	}

	ctx = log.WithContext(ctx, logger)

	// Set global logger
	log.SetDefault(logger)

	var opts []maxprocs.Option
	if config.IsVerbose() {
		opts = append(opts, maxprocs.Logger(log.Debugf))
	}

	// Set the max number of processes to the number of CPUs
	// This is useful when running portal in a container
	if _, err := maxprocs.Set(opts...); err != nil {
		log.Warn("couldn't set automaxprocs", "error", err)
	}

	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
