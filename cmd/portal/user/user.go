package user

import (
	"strconv"
	"time"

	"github.com/caarlos0/duration"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/printnow/portal/cmd"
	"github.com/printnow/portal/pkg/backend"
	"github.com/spf13/cobra"
)

// Command is the user command.
var Command = &cobra.Command{
	Use:                "user",
	Aliases:            []string{"users"},
	Short:              "Manage users",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

func init() {
	var name string
	userCreateCommand := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create a new user",
		Long:  "Create a new user. The user joins the organization that invited them or gets their own.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			u, err := be.AddUser(ctx, args[0], name)
			if err != nil {
				return err
			}

			cmd.Printf("Created user %s (%d)\n", u.Email, u.ID)
			return nil
		},
	}
	userCreateCommand.Flags().StringVarP(&name, "name", "n", "", "display name of the user")

	userDeleteCommand := &cobra.Command{
		Use:   "delete EMAIL",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			return be.DeleteUser(ctx, args[0])
		},
	}

	userListCommand := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			users, err := be.ListUsers(ctx)
			if err != nil {
				return err
			}

			table := table.New().Headers("ID", "Email", "Name", "Created At")
			for _, u := range users {
				table = table.Row(
					strconv.FormatInt(u.ID, 10),
					u.Email,
					u.Name,
					humanize.Time(u.CreatedAt),
				)
			}
			cmd.Println(table)
			return nil
		},
	}

	var expiresIn string
	userTokenCommand := &cobra.Command{
		Use:   "token EMAIL",
		Short: "Create a session token for scripting the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)

			var ttl time.Duration
			if expiresIn != "" {
				d, err := duration.Parse(expiresIn)
				if err != nil {
					return err
				}
				ttl = d
			}

			login, err := be.CreateToken(ctx, args[0], "portal-cli", ttl)
			if err != nil {
				return err
			}

			cmd.PrintErrln("Token created (expires " + humanize.Time(login.ExpiresAt) + ")")
			cmd.Println(login.Token)
			return nil
		},
	}
	userTokenCommand.Flags().StringVar(&expiresIn, "expires-in", "", "Token expiration time (e.g. 1y, 3mo, 2w, 5d4h, 1h30m), defaults to the session lifetime")

	userSessionsCommand := &cobra.Command{
		Use:   "sessions EMAIL",
		Short: "List the sessions of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			sessions, err := be.ListSessions(ctx, args[0])
			if err != nil {
				return err
			}

			table := table.New().Headers("ID", "User Agent", "Created At", "Expires At")
			for _, s := range sessions {
				table = table.Row(
					s.ID,
					s.UserAgent,
					humanize.Time(s.CreatedAt),
					humanize.Time(s.ExpiresAt),
				)
			}
			cmd.Println(table)
			return nil
		},
	}

	userLogoutCommand := &cobra.Command{
		Use:   "logout EMAIL",
		Short: "Sign a user out of every session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			n, err := be.RevokeSessions(ctx, args[0])
			if err != nil {
				return err
			}

			cmd.Printf("Revoked %d session(s)\n", n)
			return nil
		},
	}

	Command.AddCommand(
		userCreateCommand,
		userDeleteCommand,
		userListCommand,
		userTokenCommand,
		userSessionsCommand,
		userLogoutCommand,
	)
}
