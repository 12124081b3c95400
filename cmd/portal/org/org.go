package org

import (
	"strconv"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/printnow/portal/cmd"
	"github.com/printnow/portal/pkg/access"
	"github.com/printnow/portal/pkg/backend"
	"github.com/spf13/cobra"
)

// Command is the organization command.
var Command = &cobra.Command{
	Use:                "org",
	Aliases:            []string{"orgs", "organization"},
	Short:              "Manage organizations",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

func init() {
	var owner string
	createCmd := &cobra.Command{
		Use:   "create SLUG NAME",
		Short: "Create an organization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			o, err := be.CreateOrganization(ctx, args[1], args[0], owner)
			if err != nil {
				return err
			}

			cmd.Printf("Created organization %s (%d)\n", o.Slug, o.ID)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&owner, "owner", "o", "", "email of the owner, created when missing")
	_ = createCmd.MarkFlagRequired("owner")

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List organizations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			orgs, err := be.ListOrganizations(ctx)
			if err != nil {
				return err
			}

			table := table.New().Headers("ID", "Slug", "Name", "Owner", "Members", "Created At")
			for _, o := range orgs {
				var ownerEmail string
				for _, m := range o.Members {
					if m.Role == access.Owner {
						ownerEmail = m.User.Email
						break
					}
				}
				table = table.Row(
					strconv.FormatInt(o.ID, 10),
					o.Slug,
					o.Name,
					ownerEmail,
					strconv.Itoa(len(o.Members)),
					humanize.Time(o.CreatedAt),
				)
			}
			cmd.Println(table)
			return nil
		},
	}

	Command.AddCommand(createCmd, listCmd)
}
