package customer

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/printnow/portal/cmd"
	"github.com/printnow/portal/pkg/backend"
	"github.com/printnow/portal/pkg/config"
	"github.com/printnow/portal/pkg/proto"
	"github.com/spf13/cobra"
)

// Command is the customer command.
var Command = &cobra.Command{
	Use:                "customer",
	Aliases:            []string{"customers"},
	Short:              "Manage the customers of an organization",
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
}

var org string

func init() {
	Command.PersistentFlags().StringVar(&org, "org", "", "slug of the organization")
	_ = Command.MarkPersistentFlagRequired("org")

	createCmd := &cobra.Command{
		Use:   "create NAME EMAIL",
		Short: "Create a customer and print its portal link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			c, err := be.CreateCustomerInOrganization(ctx, org, proto.CreateCustomerInput{
				Name:  args[0],
				Email: args[1],
			})
			if err != nil {
				return err
			}

			cmd.Printf("Created customer %s (%d)\n", c.Name, c.ID)
			cmd.Println(portalLink(cmd, c.AccessCode))
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List customers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be := backend.FromContext(ctx)
			customers, err := be.ListCustomersInOrganization(ctx, org)
			if err != nil {
				return err
			}

			table := table.New().Headers("ID", "Name", "Email", "Access Code", "Boards", "Contacts", "Created At")
			for _, c := range customers {
				boards := make([]string, len(c.Boards))
				for i, b := range c.Boards {
					boards[i] = b.Name
				}
				table = table.Row(
					strconv.FormatInt(c.ID, 10),
					c.Name,
					c.Email,
					c.AccessCode,
					strings.Join(boards, ","),
					strconv.Itoa(c.ContactCount),
					humanize.Time(c.CreatedAt),
				)
			}
			cmd.Println(table)
			return nil
		},
	}

	Command.AddCommand(createCmd, listCmd)
}

func portalLink(cmd *cobra.Command, code string) string {
	cfg := config.FromContext(cmd.Context())
	return strings.TrimSuffix(cfg.HTTP.PublicURL, "/") + "/customer/" + code
}
