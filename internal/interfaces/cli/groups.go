package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/frknaykc/dragonseye/pkg/client"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

type groupTable []threat.GroupProfile

func (g groupTable) TableHeaders() []string {
	return []string{"NAME", "ACTIVE", "LOCATIONS"}
}

func (g groupTable) TableRows() [][]string {
	rows := make([][]string, 0, len(g))
	for _, group := range g {
		rows = append(rows, []string{
			group.Name,
			strconv.FormatBool(group.IsActive()),
			strconv.Itoa(len(group.Locations)),
		})
	}
	return rows
}

// NewGroupsCmd creates the groups command group.
func NewGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Browse threat-group profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all known groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			groups, err := cliCtx.Client.Groups().List(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, groupTable(groups))
		},
	}

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one group profile (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			group, err := cliCtx.Client.Groups().ByName(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, group)
		},
	}

	var limit int
	victims := &cobra.Command{
		Use:   "victims <name>",
		Short: "List victims claimed by one group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			page, err := cliCtx.Client.Groups().Victims(ctx, args[0], client.ListOptions{Limit: limit})
			if err != nil {
				return err
			}
			return PrintResult(cmd, victimTable(page.Victims))
		},
	}
	victims.Flags().IntVar(&limit, "limit", 0, "page size (server default when 0)")

	cmd.AddCommand(list, show, victims)
	return cmd
}
