package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/frknaykc/dragonseye/pkg/client"
	"github.com/frknaykc/dragonseye/pkg/types/threat"
)

type victimTable []threat.Victim

func (v victimTable) TableHeaders() []string {
	return []string{"TITLE", "GROUP", "COUNTRY", "SECTOR", "DISCOVERED"}
}

func (v victimTable) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, victim := range v {
		discovered := ""
		if !victim.DiscoveredAt.IsZero() {
			discovered = victim.DiscoveredAt.Time().UTC().Format("2006-01-02")
		}
		rows = append(rows, []string{
			victim.PostTitle,
			victim.GroupName,
			victim.Country,
			victim.Activity,
			discovered,
		})
	}
	return rows
}

// NewVictimsCmd creates the victims command group.
func NewVictimsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "victims",
		Short: "Browse and search normalized victim records",
	}

	opts := client.ListOptions{}

	list := &cobra.Command{
		Use:   "list",
		Short: "List victims, filtered and paged",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			page, err := cliCtx.Client.Victims().List(ctx, opts)
			if err != nil {
				return err
			}
			if err := PrintResult(cmd, victimTable(page.Victims)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d (%d total)\n",
				page.Page, page.TotalPages, page.Total)
			return nil
		},
	}
	lf := list.Flags()
	lf.StringVar(&opts.Group, "group", "", "filter by threat group")
	lf.StringVar(&opts.Country, "country", "", "filter by country name, alias or ISO code")
	lf.StringVar(&opts.Sector, "sector", "", "filter by activity sector")
	lf.StringVar(&opts.Sort, "sort", "", "sort order")
	lf.IntVar(&opts.Page, "page", 0, "page number")
	lf.IntVar(&opts.Limit, "limit", 0, "page size")

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Free-text search across victim records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			page, err := cliCtx.Client.Victims().Search(ctx, args[0], client.ListOptions{})
			if err != nil {
				return err
			}
			return PrintResult(cmd, victimTable(page.Victims))
		},
	}

	show := &cobra.Command{
		Use:   "show <index>",
		Short: "Show the victim at a 1-based listing position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index must be an integer, got %q", args[0])
			}

			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			victim, err := cliCtx.Client.Victims().ByIndex(ctx, index)
			if err != nil {
				return err
			}
			return PrintResult(cmd, victimTable{*victim})
		},
	}

	cmd.AddCommand(list, search, show)
	return cmd
}
