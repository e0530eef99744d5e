package cli

import (
	"github.com/spf13/cobra"

	"github.com/frknaykc/dragonseye/pkg/client"
)

type iocTable []client.IOC

func (i iocTable) TableHeaders() []string {
	return []string{"TYPE", "VALUE", "GROUP"}
}

func (i iocTable) TableRows() [][]string {
	rows := make([][]string, 0, len(i))
	for _, record := range i {
		rows = append(rows, []string{record.Type, record.Value, record.SourceGroup})
	}
	return rows
}

// NewIOCsCmd creates the iocs command.
func NewIOCsCmd() *cobra.Command {
	opts := client.IOCOptions{}

	cmd := &cobra.Command{
		Use:   "iocs",
		Short: "List deduplicated indicators extracted from ransom notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			records, err := cliCtx.Client.Feeds().IOCs(ctx, opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, iocTable(records))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Query, "query", "q", "", "substring filter on indicator values")
	f.StringVarP(&opts.Type, "type", "t", "", "filter by indicator type (filename, file_extension, domain, url, hash, email)")
	f.StringVarP(&opts.Group, "group", "g", "", "filter by source group")

	return cmd
}
