package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResolveCmd creates the resolve command. It maps any country token
// (ISO code, canonical name or alias) to its identity and per-country
// statistics.
func NewResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <token>",
		Short: "Resolve a country token and show its victim breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			detail, err := cliCtx.Client.Stats().Country(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", detail.Identity.DisplayName, detail.Identity.Code)
			fmt.Fprintf(out, "victims: %d\n\n", len(detail.Victims))

			if len(detail.Groups) > 0 {
				fmt.Fprintln(out, "groups:")
				fmt.Fprint(out, FormatTable(bucketTable(detail.Groups).TableHeaders(),
					bucketTable(detail.Groups).TableRows()))
			}
			if len(detail.Sectors) > 0 {
				fmt.Fprintln(out, "\nsectors:")
				fmt.Fprint(out, FormatTable(bucketTable(detail.Sectors).TableHeaders(),
					bucketTable(detail.Sectors).TableRows()))
			}
			return nil
		},
	}
}
