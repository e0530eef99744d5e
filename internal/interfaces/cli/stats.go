package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/frknaykc/dragonseye/pkg/client"
)

// bucketTable renders a rollup as an aligned table.
type bucketTable []client.Bucket

func (b bucketTable) TableHeaders() []string {
	return []string{"KEY", "COUNT", "SHARE"}
}

func (b bucketTable) TableRows() [][]string {
	rows := make([][]string, 0, len(b))
	for _, bucket := range b {
		rows = append(rows, []string{
			bucket.Key,
			strconv.Itoa(bucket.Count),
			fmt.Sprintf("%.1f%%", bucket.Percentage),
		})
	}
	return rows
}

type trendTable []client.TrendPoint

func (t trendTable) TableHeaders() []string {
	return []string{"DATE", "VICTIMS"}
}

func (t trendTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, p := range t {
		rows = append(rows, []string{p.Date, strconv.Itoa(p.Count)})
	}
	return rows
}

type summaryTable client.Summary

func (s summaryTable) TableHeaders() []string {
	return []string{"METRIC", "VALUE"}
}

func (s summaryTable) TableRows() [][]string {
	return [][]string{
		{"total victims", strconv.Itoa(s.TotalVictims)},
		{"total groups", strconv.Itoa(s.TotalGroups)},
		{"active groups", strconv.Itoa(s.ActiveGroups)},
		{"countries", strconv.Itoa(s.Countries)},
		{"victims today", strconv.Itoa(s.VictimsToday)},
		{"top group", fmt.Sprintf("%s (%d)", s.TopGroup.Name, s.TopGroup.Count)},
	}
}

// NewStatsCmd creates the stats command group.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Statistical rollups over the victim record set",
	}

	var limit int
	var days int

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Dashboard headline figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			sum, err := cliCtx.Client.Stats().Summary(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, summaryTable(*sum))
		},
	}

	rollup := func(use, short string, fetch func(*CLIContext, *cobra.Command) ([]client.Bucket, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				cliCtx, err := GetCLIContext(cmd)
				if err != nil {
					return err
				}
				buckets, err := fetch(cliCtx, cmd)
				if err != nil {
					return err
				}
				return PrintResult(cmd, bucketTable(buckets))
			},
		}
	}

	countries := rollup("countries", "Victim counts per country",
		func(cliCtx *CLIContext, cmd *cobra.Command) ([]client.Bucket, error) {
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()
			return cliCtx.Client.Stats().Countries(ctx, limit)
		})
	sectors := rollup("sectors", "Victim counts per activity sector",
		func(cliCtx *CLIContext, cmd *cobra.Command) ([]client.Bucket, error) {
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()
			return cliCtx.Client.Stats().Sectors(ctx, limit)
		})
	groups := rollup("groups", "Victim counts per threat group",
		func(cliCtx *CLIContext, cmd *cobra.Command) ([]client.Bucket, error) {
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()
			return cliCtx.Client.Stats().Groups(ctx, limit)
		})

	trend := &cobra.Command{
		Use:   "trend",
		Short: "Daily victim counts for the trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd, cliCtx)
			defer cancel()

			points, err := cliCtx.Client.Stats().Trend(ctx, days)
			if err != nil {
				return err
			}
			return PrintResult(cmd, trendTable(points))
		},
	}
	trend.Flags().IntVar(&days, "days", 0, "window length in days (server default when 0)")

	for _, sub := range []*cobra.Command{countries, sectors, groups} {
		sub.Flags().IntVar(&limit, "limit", 0, "maximum buckets to return (server default when 0)")
	}

	cmd.AddCommand(summary, countries, sectors, groups, trend)
	return cmd
}
