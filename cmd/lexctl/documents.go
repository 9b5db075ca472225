package main

import (
	"fmt"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/timing"
	pgxstore "github.com/OFFIS-RIT/lexgraph/backend/pkg/store/pgx"

	"github.com/spf13/cobra"
)

var (
	resetDocIDs []string
	runsLimit   int
)

func init() {
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(countsCmd)
	rootCmd.AddCommand(runsCmd)

	resetCmd.Flags().StringSliceVar(&resetDocIDs, "doc-id", nil, "Documents to reset (repeatable, required)")
	_ = resetCmd.MarkFlagRequired("doc-id")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Number of runs to list")
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the processed flag of documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		n, err := pgxstore.NewJudgmentStore(pool).ResetProcessed(ctx, resetDocIDs)
		if err != nil {
			return err
		}
		return output(map[string]int64{"updated": n}, func() {
			fmt.Printf("Reset %d documents\n", n)
		})
	},
}

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show processed and unprocessed document counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		counts, err := pgxstore.NewJudgmentStore(pool).Counts(ctx)
		if err != nil {
			return err
		}
		return output(counts, func() {
			fmt.Printf("total:       %d\n", counts.Total)
			fmt.Printf("processed:   %d\n", counts.Processed)
			fmt.Printf("unprocessed: %d\n", counts.Unprocessed)
			fmt.Printf("defective:   %d\n", counts.Defective)
		})
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the latest ingestion runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		runs, err := pgxstore.NewJudgmentStore(pool).LatestRuns(ctx, runsLimit)
		if err != nil {
			return err
		}
		return output(runs, func() {
			for _, r := range runs {
				fmt.Printf("%s  %-9s  %s  docs=%d marked=%d triples=%d  %s\n",
					r.ID,
					r.Status,
					r.StartedAt.Format("2006-01-02 15:04:05"),
					r.Documents,
					r.Marked,
					r.Triples,
					timing.Clock(r.FinishedAt.Sub(r.StartedAt)),
				)
				if r.Error != "" {
					fmt.Printf("    error: %s\n", r.Error)
				}
			}
		})
	},
}
