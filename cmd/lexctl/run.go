package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/ingest"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/timing"

	"github.com/spf13/cobra"
)

var (
	runLimit  int
	runDocIDs []string
	runForce  bool
	runDryRun bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "Maximum number of unprocessed documents (default BATCH_SIZE)")
	runCmd.Flags().StringSliceVar(&runDocIDs, "doc-id", nil, "Process only these documents (repeatable)")
	runCmd.Flags().BoolVar(&runForce, "force", false, "Reprocess --doc-id documents even if already processed")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Write the interchange file without loading or marking")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion batch",
	Long: `Fetch a batch of unprocessed documents, convert them, load the result into
the configured graph sink and mark the documents processed.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	if runForce && len(runDocIDs) == 0 {
		return fmt.Errorf("--force requires --doc-id")
	}

	ctx := cmd.Context()
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	orch, closeLoader, err := ingest.NewFromEnv(ctx, pool)
	if err != nil {
		return err
	}
	defer closeLoader(ctx)

	res, err := orch.RunOnce(ctx, ingest.RunOptions{
		Limit:    runLimit,
		DocIDs:   runDocIDs,
		Force:    runForce,
		DryRun:   runDryRun,
		OnDemand: true,
	})
	if err != nil {
		return err
	}

	return output(res, func() { printRunHuman(res) })
}

func printRunHuman(res ingest.RunResult) {
	fmt.Printf("Run %s: %s\n", res.RunID, res.Status)
	fmt.Printf("  documents: %d (accepted %d, rejected %d)\n", res.Documents, res.Accepted, res.Rejected)
	fmt.Printf("  triples:   %d\n", res.Triples)
	fmt.Printf("  marked:    %d\n", res.Marked)
	if res.File != "" {
		fmt.Printf("  file:      %s\n", res.File)
	}
	if res.Archive != "" {
		fmt.Printf("  archive:   %s\n", res.Archive)
	}
	fmt.Printf("  duration:  %s (%.1f triples/s)\n", timing.Clock(res.Duration), timing.Rate(res.Triples, res.Duration))

	keys := make([]string, 0, len(res.Counts))
	for k := range res.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("    %-28s %d\n", k, res.Counts[k])
	}
	for _, d := range res.Defects {
		fmt.Printf("  rejected %d (%s): %s\n", d.RecordID, d.DocID, d.Reason)
	}
}

func exitCode(err error) int {
	if errors.Is(err, ingest.ErrBusy) {
		return ExitBusy
	}
	return ExitError
}
