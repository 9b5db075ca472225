// Package main provides the lexctl operator CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/util"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitBusy    = 2
)

// humanOutput switches from JSON to plain text output.
var humanOutput bool

func main() {
	util.LoadEnv()
	closeLog := util.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeLog()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "lexctl",
	Short: "Operate the judgment graph ingestion",
	Long: `lexctl runs and inspects ingestion of judgment records into the case graph.

Configuration is read from the environment and an optional .env file
(DATABASE_URL, GRAPH_SINK, NEO4J_*, DGRAPH_*, RDF_OUTPUT_DIR, ...).
All commands print JSON unless --human is set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
}

func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	url := util.GetEnv("DATABASE_URL")
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

// outputJSON writes v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// output prints v as JSON, or calls human when --human is set.
func output(v any, human func()) error {
	if humanOutput {
		human()
		return nil
	}
	return outputJSON(v)
}
