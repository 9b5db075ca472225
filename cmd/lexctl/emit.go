package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/ingest"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/graph"
	csvloader "github.com/OFFIS-RIT/lexgraph/backend/pkg/loader/csv"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/rdf"

	"github.com/spf13/cobra"
)

var (
	emitOut    string
	emitInput  string
	emitLimit  int
	emitDocIDs []string
)

func init() {
	rootCmd.AddCommand(emitCmd)
	emitCmd.Flags().StringVarP(&emitOut, "out", "o", "", "Output N-Quads file (required)")
	emitCmd.Flags().StringVar(&emitInput, "input", "", "Read records from a JSON lines or .csv file instead of the database")
	emitCmd.Flags().IntVar(&emitLimit, "limit", 0, "Maximum number of unprocessed documents")
	emitCmd.Flags().StringSliceVar(&emitDocIDs, "doc-id", nil, "Emit only these documents (repeatable)")
	_ = emitCmd.MarkFlagRequired("out")
}

var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Write the N-Quads of a batch without loading it",
	Long: `Convert a batch to N-Quads and write it to --out. Nothing is loaded and
no document is marked processed.

With --input the records come from a file and no database is needed. Files
ending in .csv are read with a header row naming the judgment columns, any
other file as JSON lines with one record per line.`,
	Args: cobra.NoArgs,
	RunE: runEmit,
}

type emitResult struct {
	File     string         `json:"file"`
	Records  int            `json:"records"`
	Accepted int            `json:"accepted"`
	Triples  int            `json:"triples"`
	Counts   graph.Counts   `json:"counts"`
	Defects  []graph.Defect `json:"defects,omitempty"`
}

func runEmit(cmd *cobra.Command, args []string) error {
	if emitInput != "" {
		return emitFromFile(emitInput, emitOut)
	}

	ctx := cmd.Context()
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	orch, err := ingest.NewEmitterFromEnv(pool)
	if err != nil {
		return err
	}

	res, err := orch.RunOnce(ctx, ingest.RunOptions{
		Limit:      emitLimit,
		DocIDs:     emitDocIDs,
		DryRun:     true,
		OutputPath: emitOut,
	})
	if err != nil {
		return err
	}

	out := emitResult{
		File:     res.File,
		Records:  res.Documents,
		Accepted: res.Accepted,
		Triples:  res.Triples,
		Counts:   res.Counts,
		Defects:  res.Defects,
	}
	return output(out, func() { printEmitHuman(out) })
}

func emitFromFile(input, out string) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	var records []common.Record
	if strings.EqualFold(filepath.Ext(input), ".csv") {
		records, err = csvloader.ReadRecords(f)
	} else {
		records, err = readRecords(f)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	res := ingest.ProcessorFromEnv().RunBatch(records)
	if err := rdf.WriteFile(out, res.Triples); err != nil {
		return err
	}

	result := emitResult{
		File:     out,
		Records:  len(records),
		Accepted: len(res.Accepted),
		Triples:  len(res.Triples),
		Counts:   res.Counts,
		Defects:  res.Defects,
	}
	return output(result, func() { printEmitHuman(result) })
}

// readRecords decodes a stream of JSON records.
func readRecords(r io.Reader) ([]common.Record, error) {
	dec := json.NewDecoder(r)
	var records []common.Record
	for {
		var rec common.Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
}

func printEmitHuman(res emitResult) {
	if res.File == "" {
		fmt.Println("Nothing to emit")
		return
	}
	fmt.Printf("Wrote %d triples for %d of %d records to %s\n", res.Triples, res.Accepted, res.Records, res.File)
	for _, d := range res.Defects {
		fmt.Printf("  rejected %d (%s): %s\n", d.RecordID, d.DocID, d.Reason)
	}
}
