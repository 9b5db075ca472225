package store

import (
	"context"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
)

// DocumentStore is the source of judgment records. Records carry a
// processed flag that is only set after their triples were loaded into the
// graph store.
type DocumentStore interface {
	FetchUnprocessed(ctx context.Context, limit int) ([]common.Record, error)
	FetchByDocIDs(ctx context.Context, docIDs []string) ([]common.Record, error)
	MarkProcessed(ctx context.Context, ids []int64) (int64, error)
	ResetProcessed(ctx context.Context, docIDs []string) (int64, error)
	ReportDefects(ctx context.Context, defects []Defect) error
	Counts(ctx context.Context) (DocumentCounts, error)
}

// Defect marks a record the engine rejected. Defective records stay
// unprocessed but are fetched after clean ones so they cannot starve a
// batch.
type Defect struct {
	RecordID int64
	Reason   string
}

// DocumentCounts summarizes the processed flag over all records.
type DocumentCounts struct {
	Total       int64 `json:"total"`
	Processed   int64 `json:"processed"`
	Unprocessed int64 `json:"unprocessed"`
	Defective   int64 `json:"defective"`
}

// RunStore keeps the history of ingestion runs.
type RunStore interface {
	RecordRun(ctx context.Context, run Run) error
	LatestRuns(ctx context.Context, limit int) ([]Run, error)
	RunStats(ctx context.Context) (RunStats, error)
}

// Run status values.
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
	RunEmpty     = "empty"
	RunDryRun    = "dry_run"
)

// Run is one finished ingestion attempt.
type Run struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Status     string         `json:"status"`
	Sink       string         `json:"sink"`
	Documents  int            `json:"documents"`
	Accepted   int            `json:"accepted"`
	Rejected   int            `json:"rejected"`
	Marked     int64          `json:"marked"`
	Triples    int            `json:"triples"`
	Counts     map[string]int `json:"counts,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// RunStats aggregates the run history.
type RunStats struct {
	Runs            int64      `json:"runs"`
	Succeeded       int64      `json:"succeeded"`
	Failed          int64      `json:"failed"`
	DocumentsMarked int64      `json:"documents_marked"`
	TriplesLoaded   int64      `json:"triples_loaded"`
	LastSuccess     *time.Time `json:"last_success,omitempty"`
}

// Batch is the unit handed to a GraphLoader: the triples of one run and
// the interchange file they were written to.
type Batch struct {
	RunID   string
	Path    string
	Triples []common.Triple
}

// GraphLoader loads a batch into the graph store. Implementations must merge
// nodes by their identifier predicate so that loading the same batch twice
// leaves the graph unchanged.
type GraphLoader interface {
	Name() string
	Load(ctx context.Context, batch Batch) error
}
