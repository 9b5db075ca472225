package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/util"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/rdf"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrBusy is returned when another run is in flight in this process or, with
// a Locker configured, in any process sharing the lock.
var ErrBusy = errors.New("ingestion run already in progress")

const runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Archiver takes ownership of a loaded interchange file.
type Archiver interface {
	Archive(ctx context.Context, file string) (string, error)
}

// Locker serializes runs across processes.
type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

// RunOptions selects what a run processes.
//
// With DocIDs set only those documents are processed; Force first clears
// their processed flag. DryRun writes the interchange file and stops
// before loading and marking. OutputPath overrides the generated file name.
// OnDemand marks runs requested through the API, the queue or the CLI as
// opposed to the periodic poller.
type RunOptions struct {
	Limit      int      `json:"limit,omitempty"`
	DocIDs     []string `json:"doc_ids,omitempty"`
	Force      bool     `json:"force,omitempty"`
	DryRun     bool     `json:"dry_run,omitempty"`
	OnDemand   bool     `json:"-"`
	OutputPath string   `json:"-"`
}

// RunResult summarizes one run.
type RunResult struct {
	RunID     string         `json:"run_id"`
	Status    string         `json:"status"`
	Documents int            `json:"documents"`
	Accepted  int            `json:"accepted"`
	Rejected  int            `json:"rejected"`
	Marked    int64          `json:"marked"`
	Triples   int            `json:"triples"`
	Counts    graph.Counts   `json:"counts,omitempty"`
	Defects   []graph.Defect `json:"defects,omitempty"`
	File      string         `json:"file,omitempty"`
	Archive   string         `json:"archive,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
}

// Orchestrator drives batches from the document store through the record
// processor into the graph store. Records are marked processed only after
// their batch was loaded, so a failed run leaves them for the next one.
//
// An Orchestrator should be created using NewOrchestrator.
type Orchestrator struct {
	docs      store.DocumentStore
	runs      store.RunStore
	loader    store.GraphLoader
	archiver  Archiver
	locker    Locker
	processor *graph.Processor

	outputDir    string
	batchSize    int
	maxDocuments int
	lockKey      string
	lockOpts     leaselock.Options
	markRetries  int
	retryDelay   time.Duration

	// on-demand runs default to dry runs
	dryRunOnDemand bool

	newID func() (string, error)
	now   func() time.Time

	inFlight atomic.Bool
	status   *statusTracker
}

// NewOrchestratorParams defines the collaborators and limits of an
// Orchestrator. Documents is required. Without a Loader every run behaves
// like a dry run. Runs, Archiver and Locker are optional. DryRunOnDemand
// turns every OnDemand run into a dry run while poller runs still load.
type NewOrchestratorParams struct {
	Documents store.DocumentStore
	Runs      store.RunStore
	Loader    store.GraphLoader
	Archiver  Archiver
	Locker    Locker
	Processor *graph.Processor

	OutputDir string
	BatchSize int
	// MaxDocuments caps the limit a caller may request. Zero means no cap.
	MaxDocuments int
	LockKey      string
	LockTTL      time.Duration
	MarkRetries  int
	RetryDelay   time.Duration

	DryRunOnDemand bool
}

func NewOrchestrator(params NewOrchestratorParams) (*Orchestrator, error) {
	if params.Documents == nil {
		return nil, fmt.Errorf("document store is required")
	}
	processor := params.Processor
	if processor == nil {
		processor = graph.NewProcessor(graph.NewProcessorParams{})
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	outputDir := params.OutputDir
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	lockKey := params.LockKey
	if lockKey == "" {
		lockKey = "lexgraph:ingest"
	}
	markRetries := params.MarkRetries
	if markRetries <= 0 {
		markRetries = 3
	}
	retryDelay := params.RetryDelay
	if retryDelay < 0 {
		retryDelay = 0
	} else if retryDelay == 0 {
		retryDelay = time.Second
	}
	hostname, _ := os.Hostname()

	return &Orchestrator{
		docs:         params.Documents,
		runs:         params.Runs,
		loader:       params.Loader,
		archiver:     params.Archiver,
		locker:       params.Locker,
		processor:    processor,
		outputDir:    outputDir,
		batchSize:    batchSize,
		maxDocuments: params.MaxDocuments,
		lockKey:      lockKey,
		lockOpts:     leaselock.Options{TTL: params.LockTTL, TokenPrefix: hostname + ":"},
		markRetries:  markRetries,
		retryDelay:   retryDelay,

		dryRunOnDemand: params.DryRunOnDemand,
		newID: func() (string, error) {
			return gonanoid.Generate(runIDAlphabet, 12)
		},
		now:    time.Now,
		status: newStatusTracker(),
	}, nil
}

// SinkName names the configured graph loader, or "none".
func (o *Orchestrator) SinkName() string {
	if o.loader == nil {
		return "none"
	}
	return o.loader.Name()
}

// Processing reports whether a run is in flight in this process.
func (o *Orchestrator) Processing() bool {
	return o.inFlight.Load()
}

// RunOnce executes a single batch. It returns ErrBusy without doing
// anything when another run holds the in-flight flag or the lease.
func (o *Orchestrator) RunOnce(ctx context.Context, opts RunOptions) (RunResult, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return RunResult{}, ErrBusy
	}
	defer o.inFlight.Store(false)

	var (
		res    RunResult
		runErr error
	)
	run := func(ctx context.Context) error {
		res, runErr = o.run(ctx, opts)
		return runErr
	}

	if o.locker != nil {
		err := o.locker.WithLease(ctx, o.lockKey, o.lockOpts, run)
		if errors.Is(err, leaselock.ErrBusy) {
			return RunResult{}, ErrBusy
		}
		if err != nil && runErr == nil {
			return RunResult{}, fmt.Errorf("failed to acquire ingestion lease: %w", err)
		}
	} else {
		_ = run(ctx)
	}

	o.status.finished(res, runErr, o.now())
	o.record(ctx, res, runErr)
	return res, runErr
}

func (o *Orchestrator) run(ctx context.Context, opts RunOptions) (res RunResult, err error) {
	res.StartedAt = o.now()
	id, err := o.newID()
	if err != nil {
		return res, fmt.Errorf("failed to generate run id: %w", err)
	}
	res.RunID = id
	defer func() { res.Duration = o.now().Sub(res.StartedAt) }()

	o.status.started(res.StartedAt)

	records, err := o.fetch(ctx, opts)
	if err != nil {
		res.Status = store.RunFailed
		return res, err
	}
	res.Documents = len(records)
	if len(records) == 0 {
		res.Status = store.RunEmpty
		logger.Debug("[Ingest] No unprocessed documents", "run_id", id)
		return res, nil
	}

	batch := o.processor.RunBatch(records)
	res.Accepted = len(batch.Accepted)
	res.Rejected = len(batch.Defects)
	res.Triples = len(batch.Triples)
	res.Counts = batch.Counts
	res.Defects = batch.Defects

	logger.Info(
		"[Ingest] Batch converted",
		"run_id", id,
		"documents", res.Documents,
		"accepted", res.Accepted,
		"rejected", res.Rejected,
		"triples", res.Triples,
	)

	dryRun := o.isDryRun(opts)
	if len(batch.Accepted) == 0 {
		if !dryRun {
			o.reportDefects(ctx, batch.Defects)
		}
		res.Status = store.RunEmpty
		return res, nil
	}

	path := opts.OutputPath
	if path == "" && dryRun {
		path = filepath.Join(o.outputDir, dryRunName(batch.Accepted))
	} else if path == "" {
		path = filepath.Join(o.outputDir, id+".rdf")
	}
	if err := rdf.WriteFile(path, batch.Triples); err != nil {
		res.Status = store.RunFailed
		return res, err
	}
	res.File = path

	if dryRun {
		res.Status = store.RunDryRun
		logger.Info("[Ingest] Dry run, skipping load", "run_id", id, "file", path)
		return res, nil
	}

	if err := o.loader.Load(ctx, store.Batch{RunID: id, Path: path, Triples: batch.Triples}); err != nil {
		res.Status = store.RunFailed
		return res, fmt.Errorf("failed to load batch into %s: %w", o.loader.Name(), err)
	}

	marked, err := util.RetryWithContext(ctx, o.markRetries, o.retryDelay, func(ctx context.Context) (int64, error) {
		return o.docs.MarkProcessed(ctx, batch.Accepted)
	})
	if err != nil {
		res.Status = store.RunFailed
		return res, err
	}
	res.Marked = marked
	res.Status = store.RunSucceeded

	o.reportDefects(ctx, batch.Defects)
	res.Archive = o.archive(ctx, id, path)

	logger.Info("[Ingest] Batch loaded", "run_id", id, "sink", o.loader.Name(), "marked", marked)
	return res, nil
}

func (o *Orchestrator) isDryRun(opts RunOptions) bool {
	return opts.DryRun || o.loader == nil || (opts.OnDemand && o.dryRunOnDemand)
}

// dryRunName derives the interchange file name of a dry run from the accepted
// record ids, so repeating a dry run over the same records overwrites one file.
func dryRunName(ids []int64) string {
	h := sha256.New()
	for _, id := range ids {
		h.Write(strconv.AppendInt(nil, id, 10))
		h.Write([]byte{','})
	}
	return "dryrun_" + hex.EncodeToString(h.Sum(nil))[:16] + ".rdf"
}

func (o *Orchestrator) fetch(ctx context.Context, opts RunOptions) ([]common.Record, error) {
	if len(opts.DocIDs) > 0 {
		if opts.Force {
			n, err := o.docs.ResetProcessed(ctx, opts.DocIDs)
			if err != nil {
				return nil, err
			}
			logger.Info("[Ingest] Reset processed flag", "documents", n)
		}
		return o.docs.FetchByDocIDs(ctx, opts.DocIDs)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = o.batchSize
	}
	if o.maxDocuments > 0 && limit > o.maxDocuments {
		limit = o.maxDocuments
	}
	return o.docs.FetchUnprocessed(ctx, limit)
}

func (o *Orchestrator) reportDefects(ctx context.Context, defects []graph.Defect) {
	if len(defects) == 0 {
		return
	}
	out := make([]store.Defect, 0, len(defects))
	for _, d := range defects {
		out = append(out, store.Defect{RecordID: d.RecordID, Reason: d.Reason})
	}
	if err := o.docs.ReportDefects(ctx, out); err != nil {
		logger.Warn("[Ingest] Failed to report defects", "count", len(out), "err", err)
	}
}

func (o *Orchestrator) archive(ctx context.Context, runID, path string) string {
	if o.archiver == nil {
		if err := os.Remove(path); err != nil {
			logger.Warn("[Ingest] Failed to remove interchange file", "run_id", runID, "file", path, "err", err)
		}
		return ""
	}
	loc, err := o.archiver.Archive(ctx, path)
	if err != nil {
		logger.Warn("[Ingest] Failed to archive interchange file", "run_id", runID, "file", path, "err", err)
		return ""
	}
	return loc
}

func (o *Orchestrator) record(ctx context.Context, res RunResult, runErr error) {
	if o.runs == nil || res.RunID == "" {
		return
	}
	run := store.Run{
		ID:         res.RunID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.StartedAt.Add(res.Duration),
		Status:     res.Status,
		Sink:       o.SinkName(),
		Documents:  res.Documents,
		Accepted:   res.Accepted,
		Rejected:   res.Rejected,
		Marked:     res.Marked,
		Triples:    res.Triples,
		Counts:     res.Counts,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := o.runs.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("[Ingest] Failed to record run", "run_id", res.RunID, "err", err)
	}
}
