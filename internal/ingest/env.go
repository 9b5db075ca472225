package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/storage"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/util"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/graph"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store/dgraph"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store/neo4j"
	pgxstore "github.com/OFFIS-RIT/lexgraph/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink names accepted by GRAPH_SINK.
const (
	SinkNeo4j  = "neo4j"
	SinkDgraph = "dgraph"
	SinkNone   = "none"
)

// NewLoaderFromEnv builds the graph loader selected by GRAPH_SINK. The
// returned close function is never nil.
func NewLoaderFromEnv(ctx context.Context) (store.GraphLoader, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	sink := strings.ToLower(util.GetEnvString("GRAPH_SINK", SinkDgraph))
	switch sink {
	case SinkNeo4j:
		client, err := neo4j.NewFromEnv(ctx)
		if err != nil {
			return nil, noop, err
		}
		if client == nil {
			return nil, noop, fmt.Errorf("GRAPH_SINK=neo4j requires NEO4J_URI")
		}
		loader := neo4j.NewLoader(client, neo4j.WithChunkSize(util.GetEnvInt("NEO4J_CHUNK_SIZE", 500)))
		return loader, client.Close, nil
	case SinkDgraph:
		loader := dgraph.NewLiveLoader(dgraph.NewLiveLoaderParams{
			Binary:        util.GetEnv("DGRAPH_LIVE_BIN"),
			Alpha:         util.GetEnv("DGRAPH_ALPHA"),
			Zero:          util.GetEnv("DGRAPH_ZERO"),
			SchemaPath:    util.GetEnv("RDF_SCHEMA_FILE"),
			DockerImage:   util.GetEnv("DGRAPH_DOCKER_IMAGE"),
			DockerNetwork: util.GetEnv("DGRAPH_DOCKER_NETWORK"),
		})
		return loader, noop, nil
	case SinkNone, "":
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown GRAPH_SINK %q", sink)
	}
}

// NewArchiverFromEnv archives to S3 when AWS_BUCKET is set, to ARCHIVE_DIR
// when that is set, and returns nil otherwise.
func NewArchiverFromEnv(ctx context.Context) (Archiver, error) {
	prefix := util.GetEnvString("ARCHIVE_PREFIX", "rdf")
	if bucket := util.GetEnv("AWS_BUCKET"); bucket != "" {
		client, err := storage.NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Archiver(client, bucket, prefix), nil
	}
	if dir := util.GetEnv("ARCHIVE_DIR"); dir != "" {
		return storage.NewLocalArchiver(dir), nil
	}
	return nil, nil
}

// ProcessorFromEnv builds the record processor with the additional missing
// sentinels listed in EXTRA_MISSING_VALUES.
func ProcessorFromEnv() *graph.Processor {
	var extra []string
	if raw := util.GetEnv("EXTRA_MISSING_VALUES"); raw != "" {
		extra = strings.Split(raw, ",")
	}
	return graph.NewProcessor(graph.NewProcessorParams{ExtraSentinels: extra})
}

func newDocumentStore(pool *pgxpool.Pool) *pgxstore.JudgmentStore {
	return pgxstore.NewJudgmentStore(pool, pgxstore.WithChunkSize(util.GetEnvInt("DB_CHUNK_SIZE", 1000)))
}

// NewFromEnv wires an Orchestrator on pool with the sink, archive and limits
// taken from the environment. AUTO_UPLOAD=false makes on-demand runs dry runs
// by default; the poller keeps loading.
func NewFromEnv(ctx context.Context, pool *pgxpool.Pool) (*Orchestrator, func(context.Context) error, error) {
	docs := newDocumentStore(pool)

	loader, closeLoader, err := NewLoaderFromEnv(ctx)
	if err != nil {
		return nil, nil, err
	}
	dryRunOnDemand := !util.GetEnvBool("AUTO_UPLOAD", true)
	if dryRunOnDemand {
		logger.Info("[Ingest] AUTO_UPLOAD disabled, on-demand runs only write interchange files")
	}

	archiver, err := NewArchiverFromEnv(ctx)
	if err != nil {
		_ = closeLoader(ctx)
		return nil, nil, err
	}

	orch, err := NewOrchestrator(NewOrchestratorParams{
		Documents:    docs,
		Runs:         docs,
		Loader:       loader,
		Archiver:     archiver,
		Locker:       leaselock.New(pool),
		Processor:    ProcessorFromEnv(),
		OutputDir:    util.GetEnvString("RDF_OUTPUT_DIR", "data/rdf"),
		BatchSize:    util.GetEnvInt("BATCH_SIZE", 100),
		MaxDocuments: util.GetEnvInt("MAX_DOCUMENTS", 10000),
		LockKey:      util.GetEnvString("INGEST_LOCK_KEY", "lexgraph:ingest"),
		LockTTL:      util.GetEnvDuration("INGEST_LOCK_TTL", 5*time.Minute),
		MarkRetries:  util.GetEnvInt("MARK_RETRIES", 3),

		DryRunOnDemand: dryRunOnDemand,
	})
	if err != nil {
		_ = closeLoader(ctx)
		return nil, nil, err
	}

	logger.Info("[Ingest] Orchestrator ready", "sink", orch.SinkName(), "archive", archiver != nil)
	return orch, closeLoader, nil
}

// NewEmitterFromEnv wires an Orchestrator that only writes interchange files.
// It has no graph sink, archive or lease, so it neither dials the sink nor
// waits for a running worker.
func NewEmitterFromEnv(pool *pgxpool.Pool) (*Orchestrator, error) {
	return NewOrchestrator(NewOrchestratorParams{
		Documents:    newDocumentStore(pool),
		Processor:    ProcessorFromEnv(),
		OutputDir:    util.GetEnvString("RDF_OUTPUT_DIR", "data/rdf"),
		BatchSize:    util.GetEnvInt("BATCH_SIZE", 100),
		MaxDocuments: util.GetEnvInt("MAX_DOCUMENTS", 10000),
	})
}

// LockKey is the lease key runs are serialized on.
func (o *Orchestrator) LockKey() string {
	return o.lockKey
}
