package ingest

import (
	"testing"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/graph"
)

func TestNewEmitterFromEnvHasNoSinkOrLease(t *testing.T) {
	t.Setenv("GRAPH_SINK", SinkNeo4j)
	t.Setenv("NEO4J_URI", "bolt://unreachable:7687")
	t.Setenv("AWS_BUCKET", "archive")
	t.Setenv("RDF_OUTPUT_DIR", t.TempDir())

	o, err := NewEmitterFromEnv(nil)
	if err != nil {
		t.Fatalf("NewEmitterFromEnv: %v", err)
	}
	if o.SinkName() != SinkNone {
		t.Fatalf("sink = %q, want %q", o.SinkName(), SinkNone)
	}
	if o.locker != nil || o.archiver != nil {
		t.Fatalf("emitter must not take the lease or archive files")
	}
}

func TestProcessorFromEnvExtraMissingValues(t *testing.T) {
	t.Setenv("EXTRA_MISSING_VALUES", "unknown, not recorded")

	rec := common.Record{
		ID:         1,
		Title:      "Case A",
		Judges:     []string{"Unknown", "J. Smith", "NOT RECORDED"},
		IngestedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	res := ProcessorFromEnv().RunBatch([]common.Record{rec})
	if n := res.Counts[graph.CountJudges]; n != 1 {
		t.Fatalf("judges = %d, want 1", n)
	}
}
