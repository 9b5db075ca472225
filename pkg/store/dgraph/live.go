package dgraph

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/rdf"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"
)

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// LiveLoader implements store.GraphLoader with the Dgraph live loader. Each
// identifier predicate is passed as an upsert predicate so nodes of every
// kind are merged with existing ones.
type LiveLoader struct {
	binary     string
	alpha      string
	zero       string
	schemaPath string

	dockerImage   string
	dockerNetwork string

	run runFunc
}

// NewLiveLoaderParams defines the configuration of a LiveLoader.
//
// SchemaPath is written before every load; when empty the schema is written
// next to the batch file. When DockerImage is set the loader runs inside
// "docker run --rm" with the batch directory mounted at /data, otherwise
// Binary (default "dgraph") is executed directly.
type NewLiveLoaderParams struct {
	Binary     string
	Alpha      string
	Zero       string
	SchemaPath string

	DockerImage   string
	DockerNetwork string
}

func NewLiveLoader(params NewLiveLoaderParams) *LiveLoader {
	bin := params.Binary
	if bin == "" {
		bin = "dgraph"
	}
	alpha := params.Alpha
	if alpha == "" {
		alpha = "localhost:9080"
	}
	zero := params.Zero
	if zero == "" {
		zero = "localhost:5080"
	}
	return &LiveLoader{
		binary:        bin,
		alpha:         alpha,
		zero:          zero,
		schemaPath:    params.SchemaPath,
		dockerImage:   params.DockerImage,
		dockerNetwork: params.DockerNetwork,
		run:           execRun,
	}
}

func (l *LiveLoader) Name() string {
	return "dgraph"
}

func (l *LiveLoader) Load(ctx context.Context, batch store.Batch) error {
	if batch.Path == "" {
		return fmt.Errorf("dgraph live loader needs an interchange file")
	}

	schema := l.schemaPath
	if schema == "" {
		schema = filepath.Join(filepath.Dir(batch.Path), "lexgraph.schema")
	}
	if err := rdf.WriteSchemaFile(schema); err != nil {
		return err
	}

	name, args := l.command(batch.Path, schema)
	logger.Info("[Dgraph] Starting live load", "run_id", batch.RunID, "file", batch.Path, "triples", len(batch.Triples))

	out, err := l.run(ctx, name, args...)
	if err != nil {
		return fmt.Errorf("dgraph live load failed: %w: %s", err, tail(out, 2048))
	}
	logger.Debug("[Dgraph] Live load output", "run_id", batch.RunID, "output", tail(out, 2048))
	return nil
}

// command builds the live loader invocation for the given files.
func (l *LiveLoader) command(file, schema string) (string, []string) {
	if l.dockerImage != "" {
		dir := filepath.Dir(file)
		args := []string{"run", "--rm"}
		if l.dockerNetwork != "" {
			args = append(args, "--network", l.dockerNetwork)
		}
		args = append(args, "-v", dir+":/data")
		if filepath.Dir(schema) != dir {
			args = append(args, "-v", filepath.Dir(schema)+":/schema")
			schema = "/schema/" + filepath.Base(schema)
		} else {
			schema = "/data/" + filepath.Base(schema)
		}
		args = append(args, l.dockerImage, "dgraph")
		args = append(args, l.liveArgs("/data/"+filepath.Base(file), schema)...)
		return "docker", args
	}
	return l.binary, l.liveArgs(file, schema)
}

func (l *LiveLoader) liveArgs(file, schema string) []string {
	args := []string{
		"live",
		"--files", file,
		"--schema", schema,
		"--alpha", l.alpha,
		"--zero", l.zero,
	}
	for _, p := range common.IDPredicates() {
		args = append(args, "--upsertPredicate", p)
	}
	return args
}

func tail(out []byte, n int) string {
	s := strings.TrimSpace(string(out))
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
