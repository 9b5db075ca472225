package dgraph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"
)

func TestCommandNative(t *testing.T) {
	l := NewLiveLoader(NewLiveLoaderParams{Alpha: "alpha:9080", Zero: "zero:5080"})
	name, args := l.command("/tmp/out/batch.rdf", "/tmp/out/lexgraph.schema")

	if name != "dgraph" {
		t.Fatalf("name = %q, want dgraph", name)
	}
	want := []string{
		"live",
		"--files", "/tmp/out/batch.rdf",
		"--schema", "/tmp/out/lexgraph.schema",
		"--alpha", "alpha:9080",
		"--zero", "zero:5080",
		"--upsertPredicate", "case_id",
		"--upsertPredicate", "judge_id",
		"--upsertPredicate", "advocate_id",
		"--upsertPredicate", "outcome_id",
		"--upsertPredicate", "case_duration_id",
	}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v\nwant   %v", args, want)
	}
}

func TestCommandDocker(t *testing.T) {
	l := NewLiveLoader(NewLiveLoaderParams{
		DockerImage:   "dgraph/dgraph:v23.1.0",
		DockerNetwork: "dgraph-net",
		Alpha:         "dgraph:9080",
		Zero:          "dgraph:5080",
	})
	name, args := l.command("/srv/rdf/batch.rdf", "/etc/lexgraph/lexgraph.schema")

	if name != "docker" {
		t.Fatalf("name = %q, want docker", name)
	}
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"run --rm --network dgraph-net",
		"-v /srv/rdf:/data",
		"-v /etc/lexgraph:/schema",
		"dgraph/dgraph:v23.1.0 dgraph live",
		"--files /data/batch.rdf",
		"--schema /schema/lexgraph.schema",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q lack %q", joined, want)
		}
	}
}

func TestLoadWritesSchemaAndReportsFailure(t *testing.T) {
	dir := t.TempDir()
	batchPath := filepath.Join(dir, "batch.rdf")

	var gotName string
	l := NewLiveLoader(NewLiveLoaderParams{})
	l.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		return []byte("connection refused"), errors.New("exit status 1")
	}

	err := l.Load(context.Background(), store.Batch{RunID: "r1", Path: batchPath})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped loader output, got %v", err)
	}
	if gotName != "dgraph" {
		t.Fatalf("ran %q, want dgraph", gotName)
	}
	if _, err := os.Stat(filepath.Join(dir, "lexgraph.schema")); err != nil {
		t.Fatalf("schema file not written: %v", err)
	}
}

func TestLoadRequiresFile(t *testing.T) {
	l := NewLiveLoader(NewLiveLoaderParams{})
	if err := l.Load(context.Background(), store.Batch{}); err == nil {
		t.Fatal("expected error without interchange file")
	}
}

func TestTail(t *testing.T) {
	if got := tail([]byte("  short \n"), 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := tail([]byte("abcdefghij"), 4); got != "...ghij" {
		t.Fatalf("got %q", got)
	}
}
