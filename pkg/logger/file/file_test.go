package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lexgraph.log")

	l, err := NewFileLogger(FileLoggerParams{Path: path, Level: "debug"})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	l.Info("[Test] first", "run_id", "abc")
	l.Debug("[Test] second")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	l, err = NewFileLogger(FileLoggerParams{Path: path})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	l.Debug("[Test] filtered")
	l.Warn("[Test] third")
	_ = l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	for _, want := range []string{"[Test] first", "run_id=abc", "[Test] second", "[Test] third"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log file lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[Test] filtered") {
		t.Fatalf("debug line written at info level:\n%s", out)
	}
}

func TestNewFileLoggerRequiresPath(t *testing.T) {
	if _, err := NewFileLogger(FileLoggerParams{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
