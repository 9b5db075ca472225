package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadRecords(t *testing.T) {
	in := `{"id":1,"doc_id":"d1","title":"Case A","judges":["J. Smith"]}
{"id":2,"doc_id":"d2","title":"Case B","citations":["Case A"]}
`
	records, err := readRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("readRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Title != "Case A" || len(records[0].Judges) != 1 || records[1].Citations[0] != "Case A" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestReadRecordsReportsLine(t *testing.T) {
	in := `{"id":1,"title":"Case A"}
{"id":`
	_, err := readRecords(strings.NewReader(in))
	if err == nil || !strings.Contains(err.Error(), "record 2") {
		t.Fatalf("err = %v, want error naming record 2", err)
	}
}

func TestEmitFromFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "records.jsonl")
	out := filepath.Join(dir, "out", "batch.rdf")
	data := `{"id":1,"title":"Case A","judges":["J. Smith"],"ingested_at":"2024-03-01T12:00:00Z"}
{"id":2,"title":"nan"}
`
	if err := os.WriteFile(input, []byte(data), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	humanOutput = true
	defer func() { humanOutput = false }()

	if err := emitFromFile(input, out); err != nil {
		t.Fatalf("emitFromFile: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(got), `<title> "Case A" .`) {
		t.Fatalf("output missing case title:\n%s", got)
	}
	if !strings.Contains(string(got), "_:case_00a7f751") {
		t.Fatalf("output missing case node:\n%s", got)
	}
}

func TestEmitFromCSV(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "records.csv")
	out := filepath.Join(dir, "batch.rdf")
	data := "id,title,judges,citations\n1,Case A,J. Smith,\n2,Case B,J. Smith,\"['Case A']\"\n"
	if err := os.WriteFile(input, []byte(data), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	humanOutput = true
	defer func() { humanOutput = false }()

	if err := emitFromFile(input, out); err != nil {
		t.Fatalf("emitFromFile: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Count(string(got), "<judged_by>") != 2 || strings.Count(string(got), "<cites>") != 1 {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestEmitFromFileHonoursExtraMissingValues(t *testing.T) {
	t.Setenv("EXTRA_MISSING_VALUES", "unknown,not recorded")

	dir := t.TempDir()
	input := filepath.Join(dir, "records.jsonl")
	out := filepath.Join(dir, "batch.rdf")
	data := `{"id":1,"title":"Case A","judges":["Unknown","J. Smith"," NOT RECORDED "]}
`
	if err := os.WriteFile(input, []byte(data), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	humanOutput = true
	defer func() { humanOutput = false }()

	if err := emitFromFile(input, out); err != nil {
		t.Fatalf("emitFromFile: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if n := strings.Count(string(got), "<judged_by>"); n != 1 {
		t.Fatalf("judged_by edges = %d, want 1:\n%s", n, got)
	}
}
