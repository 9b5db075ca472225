package rdf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
)

func TestFormatTriple(t *testing.T) {
	tests := []struct {
		name string
		in   common.Triple
		want string
	}{
		{
			name: "literal",
			in:   common.Triple{Subject: "case_00a7f751", Predicate: "title", Object: "Case A"},
			want: `_:case_00a7f751 <title> "Case A" .`,
		},
		{
			name: "escaped literal",
			in:   common.Triple{Subject: "case_1", Predicate: "title", Object: "The \"Big\" Case\\\nPart 2"},
			want: `_:case_1 <title> "The \"Big\" Case\\\nPart 2" .`,
		},
		{
			name: "reference",
			in:   common.Triple{Subject: "case_1", Predicate: "judged_by", Object: "judge_2", Ref: true},
			want: `_:case_1 <judged_by> _:judge_2 .`,
		},
		{
			name: "typed literal",
			in:   common.Triple{Subject: "case_1", Predicate: "year", Object: "2020", Datatype: common.DatatypeInt},
			want: `_:case_1 <year> "2020"^^<xs:int> .`,
		},
		{
			name: "type predicate",
			in:   common.Triple{Subject: "case_1", Predicate: common.PredType, Object: common.TypeCase},
			want: `_:case_1 <dgraph.type> "Case" .`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatTriple(tc.in); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestWriteFileReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "batch.rdf")

	first := []common.Triple{
		{Subject: "a", Predicate: "p", Object: "1"},
		{Subject: "a", Predicate: "q", Object: "b", Ref: true},
	}
	if err := WriteFile(path, first); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, first[:1]); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "_:a <p> \"1\" .\n"
	if string(data) != want {
		t.Fatalf("got %q, want %q", data, want)
	}
}

func TestWriteNQuadsDeterministic(t *testing.T) {
	triples := []common.Triple{
		{Subject: "a", Predicate: "p", Object: "x"},
		{Subject: "b", Predicate: "p", Object: "y"},
	}
	var b1, b2 bytes.Buffer
	if err := WriteNQuads(&b1, triples); err != nil {
		t.Fatal(err)
	}
	if err := WriteNQuads(&b2, triples); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b1.Bytes(), b2.Bytes()) {
		t.Fatal("output differs between runs")
	}
	if strings.Count(b1.String(), "\n") != 2 {
		t.Fatalf("expected 2 lines, got %q", b1.String())
	}
}

func TestSchema(t *testing.T) {
	s := Schema()
	for _, p := range common.IDPredicates() {
		if !strings.Contains(s, p+": string @index(exact) @upsert .") {
			t.Fatalf("schema lacks upsert predicate %s:\n%s", p, s)
		}
	}
	if !strings.Contains(s, "cites: [uid] @reverse .") {
		t.Fatalf("schema lacks reverse cites edge:\n%s", s)
	}
	for _, typ := range []string{common.TypeCase, common.TypeJudge, common.TypeAdvocate, common.TypeOutcome, common.TypeDuration} {
		if !strings.Contains(s, "type "+typ+" {") {
			t.Fatalf("schema lacks type %s", typ)
		}
	}
}
