package csv

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestReadRecords(t *testing.T) {
	in := "\uFEFFID,Doc_ID,Title,Year,Judges,Petitioner_Advocates,Outcome,Citations,created_at\n" +
		`7,d7,Case A,2019.0,"['J. Smith', 'K. Rao']",Mr. John Doe,Allowed,"[""Case B""]",2024-03-01T12:00:00Z` + "\n" +
		",,,,,,,,\n" +
		`8,d8,Case B,nan,J. Smith,,nan,,` + "\n"

	records, err := ReadRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	a := records[0]
	if a.ID != 7 || a.DocID != "d7" || a.Title != "Case A" {
		t.Fatalf("unexpected record: %+v", a)
	}
	if a.Year == nil || *a.Year != 2019 {
		t.Fatalf("year = %v, want 2019", a.Year)
	}
	if !reflect.DeepEqual(a.Judges, []string{"J. Smith", "K. Rao"}) {
		t.Fatalf("judges = %v", a.Judges)
	}
	if !reflect.DeepEqual(a.PetitionerAdvocates, []string{"Mr. John Doe"}) {
		t.Fatalf("petitioner advocates = %v", a.PetitionerAdvocates)
	}
	if !reflect.DeepEqual(a.Citations, []string{"Case B"}) {
		t.Fatalf("citations = %v", a.Citations)
	}
	if !a.IngestedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("ingested at = %v", a.IngestedAt)
	}

	b := records[1]
	if b.ID != 8 || b.Year != nil || !b.IngestedAt.IsZero() {
		t.Fatalf("unexpected record: %+v", b)
	}
}

func TestReadRecordsNumbersRowsWithoutID(t *testing.T) {
	in := "title\nCase A\n\nCase B\n"
	records, err := ReadRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 2 || records[0].ID != 1 || records[1].ID != 2 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestReadRecordsErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "no title column", in: "doc_id,year\nd1,2020\n"},
		{name: "bad id", in: "id,title\nx,Case A\n"},
		{name: "bad timestamp", in: "title,created_at\nCase A,yesterday\n"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadRecords(strings.NewReader(tc.in)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseYear(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2019", 2019, true},
		{" 2019.0 ", 2019, true},
		{"2019.5", 0, false},
		{"nan", 0, false},
		{"0", 0, false},
		{"9999", 9999, true},
		{"10000", 0, false},
		{"1e300", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got := parseYear(tc.in)
		if (got != nil) != tc.ok || (got != nil && *got != tc.want) {
			t.Fatalf("parseYear(%q) = %v, want %d (ok=%v)", tc.in, got, tc.want, tc.ok)
		}
	}
}
