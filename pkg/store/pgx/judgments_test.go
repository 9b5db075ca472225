package pgx

import (
	"reflect"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestJudgmentRowToRecord(t *testing.T) {
	year := int32(2014)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	row := judgmentRow{
		ID:                  42,
		DocID:               strPtr(" doc-42 "),
		Title:               "Union v. Sharma\x00",
		Year:                &year,
		Judges:              strPtr(`['A. Kumar', 'B. Iyer']`),
		PetitionerAdvocates: strPtr(`["P. One"]`),
		RespondentAdvocates: nil,
		Outcome:             strPtr("nan"),
		CaseDuration:        strPtr("2 years"),
		Citations:           strPtr(`{'cited_cases': ['Old v. New']}`),
		CreatedAt:           created,
	}

	rec := row.toRecord()

	if rec.ID != 42 || rec.DocID != "doc-42" {
		t.Fatalf("unexpected identity fields: %+v", rec)
	}
	if rec.Title != "Union v. Sharma" {
		t.Fatalf("title = %q", rec.Title)
	}
	if rec.Year == nil || *rec.Year != 2014 {
		t.Fatalf("year = %v", rec.Year)
	}
	if !reflect.DeepEqual(rec.Judges, []string{"A. Kumar", "B. Iyer"}) {
		t.Fatalf("judges = %v", rec.Judges)
	}
	if !reflect.DeepEqual(rec.PetitionerAdvocates, []string{"P. One"}) {
		t.Fatalf("petitioner advocates = %v", rec.PetitionerAdvocates)
	}
	if rec.RespondentAdvocates != nil {
		t.Fatalf("respondent advocates = %v, want nil", rec.RespondentAdvocates)
	}
	if rec.Outcome != "" {
		t.Fatalf("outcome = %q, want empty", rec.Outcome)
	}
	if rec.Duration != "2 years" {
		t.Fatalf("duration = %q", rec.Duration)
	}
	if !reflect.DeepEqual(rec.Citations, []string{"Old v. New"}) {
		t.Fatalf("citations = %v", rec.Citations)
	}
	if !rec.IngestedAt.Equal(created) || rec.IngestedAt.Location() != time.UTC {
		t.Fatalf("ingested at = %v", rec.IngestedAt)
	}
}

func TestJudgmentRowToRecordZeroYear(t *testing.T) {
	zero := int32(0)
	rec := judgmentRow{ID: 1, Title: "A", Year: &zero}.toRecord()
	if rec.Year != nil {
		t.Fatalf("year = %v, want nil", *rec.Year)
	}
}

func TestNewJudgmentStoreOptions(t *testing.T) {
	s := NewJudgmentStore(nil, WithChunkSize(10), nil, WithChunkSize(-1))
	if s.chunkSize != 10 {
		t.Fatalf("chunk size = %d, want 10", s.chunkSize)
	}
}
