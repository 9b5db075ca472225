package pgx

import (
	"context"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/util"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/listfield"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

type judgmentRow struct {
	ID                  int64     `db:"id"`
	DocID               *string   `db:"doc_id"`
	Title               string    `db:"title"`
	Year                *int32    `db:"year"`
	Judges              *string   `db:"judges"`
	PetitionerAdvocates *string   `db:"petitioner_advocates"`
	RespondentAdvocates *string   `db:"respondent_advocates"`
	Outcome             *string   `db:"outcome"`
	CaseDuration        *string   `db:"case_duration"`
	Citations           *string   `db:"citations"`
	CreatedAt           time.Time `db:"created_at"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return util.SanitizeText(*s)
}

// toRecord decodes the stored list encodings of a row into a record.
func (r judgmentRow) toRecord() common.Record {
	rec := common.Record{
		ID:                  r.ID,
		DocID:               listfield.ParseScalar(deref(r.DocID)),
		Title:               util.SanitizeText(r.Title),
		Judges:              listfield.Parse(deref(r.Judges)),
		PetitionerAdvocates: listfield.Parse(deref(r.PetitionerAdvocates)),
		RespondentAdvocates: listfield.Parse(deref(r.RespondentAdvocates)),
		Outcome:             listfield.ParseScalar(deref(r.Outcome)),
		Duration:            listfield.ParseScalar(deref(r.CaseDuration)),
		Citations:           listfield.Parse(deref(r.Citations)),
		IngestedAt:          r.CreatedAt.UTC(),
	}
	if r.Year != nil && *r.Year > 0 {
		y := int(*r.Year)
		rec.Year = &y
	}
	return rec
}

func (s *JudgmentStore) queryRecords(ctx context.Context, sql string, args ...any) ([]common.Record, error) {
	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	judgments, err := pgxv5.CollectRows(rows, pgxv5.RowToStructByName[judgmentRow])
	if err != nil {
		return nil, err
	}

	records := make([]common.Record, 0, len(judgments))
	for _, j := range judgments {
		records = append(records, j.toRecord())
	}
	return records, nil
}

// FetchUnprocessed returns up to limit records whose processed flag is not
// set, oldest first.
func (s *JudgmentStore) FetchUnprocessed(ctx context.Context, limit int) ([]common.Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	records, err := s.queryRecords(ctx, fetchUnprocessedSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unprocessed judgments: %w", err)
	}
	return records, nil
}

// FetchByDocIDs returns the records with the given external document
// references regardless of their processed flag.
func (s *JudgmentStore) FetchByDocIDs(ctx context.Context, docIDs []string) ([]common.Record, error) {
	docIDs = store.Dedupe(docIDs)
	if len(docIDs) == 0 {
		return nil, nil
	}
	records, err := s.queryRecords(ctx, fetchByDocIDsSQL, docIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch judgments by doc id: %w", err)
	}
	return records, nil
}

// MarkProcessed sets the processed flag for ids and returns how many rows
// changed.
func (s *JudgmentStore) MarkProcessed(ctx context.Context, ids []int64) (int64, error) {
	ids = store.Dedupe(ids)
	var total int64
	err := store.ChunkRange(len(ids), s.chunkSize, func(start, end int) error {
		tag, err := s.conn.Exec(ctx, markProcessedSQL, ids[start:end])
		if err != nil {
			return fmt.Errorf("failed to mark judgments processed: %w", err)
		}
		total += tag.RowsAffected()
		return nil
	})
	return total, err
}

// ResetProcessed clears the processed flag of the given documents so the
// next run picks them up again.
func (s *JudgmentStore) ResetProcessed(ctx context.Context, docIDs []string) (int64, error) {
	docIDs = store.Dedupe(docIDs)
	var total int64
	err := store.ChunkRange(len(docIDs), s.chunkSize, func(start, end int) error {
		tag, err := s.conn.Exec(ctx, resetProcessedSQL, docIDs[start:end])
		if err != nil {
			return fmt.Errorf("failed to reset processed judgments: %w", err)
		}
		total += tag.RowsAffected()
		return nil
	})
	return total, err
}

// ReportDefects stores the rejection reason of each record. The processed
// flag is left untouched.
func (s *JudgmentStore) ReportDefects(ctx context.Context, defects []store.Defect) error {
	if len(defects) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(defects))
	reasons := make([]string, 0, len(defects))
	for _, d := range defects {
		ids = append(ids, d.RecordID)
		reasons = append(reasons, d.Reason)
	}
	return store.ChunkRange(len(ids), s.chunkSize, func(start, end int) error {
		if _, err := s.conn.Exec(ctx, reportDefectsSQL, ids[start:end], reasons[start:end]); err != nil {
			return fmt.Errorf("failed to report judgment defects: %w", err)
		}
		return nil
	})
}

func (s *JudgmentStore) Counts(ctx context.Context) (store.DocumentCounts, error) {
	var c store.DocumentCounts
	err := s.conn.QueryRow(ctx, countsSQL).Scan(&c.Total, &c.Processed, &c.Unprocessed, &c.Defective)
	if err != nil {
		return c, fmt.Errorf("failed to count judgments: %w", err)
	}
	return c, nil
}

const judgmentColumns = `
id, doc_id, title, year, judges, petitioner_advocates, respondent_advocates,
outcome, case_duration, citations, created_at`

const fetchUnprocessedSQL = `
SELECT` + judgmentColumns + `
FROM judgments
WHERE processed = false
ORDER BY defect_at NULLS FIRST, id
LIMIT $1;
`

const fetchByDocIDsSQL = `
SELECT` + judgmentColumns + `
FROM judgments
WHERE doc_id = ANY($1::text[])
ORDER BY id;
`

const markProcessedSQL = `
UPDATE judgments
SET processed = true,
    processed_at = now(),
    defect = NULL,
    defect_at = NULL
WHERE id = ANY($1::bigint[])
  AND processed = false;
`

const resetProcessedSQL = `
UPDATE judgments
SET processed = false,
    processed_at = NULL
WHERE doc_id = ANY($1::text[])
  AND processed = true;
`

const countsSQL = `
SELECT count(*),
       count(*) FILTER (WHERE processed),
       count(*) FILTER (WHERE NOT processed),
       count(*) FILTER (WHERE NOT processed AND defect_at IS NOT NULL)
FROM judgments;
`

const reportDefectsSQL = `
UPDATE judgments AS j
SET defect = d.reason,
    defect_at = now()
FROM unnest($1::bigint[], $2::text[]) AS d(id, reason)
WHERE j.id = d.id;
`
