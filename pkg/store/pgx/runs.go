package pgx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
)

// RecordRun appends a finished run to the ingest_runs table.
func (s *JudgmentStore) RecordRun(ctx context.Context, run store.Run) error {
	counts, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("failed to marshal run counts: %w", err)
	}
	_, err = s.conn.Exec(ctx, insertRunSQL,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		run.Status,
		run.Sink,
		run.Documents,
		run.Accepted,
		run.Rejected,
		run.Marked,
		run.Triples,
		counts,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// LatestRuns returns the most recent runs, newest first.
func (s *JudgmentStore) LatestRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(ctx, latestRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	runs, err := pgxv5.CollectRows(rows, func(row pgxv5.CollectableRow) (store.Run, error) {
		var r store.Run
		var counts []byte
		err := row.Scan(
			&r.ID,
			&r.StartedAt,
			&r.FinishedAt,
			&r.Status,
			&r.Sink,
			&r.Documents,
			&r.Accepted,
			&r.Rejected,
			&r.Marked,
			&r.Triples,
			&counts,
			&r.Error,
		)
		if err != nil {
			return r, err
		}
		if len(counts) > 0 {
			if err := json.Unmarshal(counts, &r.Counts); err != nil {
				return r, err
			}
		}
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan runs: %w", err)
	}
	return runs, nil
}

func (s *JudgmentStore) RunStats(ctx context.Context) (store.RunStats, error) {
	var st store.RunStats
	var last *time.Time
	err := s.conn.QueryRow(ctx, runStatsSQL).Scan(
		&st.Runs,
		&st.Succeeded,
		&st.Failed,
		&st.DocumentsMarked,
		&st.TriplesLoaded,
		&last,
	)
	if err != nil {
		return st, fmt.Errorf("failed to aggregate runs: %w", err)
	}
	st.LastSuccess = last
	return st, nil
}

const insertRunSQL = `
INSERT INTO ingest_runs (
    id, started_at, finished_at, status, sink, documents, accepted,
    rejected, marked, triples, counts, error
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING;
`

const latestRunsSQL = `
SELECT id, started_at, finished_at, status, sink, documents, accepted,
       rejected, marked, triples, counts, error
FROM ingest_runs
ORDER BY started_at DESC
LIMIT $1;
`

const runStatsSQL = `
SELECT count(*),
       count(*) FILTER (WHERE status = 'succeeded'),
       count(*) FILTER (WHERE status = 'failed'),
       coalesce(sum(marked) FILTER (WHERE status = 'succeeded'), 0)::bigint,
       coalesce(sum(triples) FILTER (WHERE status = 'succeeded'), 0)::bigint,
       max(finished_at) FILTER (WHERE status = 'succeeded')
FROM ingest_runs;
`
