package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// JudgmentStore implements store.DocumentStore and store.RunStore on top of
// PostgreSQL. It works with a *pgxpool.Pool, a single *pgx.Conn or a
// transaction.
type JudgmentStore struct {
	conn      pgxIConn
	chunkSize int
}

type JudgmentStoreOption func(*JudgmentStore)

// WithChunkSize sets how many ids are sent per UPDATE statement.
func WithChunkSize(n int) JudgmentStoreOption {
	return func(s *JudgmentStore) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// NewJudgmentStore creates a JudgmentStore using an existing connection.
func NewJudgmentStore(conn pgxIConn, opts ...JudgmentStoreOption) *JudgmentStore {
	s := &JudgmentStore{
		conn:      conn,
		chunkSize: 1000,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}
