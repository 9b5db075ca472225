package neo4j

import (
	"context"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Loader implements store.GraphLoader by merging nodes on their id
// property. Attributes of an existing node are overwritten key by key and
// never removed, so a citation-only Case loaded after the full record keeps
// the record's attributes.
type Loader struct {
	client    *Client
	chunkSize int

	schemaOnce sync.Once
}

type LoaderOption func(*Loader)

// WithChunkSize sets the number of rows per UNWIND statement.
func WithChunkSize(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.chunkSize = n
		}
	}
}

func NewLoader(client *Client, opts ...LoaderOption) *Loader {
	l := &Loader{
		client:    client,
		chunkSize: 500,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

func (l *Loader) Name() string {
	return "neo4j"
}

func (l *Loader) Load(ctx context.Context, batch store.Batch) error {
	if l.client == nil || l.client.Driver == nil {
		return fmt.Errorf("neo4j client is not configured")
	}
	rows, err := toRows(batch.Triples)
	if err != nil {
		return fmt.Errorf("failed to convert batch %s: %w", batch.RunID, err)
	}

	session := l.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: l.client.Database,
	})
	defer session.Close(ctx)

	l.schemaOnce.Do(func() { l.ensureConstraints(ctx, session) })

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, label := range sortedLabels(rows.Nodes) {
			q := fmt.Sprintf("UNWIND $rows AS r\nMERGE (n:%s {id: r.id})\nSET n += r", label)
			if err := runChunked(ctx, tx, q, rows.Nodes[label], l.chunkSize); err != nil {
				return nil, fmt.Errorf("failed to merge %s nodes: %w", label, err)
			}
		}
		for _, k := range sortedEdgeKeys(rows.Edges) {
			q := fmt.Sprintf(
				"UNWIND $rows AS r\nMERGE (a:%s {id: r.from})\nMERGE (b:%s {id: r.to})\nMERGE (a)-[:%s]->(b)",
				k.From, k.To, k.Rel,
			)
			if err := runChunked(ctx, tx, q, rows.Edges[k], l.chunkSize); err != nil {
				return nil, fmt.Errorf("failed to merge %s edges: %w", k.Rel, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	logger.Debug("[Neo4j] Batch merged", "run_id", batch.RunID, "labels", len(rows.Nodes), "edge_groups", len(rows.Edges))
	return nil
}

func runChunked(ctx context.Context, tx neo4j.ManagedTransaction, query string, rows []map[string]any, size int) error {
	return store.ChunkRange(len(rows), size, func(start, end int) error {
		res, err := tx.Run(ctx, query, map[string]any{"rows": rows[start:end]})
		if err != nil {
			return err
		}
		_, err = res.Consume(ctx)
		return err
	})
}

func (l *Loader) ensureConstraints(ctx context.Context, session neo4j.SessionWithContext) {
	for label := range labels {
		q := fmt.Sprintf(
			"CREATE CONSTRAINT %s_id_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE",
			label, label,
		)
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			logger.Warn("[Neo4j] Schema init failed (continuing)", "label", label, "err", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
}
