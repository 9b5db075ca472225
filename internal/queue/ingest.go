package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/ingest"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"

	"github.com/rabbitmq/amqp091-go"
)

// IngestMessage requests one ingestion run. An empty message processes the
// next batch of unprocessed documents.
type IngestMessage struct {
	DocIDs []string `json:"doc_ids,omitempty"`
	Force  bool     `json:"force,omitempty"`
	DryRun bool     `json:"dry_run,omitempty"`
	Limit  int      `json:"limit,omitempty"`
}

func (m IngestMessage) options() ingest.RunOptions {
	return ingest.RunOptions{
		Limit:    m.Limit,
		DocIDs:   store.Dedupe(m.DocIDs),
		Force:    m.Force,
		DryRun:   m.DryRun,
		OnDemand: true,
	}
}

// Runner executes an ingestion run.
type Runner interface {
	RunOnce(ctx context.Context, opts ingest.RunOptions) (ingest.RunResult, error)
}

// DecodeIngestMessage parses a message body. A blank body is an empty
// request.
func DecodeIngestMessage(body []byte) (IngestMessage, error) {
	var msg IngestMessage
	if len(body) == 0 {
		return msg, nil
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("invalid ingest message: %w", err)
	}
	if msg.Limit < 0 {
		return msg, fmt.Errorf("invalid ingest message: negative limit %d", msg.Limit)
	}
	if msg.Force && len(msg.DocIDs) == 0 {
		return msg, fmt.Errorf("invalid ingest message: force requires doc_ids")
	}
	return msg, nil
}

// EnqueueIngest publishes msg to IngestQueue.
func EnqueueIngest(ctx context.Context, ch channel, msg IngestMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := PublishFIFO(ctx, ch, IngestQueue, data); err != nil {
		return fmt.Errorf("failed to enqueue ingest request: %w", err)
	}
	return nil
}

// ErrInvalidMessage wraps messages that can never succeed. They are
// dropped instead of retried.
var ErrInvalidMessage = errors.New("invalid message")

// ProcessIngestMessage runs one ingestion for the message body. A busy
// orchestrator is reported as an error so the message goes to the retry
// queue.
func ProcessIngestMessage(ctx context.Context, runner Runner, body []byte) error {
	msg, err := DecodeIngestMessage(body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	res, err := runner.RunOnce(ctx, msg.options())
	if err != nil {
		return err
	}

	logger.Info(
		"[Queue] Ingest request processed",
		"run_id", res.RunID,
		"status", res.Status,
		"documents", res.Documents,
		"marked", res.Marked,
	)
	return nil
}

// Publisher enqueues ingest requests on a channel.
type Publisher struct {
	ch channel
}

func NewPublisher(ch *amqp091.Channel) *Publisher {
	return &Publisher{ch: ch}
}

func (p *Publisher) Enqueue(ctx context.Context, msg IngestMessage) error {
	return EnqueueIngest(ctx, p.ch, msg)
}
