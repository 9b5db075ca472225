package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/ingest"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/migrations"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/queue"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/timing"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/util"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

func main() {
	util.LoadEnv()
	closeLog := util.InitLogger()
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	if util.GetEnvBool("MIGRATE_ON_START", true) {
		if err := migrations.Up(util.GetEnvString("MIGRATIONS_DIR", "migrations"), databaseURL); err != nil {
			logger.Fatal("Failed to run migrations", "err", err)
		}
	}

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	orch, closeLoader, err := ingest.NewFromEnv(ctx, pgConn)
	if err != nil {
		logger.Fatal("Failed to create orchestrator", "err", err)
	}
	defer closeLoader(context.Background())

	g, gctx := errgroup.WithContext(ctx)

	if util.GetEnvBool("AUTO_PROCESS", true) {
		interval := util.GetEnvDuration("AUTO_PROCESS_INTERVAL", 60*time.Second)
		poller := ingest.NewPoller(orch, interval, ingest.RunOptions{})
		g.Go(func() error {
			return poller.Run(gctx)
		})
	}

	if queue.Enabled() {
		conn, err := queue.Init()
		if err != nil {
			logger.Fatal("Failed to connect to queue", "err", err)
		}
		defer conn.Close()

		g.Go(func() error {
			return consume(gctx, conn, orch)
		})
	}

	if !util.GetEnvBool("AUTO_PROCESS", true) && !queue.Enabled() {
		logger.Warn("AUTO_PROCESS disabled and no queue configured, worker is idle")
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
	}

	logger.Info("Worker started", "sink", orch.SinkName())
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Worker stopped", "err", err)
	}
	logger.Info("Shutdown signal received, exiting...")
}

func consume(ctx context.Context, conn *amqp.Connection, runner queue.Runner) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		return err
	}

	// prefetch=1
	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}

	msgs, err := ch.Consume(
		queue.IngestQueue,
		queue.IngestQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return err
	}

	logger.Info("Listening for messages", "queue", queue.IngestQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping consumer", "queue", queue.IngestQueue)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			startTime := time.Now()
			logger.Info("Received message", "queue", queue.IngestQueue)

			processingErr := queue.ProcessIngestMessage(ctx, runner, msg.Body)
			switch {
			case errors.Is(processingErr, queue.ErrInvalidMessage):
				logger.Error("Dropping invalid message", "queue", queue.IngestQueue, "err", processingErr)
				if err := msg.Nack(false, false); err != nil {
					logger.Error("Failed to nack message", "err", err)
				}
			case processingErr != nil:
				logger.Error("Error processing message", "queue", queue.IngestQueue, "err", processingErr)
				queue.HandleProcessingError(ctx, ch, msg, msg, queue.IngestQueue)
			default:
				if err := msg.Ack(false); err != nil {
					logger.Error("Failed to ack message", "err", err)
				}
				logger.Info("Message processed successfully", "queue", queue.IngestQueue)
			}

			logger.Info("Processing time", "duration", timing.Clock(time.Since(startTime)))
		}
	}
}
