package middleware

import (
	"context"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/ingest"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/queue"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// Ingestor is the in-process orchestrator.
type Ingestor interface {
	RunOnce(ctx context.Context, opts ingest.RunOptions) (ingest.RunResult, error)
	Status() ingest.Status
}

// Enqueuer hands ingest requests to the worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg queue.IngestMessage) error
}

// LeaseInspector reports which process holds a lease.
type LeaseInspector interface {
	Holder(ctx context.Context, key string) (*leaselock.Holder, error)
}

type App struct {
	Documents store.DocumentStore
	Runs      store.RunStore
	Ingest    Ingestor
	// Queue is nil when no broker is configured; requests then run in
	// this process.
	Queue    Enqueuer
	Lease    LeaseInspector
	LeaseKey string
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}

// GetApp returns the App stored by AppContextMiddleware.
func GetApp(c echo.Context) *App {
	return c.(*AppContext).App
}
