package routes

import (
	"context"
	"net/http"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/ingest"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/queue"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ProcessHandler triggers an ingestion run. With a broker the request is
// queued for the worker; otherwise it starts in the background here.
func ProcessHandler(c echo.Context) error {
	type processData struct {
		DocIDs []string `json:"doc_ids" validate:"omitempty,max=10000,dive,required"`
		Force  bool     `json:"force"`
		DryRun bool     `json:"dry_run"`
		Limit  int      `json:"limit" validate:"omitempty,min=1,max=100000"`
	}

	data := new(processData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if data.Force && len(data.DocIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "force requires doc_ids"})
	}

	msg := queue.IngestMessage{
		DocIDs: data.DocIDs,
		Force:  data.Force,
		DryRun: data.DryRun,
		Limit:  data.Limit,
	}

	app := middleware.GetApp(c)
	ctx := c.Request().Context()

	if app.Queue != nil {
		if err := app.Queue.Enqueue(ctx, msg); err != nil {
			logger.Error("[Server] Failed to enqueue ingest request", "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to queue request"})
		}
		return c.JSON(http.StatusAccepted, map[string]string{"message": "Ingestion queued"})
	}

	if app.Ingest.Status().Processing {
		return c.JSON(http.StatusConflict, map[string]string{"error": ingest.ErrBusy.Error()})
	}

	opts := ingest.RunOptions{
		Limit:    msg.Limit,
		DocIDs:   msg.DocIDs,
		Force:    msg.Force,
		DryRun:   msg.DryRun,
		OnDemand: true,
	}
	go func(ctx context.Context) {
		if _, err := app.Ingest.RunOnce(ctx, opts); err != nil {
			logger.Error("[Server] Ingestion run failed", "err", err)
		}
	}(context.WithoutCancel(ctx))

	return c.JSON(http.StatusAccepted, map[string]string{"message": "Ingestion started"})
}
