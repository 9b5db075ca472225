package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/ingest"
	"github.com/OFFIS-RIT/lexgraph/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetStatusHandler reports the local orchestrator and the current lease
// holder, if any.
func GetStatusHandler(c echo.Context) error {
	type statusResponse struct {
		ingest.Status
		Queue  bool              `json:"queue"`
		Holder *leaselock.Holder `json:"lease_holder,omitempty"`
	}

	app := middleware.GetApp(c)
	res := statusResponse{
		Status: app.Ingest.Status(),
		Queue:  app.Queue != nil,
	}

	if app.Lease != nil {
		holder, err := app.Lease.Holder(c.Request().Context(), app.LeaseKey)
		if err != nil {
			logger.Warn("[Server] Failed to read lease holder", "err", err)
		} else {
			res.Holder = holder
		}
	}

	return c.JSON(http.StatusOK, res)
}

// GetStatsHandler combines document counts with the run history summary.
func GetStatsHandler(c echo.Context) error {
	type statsResponse struct {
		Documents store.DocumentCounts `json:"documents"`
		Runs      *store.RunStats      `json:"runs,omitempty"`
		Status    ingest.Status        `json:"status"`
	}

	app := middleware.GetApp(c)
	ctx := c.Request().Context()

	counts, err := app.Documents.Counts(ctx)
	if err != nil {
		logger.Error("[Server] Failed to count documents", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	res := statsResponse{Documents: counts, Status: app.Ingest.Status()}
	if app.Runs != nil {
		stats, err := app.Runs.RunStats(ctx)
		if err != nil {
			logger.Error("[Server] Failed to read run stats", "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		res.Runs = &stats
	}

	return c.JSON(http.StatusOK, res)
}

// GetRunsHandler lists the latest runs, newest first.
func GetRunsHandler(c echo.Context) error {
	type getRunsParams struct {
		Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
	}

	params := new(getRunsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if params.Limit == 0 {
		params.Limit = 20
	}

	app := middleware.GetApp(c)
	if app.Runs == nil {
		return c.JSON(http.StatusOK, []store.Run{})
	}

	runs, err := app.Runs.LatestRuns(c.Request().Context(), params.Limit)
	if err != nil {
		logger.Error("[Server] Failed to list runs", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if runs == nil {
		runs = []store.Run{}
	}

	return c.JSON(http.StatusOK, runs)
}
