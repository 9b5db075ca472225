package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/lexgraph/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

func GetDocumentCountHandler(c echo.Context) error {
	app := middleware.GetApp(c)
	counts, err := app.Documents.Counts(c.Request().Context())
	if err != nil {
		logger.Error("[Server] Failed to count documents", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, counts)
}

func GetUnprocessedDocumentsHandler(c echo.Context) error {
	type getUnprocessedParams struct {
		Limit int `query:"limit" validate:"omitempty,min=1,max=10000"`
	}

	params := new(getUnprocessedParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if params.Limit == 0 {
		params.Limit = 100
	}

	app := middleware.GetApp(c)
	records, err := app.Documents.FetchUnprocessed(c.Request().Context(), params.Limit)
	if err != nil {
		logger.Error("[Server] Failed to fetch unprocessed documents", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if records == nil {
		records = []common.Record{}
	}

	return c.JSON(http.StatusOK, records)
}

func MarkProcessedHandler(c echo.Context) error {
	type markProcessedData struct {
		IDs []int64 `json:"ids" validate:"required,min=1,max=10000,dive,min=1"`
	}

	data := new(markProcessedData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := middleware.GetApp(c)
	n, err := app.Documents.MarkProcessed(c.Request().Context(), data.IDs)
	if err != nil {
		logger.Error("[Server] Failed to mark documents processed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]int64{"updated": n})
}

func ResetProcessedHandler(c echo.Context) error {
	type resetProcessedData struct {
		DocIDs []string `json:"doc_ids" validate:"required,min=1,max=10000,dive,required"`
	}

	data := new(resetProcessedData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	app := middleware.GetApp(c)
	n, err := app.Documents.ResetProcessed(c.Request().Context(), data.DocIDs)
	if err != nil {
		logger.Error("[Server] Failed to reset processed flag", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]int64{"updated": n})
}
