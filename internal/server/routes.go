package server

import (
	"github.com/OFFIS-RIT/lexgraph/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	// Ingestion routes
	e.GET("/status", routes.GetStatusHandler)
	e.POST("/process", routes.ProcessHandler)
	e.GET("/stats", routes.GetStatsHandler)
	e.GET("/runs", routes.GetRunsHandler)

	// Document routes
	e.GET("/documents/count", routes.GetDocumentCountHandler)
	e.GET("/documents/unprocessed", routes.GetUnprocessedDocumentsHandler)
	e.POST("/documents/mark-processed", routes.MarkProcessedHandler)
	e.POST("/documents/reset-processed", routes.ResetProcessedHandler)
}
