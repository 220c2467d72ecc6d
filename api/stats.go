package api

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/nrtkbb/dupescan/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// GetStats returns aggregate statistics across all stored scans
func (h *Handler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "GetStats")
	defer span.End()

	c.SetRequest(c.Request().WithContext(ctx))

	stats, err := db.AggregateStats(h.db)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to aggregate stats")
	}

	span.SetAttributes(
		attribute.Int64("scans", stats.Scans),
		attribute.Int64("duplicate_groups", stats.DuplicateGroups),
	)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"scans":                   stats.Scans,
		"duplicate_groups":        stats.DuplicateGroups,
		"duplicate_files":         stats.DuplicateFiles,
		"potential_savings":       stats.PotentialSavings,
		"potential_savings_human": humanize.IBytes(stats.PotentialSavings),
	})
}
