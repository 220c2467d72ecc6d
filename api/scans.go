package api

import (
	"database/sql"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/nrtkbb/dupescan/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func scanResponse(s db.ScanSummary) ScanResponse {
	return ScanResponse{
		ScanID:                s.ScanID,
		Roots:                 s.Roots,
		StartedAt:             s.StartedAt,
		FinishedAt:            s.FinishedAt,
		DiscoveredFiles:       s.DiscoveredFiles,
		DuplicateFiles:        s.DuplicateFiles,
		DuplicateGroups:       s.DuplicateGroups,
		PotentialSavings:      s.PotentialSavings,
		PotentialSavingsHuman: humanize.IBytes(s.PotentialSavings),
	}
}

// ListScans returns stored scans, newest first, paginated
func (h *Handler) ListScans(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "ListScans")
	defer span.End()

	c.SetRequest(c.Request().WithContext(ctx))

	total, err := db.CountScans(h.db)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count scans")
	}

	page, err := h.getPageFromQuery(c, total)
	if err != nil {
		span.RecordError(err)
		return err
	}

	scans, err := db.ListScans(h.db, defaultPerPage, (page-1)*defaultPerPage)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list scans")
	}

	responses := make([]ScanResponse, len(scans))
	for i, s := range scans {
		responses[i] = scanResponse(s)
	}

	return c.JSON(http.StatusOK, NewPaginatedResponse(c, responses, page, defaultPerPage, total))
}

// GetScan returns one stored scan summary
func (h *Handler) GetScan(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "GetScan")
	defer span.End()

	c.SetRequest(c.Request().WithContext(ctx))

	scanID, err := h.getScanIDFromPath(c)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int64("scan_id", scanID))

	summary, err := db.GetScan(h.db, scanID)
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "Scan not found")
	}
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load scan")
	}

	return c.JSON(http.StatusOK, scanResponse(summary))
}

// ListScanGroups returns a scan's duplicate groups in report order, paginated
func (h *Handler) ListScanGroups(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "ListScanGroups")
	defer span.End()

	c.SetRequest(c.Request().WithContext(ctx))

	scanID, err := h.getScanIDFromPath(c)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int64("scan_id", scanID))

	if _, err := db.GetScan(h.db, scanID); err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "Scan not found")
	} else if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load scan")
	}

	total, err := db.CountGroups(h.db, scanID)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count groups")
	}

	page, err := h.getPageFromQuery(c, total)
	if err != nil {
		span.RecordError(err)
		return err
	}

	groups, err := db.ListGroups(h.db, scanID, defaultPerPage, (page-1)*defaultPerPage)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list groups")
	}

	responses := make([]GroupResponse, len(groups))
	for i, g := range groups {
		responses[i] = GroupResponse{
			SizeBytes:      g.SizeBytes,
			SizeBytesHuman: humanize.IBytes(g.SizeBytes),
			SHA256:         g.SHA256,
			Paths:          g.Paths,
		}
	}

	return c.JSON(http.StatusOK, NewPaginatedResponse(c, responses, page, defaultPerPage, total))
}
