package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nrtkbb/dupescan/db"
	"github.com/nrtkbb/dupescan/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededHandler(t *testing.T) (*Handler, int64) {
	t.Helper()
	database, err := db.SetupDatabase(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	rep := &models.Report{
		Roots: []string{"/data"},
		Groups: []models.DuplicateGroup{
			{SizeBytes: 1024, SHA256: "aa", Paths: []string{"/data/a", "/data/b"}},
		},
		Started:  time.Now().Add(-time.Minute),
		Finished: time.Now(),
	}
	scanID, err := db.SaveReport(database, rep, 42)
	require.NoError(t, err)

	return NewHandler(database), scanID
}

func TestGetScanHandler(t *testing.T) {
	h, scanID := seededHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/scans/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.GetScan(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, scanID, resp.ScanID)
	assert.Equal(t, int64(42), resp.DiscoveredFiles)
	assert.Equal(t, "1.0 KiB", resp.PotentialSavingsHuman)
}

func TestGetScanHandlerNotFound(t *testing.T) {
	h, _ := seededHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/scans/999", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("999")

	err := h.GetScan(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestListScanGroupsHandler(t *testing.T) {
	h, _ := seededHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/scans/1/groups", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.ListScanGroups(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []GroupResponse `json:"data"`
		Total int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, []string{"/data/a", "/data/b"}, resp.Data[0].Paths)
}
