package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestNewPaginatedResponse(t *testing.T) {
	c := testContext(t, "/api/scans")

	resp := NewPaginatedResponse(c, []ScanResponse{{ScanID: 1}}, 1, 100, 250)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 100, resp.PerPage)
	assert.Equal(t, 250, resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	assert.True(t, resp.HasNext)

	resp = NewPaginatedResponse(c, []ScanResponse{}, 3, 100, 250)
	assert.False(t, resp.HasNext)
}

func TestGetPageFromQuery(t *testing.T) {
	h := NewHandler(nil)

	page, err := h.getPageFromQuery(testContext(t, "/api/scans"), 250)
	require.NoError(t, err)
	assert.Equal(t, 1, page, "missing page parameter defaults to the first page")

	page, err = h.getPageFromQuery(testContext(t, "/api/scans?page=2"), 250)
	require.NoError(t, err)
	assert.Equal(t, 2, page)

	_, err = h.getPageFromQuery(testContext(t, "/api/scans?page=0"), 250)
	assert.Error(t, err)

	_, err = h.getPageFromQuery(testContext(t, "/api/scans?page=nope"), 250)
	assert.Error(t, err)

	_, err = h.getPageFromQuery(testContext(t, "/api/scans?page=9"), 250)
	assert.Error(t, err, "page beyond the last is rejected")
}

func TestGetScanIDFromPath(t *testing.T) {
	h := NewHandler(nil)

	c := testContext(t, "/api/scans/7")
	c.SetParamNames("id")
	c.SetParamValues("7")
	id, err := h.getScanIDFromPath(c)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	c = testContext(t, "/api/scans/x")
	c.SetParamNames("id")
	c.SetParamValues("x")
	_, err = h.getScanIDFromPath(c)
	assert.Error(t, err)
}
