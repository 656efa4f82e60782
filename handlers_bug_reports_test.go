package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBugReportSubmit(t *testing.T) {
	s := newTestServer(t, allFeatures, "")

	rec := s.do(http.MethodPost, "/api/bug-report", `{"message":"arc image broken","modes":["arcs"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp CreateBugReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.ID)

	reports, err := s.store.RecentBugReports(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, resp.ID, reports[0].ID.String())
	assert.Equal(t, []string{"arcs"}, reports[0].Modes)
}

func TestBugReportRejectsInvalidPayloads(t *testing.T) {
	s := newTestServer(t, allFeatures, "")
	for _, body := range []string{
		`{"message":"","modes":["arcs"]}`,
		`{"message":"broken","modes":[]}`,
		`{"message":"broken"}`,
		`not json`,
	} {
		rec := s.do(http.MethodPost, "/api/bug-report", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec.Body.Bytes()).Error, body)
	}
}

func TestBugReportsDisabled(t *testing.T) {
	s := newTestServer(t, FeatureFlags{}, "")
	rec := s.do(http.MethodPost, "/api/bug-report", `{"message":"x","modes":["arcs"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminBugReports(t *testing.T) {
	s := newTestServer(t, allFeatures, "s3cret")
	s.do(http.MethodPost, "/api/bug-report", `{"message":"one","modes":["items"]}`)
	s.do(http.MethodPost, "/api/bug-report", `{"message":"two","modes":["items"]}`)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/bug-reports?limit=1", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The bare token without its scheme is refused.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/bug-reports?limit=1", nil)
	req.Header.Set("Authorization", "s3cret")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/bug-reports?limit=1", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BugReportsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "two", resp.Reports[0].Message)
}

func TestAdminBugReportsWithoutToken(t *testing.T) {
	s := newTestServer(t, allFeatures, "")
	req := httptest.NewRequest(http.MethodGet, "/api/admin/bug-reports", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
