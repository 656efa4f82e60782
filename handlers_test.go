package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRealTwizzy/raiderdle/internal/catalog"
	"github.com/TheRealTwizzy/raiderdle/internal/daily"
)

func decodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, allFeatures, "")
	rec := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestTodayServesCategoryPayload(t *testing.T) {
	s := newTestServer(t, allFeatures, "")
	s.catalog.entries["items"] = []catalog.Entry{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	rec := s.do(http.MethodGet, "/api/items/today?offset=-300", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got daily.ItemsToday
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.AllItems, 2)
	assert.NotEmpty(t, got.Today.ID)
}

func TestTodayAliases(t *testing.T) {
	s := newTestServer(t, allFeatures, "")
	s.catalog.entries["arcs"] = []catalog.Entry{{ID: "tick", Name: "Tick", Image: "tick.png"}}

	rec := s.do(http.MethodGet, "/api/arcsNew/today", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got daily.ArcsToday
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, daily.ArcPick{Name: "Tick", ImgURL: "tick.png"}, got.Today)
}

func TestTodayErrors(t *testing.T) {
	s := newTestServer(t, allFeatures, "")

	rec := s.do(http.MethodGet, "/api/nope/today", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_CATEGORY", decodeError(t, rec.Body.Bytes()).Error)

	rec = s.do(http.MethodGet, "/api/items/today", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NO_ENTRIES_TODAY", decodeError(t, rec.Body.Bytes()).Error)

	s.catalog.err = fmt.Errorf("page 1: %w", catalog.ErrUpstream)
	rec = s.do(http.MethodGet, "/api/weapons/today", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", decodeError(t, rec.Body.Bytes()).Error)
}

func TestListing(t *testing.T) {
	s := newTestServer(t, allFeatures, "")
	rec := s.do(http.MethodGet, "/api/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	s.catalog.entries["arcs"] = []catalog.Entry{{ID: "bombardier", Name: "Bombardier"}}
	rec = s.do(http.MethodGet, "/api/arcs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"bombardier","name":"Bombardier"}]`, rec.Body.String())
}

func TestGuessEndpoint(t *testing.T) {
	s := newTestServer(t, allFeatures, "")

	rec := s.do(http.MethodPost, "/api/secret/guess?offset=60", `{"guess":"crane"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got daily.GuessResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.IsCorrect)
	assert.Equal(t, "CRANE", got.Word)

	rec = s.do(http.MethodGet, "/api/secret/guess?guess=rarer", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"word"`)
	assert.Contains(t, rec.Body.String(), `"status":"present"`)

	rec = s.do(http.MethodPost, "/api/secret/guess", `{"guess":"cran"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_LENGTH", decodeError(t, rec.Body.Bytes()).Error)

	rec = s.do(http.MethodPost, "/api/secret/guess", `{"guess":"qqqqq"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_WORD", decodeError(t, rec.Body.Bytes()).Error)

	rec = s.do(http.MethodGet, "/api/secret/guess?guess=qqqqq", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_WORD", decodeError(t, rec.Body.Bytes()).Error)

	rec = s.do(http.MethodPost, "/api/secret/guess", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec.Body.Bytes()).Error)
}

func TestReveal(t *testing.T) {
	s := newTestServer(t, allFeatures, "")
	rec := s.do(http.MethodGet, "/api/secret/reveal?offset=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"word":"CRANE"}`, rec.Body.String())
}

func TestMethodMismatch(t *testing.T) {
	s := newTestServer(t, allFeatures, "")
	rec := s.do(http.MethodDelete, "/api/secret/reveal", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
