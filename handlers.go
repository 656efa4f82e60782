package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/TheRealTwizzy/raiderdle/internal/catalog"
	"github.com/TheRealTwizzy/raiderdle/internal/daily"
	"github.com/TheRealTwizzy/raiderdle/internal/wordle"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, ErrorResponse{OK: false, Error: code})
}

// writeServiceError maps domain errors onto status codes. Unexpected errors
// are logged; expected ones are the caller's problem.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, catalog.ErrUpstream):
		w.Header().Set("Retry-After", "30")
		writeError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE")
	case errors.Is(err, daily.ErrNoEligibleEntries):
		writeError(w, http.StatusNotFound, "NO_ENTRIES_TODAY")
	case errors.Is(err, daily.ErrUnknownCategory):
		writeError(w, http.StatusNotFound, "UNKNOWN_CATEGORY")
	case errors.Is(err, wordle.ErrInvalidLength):
		writeError(w, http.StatusBadRequest, "INVALID_LENGTH")
	case errors.Is(err, wordle.ErrNotInWordList):
		writeError(w, http.StatusBadRequest, "INVALID_WORD")
	default:
		log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// todayHandler serves GET /api/{category}/today?offset=<minutes>.
func todayHandler(svc *daily.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("category")
		if !isValidCategory(name) {
			writeError(w, http.StatusNotFound, "UNKNOWN_CATEGORY")
			return
		}
		payload, err := svc.Today(r.Context(), name, requestOffset(r.URL.Query()))
		if err != nil {
			writeServiceError(w, log.With(zap.String("category", name)), err)
			return
		}
		writeRawJSON(w, payload)
	}
}

// listingHandler proxies a whole catalog collection without caching.
func listingHandler(svc *daily.Service, collection string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Listing(r.Context(), collection)
		if err != nil {
			writeServiceError(w, log.With(zap.String("collection", collection)), err)
			return
		}
		if entries == nil {
			entries = []catalog.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
