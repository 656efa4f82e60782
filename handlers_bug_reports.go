package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TheRealTwizzy/raiderdle/internal/storage"
)

type BugReportStore interface {
	SaveBugReport(ctx context.Context, report storage.BugReport) error
	RecentBugReports(ctx context.Context, limit int) ([]storage.BugReport, error)
}

type CreateBugReportRequest struct {
	Message string   `json:"message"`
	Modes   []string `json:"modes"`
}

type CreateBugReportResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	ID    string `json:"id,omitempty"`
}

type BugReportsResponse struct {
	OK      bool                `json:"ok"`
	Reports []storage.BugReport `json:"reports"`
}

// bugReportSubmitHandler is the player-facing POST /api/bug-report endpoint.
func bugReportSubmitHandler(store BugReportStore, limiter *rateLimiter, now func() time.Time, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ok, retryAfter := limiter.allow(limiter.clientIP(r), "bug_report"); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, http.StatusTooManyRequests, "RATE_LIMIT")
			return
		}

		var req CreateBugReportRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBugReportBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST")
			return
		}

		report, err := storage.NewBugReport(req.Message, req.Modes, now())
		if errors.Is(err, storage.ErrInvalidReport) {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST")
			return
		}

		if err := store.SaveBugReport(r.Context(), report); err != nil {
			log.Error("bug report submission failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "SUBMISSION_FAILED")
			return
		}
		log.Info("bug report submitted",
			zap.Stringer("report_id", report.ID),
			zap.Strings("modes", report.Modes))

		writeJSON(w, http.StatusOK, CreateBugReportResponse{OK: true, ID: report.ID.String()})
	}
}

// adminBugReportsHandler is the read-only GET /api/admin/bug-reports
// endpoint. It answers 404 unless an admin token is configured.
func adminBugReportsHandler(store BugReportStore, token string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token == "" {
			writeError(w, http.StatusNotFound, "NOT_FOUND")
			return
		}
		got, bearer := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !bearer || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED")
			return
		}

		limit := parseLimit(r.URL.Query().Get("limit"), 50, 500)
		reports, err := store.RecentBugReports(r.Context(), limit)
		if err != nil {
			log.Error("listing bug reports failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
			return
		}
		if reports == nil {
			reports = []storage.BugReport{}
		}
		writeJSON(w, http.StatusOK, BugReportsResponse{OK: true, Reports: reports})
	}
}
