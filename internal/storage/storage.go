// Package storage holds the durable backends: rotation state documents and
// player bug reports, on local files, Postgres or SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxMessageLen = 5000
	maxModes      = 16
	maxModeLen    = 50
)

var ErrInvalidReport = errors.New("bug report needs a message and at least one mode")

// Backend is everything the server persists. It satisfies rotation.Store.
type Backend interface {
	LoadState(ctx context.Context, category string) ([]byte, error)
	SaveState(ctx context.Context, category string, doc []byte) error
	SaveBugReport(ctx context.Context, report BugReport) error
	RecentBugReports(ctx context.Context, limit int) ([]BugReport, error)
	Close() error
}

// BugReport is an append-only player submission.
type BugReport struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Modes     []string  `json:"modes"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewBugReport validates and trims a submission and assigns it an id.
func NewBugReport(message string, modes []string, now time.Time) (BugReport, error) {
	message = strings.TrimSpace(message)
	message = truncate(message, maxMessageLen)
	cleaned := make([]string, 0, len(modes))
	for _, m := range modes {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		m = truncate(m, maxModeLen)
		cleaned = append(cleaned, m)
		if len(cleaned) == maxModes {
			break
		}
	}
	if message == "" || len(cleaned) == 0 {
		return BugReport{}, ErrInvalidReport
	}
	return BugReport{
		ID:        uuid.New(),
		Message:   message,
		Modes:     cleaned,
		CreatedAt: now.UTC(),
	}, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func validCategory(category string) error {
	if category == "" || strings.ContainsAny(category, `/\.`) {
		return fmt.Errorf("invalid category %q", category)
	}
	return nil
}
