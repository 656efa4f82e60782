package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

//go:embed schema/sqlite.sql
var sqliteSchema string

// SQLite is the single-file backend for deployments without Postgres.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path, creating it and its schema when
// needed.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps "database is locked" out of the hot path.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) LoadState(ctx context.Context, category string) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM rotation_state WHERE category = ?`, category,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s state: %w", category, err)
	}
	return []byte(doc), nil
}

func (s *SQLite) SaveState(ctx context.Context, category string, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rotation_state (category, doc, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (category) DO UPDATE
		SET doc = excluded.doc, updated_at = excluded.updated_at
	`, category, string(doc), time.Now().UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("save %s state: %w", category, err)
	}
	return nil
}

func (s *SQLite) SaveBugReport(ctx context.Context, report BugReport) error {
	modes, err := json.Marshal(report.Modes)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bug_reports (id, message, modes, created_at)
		VALUES (?, ?, ?, ?)
	`, report.ID.String(), report.Message, string(modes), report.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert bug report: %w", err)
	}
	return nil
}

// RecentBugReports returns up to limit reports, newest first.
func (s *SQLite) RecentBugReports(ctx context.Context, limit int) ([]BugReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message, modes, created_at
		FROM bug_reports
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query bug reports: %w", err)
	}
	defer rows.Close()

	var reports []BugReport
	for rows.Next() {
		var (
			r                    BugReport
			id, modes, createdAt string
		)
		if err := rows.Scan(&id, &r.Message, &modes, &createdAt); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bug report id: %w", err)
		}
		if err := json.Unmarshal([]byte(modes), &r.Modes); err != nil {
			return nil, fmt.Errorf("bug report modes: %w", err)
		}
		if r.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("bug report time: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
