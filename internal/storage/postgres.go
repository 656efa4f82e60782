package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

//go:embed schema/postgres.sql
var postgresSchema string

// Postgres stores rotation state as JSONB rows keyed by category.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects, verifies the connection and ensures the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure postgres schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) LoadState(ctx context.Context, category string) ([]byte, error) {
	var doc []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT doc FROM rotation_state WHERE category = $1`, category,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s state: %w", category, err)
	}
	return doc, nil
}

func (p *Postgres) SaveState(ctx context.Context, category string, doc []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO rotation_state (category, doc, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (category) DO UPDATE
		SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`, category, string(doc))
	if err != nil {
		return fmt.Errorf("save %s state: %w", category, err)
	}
	return nil
}

func (p *Postgres) SaveBugReport(ctx context.Context, report BugReport) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bug_reports (id, message, modes, created_at)
		VALUES ($1, $2, $3, $4)
	`, report.ID.String(), report.Message, pq.Array(report.Modes), report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bug report: %w", err)
	}
	return nil
}

// RecentBugReports returns up to limit reports, newest first.
func (p *Postgres) RecentBugReports(ctx context.Context, limit int) ([]BugReport, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, message, modes, created_at
		FROM bug_reports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query bug reports: %w", err)
	}
	defer rows.Close()

	var reports []BugReport
	for rows.Next() {
		var r BugReport
		var modes pq.StringArray
		if err := rows.Scan(&r.ID, &r.Message, &modes, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Modes = []string(modes)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
