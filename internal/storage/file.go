package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const bugReportsFile = "bug_reports.jsonl"

// FileStore keeps one JSON document per category in a directory and appends
// bug reports to a JSON-lines file next to them.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) statePath(category string) string {
	return filepath.Join(f.dir, category+"-state.json")
}

func (f *FileStore) LoadState(ctx context.Context, category string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validCategory(category); err != nil {
		return nil, err
	}
	doc, err := os.ReadFile(f.statePath(category))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s state: %w", category, err)
	}
	return doc, nil
}

// SaveState replaces the document atomically: a crash mid-write leaves the
// previous version in place.
func (f *FileStore) SaveState(ctx context.Context, category string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validCategory(category); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, category+"-state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.statePath(category)); err != nil {
		return fmt.Errorf("replace %s state: %w", category, err)
	}
	return nil
}

func (f *FileStore) SaveBugReport(ctx context.Context, report BugReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(report)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out, err := os.OpenFile(filepath.Join(f.dir, bugReportsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open bug reports: %w", err)
	}
	if _, err := out.Write(append(line, '\n')); err != nil {
		out.Close()
		return fmt.Errorf("append bug report: %w", err)
	}
	return out.Close()
}

// RecentBugReports returns up to limit reports, newest first. Unreadable
// lines are skipped.
func (f *FileStore) RecentBugReports(ctx context.Context, limit int) ([]BugReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	in, err := os.Open(filepath.Join(f.dir, bugReportsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open bug reports: %w", err)
	}
	defer in.Close()

	var reports []BugReport
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var r BugReport
		if json.Unmarshal(sc.Bytes(), &r) == nil {
			reports = append(reports, r)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read bug reports: %w", err)
	}
	slices.Reverse(reports)
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

func (f *FileStore) Close() error { return nil }
