package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBugReport(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	r, err := NewBugReport("  arc image missing ", []string{"arcs", " ", "items"}, now)
	require.NoError(t, err)
	assert.Equal(t, "arc image missing", r.Message)
	assert.Equal(t, []string{"arcs", "items"}, r.Modes)
	assert.Equal(t, time.UTC, r.CreatedAt.Location())
	assert.NotEqual(t, [16]byte{}, [16]byte(r.ID))

	_, err = NewBugReport("", []string{"arcs"}, now)
	assert.ErrorIs(t, err, ErrInvalidReport)
	_, err = NewBugReport("broken", nil, now)
	assert.ErrorIs(t, err, ErrInvalidReport)
	_, err = NewBugReport("broken", []string{"  "}, now)
	assert.ErrorIs(t, err, ErrInvalidReport)

	long, err := NewBugReport(strings.Repeat("x", maxMessageLen+10), []string{"arcs"}, now)
	require.NoError(t, err)
	assert.Len(t, long.Message, maxMessageLen)
}

func TestNewBugReportTruncatesOnRuneBoundary(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	r, err := NewBugReport("x"+strings.Repeat("é", maxMessageLen), []string{"a" + strings.Repeat("é", maxModeLen)}, now)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(r.Message))
	assert.Len(t, r.Message, maxMessageLen-1)
	require.Len(t, r.Modes, 1)
	assert.True(t, utf8.ValidString(r.Modes[0]))
	assert.Len(t, r.Modes[0], maxModeLen-1)
}

// exerciseBackend runs the behaviour every backend shares.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	doc, err := b.LoadState(ctx, "arcs")
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.NoError(t, b.SaveState(ctx, "arcs", []byte(`{"history":{},"availableIds":["a"],"shownIds":[]}`)))
	require.NoError(t, b.SaveState(ctx, "arcs", []byte(`{"history":{},"availableIds":[],"shownIds":["a"]}`)))

	doc, err = b.LoadState(ctx, "arcs")
	require.NoError(t, err)
	assert.JSONEq(t, `{"history":{},"availableIds":[],"shownIds":["a"]}`, string(doc))

	other, err := b.LoadState(ctx, "items")
	require.NoError(t, err)
	assert.Nil(t, other)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	first, err := NewBugReport("first", []string{"arcs"}, base)
	require.NoError(t, err)
	second, err := NewBugReport("second", []string{"items", "weapons"}, base.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, b.SaveBugReport(ctx, first))
	require.NoError(t, b.SaveBugReport(ctx, second))

	reports, err := b.RecentBugReports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, second.ID, reports[0].ID)
	assert.Equal(t, []string{"items", "weapons"}, reports[0].Modes)
	assert.True(t, second.CreatedAt.Equal(reports[0].CreatedAt))
	assert.Equal(t, "first", reports[1].Message)

	reports, err = b.RecentBugReports(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(filepath.Join(dir, "state"))
	require.NoError(t, err)
	exerciseBackend(t, fs)

	// No temp files are left behind by atomic replacement.
	entries, err := os.ReadDir(filepath.Join(dir, "state"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"arcs-state.json", bugReportsFile}, names)
}

func TestFileStoreRejectsPathLikeCategories(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = fs.LoadState(context.Background(), "../etc")
	assert.Error(t, err)
	assert.Error(t, fs.SaveState(context.Background(), "a/b", []byte("{}")))
}

func TestFileStoreHonoursCancelledContext(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, fs.SaveState(ctx, "arcs", []byte("{}")), context.Canceled)
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raiderdle.db")
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	exerciseBackend(t, s)

	// State survives reopening.
	require.NoError(t, s.Close())
	s, err = OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	doc, err := s.LoadState(context.Background(), "arcs")
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"shownIds":["a"]`)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), " ")
	assert.Error(t, err)
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	p, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	_, err = p.db.ExecContext(ctx, `TRUNCATE rotation_state, bug_reports`)
	require.NoError(t, err)
	exerciseBackend(t, p)
}
