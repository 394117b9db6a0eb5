package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestLedger creates a migrated in-memory ledger for testing.
func openTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, NewMigrationRunner(db).Run(context.Background()))

	l, err := NewSQLiteLedger(db)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

var base = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

// --- RecordAttempt ---

func TestRecordAttempt_GeneratesID(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	a := &Attempt{FactID: 7, Status: StatusPosted, RemoteID: "r-1", Text: "fact", At: base}
	require.NoError(t, l.RecordAttempt(ctx, a))

	_, err := uuid.Parse(a.ID)
	assert.NoError(t, err, "attempt id should be a uuid")
	assert.Equal(t, 1, a.Tries, "tries defaults to one")

	b := &Attempt{FactID: 8, Status: StatusPosted, At: base}
	require.NoError(t, l.RecordAttempt(ctx, b))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRecordAttempt_RejectsUnknownStatus(t *testing.T) {
	l := openTestLedger(t)
	err := l.RecordAttempt(context.Background(), &Attempt{FactID: 1, Status: "queued"})
	assert.ErrorContains(t, err, "unknown status")
}

func TestRecordAttempt_DefaultsTimestamp(t *testing.T) {
	l := openTestLedger(t)
	a := &Attempt{FactID: 1, Status: StatusFailed, Error: "boom"}
	require.NoError(t, l.RecordAttempt(context.Background(), a))
	assert.False(t, a.At.IsZero())
}

// --- RecentAttempts ---

func TestRecentAttempts_NewestFirstRoundtrip(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	for i, status := range []string{StatusPosted, StatusFailed, StatusPosted} {
		require.NoError(t, l.RecordAttempt(ctx, &Attempt{
			FactID:  i + 1,
			Status:  status,
			Tries:   i + 1,
			Warning: "w",
			Text:    "text",
			At:      base.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	got, err := l.RecentAttempts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].FactID)
	assert.Equal(t, 2, got[1].FactID)
	assert.Equal(t, StatusFailed, got[1].Status)
	assert.Equal(t, 2, got[1].Tries)
	assert.Equal(t, "w", got[1].Warning)
	assert.True(t, got[1].At.Equal(base.Add(time.Millisecond)), "timestamp keeps sub-second precision")
}

func TestRecentAttempts_Empty(t *testing.T) {
	l := openTestLedger(t)
	got, err := l.RecentAttempts(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// --- GetStats ---

func TestGetStats(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	attempts := []Attempt{
		{FactID: 1, Status: StatusPosted, At: base},
		{FactID: 2, Status: StatusFailed, At: base.Add(time.Hour)},
		{FactID: 1, Status: StatusPosted, At: base.Add(2 * time.Hour)},
		{FactID: 3, Status: StatusPosted, At: base.Add(3 * time.Hour)},
		{FactID: 4, Status: StatusFailed, At: base.Add(4 * time.Hour)},
	}
	for i := range attempts {
		require.NoError(t, l.RecordAttempt(ctx, &attempts[i]))
	}

	stats, err := l.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Posted)
	assert.Equal(t, int64(2), stats.Failed)
	assert.Equal(t, int64(2), stats.DistinctFacts)
	assert.True(t, stats.LastPosted.Equal(base.Add(3*time.Hour)))
	require.NotEmpty(t, stats.TopFacts)
	assert.Equal(t, FactCount{FactID: 1, Count: 2}, stats.TopFacts[0])
}

func TestGetStats_Empty(t *testing.T) {
	l := openTestLedger(t)
	stats, err := l.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Posted)
	assert.Zero(t, stats.Failed)
	assert.True(t, stats.LastPosted.IsZero())
	assert.Empty(t, stats.TopFacts)
}

// --- Open ---

func TestOpen_CreatesDirectoryAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()

	l, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, l.RecordAttempt(ctx, &Attempt{FactID: 5, Status: StatusPosted, At: base}))
	require.NoError(t, l.Close())

	l, err = Open(ctx, path)
	require.NoError(t, err)
	defer l.Close()

	got, err := l.RecentAttempts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].FactID)
}
