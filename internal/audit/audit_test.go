package audit

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	calls []execCall
	err   error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func TestPostgresRecorder_Record(t *testing.T) {
	db := &fakeDB{}
	rec := NewPostgresRecorder(db)

	err := rec.Record(context.Background(), Entry{
		Collection: "medicalServices",
		RecordID:   "m1",
		Action:     ActionDelete,
		ActorUID:   "root",
		ActorEmail: "committee@skyon.org",
		AsAdmin:    true,
	})
	require.NoError(t, err)
	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].sql, "INSERT INTO audit_log")
	assert.Equal(t, []any{"medicalServices", "m1", "delete", "root", "committee@skyon.org", true}, db.calls[0].args)

	db.err = errors.New("connection reset")
	assert.Error(t, rec.Record(context.Background(), Entry{}))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NoError(t, r.Record(context.Background(), Entry{}))
	entries, err := r.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// Skips unless TEST_DB_DSN points at a disposable Postgres.
func TestPostgresRecorder_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping PostgreSQL integration test")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	rec := NewPostgresRecorder(pool)
	require.NoError(t, rec.EnsureSchema(ctx))
	require.NoError(t, rec.Record(ctx, Entry{Collection: "events", RecordID: "e1", Action: ActionUpdate, ActorUID: "u1"}))

	entries, err := rec.Recent(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "e1", entries[0].RecordID)
	assert.Empty(t, entries[0].ActorEmail)
}
