// Package audit keeps a log of record edits and deletions, flagging the ones made under
// admin rights.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionRSVP   = "rsvp"
	ActionPurge  = "purge"

	// SystemActor is the actor uid of scheduled jobs.
	SystemActor = "system"
)

type Entry struct {
	ID         int64     `json:"id"`
	Collection string    `json:"collection"`
	RecordID   string    `json:"recordId"`
	Action     string    `json:"action"`
	ActorUID   string    `json:"actorUid"`
	ActorEmail string    `json:"actorEmail,omitempty"`
	AsAdmin    bool      `json:"asAdmin"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Nop is used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) Recent(context.Context, int) ([]Entry, error) { return []Entry{}, nil }

// DB is the part of *pgxpool.Pool the recorder uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ DB = (*pgxpool.Pool)(nil)

type PostgresRecorder struct {
	db DB
}

func NewPostgresRecorder(db DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS audit_log (
  id          BIGSERIAL PRIMARY KEY,
  collection  TEXT        NOT NULL,
  record_id   TEXT        NOT NULL,
  action      TEXT        NOT NULL,
  actor_uid   TEXT        NOT NULL,
  actor_email TEXT,
  as_admin    BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS audit_log_created_at_idx ON audit_log (created_at DESC);
`

func (r *PostgresRecorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create audit_log: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	const q = `
INSERT INTO audit_log (collection, record_id, action, actor_uid, actor_email, as_admin)
VALUES ($1, $2, $3, $4, nullif($5,''), $6)
`
	if _, err := r.db.Exec(ctx, q, e.Collection, e.RecordID, e.Action, e.ActorUID, e.ActorEmail, e.AsAdmin); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
SELECT id, collection, record_id, action, actor_uid, coalesce(actor_email, ''), as_admin, created_at
FROM audit_log
ORDER BY created_at DESC, id DESC
LIMIT $1
`
	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Collection, &e.RecordID, &e.Action, &e.ActorUID, &e.ActorEmail, &e.AsAdmin, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
