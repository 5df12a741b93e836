// Package store provides the local SQLite record store for the training
// journal.
//
// The store owns two kinds of durable state: the sessions table (one row
// per training session, including tombstones awaiting propagation) and
// the sync_state table holding the last_push / last_pull cursors.
//
// The database runs embedded via ncruces/go-sqlite3 with WAL mode so the
// CLI and a concurrently running sync pass never block each other on
// reads. All timestamps are stored as fixed-width UTC TEXT so that SQL
// string comparison agrees with chronological order.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// TimeFormat is the storage layout for updated_at / created_at and the
// sync cursors. It is RFC 3339 UTC with fixed-width microseconds, which
// keeps lexicographic order identical to chronological order.
const TimeFormat = "2006-01-02T15:04:05.000000Z07:00"

// EpochCursor is the sentinel value both cursors start from: everything
// ever written is "after" it.
const EpochCursor = "1970-01-01T00:00:00.000000Z"

// CursorLastPush and CursorLastPull name the two sync cursors.
const (
	CursorLastPush = "last_push"
	CursorLastPull = "last_pull"
)

// ErrNotFound is returned by point lookups and targeted updates when no
// row matches the requested identity.
var ErrNotFound = errors.New("session not found")

// Store wraps the SQLite connection with journal-specific operations.
type Store struct {
	conn *sql.DB
	path string

	// now is swappable in tests to control the logical clock.
	now func() time.Time
}

// Open creates a connection to the journal database at path, creating
// the parent directory and the file as needed.
//
// The caller must call Close when done and should call Init before any
// other operation.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{conn: conn, path: path, now: time.Now}

	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return s, nil
}

// Close closes the database connection after checkpointing the WAL.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// Init creates the schema if needed and reconciles rows written by
// older versions of the journal. It is idempotent and must be called on
// every start.
//
// Legacy databases predate the sync columns (uid, deleted, updated_at,
// rpe). Init adds any missing columns, assigns a fresh UID to rows that
// lack one, and backfills updated_at from created_at so every row can
// participate in sync.
func (s *Store) Init(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT,
		session_date TEXT NOT NULL,
		activity_type TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		energy_level INTEGER NOT NULL,
		session_emphasis TEXT NOT NULL,
		rpe INTEGER,
		notes TEXT,
		deleted INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.addMissingColumns(ctx); err != nil {
		return err
	}
	if err := s.backfillLegacyRows(ctx); err != nil {
		return err
	}

	indexes := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_uid ON sessions(uid);
	CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(session_date);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_deleted ON sessions(deleted);
	`
	if _, err := s.conn.ExecContext(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// addMissingColumns brings a pre-sync schema up to date. SQLite cannot
// add constraints through ALTER TABLE, so uniqueness of uid comes from
// the index created after backfill.
func (s *Store) addMissingColumns(ctx context.Context) error {
	rows, err := s.conn.QueryContext(ctx, "PRAGMA table_info(sessions)")
	if err != nil {
		return fmt.Errorf("failed to inspect sessions schema: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating column info: %w", err)
	}

	wanted := []struct{ name, ddl string }{
		{"uid", "ALTER TABLE sessions ADD COLUMN uid TEXT"},
		{"rpe", "ALTER TABLE sessions ADD COLUMN rpe INTEGER"},
		{"deleted", "ALTER TABLE sessions ADD COLUMN deleted INTEGER NOT NULL DEFAULT 0"},
		{"updated_at", "ALTER TABLE sessions ADD COLUMN updated_at TEXT"},
	}
	for _, col := range wanted {
		if existing[col.name] {
			continue
		}
		if _, err := s.conn.ExecContext(ctx, col.ddl); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col.name, err)
		}
	}

	return nil
}

// backfillLegacyRows fills genuinely absent sync fields: a fresh UID for
// rows without one and updated_at taken from created_at (or now when
// created_at is also missing). Rows that already carry values are left
// untouched, which makes the pass idempotent.
func (s *Store) backfillLegacyRows(ctx context.Context) error {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT id FROM sessions WHERE uid IS NULL OR uid = ''")
	if err != nil {
		return fmt.Errorf("failed to find rows missing uid: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan row id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating rows missing uid: %w", err)
	}
	rows.Close()

	for _, id := range ids {
		if _, err := s.conn.ExecContext(ctx,
			"UPDATE sessions SET uid = ? WHERE id = ?", uuid.NewString(), id); err != nil {
			return fmt.Errorf("failed to backfill uid for row %d: %w", id, err)
		}
	}

	if _, err := s.conn.ExecContext(ctx, `
		UPDATE sessions
		SET updated_at = COALESCE(NULLIF(created_at, ''), ?)
		WHERE updated_at IS NULL OR updated_at = ''`,
		s.now().UTC().Format(TimeFormat)); err != nil {
		return fmt.Errorf("failed to backfill updated_at: %w", err)
	}

	return nil
}

// Cursor reads a named sync cursor, returning fallback when the cursor
// has never been written.
func (s *Store) Cursor(ctx context.Context, name, fallback string) (string, error) {
	var value string
	err := s.conn.QueryRowContext(ctx,
		"SELECT value FROM sync_state WHERE key = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cursor %s: %w", name, err)
	}
	return value, nil
}

// SetCursor writes a named sync cursor with upsert semantics. Each
// cursor write is its own atomic statement; the sync engine relies on
// that to make an interrupted pass resumable.
func (s *Store) SetCursor(ctx context.Context, name, value string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO sync_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		name, value)
	if err != nil {
		return fmt.Errorf("failed to write cursor %s: %w", name, err)
	}
	return nil
}

// FormatTime renders t in the store's timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a timestamp in the store's layout, falling back to
// plain RFC 3339 for values written by other implementations.
func ParseTime(value string) (time.Time, error) {
	if t, err := time.Parse(TimeFormat, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}
