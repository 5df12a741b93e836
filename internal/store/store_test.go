package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

// setupStore creates a temporary initialized store for testing.
func setupStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("failed to init test store: %v", err)
	}
	return s
}

func TestInitIdempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Init(ctx); err != nil {
			t.Fatalf("Init pass %d failed: %v", i+1, err)
		}
	}
}

func TestInitBackfillsLegacyRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	// Recreate a database written before the sync columns existed.
	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		t.Fatalf("failed to open raw database: %v", err)
	}
	legacy := `
	CREATE TABLE sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_date TEXT NOT NULL,
		activity_type TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		energy_level INTEGER NOT NULL,
		session_emphasis TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL
	);
	INSERT INTO sessions (session_date, activity_type, duration_minutes, energy_level, session_emphasis, notes, created_at)
	VALUES ('2024-11-03', 'karate', 90, 4, 'technical', 'kumite night', '2024-11-03T19:30:00.000000Z'),
	       ('2024-11-05', 'weights', 45, 3, 'physical', NULL, '2024-11-05T07:10:00.000000Z');
	`
	if _, err := conn.Exec(legacy); err != nil {
		t.Fatalf("failed to seed legacy schema: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("failed to close raw database: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init on legacy database failed: %v", err)
	}

	sessions, err := s.ActiveSessions(ctx)
	if err != nil {
		t.Fatalf("ActiveSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 backfilled sessions, got %d", len(sessions))
	}

	uids := make(map[string]bool)
	for _, sess := range sessions {
		if sess.UID == "" {
			t.Error("backfill left a session without uid")
		}
		if uids[sess.UID] {
			t.Errorf("backfill assigned duplicate uid %s", sess.UID)
		}
		uids[sess.UID] = true
		if !sess.UpdatedAt.Equal(sess.CreatedAt) {
			t.Errorf("expected updated_at backfilled from created_at, got %v vs %v",
				sess.UpdatedAt, sess.CreatedAt)
		}
	}

	// A second Init must not reassign identities.
	if err := s.Init(ctx); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	again, err := s.ActiveSessions(ctx)
	if err != nil {
		t.Fatalf("ActiveSessions after second Init failed: %v", err)
	}
	for _, sess := range again {
		if !uids[sess.UID] {
			t.Errorf("second Init changed uid to %s", sess.UID)
		}
	}
}

func TestCursors(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	got, err := s.Cursor(ctx, CursorLastPush, EpochCursor)
	if err != nil {
		t.Fatalf("Cursor failed: %v", err)
	}
	if got != EpochCursor {
		t.Errorf("expected epoch sentinel for unset cursor, got %s", got)
	}

	value := FormatTime(time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC))
	if err := s.SetCursor(ctx, CursorLastPush, value); err != nil {
		t.Fatalf("SetCursor failed: %v", err)
	}
	got, err = s.Cursor(ctx, CursorLastPush, EpochCursor)
	if err != nil {
		t.Fatalf("Cursor after write failed: %v", err)
	}
	if got != value {
		t.Errorf("expected %s, got %s", value, got)
	}

	// Upsert semantics: second write overwrites.
	later := FormatTime(time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC))
	if err := s.SetCursor(ctx, CursorLastPush, later); err != nil {
		t.Fatalf("second SetCursor failed: %v", err)
	}
	got, _ = s.Cursor(ctx, CursorLastPush, EpochCursor)
	if got != later {
		t.Errorf("expected %s after overwrite, got %s", later, got)
	}

	// The two cursors are independent.
	got, err = s.Cursor(ctx, CursorLastPull, EpochCursor)
	if err != nil {
		t.Fatalf("Cursor last_pull failed: %v", err)
	}
	if got != EpochCursor {
		t.Errorf("last_pull should be untouched, got %s", got)
	}
}

func TestTimeFormatOrdering(t *testing.T) {
	// SQL comparisons on updated_at are string comparisons, so the
	// format must keep lexicographic and chronological order aligned.
	times := []time.Time{
		time.Unix(0, 0),
		time.Date(2024, 12, 31, 23, 59, 59, 999_000_000, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 1000, time.UTC),
	}
	for i := 1; i < len(times); i++ {
		a, b := FormatTime(times[i-1]), FormatTime(times[i])
		if !(a < b) {
			t.Errorf("expected %s < %s", a, b)
		}
	}

	if FormatTime(time.Unix(0, 0)) != EpochCursor {
		t.Errorf("epoch sentinel mismatch: %s", FormatTime(time.Unix(0, 0)))
	}
}

func TestParseTimeAcceptsRFC3339(t *testing.T) {
	got, err := ParseTime("2025-03-10T18:00:00Z")
	if err != nil {
		t.Fatalf("ParseTime failed on plain RFC 3339: %v", err)
	}
	want := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := ParseTime("last tuesday"); err == nil {
		t.Error("expected error for garbage timestamp")
	}
}
