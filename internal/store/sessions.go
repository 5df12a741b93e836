package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dojolog/dojo/internal/journal"
)

// sessionColumns is the scan order shared by every session query.
const sessionColumns = `uid, session_date, activity_type, duration_minutes,
	energy_level, session_emphasis, rpe, notes, deleted, updated_at, created_at`

// Insert validates and writes a new session row. A missing UID is
// assigned, and zero timestamps are set to the current UTC time.
func (s *Store) Insert(ctx context.Context, sess *journal.Session) error {
	if sess.UID == "" {
		sess.UID = uuid.NewString()
	}
	now := s.now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = now
	}

	if err := sess.Validate(); err != nil {
		return err
	}

	query := `
	INSERT INTO sessions (
		uid, session_date, activity_type, duration_minutes,
		energy_level, session_emphasis, rpe, notes, deleted,
		updated_at, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`
	_, err := s.conn.ExecContext(ctx, query,
		sess.UID,
		sess.Date,
		string(sess.Activity),
		sess.Duration,
		sess.Energy,
		string(sess.Emphasis),
		intPtrToNull(sess.RPE),
		sess.Notes,
		FormatTime(sess.UpdatedAt),
		FormatTime(sess.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session %s: %w", sess.UID, err)
	}
	return nil
}

// Get retrieves a single session by UID, tombstoned or not.
// Returns ErrNotFound when the row does not exist.
func (s *Store) Get(ctx context.Context, uid string) (*journal.Session, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE uid = ?", uid)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", uid, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// ActiveSessions returns every non-tombstoned session ordered by date.
// This is the view the statistics and reflection screens work from;
// tombstones never surface here.
func (s *Store) ActiveSessions(ctx context.Context) ([]*journal.Session, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE deleted = 0 ORDER BY session_date, created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query active sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// SessionsBetween returns active sessions whose date falls inside
// [start, end], inclusive on both ends.
func (s *Store) SessionsBetween(ctx context.Context, start, end time.Time) ([]*journal.Session, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE deleted = 0 AND session_date >= ? AND session_date <= ?
		ORDER BY session_date, created_at`,
		start.Format(journal.DateFormat),
		end.Format(journal.DateFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions between %s and %s: %w",
			start.Format(journal.DateFormat), end.Format(journal.DateFormat), err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ChangesSince returns every session, tombstones included, whose
// updated_at is strictly after the given cursor, ordered by updated_at.
// This is the push payload: tombstones must travel so deletions
// propagate to other devices.
func (s *Store) ChangesSince(ctx context.Context, cursor string) ([]*journal.Session, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE updated_at > ? ORDER BY updated_at", cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes since %s: %w", cursor, err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// SoftDelete marks a session as a tombstone and advances its logical
// clock. Deleting an unknown or already deleted UID is a no-op, which
// makes deletion idempotent.
func (s *Store) SoftDelete(ctx context.Context, uid string) error {
	_, err := s.conn.ExecContext(ctx,
		"UPDATE sessions SET deleted = 1, updated_at = ? WHERE uid = ?",
		FormatTime(s.now()), uid)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", uid, err)
	}
	return nil
}

// SetRPE records a perceived-effort score on an existing session.
// RPE and notes are the only fields that may be amended after entry;
// everything else is fixed at logging time.
func (s *Store) SetRPE(ctx context.Context, uid string, rpe int) error {
	if rpe < 1 || rpe > 10 {
		return fmt.Errorf("%w: rpe must be 1-10 (got %d)", journal.ErrInvalid, rpe)
	}
	return s.updateField(ctx, uid, "rpe", rpe)
}

// SetNotes replaces the notes on an existing session.
func (s *Store) SetNotes(ctx context.Context, uid string, notes string) error {
	return s.updateField(ctx, uid, "notes", notes)
}

func (s *Store) updateField(ctx context.Context, uid, column string, value any) error {
	// column is one of the two whitelisted names above, never user input.
	res, err := s.conn.ExecContext(ctx,
		"UPDATE sessions SET "+column+" = ?, updated_at = ? WHERE uid = ? AND deleted = 0",
		value, FormatTime(s.now()), uid)
	if err != nil {
		return fmt.Errorf("failed to update %s on session %s: %w", column, uid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of session %s: %w", uid, err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", uid, ErrNotFound)
	}
	return nil
}

// ApplyRemote applies a batch of remote-origin records under
// last-writer-wins and returns how many rows were actually inserted or
// updated.
//
// The batch splits into two explicit operations:
//   - tombstone: physically delete any local row with that UID. Unlike
//     a local delete, nothing is kept - the tombstone already lives on
//     the server. Idempotent, and not counted as applied.
//   - upsert: insert when absent, overwrite only when the incoming
//     updated_at is strictly newer than the stored one. Stale or
//     equal-timestamp records are skipped silently.
func (s *Store) ApplyRemote(ctx context.Context, batch []*journal.Session) (int, error) {
	applied := 0
	for _, sess := range batch {
		if sess.Deleted {
			if err := s.applyTombstone(ctx, sess.UID); err != nil {
				return applied, err
			}
			continue
		}
		n, err := s.applyUpsert(ctx, sess)
		if err != nil {
			return applied, err
		}
		applied += n
	}
	return applied, nil
}

func (s *Store) applyTombstone(ctx context.Context, uid string) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM sessions WHERE uid = ?", uid); err != nil {
		return fmt.Errorf("failed to apply tombstone for %s: %w", uid, err)
	}
	return nil
}

func (s *Store) applyUpsert(ctx context.Context, sess *journal.Session) (int, error) {
	query := `
	INSERT INTO sessions (
		uid, session_date, activity_type, duration_minutes,
		energy_level, session_emphasis, rpe, notes, deleted,
		updated_at, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	ON CONFLICT(uid) DO UPDATE SET
		session_date = excluded.session_date,
		activity_type = excluded.activity_type,
		duration_minutes = excluded.duration_minutes,
		energy_level = excluded.energy_level,
		session_emphasis = excluded.session_emphasis,
		rpe = excluded.rpe,
		notes = excluded.notes,
		deleted = excluded.deleted,
		updated_at = excluded.updated_at
	WHERE excluded.updated_at > sessions.updated_at
	`
	res, err := s.conn.ExecContext(ctx, query,
		sess.UID,
		sess.Date,
		string(sess.Activity),
		sess.Duration,
		sess.Energy,
		string(sess.Emphasis),
		intPtrToNull(sess.RPE),
		sess.Notes,
		FormatTime(sess.UpdatedAt),
		FormatTime(sess.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to apply remote session %s: %w", sess.UID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check apply of session %s: %w", sess.UID, err)
	}
	return int(n), nil
}

// scannable abstracts *sql.Row and *sql.Rows so single- and multi-row
// queries share one extraction path.
type scannable interface {
	Scan(...any) error
}

func scanSession(row scannable) (*journal.Session, error) {
	var (
		sess      journal.Session
		activity  string
		emphasis  string
		rpe       sql.NullInt64
		notes     sql.NullString
		deleted   int
		updatedAt string
		createdAt string
	)
	err := row.Scan(
		&sess.UID,
		&sess.Date,
		&activity,
		&sess.Duration,
		&sess.Energy,
		&emphasis,
		&rpe,
		&notes,
		&deleted,
		&updatedAt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	sess.Activity = journal.Activity(activity)
	sess.Emphasis = journal.Emphasis(emphasis)
	sess.Deleted = deleted != 0
	if rpe.Valid {
		v := int(rpe.Int64)
		sess.RPE = &v
	}
	if notes.Valid {
		sess.Notes = notes.String
	}

	if sess.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return nil, err
	}
	if sess.CreatedAt, err = ParseTime(createdAt); err != nil {
		return nil, err
	}

	return &sess, nil
}

func scanSessions(rows *sql.Rows) ([]*journal.Session, error) {
	var sessions []*journal.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

func intPtrToNull(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
