// Package export reads and writes the journal as JSON Lines, one
// session per line. Exports include tombstones so that a restored
// database keeps the same sync history as the original; Restore feeds
// records through the same conflict-resolution path as a sync pull, so
// importing into a non-empty database never clobbers newer local edits.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dojolog/dojo/internal/journal"
	"github.com/dojolog/dojo/internal/store"
)

// Result contains statistics about an export or import run.
type Result struct {
	Sessions   int // records written or read
	Tombstones int // deleted records among them
	Applied    int // records that changed the database (import only)
}

// Write streams every session in the store, tombstones included, to w
// as JSONL ordered by logical clock.
func Write(ctx context.Context, st *store.Store, w io.Writer) (*Result, error) {
	sessions, err := st.ChangesSince(ctx, store.EpochCursor)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	result := &Result{}
	enc := json.NewEncoder(w)
	for _, s := range sessions {
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("failed to encode session %s: %w", s.UID, err)
		}
		result.Sessions++
		if s.Deleted {
			result.Tombstones++
		}
	}
	return result, nil
}

// WriteFile exports to path atomically via a temp file, so a failed
// export never leaves a truncated backup behind.
func WriteFile(ctx context.Context, st *store.Store, path string) (*Result, error) {
	tmpPath := path + ".tmp"
	// #nosec G304 - controlled path from CLI
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}

	result, err := Write(ctx, st, f)
	if err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to close export file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to rename temp file: %w", err)
	}
	return result, nil
}

// Read parses a JSONL stream into sessions. Records are not validated
// here; Restore applies them through the store, which enforces field
// rules on anything it actually writes.
func Read(r io.Reader) ([]*journal.Session, error) {
	var sessions []*journal.Session
	decoder := json.NewDecoder(r)
	lineNum := 0

	for {
		var s journal.Session
		if err := decoder.Decode(&s); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("invalid JSON at line %d: %w", lineNum+1, err)
		}
		lineNum++
		sessions = append(sessions, &s)
	}
	return sessions, nil
}

// ReadFile parses a JSONL file into sessions.
func ReadFile(path string) ([]*journal.Session, error) {
	// #nosec G304 - controlled path from CLI
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Restore merges sessions into the store under last-writer-wins rules,
// exactly as a sync pull would. Stale records are skipped, tombstones
// remove matching rows, and newer records overwrite.
func Restore(ctx context.Context, st *store.Store, sessions []*journal.Session) (*Result, error) {
	result := &Result{Sessions: len(sessions)}
	for _, s := range sessions {
		if s.Deleted {
			result.Tombstones++
		}
	}

	applied, err := st.ApplyRemote(ctx, sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to apply imported sessions: %w", err)
	}
	result.Applied = applied
	return result, nil
}
