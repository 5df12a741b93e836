package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dojolog/dojo/internal/journal"
	"github.com/dojolog/dojo/internal/store"
)

// Store is the slice of the record store the engine needs.
type Store interface {
	Cursor(ctx context.Context, name, fallback string) (string, error)
	SetCursor(ctx context.Context, name, value string) error
	ChangesSince(ctx context.Context, cursor string) ([]*journal.Session, error)
	ApplyRemote(ctx context.Context, batch []*journal.Session) (int, error)
}

// Transport is the remote endpoint boundary.
type Transport interface {
	Push(ctx context.Context, items []*journal.Session) (int, error)
	Pull(ctx context.Context, since string) ([]*journal.Session, error)
}

// Result summarizes one completed sync pass.
type Result struct {
	// Pushed is the number of local changes sent to the server.
	Pushed int
	// Pulled is the number of records the server returned.
	Pulled int
	// Applied is the number of pulled records actually inserted or
	// updated locally. Stale records and tombstone removals are not
	// counted.
	Applied int
}

// Empty reports whether the pass moved no data in either direction.
func (r Result) Empty() bool {
	return r.Pushed == 0 && r.Pulled == 0 && r.Applied == 0
}

// Engine runs bidirectional sync passes against a single store and
// remote. It holds no state of its own between passes; all progress
// lives in the store's cursors.
type Engine struct {
	store  Store
	remote Transport
	logger *log.Logger
}

// New creates a sync engine. If logger is nil, a default logger writing
// to stderr is used.
func New(st Store, remote Transport, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Engine{
		store:  st,
		remote: remote,
		logger: logger,
	}
}

// Run performs one complete push-then-pull exchange.
//
// On error the returned Result reflects whatever completed before the
// failure; cursors for completed phases remain advanced, so invoking
// Run again resumes from the checkpoint rather than repeating work.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	var res Result

	if err := e.push(ctx, &res); err != nil {
		return res, fmt.Errorf("push failed: %w", err)
	}
	if err := e.pull(ctx, &res); err != nil {
		return res, fmt.Errorf("pull failed: %w", err)
	}

	e.logger.Printf("sync complete: pushed=%d pulled=%d applied=%d",
		res.Pushed, res.Pulled, res.Applied)
	return res, nil
}

func (e *Engine) push(ctx context.Context, res *Result) error {
	cursor, err := e.store.Cursor(ctx, store.CursorLastPush, store.EpochCursor)
	if err != nil {
		return err
	}

	toPush, err := e.store.ChangesSince(ctx, cursor)
	if err != nil {
		return err
	}
	if len(toPush) == 0 {
		e.logger.Printf("push: nothing to send since %s", cursor)
		return nil
	}

	accepted, err := e.remote.Push(ctx, toPush)
	if err != nil {
		return err
	}

	// The batch is durably on the server; record the checkpoint before
	// anything else happens. A crash after this write must not cause a
	// duplicate push on the next pass.
	newCursor := maxClock(toPush)
	if err := e.store.SetCursor(ctx, store.CursorLastPush, newCursor); err != nil {
		return err
	}

	res.Pushed = len(toPush)
	e.logger.Printf("push: sent %d, server upserted %d, cursor -> %s",
		len(toPush), accepted, newCursor)
	return nil
}

func (e *Engine) pull(ctx context.Context, res *Result) error {
	cursor, err := e.store.Cursor(ctx, store.CursorLastPull, store.EpochCursor)
	if err != nil {
		return err
	}

	items, err := e.remote.Pull(ctx, cursor)
	if err != nil {
		return err
	}
	res.Pulled = len(items)
	if len(items) == 0 {
		e.logger.Printf("pull: nothing new since %s", cursor)
		return nil
	}

	applied, err := e.store.ApplyRemote(ctx, items)
	if err != nil {
		return err
	}
	res.Applied = applied

	// Advance only after the whole batch is applied, so a crash during
	// application re-pulls the batch. Re-applying is harmless: stale
	// records are skipped and tombstone removal is idempotent.
	newCursor := maxClock(items)
	if err := e.store.SetCursor(ctx, store.CursorLastPull, newCursor); err != nil {
		return err
	}

	e.logger.Printf("pull: received %d, applied %d, cursor -> %s",
		len(items), applied, newCursor)
	return nil
}

// maxClock returns the latest updated_at in the batch, formatted as a
// cursor value.
func maxClock(batch []*journal.Session) string {
	var max time.Time
	for _, sess := range batch {
		if sess.UpdatedAt.After(max) {
			max = sess.UpdatedAt
		}
	}
	return store.FormatTime(max)
}
