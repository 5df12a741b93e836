// Package sync reconciles the local training journal with a remote
// copy.
//
// One call to Engine.Run performs a single push-then-pull exchange:
//
//  1. Push: every local record changed since the last_push cursor,
//     tombstones included, goes to the server in one batch. On a
//     confirmed success the cursor advances to the newest timestamp in
//     the batch. An empty batch skips the network call entirely.
//  2. Pull: the server returns every record changed since the
//     last_pull cursor. The batch is applied under last-writer-wins
//     (stale records skipped, remote tombstones removed physically),
//     then the cursor advances to the newest received timestamp.
//
// Pushing first is deliberate: a pull executed first can read a server
// state that predates the local edits, and a concurrent local edit with
// an equal-or-earlier timestamp would then silently lose to the pulled
// copy. With push first, local edits are on the server before anything
// is overwritten locally.
//
// Failure handling is per phase. A transport failure aborts the pass
// immediately: the failing phase's cursor is not advanced, and a push
// failure means the pull is never attempted. A cursor already advanced
// by an earlier successful phase stays advanced, so the caller can
// simply run the engine again and it resumes exactly where it stopped.
// There are no automatic retries, and the engine is not safe for
// overlapping invocations against the same store.
package sync
