// Package store provides durable persistence for collegia-core using SQLite.
//
// # Architecture
//
// The package exposes a single narrow interface:
//
//   - Store: Get/Put/Delete of opaque JSON blobs keyed by bucket name
//
// Each state service (feed, messaging, notifications, profile) owns exactly
// one bucket and is responsible for the shape of the document inside it. The
// store never interprets bucket contents.
//
// # Implementations
//
//   - SQLiteStore: production implementation backed by a single `buckets`
//     table, created automatically on first open
//   - MockStore: in-memory implementation for unit tests, with optional
//     failure injection through GetErr/PutErr
//
// # Writer
//
// Writer implements the fire-and-forget persistence contract of the state
// services: after every in-memory mutation a service marshals a snapshot and
// enqueues it; the Writer's background goroutine persists the newest
// snapshot, coalescing bursts. Failures are logged and not surfaced — the
// in-memory state stays authoritative for the session.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode:
//
//	PRAGMA journal_mode=WAL;
//
// # Error Handling
//
//   - ErrNotFound: requested bucket does not exist
//
// All methods accept context.Context.
package store
