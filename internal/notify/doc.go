// Package notify owns the per-user notification log.
//
// # Overview
//
// Notifications are appended by event producers (the messaging service on
// message delivery, UI collaborators for likes, comments and follows) and
// mutated only by the mark-read operations. The service never calls into
// the other state services.
//
// Key operations:
//
//   - Add(ownerID, kind, title, body, data): append a fresh unread entry
//   - MarkRead(id) / MarkAllRead(ownerID)
//   - UnreadCountFor(ownerID): badge counts for the UI
//   - ListFor(ownerID): a user's log, newest first
//   - ClearFor(ownerID): explicit per-user wipe
//
// # Persistence
//
// The log is persisted to the "notifications" bucket after every mutation
// (fire and forget, see the store package). Call Hydrate once at startup;
// queries before hydration return zero values.
package notify
