// Package messaging owns direct-message conversations and their message log.
//
// # Overview
//
// A Conversation links exactly two participants; at most one exists per
// unordered pair, enforced by GetOrCreateConversation's set-membership
// lookup. Messages are append-only and ordered by timestamp.
//
// Key operations:
//
//   - GetOrCreateConversation(a, aName, b, bName): order-independent dedup
//   - SendMessage(conversationID, senderID, senderName, content)
//   - MarkConversationRead(conversationID, userID)
//   - ConversationsForUser / MessagesFor / ConversationByID
//
// # Unread bookkeeping
//
// Each conversation carries an unread set (participants who have not seen
// the latest content) and an unread counter. Sending resets the set to all
// non-senders; reading removes one participant and decrements the counter,
// clamped at zero.
//
// # Fan-out
//
// SendMessage enqueues a "message" notification through the injected
// Notifier for every participant except the sender. This is the only
// cross-store call in the core, and it is best-effort: the conversation
// update is persisted independently of the notification.
//
// # Persistence
//
// State is persisted to the "messaging" bucket after every mutation. Call
// Hydrate once at startup; queries before hydration return zero values.
package messaging
