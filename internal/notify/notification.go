// ABOUTME: Notification entity for the per-user notification log
// ABOUTME: Entries are created by event producers and mutated only by mark-read

package notify

import "time"

// Type classifies a notification.
type Type string

// Notification types produced by the app's event sources.
const (
	TypeMessage Type = "message"
	TypeLike    Type = "like"
	TypeComment Type = "comment"
	TypeFollow  Type = "follow"
)

// Notification is a single entry in a user's notification log.
// OwnerID is the user who should see it, not the user who caused it.
type Notification struct {
	ID        string            `json:"id"`
	Type      Type              `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	OwnerID   string            `json:"userId"`
	Timestamp time.Time         `json:"timestamp"`
	Read      bool              `json:"read"`
}
