// ABOUTME: Notification state service: per-user log with unread tracking
// ABOUTME: Consumed by the messaging service for message-received fan-out

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/collegia/collegia-core/internal/store"
)

// Service owns the notification log. It never calls into the other state
// services; producers push into it through Add.
type Service struct {
	mu            sync.RWMutex
	writer        *store.Writer
	store         store.Store
	logger        *slog.Logger
	notifications []*Notification
	hydrated      bool
}

// NewService creates a notification service persisting to st.
func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "notify")
	return &Service{
		store:  st,
		writer: store.NewWriter(st, store.BucketNotifications, logger),
		logger: logger,
	}
}

// notifyState is the persisted bucket document.
type notifyState struct {
	Notifications []*Notification `json:"notifications"`
}

// Hydrate loads persisted notifications. Corrupt or unreadable state is
// logged and treated as empty; the service always comes up hydrated.
func (s *Service) Hydrate(ctx context.Context) {
	blob, err := s.store.Get(ctx, store.BucketNotifications)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, store.ErrNotFound):
		// First run
	case err != nil:
		s.logger.Error("loading notification state", "error", err)
	default:
		var st notifyState
		if uerr := json.Unmarshal(blob, &st); uerr != nil {
			s.logger.Warn("corrupt notification state, starting empty", "error", uerr)
		} else {
			s.notifications = st.Notifications
		}
	}
	s.hydrated = true
}

// Hydrated reports whether Hydrate has completed.
func (s *Service) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Close flushes pending persistence writes.
func (s *Service) Close() {
	s.writer.Close()
}

// Add appends a new unread notification for ownerID and returns a copy of it.
func (s *Service) Add(ownerID string, kind Type, title, body string, data map[string]string) *Notification {
	n := &Notification{
		ID:        uuid.New().String(),
		Type:      kind,
		Title:     title,
		Body:      body,
		Data:      data,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
		Read:      false,
	}

	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.persistLocked()
	s.mu.Unlock()

	out := *n
	return &out
}

// MarkRead marks a single notification as read. Unknown ids are a no-op.
func (s *Service) MarkRead(notificationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.ID == notificationID {
			n.Read = true
			s.persistLocked()
			return
		}
	}
}

// MarkAllRead marks every notification owned by ownerID as read.
func (s *Service) MarkAllRead(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, n := range s.notifications {
		if n.OwnerID == ownerID && !n.Read {
			n.Read = true
			changed = true
		}
	}
	if changed {
		s.persistLocked()
	}
}

// UnreadCountFor returns the number of unread notifications owned by ownerID.
func (s *Service) UnreadCountFor(ownerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications {
		if n.OwnerID == ownerID && !n.Read {
			count++
		}
	}
	return count
}

// ListFor returns copies of ownerID's notifications, newest first.
func (s *Service) ListFor(ownerID string) []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Notification
	for _, n := range s.notifications {
		if n.OwnerID == ownerID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// ClearFor removes every notification owned by ownerID.
func (s *Service) ClearFor(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.OwnerID != ownerID {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(s.notifications) {
		return
	}
	s.notifications = kept
	s.persistLocked()
}

// persistLocked snapshots the log and schedules a background write.
// Callers must hold s.mu.
func (s *Service) persistLocked() {
	blob, err := json.Marshal(notifyState{Notifications: s.notifications})
	if err != nil {
		s.logger.Error("encoding notification state", "error", err)
		return
	}
	s.writer.Enqueue(blob)
}
