// ABOUTME: Messaging state service: conversations, message log, unread bookkeeping
// ABOUTME: Message delivery fans out to the injected Notifier for every recipient

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/collegia/collegia-core/internal/notify"
	"github.com/collegia/collegia-core/internal/store"
)

// Notifier is what the messaging service needs from the notification layer.
// notify.Service implements it.
type Notifier interface {
	Add(ownerID string, kind notify.Type, title, body string, data map[string]string) *notify.Notification
}

// Service owns conversations and their append-only message log.
type Service struct {
	mu            sync.RWMutex
	writer        *store.Writer
	store         store.Store
	notifier      Notifier
	logger        *slog.Logger
	conversations []*Conversation
	messages      []*Message
	hydrated      bool
}

// NewService creates a messaging service persisting to st and fanning out
// message notifications through notifier.
func NewService(st store.Store, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "messaging")
	return &Service{
		store:    st,
		writer:   store.NewWriter(st, store.BucketMessaging, logger),
		notifier: notifier,
		logger:   logger,
	}
}

// messagingState is the persisted bucket document.
type messagingState struct {
	Conversations []*Conversation `json:"conversations"`
	Messages      []*Message      `json:"messages"`
}

// Hydrate loads persisted conversations and messages. Corrupt or unreadable
// state is logged and treated as empty; the service always comes up hydrated.
func (s *Service) Hydrate(ctx context.Context) {
	blob, err := s.store.Get(ctx, store.BucketMessaging)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, store.ErrNotFound):
		// First run
	case err != nil:
		s.logger.Error("loading messaging state", "error", err)
	default:
		var st messagingState
		if uerr := json.Unmarshal(blob, &st); uerr != nil {
			s.logger.Warn("corrupt messaging state, starting empty", "error", uerr)
		} else {
			s.conversations = st.Conversations
			s.messages = st.Messages
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

// GetOrCreateConversation returns the id of the conversation between userA
// and userB, creating it on first contact. The lookup is order-independent:
// (A,B) and (B,A) resolve to the same conversation.
func (s *Service) GetOrCreateConversation(userA, userAName, userB, userBName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.HasParticipant(userA) && c.HasParticipant(userB) {
			return c.ID
		}
	}

	c := &Conversation{
		ID:               uuid.New().String(),
		Participants:     []string{userA, userB},
		ParticipantNames: []string{userAName, userBName},
		LastMessageTime:  time.Now(),
		UnreadCount:      0,
		UnreadBy:         []string{},
	}
	s.conversations = append(s.conversations, c)
	s.persistLocked()

	s.logger.Debug("conversation created", "conversation_id", c.ID)
	return c.ID
}

// SendMessage appends a message to the conversation's log, updates the
// conversation's last-message snapshot and unread state, and enqueues a
// notification for every participant except the sender. Returns a copy of
// the new message, or nil if the conversation does not exist.
//
// The conversation update and the notification fan-out are best-effort, not
// atomic: a crash between them loses only the notification.
func (s *Service) SendMessage(conversationID, senderID, senderName, content string) *Message {
	s.mu.Lock()

	c := s.findLocked(conversationID)
	if c == nil {
		s.mu.Unlock()
		return nil
	}

	m := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		Content:        content,
		Timestamp:      time.Now(),
		Read:           false,
	}
	s.messages = append(s.messages, m)

	// The counter tracks "conversation has new content": a sender who still
	// had unread content from the other side does not bump it again.
	senderWasUnread := false
	for _, id := range c.UnreadBy {
		if id == senderID {
			senderWasUnread = true
			break
		}
	}
	if !senderWasUnread {
		c.UnreadCount++
	}

	recipients := make([]string, 0, len(c.Participants))
	for _, id := range c.Participants {
		if id != senderID {
			recipients = append(recipients, id)
		}
	}
	c.UnreadBy = recipients

	snapshot := *m
	c.LastMessage = &snapshot
	c.LastMessageTime = m.Timestamp
	s.persistLocked()
	s.mu.Unlock()

	if s.notifier != nil {
		for _, recipientID := range recipients {
			s.notifier.Add(recipientID, notify.TypeMessage,
				fmt.Sprintf("New message from %s", senderName),
				content,
				map[string]string{
					"conversationId": conversationID,
					"messageId":      m.ID,
				})
		}
	}

	out := *m
	return &out
}

// MarkConversationRead removes userID from the conversation's unread set and
// decrements the unread counter, clamped at zero. A no-op if the
// conversation is unknown or the user had nothing unread.
func (s *Service) MarkConversationRead(conversationID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findLocked(conversationID)
	if c == nil {
		return
	}

	for i, id := range c.UnreadBy {
		if id == userID {
			c.UnreadBy = append(c.UnreadBy[:i], c.UnreadBy[i+1:]...)
			if c.UnreadCount > 0 {
				c.UnreadCount--
			}
			s.persistLocked()
			return
		}
	}
}

// ConversationByID returns a copy of the identified conversation, or nil.
func (s *Service) ConversationByID(conversationID string) *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.findLocked(conversationID)
	if c == nil {
		return nil
	}
	return cloneConversation(c)
}

// MessagesFor returns copies of the conversation's messages, ordered by
// timestamp ascending.
func (s *Service) MessagesFor(conversationID string) []*Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			c := *m
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// ConversationsForUser returns copies of the user's conversations, most
// recently active first.
func (s *Service) ConversationsForUser(userID string) []*Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Conversation
	for _, c := range s.conversations {
		if c.HasParticipant(userID) {
			out = append(out, cloneConversation(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageTime.After(out[j].LastMessageTime)
	})
	return out
}

// findLocked returns the stored conversation, or nil. Callers must hold s.mu.
func (s *Service) findLocked(conversationID string) *Conversation {
	for _, c := range s.conversations {
		if c.ID == conversationID {
			return c
		}
	}
	return nil
}

func cloneConversation(c *Conversation) *Conversation {
	out := *c
	out.Participants = append([]string(nil), c.Participants...)
	out.ParticipantNames = append([]string(nil), c.ParticipantNames...)
	out.UnreadBy = append([]string(nil), c.UnreadBy...)
	if c.LastMessage != nil {
		m := *c.LastMessage
		out.LastMessage = &m
	}
	return &out
}

// persistLocked snapshots the collections and schedules a background write.
// Callers must hold s.mu.
func (s *Service) persistLocked() {
	blob, err := json.Marshal(messagingState{Conversations: s.conversations, Messages: s.messages})
	if err != nil {
		s.logger.Error("encoding messaging state", "error", err)
		return
	}
	s.writer.Enqueue(blob)
}
