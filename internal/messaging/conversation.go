// ABOUTME: Conversation and Message entities for direct messaging
// ABOUTME: Conversations are unique per unordered participant pair; messages are append-only

package messaging

import "time"

// Conversation is a thread between exactly two participants. Participant
// order carries no meaning; lookups are by set membership. UnreadBy tracks
// which participants have not seen the latest content.
type Conversation struct {
	ID               string    `json:"id"`
	Participants     []string  `json:"participants"`
	ParticipantNames []string  `json:"participantNames"`
	LastMessage      *Message  `json:"lastMessage,omitempty"`
	LastMessageTime  time.Time `json:"lastMessageTime"`
	UnreadCount      int       `json:"unreadCount"`
	UnreadBy         []string  `json:"unreadBy"`
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Message is one entry in a conversation's append-only log. Once created it
// is immutable; the Read flag is informational, the authoritative unread
// state lives on the Conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Read           bool      `json:"read"`
}
