package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegia/collegia-core/internal/notify"
	"github.com/collegia/collegia-core/internal/store"
)

// recordingNotifier captures fan-out calls.
type recordingNotifier struct {
	added []recordedNotification
}

type recordedNotification struct {
	ownerID string
	kind    notify.Type
	title   string
	body    string
	data    map[string]string
}

func (r *recordingNotifier) Add(ownerID string, kind notify.Type, title, body string, data map[string]string) *notify.Notification {
	r.added = append(r.added, recordedNotification{ownerID, kind, title, body, data})
	return &notify.Notification{ID: "recorded", OwnerID: ownerID, Type: kind}
}

func setupService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()
	rec := &recordingNotifier{}
	svc := NewService(store.NewMockStore(), rec, nil)
	svc.Hydrate(context.Background())
	t.Cleanup(svc.Close)
	return svc, rec
}

func TestService_GetOrCreateConversation_Dedup(t *testing.T) {
	svc, _ := setupService(t)

	first := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")
	second := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")

	assert.Equal(t, first, second)
	assert.Len(t, svc.ConversationsForUser("a"), 1)
}

func TestService_GetOrCreateConversation_OrderIndependent(t *testing.T) {
	svc, _ := setupService(t)

	first := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")
	second := svc.GetOrCreateConversation("b", "Bob", "a", "Alice")

	assert.Equal(t, first, second, "reversed arguments resolve to the same conversation")
	assert.Len(t, svc.ConversationsForUser("a"), 1)
	assert.Len(t, svc.ConversationsForUser("b"), 1)
}

func TestService_GetOrCreateConversation_NewConversation(t *testing.T) {
	svc, _ := setupService(t)

	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")

	c := svc.ConversationByID(id)
	require.NotNil(t, c)
	assert.ElementsMatch(t, []string{"a", "b"}, c.Participants)
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, c.ParticipantNames)
	assert.Empty(t, c.UnreadBy)
	assert.Zero(t, c.UnreadCount)
	assert.False(t, c.LastMessageTime.IsZero())
	assert.Nil(t, c.LastMessage)
}

func TestService_SendMessage_UnreadBookkeeping(t *testing.T) {
	svc, _ := setupService(t)
	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")

	m := svc.SendMessage(id, "a", "Alice", "hi")
	require.NotNil(t, m)

	c := svc.ConversationByID(id)
	assert.Equal(t, []string{"b"}, c.UnreadBy)
	assert.Equal(t, 1, c.UnreadCount)
	require.NotNil(t, c.LastMessage)
	assert.Equal(t, m.ID, c.LastMessage.ID)
	assert.True(t, m.Timestamp.Equal(c.LastMessageTime))

	svc.MarkConversationRead(id, "b")
	c = svc.ConversationByID(id)
	assert.Empty(t, c.UnreadBy)
	assert.Zero(t, c.UnreadCount)

	// Reading again never goes negative
	svc.MarkConversationRead(id, "b")
	c = svc.ConversationByID(id)
	assert.Zero(t, c.UnreadCount)
}

func TestService_SendMessage_SenderWithUnreadContentDoesNotDoubleCount(t *testing.T) {
	svc, _ := setupService(t)
	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")

	svc.SendMessage(id, "a", "Alice", "hi")  // unreadBy=[b], count=1
	svc.SendMessage(id, "b", "Bob", "hello") // b was unread: count stays 1

	c := svc.ConversationByID(id)
	assert.Equal(t, []string{"a"}, c.UnreadBy)
	assert.Equal(t, 1, c.UnreadCount)
}

func TestService_SendMessage_ConsecutiveSendsIncrement(t *testing.T) {
	svc, _ := setupService(t)
	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")

	svc.SendMessage(id, "a", "Alice", "one")
	svc.SendMessage(id, "a", "Alice", "two")

	c := svc.ConversationByID(id)
	assert.Equal(t, []string{"b"}, c.UnreadBy)
	assert.Equal(t, 2, c.UnreadCount)
}

func TestService_SendMessage_UnknownConversation(t *testing.T) {
	svc, rec := setupService(t)

	assert.Nil(t, svc.SendMessage("missing", "a", "Alice", "hi"))
	assert.Empty(t, rec.added, "no fan-out for a dropped send")
}

func TestService_SendMessage_FanOut(t *testing.T) {
	svc, rec := setupService(t)
	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")

	m := svc.SendMessage(id, "a", "Alice", "hi")

	require.Len(t, rec.added, 1, "exactly one notification, none for the sender")
	got := rec.added[0]
	assert.Equal(t, "b", got.ownerID)
	assert.Equal(t, notify.TypeMessage, got.kind)
	assert.Equal(t, "New message from Alice", got.title)
	assert.Equal(t, "hi", got.body)
	assert.Equal(t, id, got.data["conversationId"])
	assert.Equal(t, m.ID, got.data["messageId"])
}

func TestService_SendMessage_FanOutReachesNotifyService(t *testing.T) {
	// Wire the real notification service instead of the recorder
	notifier := notify.NewService(store.NewMockStore(), nil)
	notifier.Hydrate(context.Background())
	defer notifier.Close()

	svc := NewService(store.NewMockStore(), notifier, nil)
	svc.Hydrate(context.Background())
	defer svc.Close()

	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")
	svc.SendMessage(id, "a", "Alice", "hi")

	assert.Equal(t, 1, notifier.UnreadCountFor("b"))
	assert.Zero(t, notifier.UnreadCountFor("a"))

	listed := notifier.ListFor("b")
	require.Len(t, listed, 1)
	assert.Equal(t, notify.TypeMessage, listed[0].Type)
	assert.Equal(t, "hi", listed[0].Body)
}

func TestService_MarkConversationRead_Unknowns(t *testing.T) {
	svc, _ := setupService(t)
	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")
	svc.SendMessage(id, "a", "Alice", "hi")

	// Unknown conversation and non-unread user are both no-ops
	svc.MarkConversationRead("missing", "b")
	svc.MarkConversationRead(id, "a")

	c := svc.ConversationByID(id)
	assert.Equal(t, []string{"b"}, c.UnreadBy)
	assert.Equal(t, 1, c.UnreadCount)
}

func TestService_MessagesFor_SortedAscending(t *testing.T) {
	svc, _ := setupService(t)
	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")

	svc.SendMessage(id, "a", "Alice", "first")
	svc.SendMessage(id, "b", "Bob", "second")
	svc.SendMessage(id, "a", "Alice", "third")

	// Shuffle timestamps to prove ordering comes from them, not insertion
	svc.mu.Lock()
	base := time.Now()
	svc.messages[0].Timestamp = base.Add(2 * time.Minute)
	svc.messages[1].Timestamp = base
	svc.messages[2].Timestamp = base.Add(time.Minute)
	svc.mu.Unlock()

	msgs := svc.MessagesFor(id)
	require.Len(t, msgs, 3)
	assert.Equal(t, "second", msgs[0].Content)
	assert.Equal(t, "third", msgs[1].Content)
	assert.Equal(t, "first", msgs[2].Content)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].Timestamp.Before(msgs[i-1].Timestamp))
	}
}

func TestService_ConversationsForUser_SortedByActivity(t *testing.T) {
	svc, _ := setupService(t)

	withBob := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")
	withCarol := svc.GetOrCreateConversation("a", "Alice", "c", "Carol")

	svc.SendMessage(withBob, "a", "Alice", "old")
	svc.SendMessage(withCarol, "a", "Alice", "new")

	// Make the ordering unambiguous
	svc.mu.Lock()
	svc.findLocked(withBob).LastMessageTime = time.Now().Add(-time.Hour)
	svc.mu.Unlock()

	convs := svc.ConversationsForUser("a")
	require.Len(t, convs, 2)
	assert.Equal(t, withCarol, convs[0].ID)
	assert.Equal(t, withBob, convs[1].ID)

	assert.Empty(t, svc.ConversationsForUser("d"))
}

func TestService_QueriesReturnCopies(t *testing.T) {
	svc, _ := setupService(t)
	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")
	svc.SendMessage(id, "a", "Alice", "hi")

	c := svc.ConversationByID(id)
	c.UnreadBy[0] = "intruder"
	c.UnreadCount = 99

	fresh := svc.ConversationByID(id)
	assert.Equal(t, []string{"b"}, fresh.UnreadBy)
	assert.Equal(t, 1, fresh.UnreadCount)
}

func TestService_RoundTrip(t *testing.T) {
	mock := store.NewMockStore()
	ctx := context.Background()

	svc := NewService(mock, &recordingNotifier{}, nil)
	svc.Hydrate(ctx)
	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")
	sent := svc.SendMessage(id, "a", "Alice", "persist me")
	svc.Close()

	reloaded := NewService(mock, &recordingNotifier{}, nil)
	reloaded.Hydrate(ctx)
	defer reloaded.Close()

	c := reloaded.ConversationByID(id)
	require.NotNil(t, c)
	assert.Equal(t, []string{"b"}, c.UnreadBy)
	assert.Equal(t, 1, c.UnreadCount)
	assert.True(t, sent.Timestamp.Equal(c.LastMessageTime), "timestamps compare equal by instant after the round trip")

	msgs := reloaded.MessagesFor(id)
	require.Len(t, msgs, 1)
	assert.Equal(t, "persist me", msgs[0].Content)
	assert.True(t, sent.Timestamp.Equal(msgs[0].Timestamp))

	// Dedup still holds against rehydrated state
	assert.Equal(t, id, reloaded.GetOrCreateConversation("b", "Bob", "a", "Alice"))
}

func TestService_Hydrate_CorruptState(t *testing.T) {
	mock := store.NewMockStore()
	require.NoError(t, mock.Put(context.Background(), store.BucketMessaging, []byte("not json")))

	svc := NewService(mock, nil, nil)
	svc.Hydrate(context.Background())
	defer svc.Close()

	assert.True(t, svc.Hydrated())
	assert.Empty(t, svc.ConversationsForUser("a"))
}

func TestService_PreHydrationQueriesAreEmpty(t *testing.T) {
	svc := NewService(store.NewMockStore(), nil, nil)
	defer svc.Close()

	assert.False(t, svc.Hydrated())
	assert.Empty(t, svc.ConversationsForUser("a"))
	assert.Nil(t, svc.ConversationByID("any"))
	assert.Empty(t, svc.MessagesFor("any"))
}

func TestService_SendMessage_NilNotifier(t *testing.T) {
	svc := NewService(store.NewMockStore(), nil, nil)
	svc.Hydrate(context.Background())
	defer svc.Close()

	id := svc.GetOrCreateConversation("a", "Alice", "b", "Bob")
	assert.NotNil(t, svc.SendMessage(id, "a", "Alice", "hi"))
}
