package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
)

type inboundFixture struct {
	users    *memUsers
	convs    *memConversations
	messages *memMessages
	events   *recorderEvents
	watcher  *fakeWatcher
	queue    *fakeQueue
	uc       *HandleCustomerMessageUseCase
}

func newInboundFixture(users ...support.User) *inboundFixture {
	f := &inboundFixture{
		users:   newMemUsers(users...),
		convs:   newMemConversations(),
		events:  &recorderEvents{},
		watcher: &fakeWatcher{},
		queue:   &fakeQueue{},
	}
	f.messages = &memMessages{convs: f.convs}
	for _, u := range users {
		if u.Role == support.RoleAgent {
			f.convs.addAgent(u)
		}
	}
	audience := NewAudience(f.users, &memHierarchy{})
	assign := NewAssignConversationUseCase(f.users, f.convs, audience, f.events, &fakeCustomer{}, 3, testLogger())
	mass := NewMassAssignmentUseCase(f.convs, NewSelectFreeAgentsUseCase(f.convs, 3), assign, 3, testLogger())
	f.uc = NewHandleCustomerMessageUseCase(
		f.convs, f.messages, audience, f.events, f.watcher, mass, f.queue, 30*time.Minute, testLogger(),
	)
	return f
}

func TestInboundFirstContact(t *testing.T) {
	f := newInboundFixture(support.User{ID: 7, FullName: "Ana Ruiz", Role: support.RoleAgent})

	msg, err := f.uc.Execute(context.Background(), CustomerMessageInput{
		ThreadID:   "th-new",
		FromNumber: "+573001112233",
		Body:       "hola, necesito ayuda",
	})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, support.SenderClient, msg.Sender)

	// The sweep picked the conversation up before the message landed.
	conv, err := f.convs.GetConversationByThread(context.Background(), "th-new")
	require.NoError(t, err)
	assert.Equal(t, support.StateOpen, conv.State)
	require.NotNil(t, conv.AssignedUserID)
	assert.Equal(t, int64(7), *conv.AssignedUserID)

	// The unattended check is scheduled exactly once, on the slow queue.
	require.Len(t, f.queue.tasks, 1)
	assert.Equal(t, UnattendedTaskType, f.queue.tasks[0].Task.Type)
	assert.Equal(t, "conversations", f.queue.tasks[0].Opt.Queue)
	assert.Equal(t, 30*time.Minute, f.queue.tasks[0].Opt.ProcessIn)
	var p UnattendedTaskPayload
	require.NoError(t, json.Unmarshal(f.queue.tasks[0].Task.Payload, &p))
	assert.Equal(t, "th-new", p.ThreadID)

	// First contact announces itself as a new conversation.
	var sawNewConversation bool
	for _, n := range f.events.notifications {
		if n.Event.Type == support.EventNewConversation && n.Event.Message != nil {
			sawNewConversation = true
			assert.Equal(t, "hola, necesito ayuda", n.Event.Message.Content)
		}
	}
	assert.True(t, sawNewConversation)
	require.NotEmpty(t, f.events.messages)
}

func TestInboundClosedConversationIgnored(t *testing.T) {
	f := newInboundFixture()
	f.convs.add(support.Conversation{ThreadID: "th-done", State: support.StateClosed})

	msg, err := f.uc.Execute(context.Background(), CustomerMessageInput{ThreadID: "th-done", Body: "hola?"})
	require.NoError(t, err)
	assert.Nil(t, msg)
	assert.Empty(t, f.messages.saved)
	assert.Empty(t, f.events.notifications)
	assert.Empty(t, f.queue.tasks)
}

func TestInboundUnreadBumpsWhenAssigneeAway(t *testing.T) {
	f := newInboundFixture()
	conv := f.convs.add(support.Conversation{ThreadID: "th-1", State: support.StateOpen, AssignedUserID: i64(7), UnreadCount: 2})

	_, err := f.uc.Execute(context.Background(), CustomerMessageInput{ThreadID: "th-1", Body: "sigue ahi?"})
	require.NoError(t, err)

	got, _ := f.convs.GetConversation(context.Background(), conv.ID)
	assert.Equal(t, 3, got.UnreadCount)
	require.Len(t, f.messages.bumps, 1)
	assert.True(t, f.messages.bumps[0])
}

func TestInboundUnreadSkippedWhenAssigneeWatching(t *testing.T) {
	f := newInboundFixture()
	conv := f.convs.add(support.Conversation{ThreadID: "th-1", State: support.StateOpen, AssignedUserID: i64(7), UnreadCount: 2})
	f.watcher.watching = map[int64]int64{conv.ID: 7}

	_, err := f.uc.Execute(context.Background(), CustomerMessageInput{ThreadID: "th-1", Body: "gracias"})
	require.NoError(t, err)

	got, _ := f.convs.GetConversation(context.Background(), conv.ID)
	assert.Equal(t, 2, got.UnreadCount)
	require.Len(t, f.messages.bumps, 1)
	assert.False(t, f.messages.bumps[0])
}

func TestInboundMediaMessage(t *testing.T) {
	f := newInboundFixture()
	f.convs.add(support.Conversation{ThreadID: "th-1", State: support.StateOpen, AssignedUserID: i64(7)})

	msg, err := f.uc.Execute(context.Background(), CustomerMessageInput{
		ThreadID:  "th-1",
		Body:      "",
		MediaURL:  "https://cdn.example.com/voucher.pdf",
		MediaName: "voucher.pdf",
		MediaType: "application/pdf",
		MediaSize: 52411,
	})
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Len(t, f.messages.media, 1)
	assert.Equal(t, "voucher.pdf", f.messages.media[0].Filename)

	require.NotEmpty(t, f.events.messages)
	assert.Equal(t, "https://cdn.example.com/voucher.pdf", f.events.messages[0].Data.Attachment)
	assert.Equal(t, "application/pdf", f.events.messages[0].Data.AttachmentType)
}
