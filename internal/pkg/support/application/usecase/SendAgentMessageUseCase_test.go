package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
)

type outboundFixture struct {
	users    *memUsers
	convs    *memConversations
	messages *memMessages
	events   *recorderEvents
	customer *fakeCustomer
	uc       *SendAgentMessageUseCase
}

func newOutboundFixture(users ...support.User) *outboundFixture {
	f := &outboundFixture{
		users:    newMemUsers(users...),
		convs:    newMemConversations(),
		events:   &recorderEvents{},
		customer: &fakeCustomer{},
	}
	f.messages = &memMessages{convs: f.convs}
	f.uc = NewSendAgentMessageUseCase(
		f.convs, f.messages, NewAudience(f.users, &memHierarchy{}), f.events, f.customer, testLogger(),
	)
	return f
}

func TestSendAgentMessage(t *testing.T) {
	f := newOutboundFixture(support.User{ID: 7, FullName: "Ana Ruiz", Role: support.RoleAgent})
	conv := f.convs.add(support.Conversation{
		ThreadID:       "th-1",
		ClientPhone:    "+573001112233",
		State:          support.StateOpen,
		AssignedUserID: i64(7),
	})
	actor := support.User{ID: 7, FullName: "Ana Ruiz", Role: support.RoleAgent}

	msg, err := f.uc.Execute(context.Background(), SendAgentMessageInput{
		ConversationID: conv.ID,
		Actor:          &actor,
		Body:           "  buenos dias  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "buenos dias", msg.Content)
	assert.Equal(t, support.SenderAgent, msg.Sender)

	require.Len(t, f.customer.sent, 1)
	assert.Equal(t, "+573001112233", f.customer.sent[0].ToNumber)
	assert.Equal(t, "Ana Ruiz", f.customer.sent[0].SenderName)

	// Agent replies never bump the unread counter.
	require.Len(t, f.messages.bumps, 1)
	assert.False(t, f.messages.bumps[0])

	require.Len(t, f.events.messages, 1)
	assert.Equal(t, conv.ID, f.events.messages[0].ConversationID)
}

func TestSendAgentMessageClosedConversation(t *testing.T) {
	f := newOutboundFixture(support.User{ID: 7, Role: support.RoleAgent})
	conv := f.convs.add(support.Conversation{State: support.StateClosed, AssignedUserID: i64(7)})
	actor := support.User{ID: 7, Role: support.RoleAgent}

	_, err := f.uc.Execute(context.Background(), SendAgentMessageInput{ConversationID: conv.ID, Actor: &actor, Body: "hola"})
	assert.ErrorIs(t, err, ErrConversationClosed)
	assert.Empty(t, f.messages.saved)
}

func TestSendAgentMessageForeignConversation(t *testing.T) {
	f := newOutboundFixture(
		support.User{ID: 7, Role: support.RoleAgent},
		support.User{ID: 8, Role: support.RoleAgent},
	)
	conv := f.convs.add(support.Conversation{State: support.StateOpen, AssignedUserID: i64(8)})
	actor := support.User{ID: 7, Role: support.RoleAgent}

	_, err := f.uc.Execute(context.Background(), SendAgentMessageInput{ConversationID: conv.ID, Actor: &actor, Body: "hola"})
	assert.ErrorIs(t, err, ErrNotAssigned)
}

func TestSendAgentMessageEmptyBody(t *testing.T) {
	f := newOutboundFixture(support.User{ID: 7, Role: support.RoleAgent})
	conv := f.convs.add(support.Conversation{State: support.StateOpen, AssignedUserID: i64(7)})
	actor := support.User{ID: 7, Role: support.RoleAgent}

	_, err := f.uc.Execute(context.Background(), SendAgentMessageInput{ConversationID: conv.ID, Actor: &actor, Body: "   "})
	assert.ErrorIs(t, err, support.ErrEmptyMessage)
}

func TestSendAgentMessageDeliveryFailureRollsBack(t *testing.T) {
	f := newOutboundFixture(support.User{ID: 7, Role: support.RoleAgent})
	conv := f.convs.add(support.Conversation{State: support.StateOpen, AssignedUserID: i64(7)})
	actor := support.User{ID: 7, Role: support.RoleAgent}
	f.customer.sendErr = errors.New("bridge unreachable")

	_, err := f.uc.Execute(context.Background(), SendAgentMessageInput{ConversationID: conv.ID, Actor: &actor, Body: "hola"})
	assert.ErrorIs(t, err, ErrCustomerDelivery)

	// The stored message was rolled back and nothing was fanned out.
	assert.Empty(t, f.messages.saved)
	assert.Empty(t, f.events.messages)
	assert.Empty(t, f.events.notifications)
}

func TestSendAgentMessageAdminHidesName(t *testing.T) {
	f := newOutboundFixture(support.User{ID: 4, FullName: "Root Admin", Role: support.RoleAdmin})
	conv := f.convs.add(support.Conversation{State: support.StateOpen, AssignedUserID: i64(7)})
	actor := support.User{ID: 4, FullName: "Root Admin", Role: support.RoleAdmin}

	_, err := f.uc.Execute(context.Background(), SendAgentMessageInput{ConversationID: conv.ID, Actor: &actor, Body: "revisando su caso"})
	require.NoError(t, err)
	require.Len(t, f.customer.sent, 1)
	assert.Empty(t, f.customer.sent[0].SenderName)
}
