package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
)

type endFixture struct {
	users    *memUsers
	convs    *memConversations
	events   *recorderEvents
	customer *fakeCustomer
	uc       *EndConversationUseCase
}

func newEndFixture(users ...support.User) *endFixture {
	f := &endFixture{
		users:    newMemUsers(users...),
		convs:    newMemConversations(),
		events:   &recorderEvents{},
		customer: &fakeCustomer{},
	}
	audience := NewAudience(f.users, &memHierarchy{})
	assign := NewAssignConversationUseCase(f.users, f.convs, audience, f.events, f.customer, 3, testLogger())
	mass := NewMassAssignmentUseCase(f.convs, NewSelectFreeAgentsUseCase(f.convs, 3), assign, 3, testLogger())
	f.uc = NewEndConversationUseCase(f.users, f.convs, audience, f.events, f.customer, mass, testLogger())
	return f
}

func TestEndConversation(t *testing.T) {
	f := newEndFixture(support.User{ID: 7, FullName: "Ana Ruiz", Role: support.RoleAgent})
	conv := f.convs.add(support.Conversation{
		ThreadID:       "th-1",
		ClientPhone:    "+573001112233",
		State:          support.StateOpen,
		AssignedUserID: i64(7),
		CreditNumber:   "CR-2211",
	})
	actor := support.User{ID: 7, FullName: "Ana Ruiz", Role: support.RoleAgent}

	err := f.uc.Execute(context.Background(), EndConversationInput{
		ConversationID: conv.ID,
		Actor:          &actor,
		Typification:   &TypificationInput{Motive: "resolved", Comment: "payment agreed", ClientID: "CC-1020"},
	})
	require.NoError(t, err)

	got, err := f.convs.GetConversation(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, support.StateClosed, got.State)

	// Typification inherits the credit selected on the conversation.
	require.Len(t, f.convs.typs, 1)
	assert.Equal(t, "resolved", f.convs.typs[0].Motive)
	assert.Equal(t, "CR-2211", f.convs.typs[0].CreditNumber)
	assert.Equal(t, "CC-1020", f.convs.typs[0].ClientID)

	require.Len(t, f.users.logs, 1)
	assert.Equal(t, support.EventEndChat, f.users.logs[0].EventType)

	// Customer gets the goodbye with the assignee's name.
	require.Len(t, f.customer.endedCalls, 1)
	assert.Equal(t, "Ana Ruiz", f.customer.endedCalls[0])

	// The end event reaches the agent and the open chat views see the marker.
	require.NotEmpty(t, f.events.notifications)
	for _, n := range f.events.notifications {
		assert.Equal(t, support.EventEndConversation, n.Event.Type)
		require.NotNil(t, n.Event.Message)
		assert.Equal(t, "##EndChat##", n.Event.Message.Content)
	}
	require.Len(t, f.events.messages, 1)
	assert.Equal(t, conv.ID, f.events.messages[0].ConversationID)
	assert.Equal(t, "##EndChat##", f.events.messages[0].Data.Content)
}

func TestEndConversationAgentMustBeAssignee(t *testing.T) {
	f := newEndFixture(
		support.User{ID: 7, Role: support.RoleAgent},
		support.User{ID: 8, Role: support.RoleAgent},
	)
	conv := f.convs.add(support.Conversation{State: support.StateOpen, AssignedUserID: i64(8)})
	actor := support.User{ID: 7, Role: support.RoleAgent}

	err := f.uc.Execute(context.Background(), EndConversationInput{ConversationID: conv.ID, Actor: &actor})
	assert.ErrorIs(t, err, ErrCannotEndConversation)

	got, _ := f.convs.GetConversation(context.Background(), conv.ID)
	assert.Equal(t, support.StateOpen, got.State)
}

func TestEndConversationElevatedRoleMayEndAny(t *testing.T) {
	f := newEndFixture(
		support.User{ID: 8, FullName: "Leo Mora", Role: support.RoleAgent},
		support.User{ID: 2, FullName: "Luis Vega", Role: support.RoleSupervisor},
	)
	conv := f.convs.add(support.Conversation{State: support.StateOpen, AssignedUserID: i64(8)})
	actor := support.User{ID: 2, FullName: "Luis Vega", Role: support.RoleSupervisor}

	err := f.uc.Execute(context.Background(), EndConversationInput{ConversationID: conv.ID, Actor: &actor})
	require.NoError(t, err)

	got, _ := f.convs.GetConversation(context.Background(), conv.ID)
	assert.Equal(t, support.StateClosed, got.State)

	// The goodbye names the agent who held the conversation, not the closer.
	require.Len(t, f.customer.endedCalls, 1)
	assert.Equal(t, "Leo Mora", f.customer.endedCalls[0])
}

func TestEndConversationAlreadyClosed(t *testing.T) {
	f := newEndFixture(support.User{ID: 2, Role: support.RoleSupervisor})
	conv := f.convs.add(support.Conversation{State: support.StateClosed})
	actor := support.User{ID: 2, Role: support.RoleSupervisor}

	err := f.uc.Execute(context.Background(), EndConversationInput{ConversationID: conv.ID, Actor: &actor})
	assert.ErrorIs(t, err, ErrConversationClosed)
}
