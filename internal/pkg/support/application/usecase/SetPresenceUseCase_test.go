package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
)

func TestSetPresenceRecordsAuditLog(t *testing.T) {
	users := newMemUsers(support.User{ID: 2, Role: support.RoleSupervisor, Presence: support.PresenceOffline})
	uc := NewSetPresenceUseCase(users, nil, testLogger())

	user, err := uc.Execute(context.Background(), SetPresenceInput{UserID: 2, Presence: support.PresenceBreak})
	require.NoError(t, err)
	assert.Equal(t, support.PresenceBreak, user.Presence)
	assert.Equal(t, support.PresenceBreak, users.users[2].Presence)

	require.Len(t, users.logs, 1)
	assert.Equal(t, support.EventStateChange, users.logs[0].EventType)
	assert.Equal(t, "BREAK", users.logs[0].Details)
}

func TestSetPresenceAgentOnlineTriggersSweep(t *testing.T) {
	agent := support.User{ID: 7, Role: support.RoleAgent, Presence: support.PresenceOffline}
	users := newMemUsers(agent)
	convs := newMemConversations()
	convs.addAgent(agent)
	conv := convs.add(support.Conversation{ThreadID: "th-1", State: support.StatePending})

	events := &recorderEvents{}
	assign := NewAssignConversationUseCase(users, convs, NewAudience(users, &memHierarchy{}), events, &fakeCustomer{}, 3, testLogger())
	mass := NewMassAssignmentUseCase(convs, NewSelectFreeAgentsUseCase(convs, 3), assign, 3, testLogger())
	uc := NewSetPresenceUseCase(users, mass, testLogger())

	_, err := uc.Execute(context.Background(), SetPresenceInput{UserID: 7, Presence: support.PresenceOnline})
	require.NoError(t, err)

	got, _ := convs.GetConversation(context.Background(), conv.ID)
	assert.Equal(t, support.StateOpen, got.State)
	require.NotNil(t, got.AssignedUserID)
	assert.Equal(t, int64(7), *got.AssignedUserID)
}
