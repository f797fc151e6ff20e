package usecase

import (
	"context"
	"fmt"
	"sort"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// SelectFreeAgentsUseCase picks the agents eligible for new assignments.
type SelectFreeAgentsUseCase struct {
	Conversations  repository.ConversationRepository
	MaxAssignments int
}

func NewSelectFreeAgentsUseCase(conversations repository.ConversationRepository, maxAssignments int) *SelectFreeAgentsUseCase {
	return &SelectFreeAgentsUseCase{Conversations: conversations, MaxAssignments: maxAssignments}
}

// Execute returns every online agent with spare capacity, least loaded first.
// Ties break toward the agent whose last assignment is oldest (never-assigned
// agents come before all others), then toward the lower user ID. An empty
// result is a normal outcome, not an error.
func (uc *SelectFreeAgentsUseCase) Execute(ctx context.Context) ([]support.AgentLoad, error) {
	loads, err := uc.Conversations.ListAgentLoads(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	free := make([]support.AgentLoad, 0, len(loads))
	for _, l := range loads {
		if l.OpenCount < uc.MaxAssignments {
			free = append(free, l)
		}
	}

	sort.SliceStable(free, func(i, j int) bool {
		a, b := free[i], free[j]
		if a.OpenCount != b.OpenCount {
			return a.OpenCount < b.OpenCount
		}
		switch {
		case a.LastAssignedAt == nil && b.LastAssignedAt != nil:
			return true
		case a.LastAssignedAt != nil && b.LastAssignedAt == nil:
			return false
		case a.LastAssignedAt != nil && b.LastAssignedAt != nil && !a.LastAssignedAt.Equal(*b.LastAssignedAt):
			return a.LastAssignedAt.Before(*b.LastAssignedAt)
		}
		return a.User.ID < b.User.ID
	})
	return free, nil
}
