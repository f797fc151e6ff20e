package usecase

import (
	"context"
	"fmt"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

type ListConversationsInput struct {
	Actor *support.User
	// SelectedUserID narrows an elevated user's view to the subtree of one
	// subordinate. Ignored for agents.
	SelectedUserID *int64
}

// ListConversationsUseCase returns the conversations an actor may see:
// everything for elevated roles (optionally scoped to a subordinate's leaf
// descendants), own assignments for agents.
type ListConversationsUseCase struct {
	Conversations repository.ConversationRepository
	Descendants   *GetDescendantsUseCase
}

func NewListConversationsUseCase(conversations repository.ConversationRepository, descendants *GetDescendantsUseCase) *ListConversationsUseCase {
	return &ListConversationsUseCase{Conversations: conversations, Descendants: descendants}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]support.Conversation, error) {
	if !in.Actor.Role.Elevated() {
		out, err := uc.Conversations.ListAssignedTo(ctx, in.Actor.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return out, nil
	}

	var scope []int64
	if in.SelectedUserID != nil {
		ids, err := uc.Descendants.Execute(ctx, *in.SelectedUserID)
		if err != nil {
			return nil, err
		}
		scope = ids
	}
	out, err := uc.Conversations.ListAll(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}
