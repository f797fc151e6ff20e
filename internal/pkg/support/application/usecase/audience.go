package usecase

import (
	"context"
	"fmt"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// Audience computes which users get notified about a conversation event: the
// assigned user's ancestor chain, every principal, the assigned user, and the
// previous assignee when the event is a transfer. Duplicates keep their first
// position.
type Audience struct {
	Users     repository.UserRepository
	Ancestors *GetAncestorsUseCase
}

func NewAudience(users repository.UserRepository, hierarchy repository.HierarchyRepository) *Audience {
	return &Audience{
		Users:     users,
		Ancestors: NewGetAncestorsUseCase(users, hierarchy),
	}
}

func (a *Audience) Resolve(ctx context.Context, assignedUserID, previousUserID *int64) ([]int64, error) {
	var out []int64
	seen := make(map[int64]bool)
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	if assignedUserID != nil {
		ancestors, err := a.Ancestors.Execute(ctx, *assignedUserID)
		if err != nil {
			return nil, err
		}
		for _, id := range ancestors {
			add(id)
		}
	}

	principals, err := a.Users.ListUsersByRole(ctx, support.RolePrincipal)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	for _, p := range principals {
		add(p.ID)
	}

	if assignedUserID != nil {
		add(*assignedUserID)
	}
	if previousUserID != nil && (assignedUserID == nil || *previousUserID != *assignedUserID) {
		add(*previousUserID)
	}
	return out, nil
}
