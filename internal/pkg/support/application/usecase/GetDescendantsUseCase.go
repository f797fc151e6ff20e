package usecase

import (
	"context"
	"errors"
	"fmt"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// GetDescendantsUseCase resolves the set of users whose conversations a
// supervisor-like user is allowed to scope into.
type GetDescendantsUseCase struct {
	Users     repository.UserRepository
	Hierarchy repository.HierarchyRepository
}

func NewGetDescendantsUseCase(users repository.UserRepository, hierarchy repository.HierarchyRepository) *GetDescendantsUseCase {
	return &GetDescendantsUseCase{Users: users, Hierarchy: hierarchy}
}

// Execute returns leaf descendants of the user: nodes in their subtree with no
// active children, the user included when they are a leaf themselves.
// Administrators see every agent regardless of hierarchy. An unknown user
// yields an empty list.
func (uc *GetDescendantsUseCase) Execute(ctx context.Context, userID int64) ([]int64, error) {
	user, err := uc.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if user.Role == support.RoleAdmin {
		agents, err := uc.Users.ListUsersByRole(ctx, support.RoleAgent)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		ids := make([]int64, 0, len(agents))
		for _, a := range agents {
			ids = append(ids, a.ID)
		}
		return ids, nil
	}

	var leaves []int64
	visited := map[int64]bool{userID: true}
	queue := []int64{userID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		children, err := uc.Hierarchy.ActiveChildren(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if len(children) == 0 {
			leaves = append(leaves, current)
			continue
		}
		for _, edge := range children {
			if visited[edge.ChildID] {
				continue
			}
			visited[edge.ChildID] = true
			queue = append(queue, edge.ChildID)
		}
	}
	return leaves, nil
}
