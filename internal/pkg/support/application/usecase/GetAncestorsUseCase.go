package usecase

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// maxHierarchyDepth bounds walks over the user hierarchy. Real trees are a
// handful of levels deep; hitting the bound means the data grew a cycle.
const maxHierarchyDepth = 64

// GetAncestorsUseCase walks the active-parent chain root-ward from a user.
type GetAncestorsUseCase struct {
	Users     repository.UserRepository
	Hierarchy repository.HierarchyRepository
}

func NewGetAncestorsUseCase(users repository.UserRepository, hierarchy repository.HierarchyRepository) *GetAncestorsUseCase {
	return &GetAncestorsUseCase{Users: users, Hierarchy: hierarchy}
}

// Execute returns the user IDs of every ancestor, nearest first. An unknown
// user yields an empty list, not an error.
func (uc *GetAncestorsUseCase) Execute(ctx context.Context, userID int64) ([]int64, error) {
	if _, err := uc.Users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var ancestors []int64
	current := userID
	for depth := 0; ; depth++ {
		if depth >= maxHierarchyDepth {
			return nil, ErrHierarchyDepthExceeded
		}
		edge, err := uc.Hierarchy.ActiveParent(ctx, current)
		if errors.Is(err, repository.ErrNotFound) {
			return ancestors, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		ancestors = append(ancestors, edge.ParentID)
		current = edge.ParentID
	}
}
