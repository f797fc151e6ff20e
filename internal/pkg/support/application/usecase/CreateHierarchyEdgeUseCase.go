package usecase

import (
	"context"
	"errors"
	"fmt"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// CreateHierarchyEdgeInput names the two users to relate.
type CreateHierarchyEdgeInput struct {
	ParentID int64
	ChildID  int64
}

// CreateHierarchyEdgeUseCase attaches a child user to a parent. The active
// subgraph must stay a forest: one active parent per child, no cycles.
type CreateHierarchyEdgeUseCase struct {
	Users     repository.UserRepository
	Hierarchy repository.HierarchyRepository
}

func NewCreateHierarchyEdgeUseCase(users repository.UserRepository, hierarchy repository.HierarchyRepository) *CreateHierarchyEdgeUseCase {
	return &CreateHierarchyEdgeUseCase{Users: users, Hierarchy: hierarchy}
}

func (uc *CreateHierarchyEdgeUseCase) Execute(ctx context.Context, in CreateHierarchyEdgeInput) (*support.HierarchyEdge, error) {
	if in.ParentID == in.ChildID {
		return nil, ErrHierarchyCycle
	}
	if _, err := uc.Users.GetUser(ctx, in.ParentID); err != nil {
		return nil, wrapLookup(err)
	}
	if _, err := uc.Users.GetUser(ctx, in.ChildID); err != nil {
		return nil, wrapLookup(err)
	}

	_, err := uc.Hierarchy.ActiveParent(ctx, in.ChildID)
	switch {
	case err == nil:
		return nil, ErrChildHasActiveParent
	case errors.Is(err, repository.ErrNotFound):
		// child is free to attach
	default:
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// The child must not already sit above the parent.
	current := in.ParentID
	for depth := 0; ; depth++ {
		if depth >= maxHierarchyDepth {
			return nil, ErrHierarchyDepthExceeded
		}
		edge, err := uc.Hierarchy.ActiveParent(ctx, current)
		if errors.Is(err, repository.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if edge.ParentID == in.ChildID {
			return nil, ErrHierarchyCycle
		}
		current = edge.ParentID
	}

	created, err := uc.Hierarchy.CreateEdge(ctx, in.ParentID, in.ChildID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return created, nil
}

func wrapLookup(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
