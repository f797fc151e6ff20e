package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
)

func TestAncestorsNearestFirst(t *testing.T) {
	users := newMemUsers(
		support.User{ID: 1, Role: support.RolePrincipal},
		support.User{ID: 2, Role: support.RoleSupervisor},
		support.User{ID: 3, Role: support.RoleAgent},
	)
	h := &memHierarchy{}
	h.addEdge(1, 2)
	h.addEdge(2, 3)

	uc := NewGetAncestorsUseCase(users, h)
	got, err := uc.Execute(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, got)
}

func TestAncestorsUnknownUser(t *testing.T) {
	uc := NewGetAncestorsUseCase(newMemUsers(), &memHierarchy{})
	got, err := uc.Execute(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAncestorsDetectsCorruptedChain(t *testing.T) {
	users := newMemUsers(
		support.User{ID: 1, Role: support.RoleSupervisor},
		support.User{ID: 2, Role: support.RoleAgent},
	)
	// A cycle in the stored edges would make the walk endless without the
	// depth bound.
	h := &memHierarchy{}
	h.addEdge(1, 2)
	h.addEdge(2, 1)

	uc := NewGetAncestorsUseCase(users, h)
	_, err := uc.Execute(context.Background(), 2)
	assert.ErrorIs(t, err, ErrHierarchyDepthExceeded)
}
