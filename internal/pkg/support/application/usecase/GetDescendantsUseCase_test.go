package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
)

func TestDescendantsLeavesOnly(t *testing.T) {
	users := newMemUsers(
		support.User{ID: 1, Role: support.RolePrincipal},
		support.User{ID: 2, Role: support.RoleSupervisor},
		support.User{ID: 7, Role: support.RoleAgent},
		support.User{ID: 8, Role: support.RoleAgent},
		support.User{ID: 9, Role: support.RoleAgent},
	)
	h := &memHierarchy{}
	h.addEdge(1, 2)
	h.addEdge(2, 7)
	h.addEdge(2, 8)

	uc := NewGetDescendantsUseCase(users, h)
	got, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)
	// Intermediate supervisors are not leaves; agent 9 hangs outside the tree.
	assert.ElementsMatch(t, []int64{7, 8}, got)
}

func TestDescendantsLeafUserIsOwnScope(t *testing.T) {
	users := newMemUsers(support.User{ID: 7, Role: support.RoleAgent})
	uc := NewGetDescendantsUseCase(users, &memHierarchy{})

	got, err := uc.Execute(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, got)
}

func TestDescendantsAdminSeesEveryAgent(t *testing.T) {
	users := newMemUsers(
		support.User{ID: 4, Role: support.RoleAdmin},
		support.User{ID: 7, Role: support.RoleAgent},
		support.User{ID: 8, Role: support.RoleAgent},
		support.User{ID: 2, Role: support.RoleSupervisor},
	)
	uc := NewGetDescendantsUseCase(users, &memHierarchy{})

	got, err := uc.Execute(context.Background(), 4)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{7, 8}, got)
}
