package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTemplatesSplitsDefaultsAndOwn(t *testing.T) {
	templates := newMemTemplates()
	templates.add(nil, "Buenos dias, le saluda el equipo de cobranza.", true)
	templates.add(nil, "retired greeting", false)
	templates.add(i64(7), "Con gusto reviso su caso.", true)
	templates.add(i64(8), "someone else's reply", true)

	uc := NewListTemplatesUseCase(templates)
	set, err := uc.Execute(context.Background(), 7)
	require.NoError(t, err)

	// Inactive defaults and other users' templates stay out of the listing.
	require.Len(t, set.Defaults, 1)
	assert.Equal(t, "Buenos dias, le saluda el equipo de cobranza.", set.Defaults[0].Content)
	require.Len(t, set.Own, 1)
	assert.Equal(t, "Con gusto reviso su caso.", set.Own[0].Content)
}

func TestListTemplatesEmptyStore(t *testing.T) {
	uc := NewListTemplatesUseCase(newMemTemplates())
	set, err := uc.Execute(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, set.Defaults)
	assert.Empty(t, set.Own)
}
