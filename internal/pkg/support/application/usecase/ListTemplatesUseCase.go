package usecase

import (
	"context"
	"fmt"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// ListTemplatesUseCase serves the canned replies offered to one user: the
// active platform defaults plus the user's own active templates.
type ListTemplatesUseCase struct {
	Templates repository.TemplateRepository
}

func NewListTemplatesUseCase(templates repository.TemplateRepository) *ListTemplatesUseCase {
	return &ListTemplatesUseCase{Templates: templates}
}

func (uc *ListTemplatesUseCase) Execute(ctx context.Context, userID int64) (*support.TemplateSet, error) {
	defaults, err := uc.Templates.ListDefaultTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	own, err := uc.Templates.ListUserTemplates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &support.TemplateSet{Defaults: defaults, Own: own}, nil
}
