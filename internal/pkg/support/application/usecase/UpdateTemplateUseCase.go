package usecase

import (
	"context"
	"errors"
	"fmt"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// UpdateTemplateInput carries the replacement content and an optional
// visibility toggle.
type UpdateTemplateInput struct {
	TemplateID int64
	Content    string
	Active     *bool
}

// UpdateTemplateUseCase rewrites an existing template.
type UpdateTemplateUseCase struct {
	Templates repository.TemplateRepository
}

func NewUpdateTemplateUseCase(templates repository.TemplateRepository) *UpdateTemplateUseCase {
	return &UpdateTemplateUseCase{Templates: templates}
}

func (uc *UpdateTemplateUseCase) Execute(ctx context.Context, in UpdateTemplateInput) (*support.Template, error) {
	updated, err := uc.Templates.UpdateTemplate(ctx, in.TemplateID, in.Content, in.Active)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return updated, nil
}
