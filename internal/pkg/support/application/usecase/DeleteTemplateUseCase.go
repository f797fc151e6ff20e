package usecase

import (
	"context"
	"fmt"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

type DeleteTemplateInput struct {
	TemplateID int64
	Actor      *support.User
}

// DeleteTemplateUseCase removes a template. Platform defaults may only be
// removed by elevated roles; owned templates only by their owner.
type DeleteTemplateUseCase struct {
	Templates repository.TemplateRepository
}

func NewDeleteTemplateUseCase(templates repository.TemplateRepository) *DeleteTemplateUseCase {
	return &DeleteTemplateUseCase{Templates: templates}
}

func (uc *DeleteTemplateUseCase) Execute(ctx context.Context, in DeleteTemplateInput) error {
	t, err := uc.Templates.GetTemplate(ctx, in.TemplateID)
	if err != nil {
		return wrapLookup(err)
	}

	if !t.Owned() && in.Actor.Role == support.RoleAgent {
		return ErrTemplateForbidden
	}
	if t.Owned() && *t.UserID != in.Actor.ID {
		return ErrTemplateForbidden
	}

	if err := uc.Templates.DeleteTemplate(ctx, in.TemplateID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
