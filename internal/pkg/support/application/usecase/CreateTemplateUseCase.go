package usecase

import (
	"context"
	"fmt"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// CreateTemplateInput describes a new canned reply. A nil OwnerID creates a
// platform default.
type CreateTemplateInput struct {
	OwnerID *int64
	Content string
}

// CreateTemplateUseCase stores a new template after checking the owner exists.
type CreateTemplateUseCase struct {
	Users     repository.UserRepository
	Templates repository.TemplateRepository
}

func NewCreateTemplateUseCase(users repository.UserRepository, templates repository.TemplateRepository) *CreateTemplateUseCase {
	return &CreateTemplateUseCase{Users: users, Templates: templates}
}

func (uc *CreateTemplateUseCase) Execute(ctx context.Context, in CreateTemplateInput) (*support.Template, error) {
	if in.OwnerID != nil {
		if _, err := uc.Users.GetUser(ctx, *in.OwnerID); err != nil {
			return nil, wrapLookup(err)
		}
	}

	created, err := uc.Templates.CreateTemplate(ctx, support.Template{
		UserID:  in.OwnerID,
		Content: in.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return created, nil
}
