package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

type SetPresenceInput struct {
	UserID   int64
	Presence support.UserPresence
}

// SetPresenceUseCase records a user's availability change with an audit log
// entry. An agent coming online frees capacity, so it triggers an assignment
// sweep.
type SetPresenceUseCase struct {
	Users repository.UserRepository
	Mass  *MassAssignmentUseCase
	Log   *logrus.Logger
}

func NewSetPresenceUseCase(users repository.UserRepository, mass *MassAssignmentUseCase, log *logrus.Logger) *SetPresenceUseCase {
	return &SetPresenceUseCase{Users: users, Mass: mass, Log: log}
}

func (uc *SetPresenceUseCase) Execute(ctx context.Context, in SetPresenceInput) (*support.User, error) {
	user, err := uc.Users.GetUser(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := uc.Users.SetUserPresence(ctx, in.UserID, in.Presence); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	user.Presence = in.Presence

	entry := support.UserLog{
		UserID:    in.UserID,
		EventType: support.EventStateChange,
		Details:   in.Presence.String(),
	}
	if err := uc.Users.AppendUserLog(ctx, entry); err != nil {
		uc.Log.WithField("user_id", in.UserID).WithError(err).Warn("could not record presence log")
	}

	if in.Presence == support.PresenceOnline && user.Role == support.RoleAgent && uc.Mass != nil {
		if err := uc.Mass.Execute(ctx); err != nil {
			uc.Log.WithField("user_id", in.UserID).WithError(err).Warn("post-login assignment sweep failed")
		}
	}
	return user, nil
}
