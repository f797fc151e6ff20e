package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// maxAssignRetries bounds how often a single agent may fail inside one batch
// before the whole batch stops. A persistently failing agent usually means the
// store is unhealthy, so continuing would just burn the queue.
const maxAssignRetries = 3

// MassAssignmentUseCase drains the pending-conversation queue over the
// eligible agents. Newest pending conversations go out first; agents rotate to
// the back of the line after each success until they hit capacity.
type MassAssignmentUseCase struct {
	Conversations  repository.ConversationRepository
	Selector       *SelectFreeAgentsUseCase
	Assign         *AssignConversationUseCase
	MaxAssignments int
	Log            *logrus.Logger
}

func NewMassAssignmentUseCase(
	conversations repository.ConversationRepository,
	selector *SelectFreeAgentsUseCase,
	assign *AssignConversationUseCase,
	maxAssignments int,
	log *logrus.Logger,
) *MassAssignmentUseCase {
	return &MassAssignmentUseCase{
		Conversations:  conversations,
		Selector:       selector,
		Assign:         assign,
		MaxAssignments: maxAssignments,
		Log:            log,
	}
}

// Execute runs one assignment sweep. Individual assignment failures are
// retried a bounded number of times; only failures to read the working sets
// are returned as errors.
func (uc *MassAssignmentUseCase) Execute(ctx context.Context) error {
	pending, err := uc.Conversations.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	loads, err := uc.Selector.Execute(ctx)
	if err != nil {
		return err
	}

	type slot struct {
		user  support.User
		count int
	}
	agents := make([]*slot, 0, len(loads))
	for _, l := range loads {
		agents = append(agents, &slot{user: l.User, count: l.OpenCount})
	}

	retries := make(map[int64]int)
	for len(pending) > 0 && len(agents) > 0 {
		conv := pending[0]
		pending = pending[1:]
		agent := agents[0]
		agents = agents[1:]

		res, err := uc.Assign.Execute(ctx, AssignConversationInput{
			ConversationID: conv.ID,
			TargetUserID:   agent.user.ID,
			Event:          support.AssignmentAssigned,
		})
		if err == nil && res.Success {
			uc.Log.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"user_id":         agent.user.ID,
			}).Info("conversation assigned")
			agent.count++
			if agent.count < uc.MaxAssignments {
				agents = append(agents, agent)
			}
			continue
		}

		if err != nil {
			uc.Log.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"user_id":         agent.user.ID,
			}).WithError(err).Warn("assignment attempt failed")
		} else {
			uc.Log.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"user_id":         agent.user.ID,
				"reason":          res.Message,
			}).Debug("assignment attempt rejected")
		}

		retries[agent.user.ID]++
		if retries[agent.user.ID] < maxAssignRetries {
			pending = append([]support.Conversation{conv}, pending...)
			agents = append([]*slot{agent}, agents...)
			continue
		}
		break
	}
	return nil
}
