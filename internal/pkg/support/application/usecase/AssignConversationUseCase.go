package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	notifier "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/notifier/port"
	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// AssignConversationInput carries one assignment request. Actor is the user
// driving the operation; it is nil for scheduler-driven assignments.
type AssignConversationInput struct {
	ConversationID int64
	TargetUserID   int64
	Actor          *support.User
	Event          support.AssignmentType
}

// AssignConversationUseCase is the single authoritative operation that
// mutates a conversation's assignment. Business-rule violations come back as
// AssignmentResult{Success: false}; only store faults surface as errors.
// Notifications and the customer-channel notice run after commit and never
// roll an assignment back.
type AssignConversationUseCase struct {
	Users          repository.UserRepository
	Conversations  repository.ConversationRepository
	Audience       *Audience
	Events         EventPublisher
	Customer       notifier.CustomerChannel
	MaxAssignments int
	Log            *logrus.Logger
}

func NewAssignConversationUseCase(
	users repository.UserRepository,
	conversations repository.ConversationRepository,
	audience *Audience,
	events EventPublisher,
	customer notifier.CustomerChannel,
	maxAssignments int,
	log *logrus.Logger,
) *AssignConversationUseCase {
	return &AssignConversationUseCase{
		Users:          users,
		Conversations:  conversations,
		Audience:       audience,
		Events:         events,
		Customer:       customer,
		MaxAssignments: maxAssignments,
		Log:            log,
	}
}

func assignFailure(msg string) *support.AssignmentResult {
	return &support.AssignmentResult{Success: false, Message: msg}
}

func (uc *AssignConversationUseCase) Execute(ctx context.Context, in AssignConversationInput) (*support.AssignmentResult, error) {
	conv, err := uc.Conversations.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if conv.State == support.StateClosed {
		return assignFailure("Conversation closed"), nil
	}

	prev := conv.AssignedUserID
	if in.Event == support.AssignmentAssigned {
		if conv.AssignedTo(in.TargetUserID) {
			return assignFailure("Conversation already assigned to agent"), nil
		}
		if prev != nil {
			return assignFailure("Conversation already assigned"), nil
		}
	}
	if in.Event == support.AssignmentTransferred && in.Actor != nil &&
		!conv.AssignedTo(in.Actor.ID) && !in.Actor.Role.CanTransferForeign() {
		return assignFailure("Cannot transfer conversation as agent if its not assigned to you"), nil
	}

	agent, err := uc.Users.GetUser(ctx, in.TargetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return assignFailure("Agent not found"), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if in.Event == support.AssignmentAssigned {
		open, err := uc.Conversations.CountOpenAssignedTo(ctx, in.TargetUserID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if open >= uc.MaxAssignments {
			return assignFailure("Agent has too many assignments"), nil
		}
	}

	// Interventions observe without retargeting the conversation.
	retarget := in.Event != support.AssignmentIntervention
	saved, err := uc.Conversations.RecordAssignment(ctx, support.Assignment{
		UserID:         in.TargetUserID,
		ConversationID: in.ConversationID,
		Event:          in.Event,
	}, prev, retarget)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentConflict) {
			return assignFailure("Conversation already assigned"), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.notifyAudience(ctx, conv, in, prev)

	if in.Event == support.AssignmentTransferred {
		entry := support.UserLog{
			UserID:    in.TargetUserID,
			EventType: support.EventTransfer,
			Details:   strconv.FormatInt(in.ConversationID, 10),
		}
		if err := uc.Users.AppendUserLog(ctx, entry); err != nil {
			uc.Log.WithField("conversation_id", in.ConversationID).WithError(err).Warn("could not record transfer log")
		}
	}

	if prev == nil {
		if err := uc.Customer.NotifyAgentAssigned(ctx, conv.ClientPhone, agent.FullName); err != nil {
			uc.Log.WithField("conversation_id", in.ConversationID).WithError(err).Warn("could not notify customer of assignment")
		}
	}

	return &support.AssignmentResult{
		Success:    true,
		Message:    "Conversation assigned successfully",
		Assignment: saved,
	}, nil
}

func (uc *AssignConversationUseCase) notifyAudience(ctx context.Context, conv *support.Conversation, in AssignConversationInput, prev *int64) {
	state := conv.State
	if state == support.StatePending {
		state = support.StateOpen
	}
	data := &support.ConversationData{
		ID:           conv.ID,
		ClientPhone:  conv.ClientPhone,
		LastMessage:  conv.LastMessage,
		UnreadCount:  conv.UnreadCount,
		UpdatedAt:    conv.UpdatedAt,
		UserID:       in.TargetUserID,
		StateID:      state,
		PreviousUser: prev,
	}
	evType := support.EventNewTransfer
	if in.Event == support.AssignmentAssigned {
		evType = support.EventNewConversation
	}

	var prevForAudience *int64
	if prev != nil && *prev != in.TargetUserID {
		prevForAudience = prev
	}
	target := in.TargetUserID
	audience, err := uc.Audience.Resolve(ctx, &target, prevForAudience)
	if err != nil {
		uc.Log.WithField("conversation_id", conv.ID).WithError(err).Warn("could not resolve assignment audience")
		return
	}
	for _, userID := range audience {
		if err := uc.Events.PublishNotification(ctx, userID, support.Notification{Type: evType, Conversation: data}); err != nil {
			uc.Log.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"user_id":         userID,
			}).WithError(err).Warn("could not publish assignment notification")
		}
	}
}
