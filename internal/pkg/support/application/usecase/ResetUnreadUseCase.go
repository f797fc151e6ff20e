package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// ResetUnreadUseCase zeroes a conversation's unread counter and tells the
// rest of the audience the messages were read. The assigned user triggered the
// reset, so they are skipped.
type ResetUnreadUseCase struct {
	Conversations repository.ConversationRepository
	Audience      *Audience
	Events        EventPublisher
	Log           *logrus.Logger
}

func NewResetUnreadUseCase(conversations repository.ConversationRepository, audience *Audience, events EventPublisher, log *logrus.Logger) *ResetUnreadUseCase {
	return &ResetUnreadUseCase{Conversations: conversations, Audience: audience, Events: events, Log: log}
}

func (uc *ResetUnreadUseCase) Execute(ctx context.Context, conversationID int64) error {
	if err := uc.Conversations.SetUnreadCount(ctx, conversationID, 0); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	conv, err := uc.Conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	var assignedID int64
	if conv.AssignedUserID != nil {
		assignedID = *conv.AssignedUserID
	}
	data := &support.ConversationData{
		ID:          conv.ID,
		ClientPhone: conv.ClientPhone,
		LastMessage: conv.LastMessage,
		UnreadCount: conv.UnreadCount,
		UpdatedAt:   conv.UpdatedAt,
		UserID:      assignedID,
		StateID:     conv.State,
	}

	audience, err := uc.Audience.Resolve(ctx, conv.AssignedUserID, nil)
	if err != nil {
		uc.Log.WithField("conversation_id", conv.ID).WithError(err).Warn("could not resolve messages-read audience")
		return nil
	}
	for _, userID := range audience {
		if conv.AssignedUserID != nil && userID == *conv.AssignedUserID {
			continue
		}
		if err := uc.Events.PublishNotification(ctx, userID, support.Notification{Type: support.EventMessagesRead, Conversation: data}); err != nil {
			uc.Log.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"user_id":         userID,
			}).WithError(err).Warn("could not publish messages-read notification")
		}
	}
	return nil
}
