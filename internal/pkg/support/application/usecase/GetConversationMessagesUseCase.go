package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

type GetConversationMessagesInput struct {
	ConversationID int64
	Actor          *support.User
}

// ConversationHistory is a conversation together with its full message log.
type ConversationHistory struct {
	Conversation *support.Conversation
	Messages     []support.MessageView
}

// GetConversationMessagesUseCase serves the conversation history view.
// Opening your own conversation marks it read.
type GetConversationMessagesUseCase struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	Log           *logrus.Logger
}

func NewGetConversationMessagesUseCase(conversations repository.ConversationRepository, messages repository.MessageRepository, log *logrus.Logger) *GetConversationMessagesUseCase {
	return &GetConversationMessagesUseCase{Conversations: conversations, Messages: messages, Log: log}
}

func (uc *GetConversationMessagesUseCase) Execute(ctx context.Context, in GetConversationMessagesInput) (*ConversationHistory, error) {
	conv, err := uc.Conversations.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msgs, err := uc.Messages.ListConversationMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if conv.AssignedTo(in.Actor.ID) {
		if err := uc.Conversations.SetUnreadCount(ctx, conv.ID, 0); err != nil {
			uc.Log.WithField("conversation_id", conv.ID).WithError(err).Warn("could not reset unread counter")
		} else {
			conv.UnreadCount = 0
		}
	}
	return &ConversationHistory{Conversation: conv, Messages: msgs}, nil
}
