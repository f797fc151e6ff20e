package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	notifier "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/notifier/port"
	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// endChatMarker is the sentinel content pushed onto the conversation channel
// so open chat views know the thread is over.
const endChatMarker = "##EndChat##"

// TypificationInput is the closing classification supplied by the ending user.
type TypificationInput struct {
	Motive   string
	Comment  string
	ClientID string
}

type EndConversationInput struct {
	ConversationID int64
	Actor          *support.User
	Typification   *TypificationInput
}

// EndConversationUseCase closes a conversation: terminal state change plus
// typification, audit log, customer goodbye, fanout events, and a follow-up
// assignment sweep to reuse the freed capacity.
type EndConversationUseCase struct {
	Users         repository.UserRepository
	Conversations repository.ConversationRepository
	Audience      *Audience
	Events        EventPublisher
	Customer      notifier.CustomerChannel
	Mass          *MassAssignmentUseCase
	Log           *logrus.Logger
}

func NewEndConversationUseCase(
	users repository.UserRepository,
	conversations repository.ConversationRepository,
	audience *Audience,
	events EventPublisher,
	customer notifier.CustomerChannel,
	mass *MassAssignmentUseCase,
	log *logrus.Logger,
) *EndConversationUseCase {
	return &EndConversationUseCase{
		Users:         users,
		Conversations: conversations,
		Audience:      audience,
		Events:        events,
		Customer:      customer,
		Mass:          mass,
		Log:           log,
	}
}

func (uc *EndConversationUseCase) Execute(ctx context.Context, in EndConversationInput) error {
	conv, err := uc.Conversations.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if conv.State == support.StateClosed {
		return ErrConversationClosed
	}

	assigned := conv.AssignedUserID
	if in.Actor.Role == support.RoleAgent && (assigned == nil || *assigned != in.Actor.ID) {
		return ErrCannotEndConversation
	}

	var t *support.Typification
	if in.Typification != nil {
		t = &support.Typification{
			ConversationID: conv.ID,
			Motive:         in.Typification.Motive,
			Comment:        in.Typification.Comment,
			CreditNumber:   conv.CreditNumber,
			ClientID:       in.Typification.ClientID,
		}
	}
	if err := uc.Conversations.Close(ctx, conv.ID, t); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	entry := support.UserLog{
		UserID:    in.Actor.ID,
		EventType: support.EventEndChat,
		Details:   strconv.FormatInt(conv.ID, 10),
	}
	if err := uc.Users.AppendUserLog(ctx, entry); err != nil {
		uc.Log.WithField("conversation_id", conv.ID).WithError(err).Warn("could not record end-chat log")
	}

	agentName := in.Actor.FullName
	if assigned != nil {
		if u, err := uc.Users.GetUser(ctx, *assigned); err == nil {
			agentName = u.FullName
		}
	}
	if err := uc.Customer.NotifyConversationEnded(ctx, conv.ThreadID, conv.ClientPhone, agentName); err != nil {
		uc.Log.WithField("conversation_id", conv.ID).WithError(err).Warn("could not notify customer of conversation end")
	}

	if err := uc.Mass.Execute(ctx); err != nil {
		uc.Log.WithError(err).Warn("post-close assignment sweep failed")
	}

	md := support.MessageData{
		ConversationID: conv.ID,
		Content:        endChatMarker,
		CreatedAt:      time.Now().UTC(),
		Sender:         support.SenderAgent,
	}
	audience, err := uc.Audience.Resolve(ctx, assigned, nil)
	if err != nil {
		uc.Log.WithField("conversation_id", conv.ID).WithError(err).Warn("could not resolve end-chat audience")
	}
	for _, userID := range audience {
		if err := uc.Events.PublishNotification(ctx, userID, support.Notification{Type: support.EventEndConversation, Message: &md}); err != nil {
			uc.Log.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"user_id":         userID,
			}).WithError(err).Warn("could not publish end-chat notification")
		}
	}
	if err := uc.Events.PublishMessage(ctx, conv.ID, md); err != nil {
		uc.Log.WithField("conversation_id", conv.ID).WithError(err).Warn("could not publish end-chat marker")
	}
	return nil
}
