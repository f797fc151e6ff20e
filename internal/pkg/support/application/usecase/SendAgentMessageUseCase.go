package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	notifier "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/notifier/port"
	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// AgentMediaInput is an attachment uploaded alongside an agent reply.
type AgentMediaInput struct {
	URL      string
	Filename string
	MimeType string
	Size     int64
}

type SendAgentMessageInput struct {
	ConversationID int64
	Actor          *support.User
	Body           string
	Media          *AgentMediaInput
}

// SendAgentMessageUseCase stores an agent reply and forwards it to the
// customer. Customer delivery is the primary effect here: when it fails the
// stored message is rolled back and the caller gets a delivery error.
type SendAgentMessageUseCase struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	Audience      *Audience
	Events        EventPublisher
	Customer      notifier.CustomerChannel
	Log           *logrus.Logger
}

func NewSendAgentMessageUseCase(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	audience *Audience,
	events EventPublisher,
	customer notifier.CustomerChannel,
	log *logrus.Logger,
) *SendAgentMessageUseCase {
	return &SendAgentMessageUseCase{
		Conversations: conversations,
		Messages:      messages,
		Audience:      audience,
		Events:        events,
		Customer:      customer,
		Log:           log,
	}
}

func (uc *SendAgentMessageUseCase) Execute(ctx context.Context, in SendAgentMessageInput) (*support.Message, error) {
	conv, err := uc.Conversations.GetConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if conv.State == support.StateClosed {
		return nil, ErrConversationClosed
	}
	if in.Actor.Role == support.RoleAgent && !conv.AssignedTo(in.Actor.ID) {
		return nil, ErrNotAssigned
	}

	actorID := in.Actor.ID
	m, err := support.NewMessage(support.Message{
		ConversationID: conv.ID,
		Content:        in.Body,
		Sender:         support.SenderAgent,
		UserID:         &actorID,
	}, in.Media != nil)
	if err != nil {
		return nil, err
	}

	var media *support.MessageMedia
	if in.Media != nil {
		media = &support.MessageMedia{
			Filename: in.Media.Filename,
			URL:      in.Media.URL,
			MimeType: in.Media.MimeType,
			Size:     in.Media.Size,
			Sender:   support.SenderAgent,
		}
	}

	msg, savedMedia, err := uc.Messages.SaveMessage(ctx, *m, media, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Administrators reply without exposing their name to the customer.
	senderName := in.Actor.FullName
	if in.Actor.Role == support.RoleAdmin {
		senderName = ""
	}
	var outMedia *notifier.OutboundMedia
	if in.Media != nil {
		outMedia = &notifier.OutboundMedia{
			URL:      in.Media.URL,
			Filename: in.Media.Filename,
			MimeType: in.Media.MimeType,
			Size:     in.Media.Size,
		}
	}
	if err := uc.Customer.SendMessage(ctx, conv.ClientPhone, in.Body, outMedia, senderName); err != nil {
		if derr := uc.Messages.DeleteMessage(ctx, msg.ID); derr != nil {
			uc.Log.WithField("message_id", msg.ID).WithError(derr).Warn("could not roll back undelivered message")
		}
		return nil, fmt.Errorf("%w: %v", ErrCustomerDelivery, err)
	}

	md := support.MessageData{
		Content:        msg.Content,
		ConversationID: conv.ID,
		CreatedAt:      msg.CreatedAt,
		UserID:         &actorID,
		UserName:       in.Actor.FullName,
		Sender:         support.SenderAgent,
	}
	if savedMedia != nil {
		md.Attachment = savedMedia.URL
		md.AttachmentType = savedMedia.MimeType
		md.AttachmentName = savedMedia.Filename
	}

	audience, err := uc.Audience.Resolve(ctx, conv.AssignedUserID, nil)
	if err != nil {
		uc.Log.WithField("conversation_id", conv.ID).WithError(err).Warn("could not resolve message audience")
	}
	for _, userID := range audience {
		if err := uc.Events.PublishNotification(ctx, userID, support.Notification{Type: support.EventNewMessage, Message: &md}); err != nil {
			uc.Log.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"user_id":         userID,
			}).WithError(err).Warn("could not publish message notification")
		}
	}
	if err := uc.Events.PublishMessage(ctx, conv.ID, md); err != nil {
		uc.Log.WithField("conversation_id", conv.ID).WithError(err).Warn("could not publish conversation message")
	}
	return msg, nil
}
