package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	qport "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/queue/port"
	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// UnattendedTaskType identifies the deferred check on conversations nobody
// picked up. The worker-side handler lives in the task package.
const UnattendedTaskType = "conversation:unattended"

// UnattendedTaskPayload is the serialized payload of an unattended check.
type UnattendedTaskPayload struct {
	ThreadID string `json:"thread_id"`
}

// CustomerMessageInput is one inbound customer message relayed by the chatbot
// webhook.
type CustomerMessageInput struct {
	ThreadID   string
	FromNumber string
	Body       string
	MediaURL   string
	MediaName  string
	MediaType  string
	MediaSize  int64
}

// HandleCustomerMessageUseCase processes an inbound customer message: creates
// the conversation on first contact (kicking off an assignment sweep and a
// deferred unattended check), stores the message with unread accounting, and
// fans the event out.
type HandleCustomerMessageUseCase struct {
	Conversations   repository.ConversationRepository
	Messages        repository.MessageRepository
	Audience        *Audience
	Events          EventPublisher
	Watcher         ConversationWatcher
	Mass            *MassAssignmentUseCase
	Queue           qport.Client
	UnattendedAfter time.Duration
	Log             *logrus.Logger
}

func NewHandleCustomerMessageUseCase(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	audience *Audience,
	events EventPublisher,
	watcher ConversationWatcher,
	mass *MassAssignmentUseCase,
	queue qport.Client,
	unattendedAfter time.Duration,
	log *logrus.Logger,
) *HandleCustomerMessageUseCase {
	return &HandleCustomerMessageUseCase{
		Conversations:   conversations,
		Messages:        messages,
		Audience:        audience,
		Events:          events,
		Watcher:         watcher,
		Mass:            mass,
		Queue:           queue,
		UnattendedAfter: unattendedAfter,
		Log:             log,
	}
}

// Execute stores and fans out the message. A message landing on a closed
// conversation is ignored: the returned message is nil and no error is
// raised, matching the webhook contract.
func (uc *HandleCustomerMessageUseCase) Execute(ctx context.Context, in CustomerMessageInput) (*support.Message, error) {
	if in.ThreadID == "" {
		return nil, fmt.Errorf("thread_id is required")
	}

	isNew := false
	conv, err := uc.Conversations.GetConversationByThread(ctx, in.ThreadID)
	if errors.Is(err, repository.ErrNotFound) {
		isNew = true
		created, cerr := uc.Conversations.CreateConversation(ctx, support.Conversation{
			ThreadID:    in.ThreadID,
			ClientPhone: in.FromNumber,
			State:       support.StatePending,
			UnreadCount: 1,
			LastMessage: in.Body,
		})
		if cerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, cerr)
		}
		if merr := uc.Mass.Execute(ctx); merr != nil {
			uc.Log.WithError(merr).Warn("assignment sweep for new conversation failed")
		}
		// Reload so the message lands on whatever the sweep decided.
		conv, err = uc.Conversations.GetConversation(ctx, created.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		uc.scheduleUnattendedCheck(ctx, in.ThreadID)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if conv.State == support.StateClosed {
		uc.Log.WithField("conversation_id", conv.ID).Info("inbound message ignored, conversation closed")
		return nil, nil
	}

	var media *support.MessageMedia
	if in.MediaURL != "" {
		media = &support.MessageMedia{
			Filename: in.MediaName,
			URL:      in.MediaURL,
			MimeType: in.MediaType,
			Size:     in.MediaSize,
			Sender:   support.SenderClient,
		}
	}
	m, err := support.NewMessage(support.Message{
		ConversationID: conv.ID,
		Content:        in.Body,
		Sender:         support.SenderClient,
	}, media != nil)
	if err != nil {
		return nil, err
	}

	bump := conv.AssignedUserID == nil || !uc.Watcher.Watching(conv.ID, *conv.AssignedUserID)
	msg, savedMedia, err := uc.Messages.SaveMessage(ctx, *m, media, bump)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	evType := support.EventNewMessage
	if isNew {
		evType = support.EventNewConversation
	}
	md := support.MessageData{
		Content:        msg.Content,
		ConversationID: conv.ID,
		CreatedAt:      msg.CreatedAt,
		PhoneNumber:    conv.ClientPhone,
		Sender:         support.SenderClient,
		Attachment:     in.MediaURL,
	}
	if savedMedia != nil {
		md.AttachmentType = savedMedia.MimeType
		md.AttachmentName = savedMedia.Filename
	}

	audience, err := uc.Audience.Resolve(ctx, conv.AssignedUserID, nil)
	if err != nil {
		uc.Log.WithField("conversation_id", conv.ID).WithError(err).Warn("could not resolve message audience")
	}
	for _, userID := range audience {
		if err := uc.Events.PublishNotification(ctx, userID, support.Notification{Type: evType, Message: &md}); err != nil {
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

func (uc *HandleCustomerMessageUseCase) scheduleUnattendedCheck(ctx context.Context, threadID string) {
	if uc.Queue == nil {
		return
	}
	payload, err := json.Marshal(UnattendedTaskPayload{ThreadID: threadID})
	if err != nil {
		return
	}
	_, err = uc.Queue.Enqueue(ctx, qport.Task{Type: UnattendedTaskType, Payload: payload}, qport.EnqueueOption{
		Queue:     "conversations",
		ProcessIn: uc.UnattendedAfter,
		MaxRetry:  3,
	})
	if err != nil {
		uc.Log.WithField("thread_id", threadID).WithError(err).Warn("could not schedule unattended check")
	}
}
