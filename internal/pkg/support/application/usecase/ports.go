package usecase

import (
	"context"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
)

// EventPublisher pushes serialized events onto the broker-backed fanout.
// Delivery to connected clients happens wherever the subscription lives, which
// may be another process.
type EventPublisher interface {
	PublishNotification(ctx context.Context, userID int64, n support.Notification) error
	PublishMessage(ctx context.Context, conversationID int64, md support.MessageData) error
}

// ConversationWatcher reports whether a user has a live socket on a
// conversation. Drives the unread-counter rule for inbound customer messages.
type ConversationWatcher interface {
	Watching(conversationID, userID int64) bool
}
