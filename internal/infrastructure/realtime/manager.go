package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/pubsub/port"
	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
)

// ChannelKind selects which channel family a socket registers under.
type ChannelKind string

const (
	// KindNotifications is the per-user notification stream.
	KindNotifications ChannelKind = "notifications"
	// KindConversation is the per-conversation message stream.
	KindConversation ChannelKind = "conversation"
)

// SocketConfig identifies the single (kind, key) pair a socket registers
// under: (Notifications, UserID) or (Conversation, ConversationID, UserID).
type SocketConfig struct {
	Kind           ChannelKind
	UserID         int64
	ConversationID int64
}

// Socket is the outbound half of a registered client connection.
// *Connection satisfies it; tests substitute in-memory fakes.
type Socket interface {
	Send(payload []byte) error
}

// Manager owns the local connection registries and bridges them to the
// process-wide broker. Events are never written straight to local sockets:
// publishing always goes through the broker, and a per-channel reader
// goroutine fans received payloads out to every local socket registered for
// that key, so single- and multi-process deployments behave identically.
//
// One exclusive lock guards both registries and the broker-read dispatch
// step; register, deregister and fanout never interleave.
type Manager struct {
	broker port.Broker
	log    *logrus.Logger

	mu            sync.Mutex
	notifications map[int64][]Socket
	conversations map[int64]map[int64][]Socket
	subscriptions map[string]port.Subscription
}

func NewManager(broker port.Broker, log *logrus.Logger) *Manager {
	return &Manager{
		broker:        broker,
		log:           log,
		notifications: make(map[int64][]Socket),
		conversations: make(map[int64]map[int64][]Socket),
		subscriptions: make(map[string]port.Subscription),
	}
}

func userChannel(userID int64) string { return fmt.Sprintf("user_%d", userID) }

func conversationChannel(conversationID int64) string {
	return fmt.Sprintf("conversation_%d", conversationID)
}

// Register adds a socket under its (kind, key) pair. The first local socket
// for a key subscribes the corresponding broker channel and starts its read
// loop; later sockets share the existing subscription.
func (m *Manager) Register(ctx context.Context, cfg SocketConfig, s Socket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch cfg.Kind {
	case KindNotifications:
		if _, ok := m.notifications[cfg.UserID]; !ok {
			if err := m.subscribeLocked(ctx, userChannel(cfg.UserID)); err != nil {
				return err
			}
			m.notifications[cfg.UserID] = nil
		}
		m.notifications[cfg.UserID] = append(m.notifications[cfg.UserID], s)
	case KindConversation:
		if _, ok := m.conversations[cfg.ConversationID]; !ok {
			if err := m.subscribeLocked(ctx, conversationChannel(cfg.ConversationID)); err != nil {
				return err
			}
			m.conversations[cfg.ConversationID] = make(map[int64][]Socket)
		}
		room := m.conversations[cfg.ConversationID]
		room[cfg.UserID] = append(room[cfg.UserID], s)
	default:
		return fmt.Errorf("realtime: unknown channel kind %q", cfg.Kind)
	}

	m.log.WithFields(logrus.Fields{
		"kind":            cfg.Kind,
		"user_id":         cfg.UserID,
		"conversation_id": cfg.ConversationID,
	}).Info("websocket connection added")
	return nil
}

// Deregister removes a socket. The last socket for a key unsubscribes the
// broker channel, which stops the read loop.
func (m *Manager) Deregister(cfg SocketConfig, s Socket) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch cfg.Kind {
	case KindNotifications:
		m.notifications[cfg.UserID] = removeSocket(m.notifications[cfg.UserID], s)
		if len(m.notifications[cfg.UserID]) == 0 {
			delete(m.notifications, cfg.UserID)
			m.unsubscribeLocked(userChannel(cfg.UserID))
		}
	case KindConversation:
		room, ok := m.conversations[cfg.ConversationID]
		if !ok {
			return
		}
		room[cfg.UserID] = removeSocket(room[cfg.UserID], s)
		if len(room[cfg.UserID]) == 0 {
			delete(room, cfg.UserID)
		}
		if len(room) == 0 {
			delete(m.conversations, cfg.ConversationID)
			m.unsubscribeLocked(conversationChannel(cfg.ConversationID))
		}
	}
}

// PublishNotification publishes an event on the user's notification channel.
// A broker failure is returned so callers can treat it as event-delivery
// failure; it never affects already-committed state.
func (m *Manager) PublishNotification(ctx context.Context, userID int64, n support.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("realtime: encode notification: %w", err)
	}
	if err := m.broker.Publish(ctx, userChannel(userID), payload); err != nil {
		return fmt.Errorf("realtime: publish %s: %w", userChannel(userID), err)
	}
	return nil
}

// PublishMessage publishes message data on the conversation's channel.
func (m *Manager) PublishMessage(ctx context.Context, conversationID int64, md support.MessageData) error {
	payload, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("realtime: encode message: %w", err)
	}
	channel := conversationChannel(conversationID)
	if err := m.broker.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("realtime: publish %s: %w", channel, err)
	}
	return nil
}

// Watching reports whether the user currently has at least one live socket on
// the conversation. Messages from the customer bump the unread counter only
// when the assigned user is not watching.
func (m *Manager) Watching(conversationID, userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.conversations[conversationID]
	if !ok {
		return false
	}
	return len(room[userID]) > 0
}

// subscribeLocked subscribes the broker channel and starts its read loop.
// Callers hold m.mu; the "is this the first local registrant" check has
// already happened, so no channel is ever subscribed twice by one process.
func (m *Manager) subscribeLocked(ctx context.Context, channel string) error {
	sub, err := m.broker.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("realtime: subscribe %s: %w", channel, err)
	}
	m.subscriptions[channel] = sub
	go m.readLoop(channel, sub)
	m.log.WithField("channel", channel).Info("subscribed to broker channel")
	return nil
}

func (m *Manager) unsubscribeLocked(channel string) {
	sub, ok := m.subscriptions[channel]
	if !ok {
		return
	}
	delete(m.subscriptions, channel)
	if err := sub.Close(); err != nil {
		m.log.WithField("channel", channel).WithError(err).Warn("error unsubscribing broker channel")
	}
	m.log.WithField("channel", channel).Info("unsubscribed from broker channel")
}

// readLoop drains one broker subscription. It ends when the subscription is
// closed by deregistration or when the transport fails and the payload
// channel closes; either way it stops instead of retrying.
func (m *Manager) readLoop(channel string, sub port.Subscription) {
	for payload := range sub.Messages() {
		m.dispatch(channel, payload)
	}
	m.log.WithField("channel", channel).Debug("broker read loop stopped")
}

// dispatch fans one broker payload out to every local socket registered for
// the channel. A failed send to one socket is logged and does not abort
// delivery to the others.
func (m *Manager) dispatch(channel string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case strings.HasPrefix(channel, "user_"):
		userID, err := strconv.ParseInt(strings.TrimPrefix(channel, "user_"), 10, 64)
		if err != nil {
			m.log.WithField("channel", channel).Warn("malformed user channel name")
			return
		}
		for _, s := range m.notifications[userID] {
			if err := s.Send(payload); err != nil {
				m.log.WithField("user_id", userID).WithError(err).Warn("dropping notification for dead socket")
			}
		}
	case strings.HasPrefix(channel, "conversation_"):
		conversationID, err := strconv.ParseInt(strings.TrimPrefix(channel, "conversation_"), 10, 64)
		if err != nil {
			m.log.WithField("channel", channel).Warn("malformed conversation channel name")
			return
		}
		var md support.MessageData
		if err := json.Unmarshal(payload, &md); err != nil {
			m.log.WithField("channel", channel).WithError(err).Warn("dropping undecodable conversation payload")
			return
		}
		frame, err := json.Marshal(support.ChatFrame{Type: support.ChatFrameMessage, Message: &md})
		if err != nil {
			return
		}
		for _, sockets := range m.conversations[conversationID] {
			for _, s := range sockets {
				if err := s.Send(frame); err != nil {
					m.log.WithField("conversation_id", conversationID).WithError(err).Warn("dropping message for dead socket")
				}
			}
		}
	}
}

// Close unsubscribes every broker channel and clears the registries. Sockets
// themselves are owned by their controllers.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for channel, sub := range m.subscriptions {
		_ = sub.Close()
		delete(m.subscriptions, channel)
	}
	m.notifications = make(map[int64][]Socket)
	m.conversations = make(map[int64]map[int64][]Socket)
}

func removeSocket(sockets []Socket, target Socket) []Socket {
	for i, s := range sockets {
		if s == target {
			return append(sockets[:i], sockets[i+1:]...)
		}
	}
	return sockets
}
