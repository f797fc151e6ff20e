package port

import "context"

// OutboundMedia is an attachment forwarded to the customer alongside a
// message.
type OutboundMedia struct {
	URL      string
	Filename string
	MimeType string
	Size     int64
}

// CustomerChannel is the outbound bridge to the customer's messaging channel,
// fronted by the chatbot service. All calls are side effects: callers treat
// failures as delivery errors and never roll back committed state because of
// them, except where a send is the primary operation (agent replies).
type CustomerChannel interface {
	// SendMessage forwards a message body (and optional media) to the
	// customer's phone number. senderName, when non-empty, is prefixed so the
	// customer sees who is talking.
	SendMessage(ctx context.Context, toNumber, body string, media *OutboundMedia, senderName string) error

	// NotifyAgentAssigned tells the customer a named agent picked up their
	// conversation.
	NotifyAgentAssigned(ctx context.Context, toNumber, agentName string) error

	// NotifyConversationEnded hands the thread back to the chatbot and sends
	// the goodbye message.
	NotifyConversationEnded(ctx context.Context, threadID, toNumber, agentName string) error
}
