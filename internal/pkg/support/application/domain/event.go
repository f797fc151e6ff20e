package support

import "time"

// EventType tags realtime event envelopes.
type EventType string

const (
	EventNewConversation EventType = "new_conversation"
	EventNewTransfer     EventType = "new_transfer"
	EventNewMessage      EventType = "new_message"
	EventEndConversation EventType = "end_conversation"
	EventMessagesRead    EventType = "messages_read"
)

// ConversationData is the conversation summary carried by notification
// events.
type ConversationData struct {
	ID           int64             `json:"id"`
	ClientPhone  string            `json:"client_phone"`
	LastMessage  string            `json:"last_message"`
	UnreadCount  int               `json:"unread_count"`
	UpdatedAt    time.Time         `json:"updated_at"`
	UserID       int64             `json:"user_id"`
	StateID      ConversationState `json:"state_id"`
	PreviousUser *int64            `json:"previous_user,omitempty"`
}

// MessageData is the message summary carried by notification events and
// conversation-channel payloads.
type MessageData struct {
	Content        string            `json:"content"`
	ConversationID int64             `json:"conversation_id"`
	CreatedAt      time.Time         `json:"created_at"`
	UserID         *int64            `json:"user_id,omitempty"`
	UserName       string            `json:"user_name,omitempty"`
	PhoneNumber    string            `json:"phone_number,omitempty"`
	StateID        ConversationState `json:"state_id,omitempty"`
	Attachment     string            `json:"attachment,omitempty"`
	AttachmentType string            `json:"attachment_type,omitempty"`
	AttachmentName string            `json:"attachment_name,omitempty"`
	Sender         SenderType        `json:"sender_type"`
}

// Notification is the envelope published on per-user channels. Exactly one of
// Conversation or Message is populated depending on the event kind.
type Notification struct {
	Type         EventType         `json:"type"`
	Conversation *ConversationData `json:"conversation,omitempty"`
	Message      *MessageData      `json:"message,omitempty"`
}

// StatusData reports the outcome of a socket operation back to the client.
type StatusData struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ChatFrameType tags frames sent over conversation sockets.
type ChatFrameType string

const (
	ChatFrameStatus  ChatFrameType = "status"
	ChatFrameMessage ChatFrameType = "message"
)

// ChatFrame is the envelope written to conversation sockets: either a status
// acknowledgement or a fanned-out message.
type ChatFrame struct {
	Type    ChatFrameType `json:"type"`
	Status  *StatusData   `json:"status,omitempty"`
	Message *MessageData  `json:"message,omitempty"`
}
