package support

import "time"

// ConversationState is the lifecycle state of a customer thread.
// Pending -> Open -> Closed; Closed is terminal and there is no way back to
// Pending.
type ConversationState int16

const (
	StatePending ConversationState = 1
	StateOpen    ConversationState = 2
	StateClosed  ConversationState = 3
)

// Conversation is one customer thread. It is created on the first inbound
// customer message for a new thread and never physically deleted.
//
// Invariant: AssignedUserID != nil implies State is Open or Closed, and
// State == Pending implies AssignedUserID == nil.
type Conversation struct {
	ID             int64             `db:"id"`
	ThreadID       string            `db:"conversacion_id"`
	ClientPhone    string            `db:"telefono_asociado"`
	AssignedUserID *int64            `db:"usuario_id"`
	CreditNumber   string            `db:"numero_credito_seleccionado"`
	UnreadCount    int               `db:"mensajes_no_leidos"`
	State          ConversationState `db:"estado_id"`
	LastMessage    string            `db:"ultimo_mensaje"`
	CreatedAt      time.Time         `db:"fecha_creacion"`
	UpdatedAt      time.Time         `db:"fecha_ultimo_mensaje"`
}

// AssignedTo reports whether the conversation currently points at the user.
func (c *Conversation) AssignedTo(userID int64) bool {
	return c.AssignedUserID != nil && *c.AssignedUserID == userID
}

// Typification is the closing classification recorded when a conversation
// ends.
type Typification struct {
	ID             int64     `db:"tipificacion_id"`
	ConversationID int64     `db:"conversacion_id"`
	Motive         string    `db:"motivo"`
	Comment        string    `db:"comentario"`
	CreditNumber   string    `db:"numero_credito"`
	ClientID       string    `db:"documento"`
	CreatedAt      time.Time `db:"fecha_creacion"`
}

// AgentLoad is one row of the agent selector's working set: an agent together
// with the number of Open conversations currently assigned to them and the
// time of their most recent assignment event, if any.
type AgentLoad struct {
	User           User
	OpenCount      int
	LastAssignedAt *time.Time
}
