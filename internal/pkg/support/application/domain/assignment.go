package support

import "time"

// AssignmentType categorizes assignment events.
// Intervention is restricted to supervisors, principals and administrators
// and does not change the assigned user.
type AssignmentType int16

const (
	AssignmentAssigned     AssignmentType = 1
	AssignmentTransferred  AssignmentType = 2
	AssignmentIntervention AssignmentType = 3
)

// Assignment is an append-only event linking a user to a conversation. It is
// the audit trail of who touched which conversation; an agent's current load
// is derived from Conversation.AssignedUserID, not from counting these rows.
type Assignment struct {
	ID             int64          `db:"asignacion_id"`
	UserID         int64          `db:"usuario_id"`
	ConversationID int64          `db:"conversacion_id"`
	Event          AssignmentType `db:"evento_id"`
	CreatedAt      time.Time      `db:"fecha_creacion"`
	UpdatedAt      time.Time      `db:"fecha_actualizacion"`
}

// AssignmentResult is the structured outcome of an assignment operation.
// Business-rule violations come back as Success == false with a specific
// Message; only store-level faults surface as errors.
type AssignmentResult struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Assignment *Assignment `json:"assignment"`
}
