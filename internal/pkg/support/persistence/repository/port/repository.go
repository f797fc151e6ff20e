package repository

import (
	"context"
	"errors"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
)

var (
	// ErrNotFound signals a missing row in a typed way; callers map it to a
	// 404-equivalent at the boundary.
	ErrNotFound = errors.New("repository: not found")

	// ErrAssignmentConflict signals that the conversation's assignee changed
	// between the precondition read and the conditional write.
	ErrAssignmentConflict = errors.New("repository: assignment conflict")
)

// UserRepository covers user lookups, presence changes and the audit log.
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*support.User, error)
	GetUserByUsername(ctx context.Context, username string) (*support.User, error)
	ListUsersByRole(ctx context.Context, role support.UserRole) ([]support.User, error)
	SetUserPresence(ctx context.Context, id int64, p support.UserPresence) error
	AppendUserLog(ctx context.Context, log support.UserLog) error
}

// HierarchyRepository covers the user organization forest.
type HierarchyRepository interface {
	// ActiveParent returns the single active parent edge of the child, or
	// ErrNotFound when the child has none.
	ActiveParent(ctx context.Context, childID int64) (*support.HierarchyEdge, error)
	ActiveChildren(ctx context.Context, parentID int64) ([]support.HierarchyEdge, error)
	CreateEdge(ctx context.Context, parentID, childID int64) (*support.HierarchyEdge, error)
}

// ConversationRepository covers conversation state, the assignment trail and
// the agent selector's working set.
type ConversationRepository interface {
	GetConversation(ctx context.Context, id int64) (*support.Conversation, error)
	GetConversationByThread(ctx context.Context, threadID string) (*support.Conversation, error)
	CreateConversation(ctx context.Context, c support.Conversation) (*support.Conversation, error)

	// ListPending returns Pending conversations ordered by creation time
	// descending; the scheduler consumes them from the front.
	ListPending(ctx context.Context) ([]support.Conversation, error)

	// ListAll / ListAssignedTo back the role-scoped listing, newest update
	// first. assignedTo, when non-nil, restricts ListAll to that set of
	// assignees.
	ListAll(ctx context.Context, assignedTo []int64) ([]support.Conversation, error)
	ListAssignedTo(ctx context.Context, userID int64) ([]support.Conversation, error)

	CountOpenAssignedTo(ctx context.Context, userID int64) (int, error)

	// ListAgentLoads returns every online agent with their current open
	// conversation count and most recent assignment event time.
	ListAgentLoads(ctx context.Context) ([]support.AgentLoad, error)

	// RecordAssignment atomically re-checks the current assignee against
	// expectedPrev, retargets the conversation (unless retarget is false, as
	// for interventions), promotes Pending to Open, and appends the
	// assignment event — all in one transaction. Returns
	// ErrAssignmentConflict if the assignee moved underneath us.
	RecordAssignment(ctx context.Context, rec support.Assignment, expectedPrev *int64, retarget bool) (*support.Assignment, error)

	// Close marks the conversation Closed and attaches the optional
	// typification in the same transaction.
	Close(ctx context.Context, id int64, t *support.Typification) error

	SetUnreadCount(ctx context.Context, id int64, count int) error
}

// TemplateRepository covers the canned replies agents use while chatting.
type TemplateRepository interface {
	GetTemplate(ctx context.Context, id int64) (*support.Template, error)

	// ListDefaultTemplates / ListUserTemplates return only active templates.
	ListDefaultTemplates(ctx context.Context) ([]support.Template, error)
	ListUserTemplates(ctx context.Context, userID int64) ([]support.Template, error)

	CreateTemplate(ctx context.Context, t support.Template) (*support.Template, error)

	// UpdateTemplate replaces the content; active, when non-nil, toggles the
	// template's visibility.
	UpdateTemplate(ctx context.Context, id int64, content string, active *bool) (*support.Template, error)

	DeleteTemplate(ctx context.Context, id int64) error
}

// MessageRepository covers message persistence and history reads.
type MessageRepository interface {
	// SaveMessage stores the message (and its media, when present) and
	// refreshes the conversation's last-message cache; bumpUnread increments
	// the unread counter in the same transaction.
	SaveMessage(ctx context.Context, m support.Message, media *support.MessageMedia, bumpUnread bool) (*support.Message, *support.MessageMedia, error)
	ListConversationMessages(ctx context.Context, conversationID int64) ([]support.MessageView, error)
	DeleteMessage(ctx context.Context, id int64) error
	CountAgentMessages(ctx context.Context, conversationID int64) (int, error)
}
