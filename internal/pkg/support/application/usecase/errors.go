package usecase

import "errors"

// ErrPersistence indicates an infrastructure/repository failure inside a use case.
var ErrPersistence = errors.New("support use case persistence error")

// Business-rule violations. These surface to the end user as specific
// messages, never as fatal errors.
var (
	ErrConversationClosed    = errors.New("conversation closed")
	ErrCannotEndConversation = errors.New("you can't finish this conversation")
	ErrNotAssigned           = errors.New("conversation is not assigned to you")
	ErrCustomerDelivery      = errors.New("error sending message to client")
	ErrTemplateForbidden     = errors.New("you can't delete this template")
)

// Data-integrity violations in the user hierarchy. Rejected at the mutating
// operation, never silently fixed.
var (
	ErrChildHasActiveParent   = errors.New("user already has an active parent")
	ErrHierarchyCycle         = errors.New("relation would create a hierarchy cycle")
	ErrHierarchyDepthExceeded = errors.New("hierarchy depth limit exceeded")
)
