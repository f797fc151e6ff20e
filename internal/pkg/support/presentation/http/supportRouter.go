package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	nport "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/notifier/port"
	qport "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/queue/port"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/realtime"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/adapter"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/presentation/controller"
)

// Deps carries the shared infrastructure the support endpoints are built on.
type Deps struct {
	Pool            *pgxpool.Pool
	Manager         *realtime.Manager
	Queue           qport.Client
	Customer        nport.CustomerChannel
	MaxAssignments  int
	UnattendedAfter time.Duration
	Log             *logrus.Logger
}

// RegisterRoutes registers the support endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	users := adapter.NewPgUserRepository(d.Pool)
	hierarchy := adapter.NewPgHierarchyRepository(d.Pool)
	conversations := adapter.NewPgConversationRepository(d.Pool)
	messages := adapter.NewPgMessageRepository(d.Pool)
	templates := adapter.NewPgTemplateRepository(d.Pool)

	audience := usecase.NewAudience(users, hierarchy)
	descendantsUC := usecase.NewGetDescendantsUseCase(users, hierarchy)
	selectorUC := usecase.NewSelectFreeAgentsUseCase(conversations, d.MaxAssignments)
	assignUC := usecase.NewAssignConversationUseCase(users, conversations, audience, d.Manager, d.Customer, d.MaxAssignments, d.Log)
	massUC := usecase.NewMassAssignmentUseCase(conversations, selectorUC, assignUC, d.MaxAssignments, d.Log)
	endUC := usecase.NewEndConversationUseCase(users, conversations, audience, d.Manager, d.Customer, massUC, d.Log)
	customerMsgUC := usecase.NewHandleCustomerMessageUseCase(conversations, messages, audience, d.Manager, d.Manager, massUC, d.Queue, d.UnattendedAfter, d.Log)
	sendUC := usecase.NewSendAgentMessageUseCase(conversations, messages, audience, d.Manager, d.Customer, d.Log)
	resetUC := usecase.NewResetUnreadUseCase(conversations, audience, d.Manager, d.Log)
	listUC := usecase.NewListConversationsUseCase(conversations, descendantsUC)
	historyUC := usecase.NewGetConversationMessagesUseCase(conversations, messages, d.Log)
	presenceUC := usecase.NewSetPresenceUseCase(users, massUC, d.Log)
	createEdgeUC := usecase.NewCreateHierarchyEdgeUseCase(users, hierarchy)
	listTemplatesUC := usecase.NewListTemplatesUseCase(templates)
	createTemplateUC := usecase.NewCreateTemplateUseCase(users, templates)
	updateTemplateUC := usecase.NewUpdateTemplateUseCase(templates)
	deleteTemplateUC := usecase.NewDeleteTemplateUseCase(templates)

	webhookCtl := controller.NewWebhookController(customerMsgUC)
	listCtl := controller.NewListConversationsController(users, listUC)
	historyCtl := controller.NewConversationMessagesController(users, historyUC)
	sendMsgCtl := controller.NewSendMessageController(users, sendUC)
	transferCtl := controller.NewTransferConversationController(users, assignUC, massUC, d.Log)
	endChatCtl := controller.NewEndConversationController(users, endUC)
	resetCtl := controller.NewResetUnreadController(resetUC)
	hierarchyCtl := controller.NewHierarchyController(createEdgeUC)
	presenceCtl := controller.NewPresenceController(presenceUC)
	templatesCtl := controller.NewTemplatesController(users, listTemplatesUC, createTemplateUC, updateTemplateUC, deleteTemplateUC)
	convSocketCtl := controller.NewConversationSocketController(users, conversations, d.Manager, sendUC, d.Log)
	notifSocketCtl := controller.NewNotificationSocketController(users, d.Manager, presenceUC, d.Log)

	// POST /api/v1/webhook -> inbound customer messages from the chatbot
	g.POST("/webhook", webhookCtl.Handle())

	// Conversation lifecycle and messaging
	g.GET("/conversations", listCtl.Handle())
	g.GET("/conversations/:id/messages", historyCtl.Handle())
	g.POST("/conversations/:id", sendMsgCtl.Handle())
	g.POST("/conversations/:id/transfer", transferCtl.Handle())
	g.POST("/conversations/:id/endChat", endChatCtl.Handle())
	g.POST("/conversations/:id/reset-unread-count", resetCtl.Handle())

	// Realtime streams
	g.GET("/conversations/:id/ws", convSocketCtl.Handle())
	g.GET("/notifications/ws", notifSocketCtl.Handle())

	// Canned replies
	g.GET("/templates", templatesCtl.HandleList())
	g.POST("/templates", templatesCtl.HandleCreate())
	g.PUT("/templates/:id", templatesCtl.HandleUpdate())
	g.DELETE("/templates/:id", templatesCtl.HandleDelete())

	// Users
	g.POST("/users/relations", hierarchyCtl.HandleCreate())
	g.POST("/users/:id/state", presenceCtl.Handle())
}
