package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// ConversationMessagesController serves a conversation's message history.
type ConversationMessagesController struct {
	users     repository.UserRepository
	historyUC *usecase.GetConversationMessagesUseCase
}

func NewConversationMessagesController(users repository.UserRepository, historyUC *usecase.GetConversationMessagesUseCase) *ConversationMessagesController {
	return &ConversationMessagesController{users: users, historyUC: historyUC}
}

func (ctl *ConversationMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		actor, ok := currentUser(c, ctl.users)
		if !ok {
			return
		}

		history, err := ctl.historyUC.Execute(c.Request.Context(), usecase.GetConversationMessagesInput{
			ConversationID: id,
			Actor:          actor,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"detail":   history.Conversation,
			"messages": history.Messages,
		})
	}
}
