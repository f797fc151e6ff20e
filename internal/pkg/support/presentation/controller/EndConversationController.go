package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// EndConversationController closes a conversation with its typification.
type EndConversationController struct {
	users repository.UserRepository
	endUC *usecase.EndConversationUseCase
}

func NewEndConversationController(users repository.UserRepository, endUC *usecase.EndConversationUseCase) *EndConversationController {
	return &EndConversationController{users: users, endUC: endUC}
}

type endChatRequest struct {
	Motive   string `json:"motive"`
	Comment  string `json:"comment"`
	ClientID string `json:"client_id"`
}

func (ctl *EndConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		actor, ok := currentUser(c, ctl.users)
		if !ok {
			return
		}
		var req endChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		input := usecase.EndConversationInput{
			ConversationID: id,
			Actor:          actor,
		}
		// An empty body closes without a typification record.
		if req.Motive != "" || req.Comment != "" || req.ClientID != "" {
			input.Typification = &usecase.TypificationInput{
				Motive:   req.Motive,
				Comment:  req.Comment,
				ClientID: req.ClientID,
			}
		}
		if err := ctl.endUC.Execute(c.Request.Context(), input); err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
