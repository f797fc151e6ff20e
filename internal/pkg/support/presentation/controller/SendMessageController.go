package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// SendMessageController handles agent replies posted over HTTP.
type SendMessageController struct {
	users  repository.UserRepository
	sendUC *usecase.SendAgentMessageUseCase
}

func NewSendMessageController(users repository.UserRepository, sendUC *usecase.SendAgentMessageUseCase) *SendMessageController {
	return &SendMessageController{users: users, sendUC: sendUC}
}

type sendMessageRequest struct {
	Message   string `json:"message"`
	MediaURL  string `json:"media_url"`
	MediaName string `json:"media_name"`
	MediaType string `json:"media_type"`
	MediaSize int64  `json:"media_size"`
}

func (ctl *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		actor, ok := currentUser(c, ctl.users)
		if !ok {
			return
		}
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var media *usecase.AgentMediaInput
		if req.MediaURL != "" {
			media = &usecase.AgentMediaInput{
				URL:      req.MediaURL,
				Filename: req.MediaName,
				MimeType: req.MediaType,
				Size:     req.MediaSize,
			}
		}

		msg, err := ctl.sendUC.Execute(c.Request.Context(), usecase.SendAgentMessageInput{
			ConversationID: id,
			Actor:          actor,
			Body:           req.Message,
			Media:          media,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "message": msg})
	}
}
