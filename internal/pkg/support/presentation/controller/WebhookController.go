package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
)

// WebhookController receives inbound customer messages relayed by the chatbot.
type WebhookController struct {
	handleMessageUC *usecase.HandleCustomerMessageUseCase
}

func NewWebhookController(handleMessageUC *usecase.HandleCustomerMessageUseCase) *WebhookController {
	return &WebhookController{handleMessageUC: handleMessageUC}
}

type webhookRequest struct {
	ThreadID   string `json:"thread_id" binding:"required"`
	FromNumber string `json:"from_number"`
	Message    string `json:"message"`
	MediaURL   string `json:"media_url"`
	MediaName  string `json:"media_name"`
	MediaType  string `json:"media_type"`
	MediaSize  int64  `json:"media_size"`
}

func (ctl *WebhookController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req webhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msg, err := ctl.handleMessageUC.Execute(c.Request.Context(), usecase.CustomerMessageInput{
			ThreadID:   req.ThreadID,
			FromNumber: req.FromNumber,
			Body:       req.Message,
			MediaURL:   req.MediaURL,
			MediaName:  req.MediaName,
			MediaType:  req.MediaType,
			MediaSize:  req.MediaSize,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		// A nil message means the conversation is closed and the event was
		// ignored; the chatbot only needs to know it was not processed.
		c.JSON(http.StatusOK, msg != nil)
	}
}
