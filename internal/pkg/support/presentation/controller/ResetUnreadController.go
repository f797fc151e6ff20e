package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
)

// ResetUnreadController zeroes a conversation's unread counter.
type ResetUnreadController struct {
	resetUC *usecase.ResetUnreadUseCase
}

func NewResetUnreadController(resetUC *usecase.ResetUnreadUseCase) *ResetUnreadController {
	return &ResetUnreadController{resetUC: resetUC}
}

func (ctl *ResetUnreadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := ctl.resetUC.Execute(c.Request.Context(), id); err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
