package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
)

// PresenceController updates a user's availability state.
type PresenceController struct {
	presenceUC *usecase.SetPresenceUseCase
}

func NewPresenceController(presenceUC *usecase.SetPresenceUseCase) *PresenceController {
	return &PresenceController{presenceUC: presenceUC}
}

type presenceRequest struct {
	StateID int16 `json:"state_id" binding:"required"`
}

func (ctl *PresenceController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req presenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		presence := support.UserPresence(req.StateID)
		switch presence {
		case support.PresenceOnline, support.PresenceBreak, support.PresenceOffline:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state_id"})
			return
		}

		user, err := ctl.presenceUC.Execute(c.Request.Context(), usecase.SetPresenceInput{
			UserID:   id,
			Presence: presence,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID, "state": user.Presence.String()})
	}
}
