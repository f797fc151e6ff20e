package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// TransferConversationController retargets a conversation to another agent. A
// successful transfer frees capacity somewhere, so it is followed by an
// assignment sweep.
type TransferConversationController struct {
	users    repository.UserRepository
	assignUC *usecase.AssignConversationUseCase
	massUC   *usecase.MassAssignmentUseCase
	log      *logrus.Logger
}

func NewTransferConversationController(users repository.UserRepository, assignUC *usecase.AssignConversationUseCase, massUC *usecase.MassAssignmentUseCase, log *logrus.Logger) *TransferConversationController {
	return &TransferConversationController{users: users, assignUC: assignUC, massUC: massUC, log: log}
}

type transferRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

func (ctl *TransferConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		actor, ok := currentUser(c, ctl.users)
		if !ok {
			return
		}
		var req transferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "There are missing parameters in the payload."})
			return
		}

		result, err := ctl.assignUC.Execute(c.Request.Context(), usecase.AssignConversationInput{
			ConversationID: id,
			TargetUserID:   req.UserID,
			Actor:          actor,
			Event:          support.AssignmentTransferred,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		if result.Success {
			// The transfer stands regardless of sweep trouble.
			if err := ctl.massUC.Execute(c.Request.Context()); err != nil {
				ctl.log.WithField("conversation_id", id).WithError(err).Warn("post-transfer assignment sweep failed")
			}
		}
		c.JSON(http.StatusOK, result)
	}
}
