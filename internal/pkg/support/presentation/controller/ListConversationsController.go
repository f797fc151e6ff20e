package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// ListConversationsController serves the role-scoped conversation list.
type ListConversationsController struct {
	users  repository.UserRepository
	listUC *usecase.ListConversationsUseCase
}

func NewListConversationsController(users repository.UserRepository, listUC *usecase.ListConversationsUseCase) *ListConversationsController {
	return &ListConversationsController{users: users, listUC: listUC}
}

func (ctl *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentUser(c, ctl.users)
		if !ok {
			return
		}

		var selected *int64
		if raw := c.Query("selected_user_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid selected_user_id"})
				return
			}
			selected = &id
		}

		out, err := ctl.listUC.Execute(c.Request.Context(), usecase.ListConversationsInput{
			Actor:          actor,
			SelectedUserID: selected,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversations": out})
	}
}
