package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// TemplatesController manages the canned replies agents use while chatting.
type TemplatesController struct {
	users    repository.UserRepository
	listUC   *usecase.ListTemplatesUseCase
	createUC *usecase.CreateTemplateUseCase
	updateUC *usecase.UpdateTemplateUseCase
	deleteUC *usecase.DeleteTemplateUseCase
}

func NewTemplatesController(
	users repository.UserRepository,
	listUC *usecase.ListTemplatesUseCase,
	createUC *usecase.CreateTemplateUseCase,
	updateUC *usecase.UpdateTemplateUseCase,
	deleteUC *usecase.DeleteTemplateUseCase,
) *TemplatesController {
	return &TemplatesController{
		users:    users,
		listUC:   listUC,
		createUC: createUC,
		updateUC: updateUC,
		deleteUC: deleteUC,
	}
}

type createTemplateRequest struct {
	UserID  *int64 `json:"user_id"`
	Content string `json:"content" binding:"required"`
}

type updateTemplateRequest struct {
	Content string `json:"content" binding:"required"`
	Active  *bool  `json:"is_active"`
}

func (ctl *TemplatesController) HandleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := currentUser(c, ctl.users)
		if !ok {
			return
		}
		set, err := ctl.listUC.Execute(c.Request.Context(), actor.ID)
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, set)
	}
}

func (ctl *TemplatesController) HandleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		created, err := ctl.createUC.Execute(c.Request.Context(), usecase.CreateTemplateInput{
			OwnerID: req.UserID,
			Content: req.Content,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func (ctl *TemplatesController) HandleUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req updateTemplateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updated, err := ctl.updateUC.Execute(c.Request.Context(), usecase.UpdateTemplateInput{
			TemplateID: id,
			Content:    req.Content,
			Active:     req.Active,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func (ctl *TemplatesController) HandleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		actor, ok := currentUser(c, ctl.users)
		if !ok {
			return
		}
		err := ctl.deleteUC.Execute(c.Request.Context(), usecase.DeleteTemplateInput{
			TemplateID: id,
			Actor:      actor,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
