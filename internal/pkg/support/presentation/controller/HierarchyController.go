package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
)

// HierarchyController manages user reporting relations.
type HierarchyController struct {
	createEdgeUC *usecase.CreateHierarchyEdgeUseCase
}

func NewHierarchyController(createEdgeUC *usecase.CreateHierarchyEdgeUseCase) *HierarchyController {
	return &HierarchyController{createEdgeUC: createEdgeUC}
}

type createRelationRequest struct {
	ParentID int64 `json:"parent_id" binding:"required"`
	ChildID  int64 `json:"child_id" binding:"required"`
}

func (ctl *HierarchyController) HandleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRelationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		edge, err := ctl.createEdgeUC.Execute(c.Request.Context(), usecase.CreateHierarchyEdgeInput{
			ParentID: req.ParentID,
			ChildID:  req.ChildID,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"relation": edge})
	}
}
