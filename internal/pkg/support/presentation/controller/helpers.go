package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// currentUser resolves the acting user from the X-User-Id header (query
// fallback). Writes the error response itself when resolution fails.
func currentUser(c *gin.Context, users repository.UserRepository) (*support.User, bool) {
	raw := c.GetHeader("X-User-Id")
	if raw == "" {
		raw = c.Query("user_id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return nil, false
	}
	user, err := users.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
		}
		return nil, false
	}
	return user, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// respondUseCaseError maps use-case errors onto HTTP statuses following the
// error taxonomy: not-found is 404, business-rule violations are specific 4xx
// messages, store faults are 500.
func respondUseCaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, usecase.ErrConversationClosed):
		c.JSON(http.StatusConflict, gin.H{"error": usecase.ErrConversationClosed.Error()})
	case errors.Is(err, usecase.ErrCannotEndConversation),
		errors.Is(err, usecase.ErrNotAssigned),
		errors.Is(err, usecase.ErrTemplateForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrChildHasActiveParent),
		errors.Is(err, usecase.ErrHierarchyCycle),
		errors.Is(err, usecase.ErrHierarchyDepthExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrCustomerDelivery):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, support.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	}
}
