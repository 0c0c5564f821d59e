// internal/api/handlers/constraint_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storeops/rebalance/internal/api/middleware"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
	"github.com/storeops/rebalance/internal/service"
)

type ConstraintHandler struct {
	service *service.ConstraintService
}

func NewConstraintHandler(service *service.ConstraintService) *ConstraintHandler {
	return &ConstraintHandler{service: service}
}

func (h *ConstraintHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), middleware.GetTenant(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch constraints", "details": err.Error()})
		return
	}
	if items == nil {
		items = make([]domain.ConstraintItem, 0)
	}
	c.JSON(http.StatusOK, gin.H{"constraints": items})
}

func (h *ConstraintHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid constraint id"})
		return
	}

	var update domain.ConstraintUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	item, err := h.service.Update(c.Request.Context(), middleware.GetTenant(c), id, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "constraint not found"})
		case errors.Is(err, service.ErrInvalidUpdate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update constraint", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, item)
}
