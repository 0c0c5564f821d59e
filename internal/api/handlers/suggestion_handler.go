// internal/api/handlers/suggestion_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storeops/rebalance/internal/api/middleware"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/service"
	"github.com/storeops/rebalance/internal/summary"
)

type SuggestionHandler struct {
	service *service.SuggestionService
}

func NewSuggestionHandler(service *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{service: service}
}

func (h *SuggestionHandler) parseFilter(c *gin.Context) domain.SuggestionFilter {
	filter := domain.SuggestionFilter{
		RunID:        strings.TrimSpace(c.Query("run_id")),
		FromLocation: strings.TrimSpace(c.Query("from_location")),
		ToLocation:   strings.TrimSpace(c.Query("to_location")),
	}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = domain.SuggestionStatus(status)
	}
	if transferType := strings.TrimSpace(c.Query("transfer_type")); transferType != "" {
		filter.TransferType = domain.TransferType(transferType)
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "0")); err == nil && size > 0 {
		filter.PageSize = size
	}
	return filter
}

func (h *SuggestionHandler) List(c *gin.Context) {
	suggestions, err := h.service.List(c.Request.Context(), middleware.GetTenant(c), h.parseFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch suggestions", "details": err.Error()})
		return
	}
	if suggestions == nil {
		suggestions = make([]domain.RebalanceSuggestion, 0)
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

type approveRequest struct {
	IDs       []string       `json:"ids" binding:"required"`
	EditedQty map[string]int `json:"edited_qty"`
}

type rejectRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (h *SuggestionHandler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	for id, qty := range req.EditedQty {
		if qty < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "edited qty must not be negative", "id": id})
			return
		}
	}

	results, err := h.service.Approve(c.Request.Context(), middleware.GetTenant(c), req.IDs, req.EditedQty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve suggestions", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *SuggestionHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	results, err := h.service.Reject(c.Request.Context(), middleware.GetTenant(c), req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reject suggestions", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *SuggestionHandler) RecallGroups(c *gin.Context) {
	runID := strings.TrimSpace(c.Query("run_id"))
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_id is required"})
		return
	}

	groups, err := h.service.RecallGroups(c.Request.Context(), middleware.GetTenant(c), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to group recalls", "details": err.Error()})
		return
	}
	if groups == nil {
		groups = make([]summary.RecallGroup, 0)
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (h *SuggestionHandler) ReasonSummary(c *gin.Context) {
	runID := strings.TrimSpace(c.Query("run_id"))
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_id is required"})
		return
	}

	line, counts, err := h.service.ReasonSummary(c.Request.Context(), middleware.GetTenant(c), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to summarize reasons", "details": err.Error()})
		return
	}
	if counts == nil {
		counts = make([]summary.ReasonCount, 0)
	}
	c.JSON(http.StatusOK, gin.H{"summary": line, "counts": counts})
}
