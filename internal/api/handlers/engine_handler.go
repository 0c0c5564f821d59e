// internal/api/handlers/engine_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storeops/rebalance/internal/api/middleware"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/export"
	"github.com/storeops/rebalance/internal/repository"
	"github.com/storeops/rebalance/internal/service"
)

type EngineHandler struct {
	service  *service.EngineService
	exporter *export.ManifestExporter
}

func NewEngineHandler(service *service.EngineService, exporter *export.ManifestExporter) *EngineHandler {
	return &EngineHandler{service: service, exporter: exporter}
}

type allocationRequest struct {
	Mode domain.EngineMode `json:"mode" binding:"required"`
}

func (h *EngineHandler) RunAllocation(c *gin.Context) {
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	report, err := h.service.RunAllocation(c.Request.Context(), middleware.GetTenant(c), req.Mode)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "allocation run failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *EngineHandler) RunRebalance(c *gin.Context) {
	report, err := h.service.RunRebalance(c.Request.Context(), middleware.GetTenant(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rebalance run failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *EngineHandler) RecalcTiers(c *gin.Context) {
	report, err := h.service.RecalcTiers(c.Request.Context(), middleware.GetTenant(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tier recalculation failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *EngineHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.service.Runs(c.Request.Context(), middleware.GetTenant(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch runs", "details": err.Error()})
		return
	}
	if runs == nil {
		runs = make([]domain.RebalanceRun, 0)
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *EngineHandler) GetRun(c *gin.Context) {
	run, err := h.service.Run(c.Request.Context(), middleware.GetTenant(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch run", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *EngineHandler) ExportManifest(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "manifest export is not configured"})
		return
	}

	key, err := h.exporter.Export(c.Request.Context(), middleware.GetTenant(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "manifest export failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key})
}
