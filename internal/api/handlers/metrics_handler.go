// internal/api/handlers/metrics_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storeops/rebalance/internal/api/middleware"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/service"
)

type MetricsHandler struct {
	service *service.MetricsService
}

func NewMetricsHandler(service *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

func (h *MetricsHandler) parseFilter(c *gin.Context) domain.MetricsFilter {
	filter := domain.MetricsFilter{
		Page:     1,
		PageSize: 50,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}
	if tier := strings.TrimSpace(c.Query("tier")); tier != "" {
		filter.Tier = domain.StoreTier(strings.ToUpper(tier))
	}

	if value := strings.TrimSpace(c.Query("store_ids")); value != "" {
		for _, part := range strings.Split(value, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				filter.StoreIDs = append(filter.StoreIDs, id)
			}
		}
	}
	if value := strings.TrimSpace(c.Query("fc_ids")); value != "" {
		for _, part := range strings.Split(value, ",") {
			if fc := strings.TrimSpace(part); fc != "" {
				filter.FCIDs = append(filter.FCIDs, fc)
			}
		}
	}
	return filter
}

func (h *MetricsHandler) ListStores(c *gin.Context) {
	stores, err := h.service.Stores(c.Request.Context(), middleware.GetTenant(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stores", "details": err.Error()})
		return
	}
	if stores == nil {
		stores = make([]domain.Store, 0)
	}
	c.JSON(http.StatusOK, gin.H{"stores": stores})
}

func (h *MetricsHandler) ListMetrics(c *gin.Context) {
	filter := h.parseFilter(c)
	metrics, total, err := h.service.Metrics(c.Request.Context(), middleware.GetTenant(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch metrics", "details": err.Error()})
		return
	}
	if metrics == nil {
		metrics = make([]domain.StoreMetric, 0)
	}
	c.JSON(http.StatusOK, gin.H{
		"metrics":   metrics,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

func (h *MetricsHandler) Dashboard(c *gin.Context) {
	summaries, err := h.service.Dashboard(c.Request.Context(), middleware.GetTenant(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch dashboard", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": summaries})
}
