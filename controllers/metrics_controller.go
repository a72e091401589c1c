package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"findash_backend/services"
)

// MetricsController serves summary metrics and stored bar windows.
type MetricsController struct {
	metrics *services.MetricsService
	store   services.BarStore
}

// NewMetricsController creates a metrics controller.
func NewMetricsController(metrics *services.MetricsService, store services.BarStore) *MetricsController {
	return &MetricsController{metrics: metrics, store: store}
}

// GetSummaryMetrics returns summary metrics for the requested symbols
// (?symbols=AAPL,MSFT), or for all tracked symbols when the parameter is
// absent. Symbols without stored history are omitted from the response.
func (mc *MetricsController) GetSummaryMetrics(c *gin.Context) {
	var symbols []string
	if raw := c.Query("symbols"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				symbols = append(symbols, s)
			}
		}
	}

	metrics := mc.metrics.GetSummaryMetrics(c.Request.Context(), symbols)
	c.JSON(http.StatusOK, gin.H{
		"count":   len(metrics),
		"metrics": metrics,
	})
}

// GetSymbolMetrics returns the summary for one symbol, or 404 when no
// metrics are available for it.
func (mc *MetricsController) GetSymbolMetrics(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	metrics, ok := mc.metrics.SymbolMetrics(c.Request.Context(), symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "No metrics available for " + symbol,
		})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// GetBars returns the most recent stored bars for a symbol, newest first
// (?limit=30, capped at 500).
func (mc *MetricsController) GetBars(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	limit := 30
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "bad_request",
				"message": "limit must be a positive integer",
			})
			return
		}
		limit = n
	}
	if limit > 500 {
		limit = 500
	}

	bars, err := mc.store.FindRange(c.Request.Context(), symbol, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "store_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"count":  len(bars),
		"bars":   bars,
	})
}
