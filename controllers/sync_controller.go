package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"findash_backend/services"
)

// SyncController triggers sync runs over the tracked symbols.
type SyncController struct {
	sync           *services.SyncService
	defaultSymbols []string
}

// NewSyncController creates a sync controller.
func NewSyncController(sync *services.SyncService, defaultSymbols []string) *SyncController {
	return &SyncController{sync: sync, defaultSymbols: defaultSymbols}
}

// syncRequest is the POST /sync body. An empty symbol list means "all
// tracked symbols"; mode defaults to incremental.
type syncRequest struct {
	Symbols []string `json:"symbols"`
	Mode    string   `json:"mode"`
}

// TriggerSync runs a sync synchronously and returns the per-symbol outcome
// report. Failures of individual symbols are part of the report, not an
// HTTP error.
func (sc *SyncController) TriggerSync(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "bad_request",
				"message": err.Error(),
			})
			return
		}
	}

	var mode services.SyncMode
	switch strings.ToLower(req.Mode) {
	case "", "incremental":
		mode = services.Incremental
	case "full_replace":
		mode = services.FullReplace
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "mode must be incremental or full_replace",
		})
		return
	}

	symbols := make([]string, 0, len(req.Symbols))
	for _, s := range req.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		symbols = sc.defaultSymbols
	}

	report := sc.sync.Sync(c.Request.Context(), symbols, mode)
	c.JSON(http.StatusOK, report)
}
