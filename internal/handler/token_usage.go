package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/tokentracker"
	"github.com/manavgup/ragcore/internal/types"
)

// TokenUsageHandler exposes the per-tenant token-warning history the Token Tracker
// accumulates, supplementing the core pipeline with the usage-visibility feature the
// original implementation offered callers.
type TokenUsageHandler struct {
	tracker *tokentracker.Tracker
}

func NewTokenUsageHandler(tracker *tokentracker.Tracker) *TokenUsageHandler {
	return &TokenUsageHandler{tracker: tracker}
}

// Stats returns the authenticated tenant's aggregate token-warning counts.
func (h *TokenUsageHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID, exists := c.Get(types.TenantIDContextKey.String())
	if !exists {
		c.Error(errors.NewUnauthorizedError("unauthorized"))
		return
	}

	stats, err := h.tracker.GetUserTokenStats(ctx, tenantID.(uint))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// AcknowledgeWarning marks a specific token warning as seen.
func (h *TokenUsageHandler) AcknowledgeWarning(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.tracker.AcknowledgeWarning(ctx, id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
