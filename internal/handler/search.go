package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/logger"
	"github.com/manavgup/ragcore/internal/pipeline"
	"github.com/manavgup/ragcore/internal/types"
)

// SearchHandler exposes the Pipeline Orchestrator over HTTP: one request in, one
// StructuredAnswer out, with no session/conversation state attached.
type SearchHandler struct {
	orchestrator *pipeline.Orchestrator
}

func NewSearchHandler(orchestrator *pipeline.Orchestrator) *SearchHandler {
	return &SearchHandler{orchestrator: orchestrator}
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	CollectionID string `json:"collection_id" binding:"required"`
	Query        string `json:"query" binding:"required"`
	PipelineID   string `json:"pipeline_id"`
}

// SearchResponse is the body returned by POST /api/v1/search.
type SearchResponse struct {
	RequestID  string                 `json:"request_id"`
	Answer     *types.StructuredAnswer `json:"answer"`
	TokenUsage types.TokenUsage       `json:"token_usage"`
}

// Search runs a single retrieve+generate pass and returns the structured answer.
func (h *SearchHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError(err.Error()))
		return
	}

	tenantID, exists := c.Get(types.TenantIDContextKey.String())
	if !exists {
		c.Error(errors.NewUnauthorizedError("unauthorized"))
		return
	}

	sc := &types.SearchContext{
		RequestID:    uuid.New().String(),
		TenantID:     tenantID.(uint),
		CollectionID: req.CollectionID,
		PipelineID:   req.PipelineID,
		Query:        req.Query,
	}

	if err := h.orchestrator.Run(ctx, sc); err != nil {
		logger.ErrorWithFields(ctx, err, map[string]interface{}{"request_id": sc.RequestID})
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": SearchResponse{
			RequestID:  sc.RequestID,
			Answer:     sc.Answer,
			TokenUsage: sc.TokenUsage,
		},
	})
}
