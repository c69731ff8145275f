package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/manavgup/ragcore/internal/tokentracker"
)

func TestTokenUsageHandlerStatsRejectsMissingTenant(t *testing.T) {
	h := NewTokenUsageHandler(tokentracker.NewTracker(nil, nil))

	req := httptest.NewRequest("GET", "/api/v1/token-usage/stats", nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	h.Stats(c)

	if len(c.Errors) == 0 {
		t.Fatal("expected an unauthorized error when tenant id is missing from context")
	}
}
