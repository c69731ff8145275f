package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/manavgup/ragcore/internal/logstore"
	"github.com/manavgup/ragcore/internal/types"
)

func TestAdminLogsHandlerTailReturnsRecentEntries(t *testing.T) {
	store := logstore.NewStore(10)
	store.Append(types.LogEntry{Message: "first"})
	store.Append(types.LogEntry{Message: "second"})
	h := NewAdminLogsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/logs?n=1", nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	h.Tail(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Success bool              `json:"success"`
		Data    []types.LogEntry `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Message != "second" {
		t.Fatalf("data = %+v, want the single most recent entry", resp.Data)
	}
}

func TestAdminLogsHandlerTailDefaultsWhenNInvalid(t *testing.T) {
	store := logstore.NewStore(10)
	store.Append(types.LogEntry{Message: "only"})
	h := NewAdminLogsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/logs?n=not-a-number", nil)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	h.Tail(c)

	var resp struct {
		Data []types.LogEntry `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("data = %+v, want the one stored entry despite the bad n param", resp.Data)
	}
}
