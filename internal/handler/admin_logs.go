package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/manavgup/ragcore/internal/logstore"
)

// AdminLogsHandler exposes the ring-buffered log store: a snapshot endpoint for the
// last N entries, and a Server-Sent-Events stream for live tailing, mirroring the
// teacher's continue-stream endpoint's long-lived-connection pattern but for logs
// rather than chat completions.
type AdminLogsHandler struct {
	store *logstore.Store
}

func NewAdminLogsHandler(store *logstore.Store) *AdminLogsHandler {
	return &AdminLogsHandler{store: store}
}

// Tail returns the most recent log entries, newest included, oldest-first.
func (h *AdminLogsHandler) Tail(c *gin.Context) {
	n := 100
	if v := c.Query("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.store.Tail(n),
	})
}

// Stream pushes new log entries to the client as Server-Sent Events until the
// client disconnects; entries that arrive while its queue is full are dropped for it.
func (h *AdminLogsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	ch, cancel := h.store.Subscribe(ctx, 256)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case entry, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("log", entry)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
