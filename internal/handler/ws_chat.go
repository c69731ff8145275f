package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/manavgup/ragcore/internal/conversation"
	"github.com/manavgup/ragcore/internal/logger"
	"github.com/manavgup/ragcore/internal/pipeline"
	"github.com/manavgup/ragcore/internal/types"
	"github.com/manavgup/ragcore/internal/types/interfaces"
)

// wsUpgrader allows cross-origin connections, matching the gin router's permissive
// CORS policy; the Auth middleware runs before the upgrade so the origin itself
// carries no trust.
var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inboundMessage is the JSON envelope clients send over the socket.
type inboundMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// ChatWSHandler implements the real-time chat endpoint: one socket per authenticated
// user, JSON message routing (ping/chat_message), and the same conversation +
// pipeline plumbing the REST search endpoint uses.
type ChatWSHandler struct {
	userService  interfaces.UserService
	conversation *conversation.Manager
	orchestrator *pipeline.Orchestrator

	mu      sync.Mutex
	sockets map[string]*websocket.Conn // userID -> active connection
}

func NewChatWSHandler(
	userService interfaces.UserService,
	convMgr *conversation.Manager,
	orchestrator *pipeline.Orchestrator,
) *ChatWSHandler {
	return &ChatWSHandler{
		userService:  userService,
		conversation: convMgr,
		orchestrator: orchestrator,
		sockets:      make(map[string]*websocket.Conn),
	}
}

// authenticate extracts a bearer token from the query string or Authorization header
// and validates it before the upgrade, per the "authentication precedes accept" rule.
func (h *ChatWSHandler) authenticate(c *gin.Context) (*types.User, error) {
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
	}
	if token == "" {
		return nil, errUnauthenticatedSocket
	}
	return h.userService.ValidateToken(c.Request.Context(), token)
}

var errUnauthenticatedSocket = &wsAuthError{"missing or invalid token"}

type wsAuthError struct{ msg string }

func (e *wsAuthError) Error() string { return e.msg }

// Handle upgrades the connection and services it until it closes. A new connection
// from the same user evicts any prior socket, matching the one-socket-per-user rule.
func (h *ChatWSHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.authenticate(c)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetLogger(ctx).Warnf("websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	if prior, ok := h.sockets[user.ID]; ok {
		_ = prior.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "superseded by new connection"),
			time.Now().Add(time.Second))
		_ = prior.Close()
	}
	h.sockets[user.ID] = conn
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.sockets[user.ID] == conn {
			delete(h.sockets, user.ID)
		}
		h.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.dispatch(ctx, user, conn, raw)
	}
}

func (h *ChatWSHandler) dispatch(ctx context.Context, user *types.User, conn *websocket.Conn, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		writeJSON(conn, gin.H{"type": "error", "message": "malformed payload"})
		return
	}

	switch msg.Type {
	case "ping":
		writeJSON(conn, gin.H{"type": "pong", "timestamp": msg.Timestamp})
	case "chat_message":
		h.handleChatMessage(ctx, user, conn, msg)
	default:
		writeJSON(conn, gin.H{"type": "error", "message": "unknown message type: " + msg.Type})
	}
}

func (h *ChatWSHandler) handleChatMessage(ctx context.Context, user *types.User, conn *websocket.Conn, msg inboundMessage) {
	if msg.SessionID == "" || msg.Content == "" {
		writeJSON(conn, gin.H{"type": "error", "message": "session_id and content are required"})
		return
	}

	writeJSON(conn, gin.H{"type": "processing"})

	session, err := h.conversation.GetSession(ctx, user.TenantID, msg.SessionID)
	if err != nil {
		writeJSON(conn, gin.H{"type": "error", "message": "session not found"})
		return
	}

	userMsg := &types.Message{SessionID: session.ID, RequestID: uuid.New().String(), Content: msg.Content, Role: "user", IsCompleted: true}
	if _, err := h.conversation.AppendMessage(ctx, userMsg); err != nil {
		writeJSON(conn, gin.H{"type": "error", "message": "failed to persist message"})
		return
	}

	sc := &types.SearchContext{
		RequestID:    uuid.New().String(),
		TenantID:     user.TenantID,
		SessionID:    session.ID,
		CollectionID: session.KnowledgeBaseID,
		Query:        msg.Content,
	}
	if err := h.orchestrator.Run(ctx, sc); err != nil {
		writeJSON(conn, gin.H{"type": "error", "message": "pipeline failed: " + err.Error()})
		return
	}

	assistantMsg := &types.Message{SessionID: session.ID, RequestID: sc.RequestID, Role: "assistant", IsCompleted: true}
	if sc.Answer != nil {
		assistantMsg.Content = sc.Answer.Answer
	}
	if _, err := h.conversation.AppendMessage(ctx, assistantMsg); err != nil {
		logger.GetLogger(ctx).Warnf("failed to persist assistant message: %v", err)
	}

	sources := make([]string, 0)
	if sc.Answer != nil {
		for _, c := range sc.Answer.Citations {
			sources = append(sources, c.DocumentID)
		}
	}
	writeJSON(conn, gin.H{
		"type":        "ai_response",
		"session_id":  session.ID,
		"message_id":  assistantMsg.ID,
		"content":     assistantMsg.Content,
		"sources":     sources,
		"token_count": sc.TokenUsage.TotalTokens,
		"timestamp":   time.Now().Unix(),
	})
}

func writeJSON(conn *websocket.Conn, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

