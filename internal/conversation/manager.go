package conversation

import (
	"context"
	"strings"

	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/logger"
	"github.com/manavgup/ragcore/internal/tokencount"
	"github.com/manavgup/ragcore/internal/types"
	"gorm.io/gorm"
)

// Manager owns conversation session/message persistence, builds the bounded-context
// prompt window for a turn, and carries entities forward between turns.
type Manager struct {
	db        *gorm.DB
	entities  *EntityExtractor
	maxWindow int // approximate token budget for carried history
}

func NewManager(db *gorm.DB, maxWindowTokens int) *Manager {
	if maxWindowTokens <= 0 {
		maxWindowTokens = 3000
	}
	return &Manager{db: db, entities: NewEntityExtractor(), maxWindow: maxWindowTokens}
}

// CreateSession persists a new conversation session for a tenant.
func (m *Manager) CreateSession(ctx context.Context, session *types.Session) (*types.Session, error) {
	if session.TenantID == 0 {
		return nil, errors.NewValidationError("tenant id is required")
	}
	if err := m.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, errors.NewInternalServerError("create session: " + err.Error())
	}
	return session, nil
}

// GetSession loads a session scoped to a tenant.
func (m *Manager) GetSession(ctx context.Context, tenantID uint, id string) (*types.Session, error) {
	var session types.Session
	err := m.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&session).Error
	if err != nil {
		return nil, errors.NewNotFoundError("session not found: " + id)
	}
	return &session, nil
}

// AppendMessage records a turn (user or assistant) in a session.
func (m *Manager) AppendMessage(ctx context.Context, msg *types.Message) (*types.Message, error) {
	if err := m.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, errors.NewInternalServerError("append message: " + err.Error())
	}
	return msg, nil
}

// RecentMessages returns the last n messages of a session, oldest first.
func (m *Manager) RecentMessages(ctx context.Context, sessionID string, n int) ([]types.Message, error) {
	var msgs []types.Message
	err := m.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(n).
		Find(&msgs).Error
	if err != nil {
		return nil, errors.NewInternalServerError("load messages: " + err.Error())
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// BuildContextWindow trims a session's recent messages to fit within the manager's
// token budget, dropping the oldest turns first, and extracts carryover entities from
// what remains so a rewritten query can reference "it"/"that" from prior turns.
func (m *Manager) BuildContextWindow(ctx context.Context, sessionID string) ([]types.Message, []string, error) {
	msgs, err := m.RecentMessages(ctx, sessionID, 50)
	if err != nil {
		return nil, nil, err
	}

	var kept []types.Message
	budget := m.maxWindow
	for i := len(msgs) - 1; i >= 0; i-- {
		cost := tokencount.Estimate(msgs[i].Content)
		if cost > budget && len(kept) > 0 {
			break
		}
		kept = append([]types.Message{msgs[i]}, kept...)
		budget -= cost
	}

	var combined strings.Builder
	for _, msg := range kept {
		combined.WriteString(msg.Content)
		combined.WriteString(" ")
	}
	entities := m.entities.Extract(ctx, combined.String(), 10)

	logger.GetLogger(ctx).Debugf("conversation window for session %s: %d/%d messages kept, %d entities carried",
		sessionID, len(kept), len(msgs), len(entities))

	return kept, entities, nil
}
