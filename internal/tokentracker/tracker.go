// Package tokentracker monitors per-session token usage against a model's context
// window and raises escalating warnings as a conversation approaches its limit.
package tokentracker

import (
	"context"
	"fmt"

	"github.com/manavgup/ragcore/internal/types"
	"gorm.io/gorm"
)

const (
	thresholdAtLimit     = 0.95
	thresholdApproaching = 0.85
	thresholdInfo        = 0.70
	conversationTooLongFraction = 0.8
	conversationHistoryWindow   = 5
	defaultContextLimit         = 4096
)

// ModelLimits resolves a model's context window, falling back to a conservative
// default when the model isn't registered (matching the teacher's lookup-with-fallback
// pattern for unknown models).
type ModelLimits interface {
	ContextWindow(ctx context.Context, modelName string) (int, bool)
}

// Tracker checks usage against thresholds and persists/reads TokenWarning records.
type Tracker struct {
	db     *gorm.DB
	limits ModelLimits
}

func NewTracker(db *gorm.DB, limits ModelLimits) *Tracker {
	return &Tracker{db: db, limits: limits}
}

func (t *Tracker) contextLimit(ctx context.Context, modelName string) int {
	if t.limits != nil {
		if limit, ok := t.limits.ContextWindow(ctx, modelName); ok {
			return limit
		}
	}
	return defaultContextLimit
}

// CheckUsageWarning classifies current usage against a model's context window,
// returning nil when usage is below the lowest (70%) threshold.
func (t *Tracker) CheckUsageWarning(ctx context.Context, modelName string, usage types.TokenUsage) *types.TokenWarning {
	limit := t.contextLimit(ctx, modelName)
	percent := float64(usage.TotalTokens) / float64(limit)

	switch {
	case percent >= thresholdAtLimit:
		return &types.TokenWarning{
			Level:        types.TokenWarningAtLimit,
			Severity:     types.SeverityCritical,
			Message:      fmt.Sprintf("token usage at %.0f%% of context window; start a new session", percent*100),
			UsagePercent: percent,
		}
	case percent >= thresholdApproaching:
		return &types.TokenWarning{
			Level:        types.TokenWarningApproaching,
			Severity:     types.SeverityWarning,
			Message:      fmt.Sprintf("token usage at %.0f%% of context window; consider a new session", percent*100),
			UsagePercent: percent,
		}
	case percent >= thresholdInfo:
		return &types.TokenWarning{
			Level:        types.TokenWarningApproaching,
			Severity:     types.SeverityInfo,
			Message:      fmt.Sprintf("token usage at %.0f%% of context window", percent*100),
			UsagePercent: percent,
		}
	default:
		return nil
	}
}

// CheckConversationWarning sums the prompt tokens of the last few turns and warns if
// the running total already exceeds 80% of the model's context window, independent of
// the current single-call usage check above.
func (t *Tracker) CheckConversationWarning(ctx context.Context, modelName string, history []types.TokenUsage) *types.TokenWarning {
	limit := t.contextLimit(ctx, modelName)

	window := history
	if len(window) > conversationHistoryWindow {
		window = window[len(window)-conversationHistoryWindow:]
	}
	var sum int
	for _, u := range window {
		sum += u.PromptTokens
	}

	threshold := float64(limit) * conversationTooLongFraction
	if float64(sum) <= threshold {
		return nil
	}

	percent := float64(sum) / float64(limit)
	severity := types.SeverityWarning
	if percent >= thresholdAtLimit {
		severity = types.SeverityCritical
	}
	return &types.TokenWarning{
		Level:        types.TokenWarningConvoLong,
		Severity:     severity,
		Message:      fmt.Sprintf("conversation is accumulating too many tokens (%.0f%% of context window over last %d turns)", percent*100, conversationHistoryWindow),
		UsagePercent: percent,
	}
}

// StoreWarning persists a warning for a session/tenant, used by the pipeline whenever
// CheckUsageWarning/CheckConversationWarning return non-nil.
func (t *Tracker) StoreWarning(ctx context.Context, tenantID uint, sessionID string, warning *types.TokenWarning) error {
	warning.TenantID = tenantID
	warning.SessionID = sessionID
	return t.db.WithContext(ctx).Create(warning).Error
}

// GetSessionWarnings returns warnings recorded for a session, newest first.
func (t *Tracker) GetSessionWarnings(ctx context.Context, sessionID string) ([]types.TokenWarning, error) {
	var warnings []types.TokenWarning
	err := t.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at DESC").Find(&warnings).Error
	return warnings, err
}

// GetUserTokenStats summarizes a tenant's historical warnings by level, supplementing
// the distilled spec with the original system's per-user usage reporting.
type UserTokenStats struct {
	TenantID         uint           `json:"tenant_id"`
	TotalWarnings    int            `json:"total_warnings"`
	WarningsByLevel  map[string]int `json:"warnings_by_level"`
	UnacknowledgedCount int         `json:"unacknowledged_count"`
}

func (t *Tracker) GetUserTokenStats(ctx context.Context, tenantID uint) (*UserTokenStats, error) {
	var warnings []types.TokenWarning
	if err := t.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&warnings).Error; err != nil {
		return nil, err
	}

	stats := &UserTokenStats{TenantID: tenantID, WarningsByLevel: make(map[string]int)}
	for _, w := range warnings {
		stats.TotalWarnings++
		stats.WarningsByLevel[string(w.Level)]++
		if !w.Acknowledged {
			stats.UnacknowledgedCount++
		}
	}
	return stats, nil
}

// AcknowledgeWarning marks a warning as acknowledged by the client.
func (t *Tracker) AcknowledgeWarning(ctx context.Context, warningID string) error {
	return t.db.WithContext(ctx).Model(&types.TokenWarning{}).Where("id = ?", warningID).Update("acknowledged", true).Error
}
