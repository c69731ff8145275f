package tokentracker

import (
	"context"
	"testing"

	"github.com/manavgup/ragcore/internal/types"
)

type fixedLimits struct {
	window int
	ok     bool
}

func (f fixedLimits) ContextWindow(ctx context.Context, modelName string) (int, bool) {
	return f.window, f.ok
}

func TestTrackerCheckUsageWarningBelowThreshold(t *testing.T) {
	tr := NewTracker(nil, fixedLimits{window: 1000, ok: true})
	warning := tr.CheckUsageWarning(context.Background(), "gpt-4", types.TokenUsage{TotalTokens: 500})
	if warning != nil {
		t.Fatalf("warning = %+v, want nil below the 70%% threshold", warning)
	}
}

func TestTrackerCheckUsageWarningLevels(t *testing.T) {
	tr := NewTracker(nil, fixedLimits{window: 1000, ok: true})
	cases := []struct {
		tokens   int
		wantNil  bool
		severity types.TokenWarningSeverity
	}{
		{tokens: 650, wantNil: true},
		{tokens: 720, severity: types.SeverityInfo},
		{tokens: 870, severity: types.SeverityWarning},
		{tokens: 960, severity: types.SeverityCritical},
	}
	for _, c := range cases {
		warning := tr.CheckUsageWarning(context.Background(), "gpt-4", types.TokenUsage{TotalTokens: c.tokens})
		if c.wantNil {
			if warning != nil {
				t.Errorf("tokens=%d: warning = %+v, want nil", c.tokens, warning)
			}
			continue
		}
		if warning == nil {
			t.Fatalf("tokens=%d: warning = nil, want severity %v", c.tokens, c.severity)
		}
		if warning.Severity != c.severity {
			t.Errorf("tokens=%d: Severity = %v, want %v", c.tokens, warning.Severity, c.severity)
		}
	}
}

func TestTrackerCheckUsageWarningFallsBackToDefaultLimit(t *testing.T) {
	tr := NewTracker(nil, fixedLimits{ok: false})
	warning := tr.CheckUsageWarning(context.Background(), "unknown-model", types.TokenUsage{TotalTokens: defaultContextLimit})
	if warning == nil {
		t.Fatal("expected a warning once usage reaches the default context limit")
	}
}

func TestTrackerCheckConversationWarningOverThreshold(t *testing.T) {
	tr := NewTracker(nil, fixedLimits{window: 1000, ok: true})
	history := []types.TokenUsage{
		{PromptTokens: 200}, {PromptTokens: 200}, {PromptTokens: 200}, {PromptTokens: 200}, {PromptTokens: 200},
	}
	warning := tr.CheckConversationWarning(context.Background(), "gpt-4", history)
	if warning == nil {
		t.Fatal("expected a conversation-too-long warning at 100% of context window")
	}
	if warning.Level != types.TokenWarningConvoLong {
		t.Errorf("Level = %v, want TokenWarningConvoLong", warning.Level)
	}
}

func TestTrackerCheckConversationWarningUnderThreshold(t *testing.T) {
	tr := NewTracker(nil, fixedLimits{window: 1000, ok: true})
	history := []types.TokenUsage{{PromptTokens: 100}, {PromptTokens: 100}}
	warning := tr.CheckConversationWarning(context.Background(), "gpt-4", history)
	if warning != nil {
		t.Fatalf("warning = %+v, want nil below 80%% of context window", warning)
	}
}

func TestTrackerCheckConversationWarningOnlyConsidersRecentWindow(t *testing.T) {
	tr := NewTracker(nil, fixedLimits{window: 1000, ok: true})
	history := make([]types.TokenUsage, 0, 20)
	for i := 0; i < 15; i++ {
		history = append(history, types.TokenUsage{PromptTokens: 500})
	}
	for i := 0; i < 5; i++ {
		history = append(history, types.TokenUsage{PromptTokens: 10})
	}
	warning := tr.CheckConversationWarning(context.Background(), "gpt-4", history)
	if warning != nil {
		t.Fatalf("warning = %+v, want nil since only the last 5 (low-usage) turns count", warning)
	}
}
