package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/manavgup/ragcore/internal/types"
)

type recordingStage struct {
	name     string
	fatal    bool
	failWith error
	calls    *[]string
}

func (s *recordingStage) Name() string { return s.name }

func (s *recordingStage) Run(ctx context.Context, sc *types.SearchContext, next func() error) error {
	*s.calls = append(*s.calls, s.name)
	if s.failWith != nil {
		return &StageError{Stage: s.name, Err: s.failWith, Fatal: s.fatal}
	}
	return next()
}

func TestOrchestratorRunsStagesInOrder(t *testing.T) {
	var calls []string
	o := NewOrchestrator(
		&recordingStage{name: "a", calls: &calls},
		&recordingStage{name: "b", calls: &calls},
		&recordingStage{name: "c", calls: &calls},
	)

	if err := o.Run(context.Background(), &types.SearchContext{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestOrchestratorStopsOnFatalError(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	o := NewOrchestrator(
		&recordingStage{name: "a", calls: &calls},
		&recordingStage{name: "b", calls: &calls, failWith: boom, fatal: true},
		&recordingStage{name: "c", calls: &calls},
	)

	err := o.Run(context.Background(), &types.SearchContext{})
	if err == nil {
		t.Fatal("expected a fatal error")
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want stage c never to run", calls)
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("error = %v, want *StageError", err)
	}
	if stageErr.Stage != "b" {
		t.Errorf("StageError.Stage = %q, want %q", stageErr.Stage, "b")
	}
}

// A stage that never calls next() halts the chain regardless of its StageError's
// Fatal flag — Fatal only tells the caller how to treat the error, it doesn't change
// chain continuation. A genuinely best-effort stage must call next() itself after
// swallowing its own error, as QueryEnhanceStage and the agent stages do.
func TestOrchestratorNonFatalErrorStillHaltsChainIfNextNotCalled(t *testing.T) {
	var calls []string
	o := NewOrchestrator(
		&recordingStage{name: "a", calls: &calls, failWith: errors.New("ignored"), fatal: false},
		&recordingStage{name: "b", calls: &calls},
	)

	err := o.Run(context.Background(), &types.SearchContext{})
	if err == nil {
		t.Fatal("expected the stage's error to surface to the caller")
	}
	if len(calls) != 1 {
		t.Fatalf("calls = %v, want only stage a to run since it never called next()", calls)
	}
}
