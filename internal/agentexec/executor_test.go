package agentexec

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAgent struct {
	cfg AgentConfig
	run func(ctx context.Context, agentCtx Context) (Output, error)
}

func (a *fakeAgent) Config() AgentConfig { return a.cfg }

func (a *fakeAgent) Run(ctx context.Context, agentCtx Context) (Output, error) {
	return a.run(ctx, agentCtx)
}

type fakeRegistry struct {
	byStage map[Stage][]Agent
}

func (r *fakeRegistry) AgentsFor(collectionID string, stage Stage) []Agent {
	return r.byStage[stage]
}

func TestExecutePreSearchThreadsRewrittenQueryThroughAgentsByPriority(t *testing.T) {
	var order []string
	first := &fakeAgent{
		cfg: AgentConfig{ID: "first", Stage: StagePreSearch, Priority: 2, Enabled: true},
		run: func(ctx context.Context, agentCtx Context) (Output, error) {
			order = append(order, "first:"+agentCtx.Query)
			return Output{RewrittenQuery: agentCtx.Query + " +first"}, nil
		},
	}
	second := &fakeAgent{
		cfg: AgentConfig{ID: "second", Stage: StagePreSearch, Priority: 1, Enabled: true},
		run: func(ctx context.Context, agentCtx Context) (Output, error) {
			order = append(order, "second:"+agentCtx.Query)
			return Output{RewrittenQuery: agentCtx.Query + " +second"}, nil
		},
	}
	registry := &fakeRegistry{byStage: map[Stage][]Agent{StagePreSearch: {first, second}}}
	exec := NewExecutor(registry, nil)

	final, summary := exec.ExecutePreSearch(context.Background(), "col-1", "original query")
	if final != "original query +second +first" {
		t.Fatalf("final query = %q, want priority-ordered chaining", final)
	}
	if len(order) != 2 || order[0] != "second:original query" {
		t.Fatalf("call order = %v, want lower-priority agent (second) to run first", order)
	}
	if summary.Successful != 2 {
		t.Errorf("Successful = %d, want 2", summary.Successful)
	}
}

func TestExecutePreSearchSkipsDisabledAgents(t *testing.T) {
	disabled := &fakeAgent{
		cfg: AgentConfig{ID: "disabled", Stage: StagePreSearch, Enabled: false},
		run: func(ctx context.Context, agentCtx Context) (Output, error) {
			t.Fatal("disabled agent must not run")
			return Output{}, nil
		},
	}
	registry := &fakeRegistry{byStage: map[Stage][]Agent{StagePreSearch: {disabled}}}
	exec := NewExecutor(registry, nil)

	_, summary := exec.ExecutePreSearch(context.Background(), "col-1", "q")
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
}

func TestExecutePostSearchThreadsChunksAndRecordsFailure(t *testing.T) {
	failing := &fakeAgent{
		cfg: AgentConfig{ID: "bad", Stage: StagePostSearch, Priority: 1, Enabled: true},
		run: func(ctx context.Context, agentCtx Context) (Output, error) {
			return Output{}, errors.New("tool exploded")
		},
	}
	registry := &fakeRegistry{byStage: map[Stage][]Agent{StagePostSearch: {failing}}}
	exec := NewExecutor(registry, nil)

	chunks, summary := exec.ExecutePostSearch(context.Background(), "col-1", nil)
	if chunks != nil {
		t.Errorf("chunks = %v, want unchanged (nil) since the only agent failed", chunks)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
}

func TestExecutorRunOneTimesOut(t *testing.T) {
	slow := &fakeAgent{
		cfg: AgentConfig{ID: "slow", Stage: StagePreSearch, Enabled: true, Timeout: 5 * time.Millisecond},
		run: func(ctx context.Context, agentCtx Context) (Output, error) {
			<-ctx.Done()
			return Output{}, ctx.Err()
		},
	}
	registry := &fakeRegistry{byStage: map[Stage][]Agent{StagePreSearch: {slow}}}
	exec := NewExecutor(registry, nil)

	_, summary := exec.ExecutePreSearch(context.Background(), "col-1", "q")
	if summary.Failed != 1 {
		t.Fatalf("Failed = %d, want 1 (timeout counts as failure)", summary.Failed)
	}
	if summary.Results[0].Status != StatusTimeout {
		t.Errorf("Status = %v, want StatusTimeout", summary.Results[0].Status)
	}
}

func TestHasAgentsForCollection(t *testing.T) {
	registry := &fakeRegistry{byStage: map[Stage][]Agent{
		StageResponse: {&fakeAgent{cfg: AgentConfig{ID: "a"}}},
	}}
	exec := NewExecutor(registry, nil)
	if !exec.HasAgentsForCollection("col-1") {
		t.Fatal("expected HasAgentsForCollection to report true when a response agent is configured")
	}

	empty := NewExecutor(&fakeRegistry{byStage: map[Stage][]Agent{}}, nil)
	if empty.HasAgentsForCollection("col-1") {
		t.Fatal("expected HasAgentsForCollection to report false for a collection with no agents")
	}
}
