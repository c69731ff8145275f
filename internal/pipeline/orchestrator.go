// Package pipeline is the Pipeline Orchestrator: it runs a SearchRequest through seven
// ordered stages — resolve pipeline, enhance query, pre-search agents, retrieve (with
// chain-of-thought decomposition when triggered), post-search agents, generate (which
// also validates the answer and synthesizes chain-of-thought sub-answers), and response
// agents — using the same onion-chain middleware pattern as the teacher's
// chat pipeline, generalized from a fixed plugin-per-event registry to an ordered list
// of named stages, each able to mark itself required or best-effort.
package pipeline

import (
	"context"

	"github.com/manavgup/ragcore/internal/logger"
	"github.com/manavgup/ragcore/internal/types"
)

// StageError carries a stage's failure; Fatal marks a required stage's failure. The
// orchestrator does not read Fatal: a stage continues the chain only by calling next.
type StageError struct {
	Stage    string
	Err      error
	Fatal    bool
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Stage + ": failed"
	}
	return e.Stage + ": " + e.Err.Error()
}

// Stage is one step of the orchestrator. Required stages return a fatal StageError to
// abort; best-effort stages should instead log and return nil, leaving the context
// unchanged, matching the teacher's "log but don't fail the pipeline" convention for
// agent/enrichment stages.
type Stage interface {
	Name() string
	Run(ctx context.Context, sc *types.SearchContext, next func() error) error
}

// Orchestrator runs an ordered chain of stages over a SearchContext, building the
// handler chain once at startup (same onion-chain technique as the teacher's
// EventManager.buildHandler) rather than re-resolving it on every request.
type Orchestrator struct {
	stages  []Stage
	handler func(ctx context.Context, sc *types.SearchContext) error
}

func NewOrchestrator(stages ...Stage) *Orchestrator {
	o := &Orchestrator{stages: stages}
	o.handler = o.buildHandler(stages)
	return o
}

func (o *Orchestrator) buildHandler(stages []Stage) func(ctx context.Context, sc *types.SearchContext) error {
	next := func(context.Context, *types.SearchContext) error { return nil }
	for i := len(stages) - 1; i >= 0; i-- {
		stage := stages[i]
		prevNext := next
		next = func(ctx context.Context, sc *types.SearchContext) error {
			err := stage.Run(ctx, sc, func() error { return prevNext(ctx, sc) })
			if err != nil {
				logger.GetLogger(ctx).Warnf("pipeline stage %q returned: %v", stage.Name(), err)
			}
			return err
		}
	}
	return next
}

// Run executes the full stage chain against sc, returning the first error any stage returns.
func (o *Orchestrator) Run(ctx context.Context, sc *types.SearchContext) error {
	return o.handler(ctx, sc)
}
