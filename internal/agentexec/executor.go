// Package agentexec is the Agent Executor: it runs collection-configured agents at
// three pipeline points — pre-search (query enhancement), post-search (result
// enhancement), and response (artifact generation) — with stage-appropriate dispatch:
// pre/post-search agents run sequentially by priority so each can see the previous
// agent's effect, response agents run in parallel since they are independent artifacts.
package agentexec

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/manavgup/ragcore/internal/logger"
	"github.com/manavgup/ragcore/internal/types"
	"github.com/panjf2000/ants/v2"
)

// Stage identifies which point in the pipeline an agent runs at.
type Stage string

const (
	StagePreSearch  Stage = "pre_search"
	StagePostSearch Stage = "post_search"
	StageResponse   Stage = "response"
)

// Status is the terminal outcome of one agent invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
	StatusSkipped Status = "skipped"
)

// AgentConfig describes one configured agent: which collection it applies to, which
// stage it runs at, its priority (lower runs first within a sequential stage), and its
// per-invocation timeout.
type AgentConfig struct {
	ID           string
	CollectionID string
	Name         string
	Stage        Stage
	Priority     int
	Timeout      time.Duration
	Enabled      bool
}

// Context is what an agent receives: the current query/results, and a mutable output
// it may populate (a rewritten query, modified chunks, or a generated artifact).
type Context struct {
	CollectionID string
	Query        string
	Chunks       []types.ScoredChunk
	Metadata     map[string]any
}

// Output is what an agent may contribute back to the pipeline.
type Output struct {
	RewrittenQuery string
	Chunks         []types.ScoredChunk
	Artifact       map[string]any
}

// Agent is the unit of work executed by the registry: a named, stage-scoped function.
type Agent interface {
	Config() AgentConfig
	Run(ctx context.Context, agentCtx Context) (Output, error)
}

// Result records one agent's outcome for the execution summary surfaced to the client.
type Result struct {
	AgentID string
	Stage   Stage
	Status  Status
	Error   string
	Elapsed time.Duration
}

// Summary aggregates results across all stages run for one request.
type Summary struct {
	TotalAgents int
	Successful  int
	Failed      int
	Skipped     int
	Results     []Result
}

func (s *Summary) record(r Result) {
	s.TotalAgents++
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusSuccess:
		s.Successful++
	case StatusFailed, StatusTimeout:
		s.Failed++
	default:
		s.Skipped++
	}
}

// Registry looks up the agents configured for a collection.
type Registry interface {
	AgentsFor(collectionID string, stage Stage) []Agent
}

// Executor runs agents for a collection at a given stage.
type Executor struct {
	registry Registry
	pool     *ants.Pool
}

func NewExecutor(registry Registry, pool *ants.Pool) *Executor {
	return &Executor{registry: registry, pool: pool}
}

// HasAgentsForCollection reports whether any agent is configured for this collection,
// letting a pipeline stage short-circuit cheaply when there's nothing to run.
func (e *Executor) HasAgentsForCollection(collectionID string) bool {
	for _, stage := range []Stage{StagePreSearch, StagePostSearch, StageResponse} {
		if len(e.registry.AgentsFor(collectionID, stage)) > 0 {
			return true
		}
	}
	return false
}

func (e *Executor) runOne(ctx context.Context, agent Agent, agentCtx Context) (Output, Result) {
	cfg := agent.Config()
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan struct {
		out Output
		err error
	}, 1)
	go func() {
		out, err := agent.Run(runCtx, agentCtx)
		done <- struct {
			out Output
			err error
		}{out, err}
	}()

	select {
	case res := <-done:
		elapsed := time.Since(start)
		if res.err != nil {
			logger.GetLogger(ctx).Warnf("agent %s failed: %v", cfg.ID, res.err)
			return Output{}, Result{AgentID: cfg.ID, Stage: cfg.Stage, Status: StatusFailed, Error: res.err.Error(), Elapsed: elapsed}
		}
		return res.out, Result{AgentID: cfg.ID, Stage: cfg.Stage, Status: StatusSuccess, Elapsed: elapsed}
	case <-runCtx.Done():
		return Output{}, Result{AgentID: cfg.ID, Stage: cfg.Stage, Status: StatusTimeout, Error: "agent timed out", Elapsed: timeout}
	}
}

// ExecutePreSearch runs pre-search agents sequentially by priority, threading each
// agent's rewritten query into the next so agents compose.
func (e *Executor) ExecutePreSearch(ctx context.Context, collectionID, query string) (string, Summary) {
	agents := e.registry.AgentsFor(collectionID, StagePreSearch)
	sortByPriority(agents)

	summary := Summary{}
	current := query
	for _, agent := range agents {
		out, err := e.runTracked(ctx, agent, Context{CollectionID: collectionID, Query: current}, &summary)
		if err == nil && out.RewrittenQuery != "" {
			current = out.RewrittenQuery
		}
	}
	return current, summary
}

// ExecutePostSearch runs post-search agents sequentially by priority, threading each
// agent's modified chunk list into the next.
func (e *Executor) ExecutePostSearch(ctx context.Context, collectionID string, chunks []types.ScoredChunk) ([]types.ScoredChunk, Summary) {
	agents := e.registry.AgentsFor(collectionID, StagePostSearch)
	sortByPriority(agents)

	summary := Summary{}
	current := chunks
	for _, agent := range agents {
		out, err := e.runTracked(ctx, agent, Context{CollectionID: collectionID, Chunks: current}, &summary)
		if err == nil && out.Chunks != nil {
			current = out.Chunks
		}
	}
	return current, summary
}

// ExecuteResponse runs response agents in parallel (bounded by the ants pool), since
// each produces an independent artifact and none depends on another's output.
func (e *Executor) ExecuteResponse(ctx context.Context, collectionID string, agentCtx Context) (map[string]map[string]any, Summary) {
	agents := e.registry.AgentsFor(collectionID, StageResponse)

	var mu sync.Mutex
	summary := Summary{}
	artifacts := make(map[string]map[string]any)

	var wg sync.WaitGroup
	for _, agent := range agents {
		agent := agent
		wg.Add(1)
		task := func() {
			defer wg.Done()
			out, result := e.runOne(ctx, agent, agentCtx)
			mu.Lock()
			summary.record(result)
			if result.Status == StatusSuccess && out.Artifact != nil {
				artifacts[agent.Config().ID] = out.Artifact
			}
			mu.Unlock()
		}
		if e.pool != nil {
			if err := e.pool.Submit(task); err != nil {
				go task()
			}
		} else {
			go task()
		}
	}
	wg.Wait()
	return artifacts, summary
}

// runTracked wraps runOne for the sequential stages, additionally honoring
// AgentConfig.Enabled so a disabled agent is recorded as skipped rather than run.
func (e *Executor) runTracked(ctx context.Context, agent Agent, agentCtx Context, summary *Summary) (Output, error) {
	cfg := agent.Config()
	if !cfg.Enabled {
		summary.record(Result{AgentID: cfg.ID, Stage: cfg.Stage, Status: StatusSkipped})
		return Output{}, nil
	}

	out, result := e.runOne(ctx, agent, agentCtx)
	summary.record(result)
	if result.Status != StatusSuccess {
		return Output{}, errors.New(result.Error)
	}
	return out, nil
}

func sortByPriority(agents []Agent) {
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].Config().Priority < agents[j].Config().Priority
	})
}
