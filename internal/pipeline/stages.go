package pipeline

import (
	"context"
	"fmt"

	"github.com/manavgup/ragcore/internal/agentexec"
	"github.com/manavgup/ragcore/internal/cot"
	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/logger"
	"github.com/manavgup/ragcore/internal/models/chat"
	"github.com/manavgup/ragcore/internal/retrieval"
	"github.com/manavgup/ragcore/internal/tokentracker"
	"github.com/manavgup/ragcore/internal/types"
	"github.com/manavgup/ragcore/internal/validation"
)

// PipelineResolver is required: it loads the Pipeline config a request should use and
// fails the whole request if none can be resolved.
type PipelineResolver interface {
	Resolve(ctx context.Context, tenantID uint, pipelineID string) (*types.Pipeline, error)
}

type ResolveStage struct {
	Resolver PipelineResolver
}

func (s *ResolveStage) Name() string { return "resolve_pipeline" }

func (s *ResolveStage) Run(ctx context.Context, sc *types.SearchContext, next func() error) error {
	p, err := s.Resolver.Resolve(ctx, sc.TenantID, sc.PipelineID)
	if err != nil {
		return &StageError{Stage: s.Name(), Err: err, Fatal: true}
	}
	sc.Pipeline = p
	return next()
}

// QueryEnhanceStage rewrites the query using conversation context (entity carryover,
// coreference-style rewrite). Best-effort: failure just means the original query is used.
type QueryEnhanceStage struct {
	Enhance func(ctx context.Context, sc *types.SearchContext) (string, error)
}

func (s *QueryEnhanceStage) Name() string { return "enhance_query" }

func (s *QueryEnhanceStage) Run(ctx context.Context, sc *types.SearchContext, next func() error) error {
	if s.Enhance != nil {
		rewritten, err := s.Enhance(ctx, sc)
		if err != nil {
			logger.GetLogger(ctx).Warnf("query enhancement failed, using original query: %v", err)
		} else if rewritten != "" {
			sc.RewrittenQuery = rewritten
		}
	}
	return next()
}

// PreSearchAgentStage runs configured pre-search agents; best-effort by design (agent
// misbehavior must not prevent retrieval from running at all).
type PreSearchAgentStage struct {
	Executor *agentexec.Executor
}

func (s *PreSearchAgentStage) Name() string { return "pre_search_agents" }

func (s *PreSearchAgentStage) Run(ctx context.Context, sc *types.SearchContext, next func() error) error {
	if s.Executor != nil && s.Executor.HasAgentsForCollection(sc.CollectionID) {
		query := sc.Query
		if sc.RewrittenQuery != "" {
			query = sc.RewrittenQuery
		}
		rewritten, _ := s.Executor.ExecutePreSearch(ctx, sc.CollectionID, query)
		if rewritten != "" {
			sc.RewrittenQuery = rewritten
		}
	}
	return next()
}

// CollectionChecker guards retrieval against a collection that isn't indexed yet.
type CollectionChecker interface {
	EnsureReady(ctx context.Context, tenantID uint, id string) (*types.Collection, error)
}

// RetrieveStage is required: it is the Hybrid Retriever, optionally decomposing the
// query via Chain-of-Thought before retrieving for each sub-question.
type RetrieveStage struct {
	Retriever   *retrieval.Retriever
	CoT         *cot.Engine
	Collections CollectionChecker
}

func (s *RetrieveStage) Name() string { return "retrieve" }

func (s *RetrieveStage) activeQuery(sc *types.SearchContext) string {
	if sc.RewrittenQuery != "" {
		return sc.RewrittenQuery
	}
	return sc.Query
}

func (s *RetrieveStage) Run(ctx context.Context, sc *types.SearchContext, next func() error) error {
	if s.Collections != nil {
		if _, err := s.Collections.EnsureReady(ctx, sc.TenantID, sc.CollectionID); err != nil {
			return &StageError{Stage: s.Name(), Err: err, Fatal: true}
		}
	}

	query := s.activeQuery(sc)
	topK := sc.Pipeline.TopK
	vectorWeight := sc.Pipeline.VectorWeight

	questions := []string{query}
	if s.CoT != nil && s.CoT.ShouldDecompose(query) {
		subQuestions, err := s.CoT.Decompose.Decompose(ctx, query, s.CoT.MaxSubQuestions)
		if err == nil && len(subQuestions) > 0 {
			questions = subQuestions
			sc.SubQuestions = subQuestions
		}
	}

	for _, q := range questions {
		result, err := s.Retriever.Retrieve(ctx, sc.CollectionID, q, topK, vectorWeight)
		if err != nil {
			return &StageError{Stage: s.Name(), Err: err, Fatal: true}
		}
		sc.QueryResults = append(sc.QueryResults, result)
	}
	sc.MergedChunks = retrieval.MergeResults(sc.QueryResults)
	return next()
}

// PostSearchAgentStage runs configured post-search agents (re-rank, dedupe, enrich);
// best-effort.
type PostSearchAgentStage struct {
	Executor *agentexec.Executor
}

func (s *PostSearchAgentStage) Name() string { return "post_search_agents" }

func (s *PostSearchAgentStage) Run(ctx context.Context, sc *types.SearchContext, next func() error) error {
	if s.Executor != nil && s.Executor.HasAgentsForCollection(sc.CollectionID) {
		modified, _ := s.Executor.ExecutePostSearch(ctx, sc.CollectionID, sc.MergedChunks)
		if modified != nil {
			sc.MergedChunks = modified
		}
	}
	return next()
}

// ChatResolver resolves the concrete chat provider a pipeline names, mirroring the
// teacher's ModelService.GetChatModel so a pipeline can point at any configured model
// without the orchestrator needing to know about providers directly.
type ChatResolver interface {
	GetChatModel(ctx context.Context, modelID string) (chat.Chat, error)
}

// GenerateStage is required: it calls the pipeline's configured chat provider to
// produce a StructuredAnswer candidate and validates/retries it via the Validator,
// optionally synthesizing from Chain-of-Thought sub-answers instead of a single
// completion.
type GenerateStage struct {
	Models     ChatResolver
	Validator  *validation.Validator
	CoT        *cot.Engine
	Tracker    *tokentracker.Tracker
	Synthesize cot.Synthesizer
}

func (s *GenerateStage) Name() string { return "generate" }

func (s *GenerateStage) Run(ctx context.Context, sc *types.SearchContext, next func() error) error {
	chatModel, err := s.Models.GetChatModel(ctx, sc.Pipeline.ChatModelID)
	if err != nil {
		return &StageError{Stage: s.Name(), Err: errors.NewProviderError("resolve chat model: " + err.Error()), Fatal: true}
	}

	generate := func(ctx context.Context) (*types.StructuredAnswer, error) {
		return s.generateOnce(ctx, sc, chatModel)
	}

	var answer *types.StructuredAnswer
	if len(sc.SubQuestions) > 1 && s.CoT != nil && s.Synthesize != nil {
		answer, err = s.generateViaCoT(ctx, sc, chatModel)
	} else {
		answer, err = s.Validator.ValidateWithRetry(ctx, generate, sc.MergedChunks, true)
	}
	if err != nil {
		return &StageError{Stage: s.Name(), Err: err, Fatal: true}
	}
	sc.Answer = answer

	if s.Tracker != nil {
		if warning := s.Tracker.CheckUsageWarning(ctx, sc.Pipeline.ModelName, sc.TokenUsage); warning != nil {
			_ = s.Tracker.StoreWarning(ctx, sc.TenantID, sc.SessionID, warning)
		}
	}
	return next()
}

func (s *GenerateStage) generateOnce(ctx context.Context, sc *types.SearchContext, chatModel chat.Chat) (*types.StructuredAnswer, error) {
	prompt := buildPrompt(sc)
	resp, err := chatModel.Chat(ctx, []chat.Message{
		{Role: "system", Content: "Answer using only the provided context and cite sources."},
		{Role: "user", Content: prompt},
	}, &chat.ChatOptions{Temperature: sc.Pipeline.Temperature, MaxTokens: sc.Pipeline.MaxTokens})
	if err != nil {
		return nil, errors.NewProviderError("chat completion failed: " + err.Error())
	}
	sc.TokenUsage.Add(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return &types.StructuredAnswer{
		Answer:     cot.CleanAnswer(resp.Content),
		Confidence: 0.8,
	}, nil
}

func (s *GenerateStage) generateViaCoT(ctx context.Context, sc *types.SearchContext, chatModel chat.Chat) (*types.StructuredAnswer, error) {
	subAnswers := make([]cot.SubAnswer, 0, len(sc.QueryResults))
	for _, qr := range sc.QueryResults {
		resp, err := chatModel.Chat(ctx, []chat.Message{
			{Role: "system", Content: "Answer the sub-question using only the provided context."},
			{Role: "user", Content: buildSubPrompt(qr)},
		}, nil)
		if err != nil {
			continue
		}
		sc.TokenUsage.Add(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		subAnswers = append(subAnswers, cot.SubAnswer{Question: qr.Query, Answer: resp.Content, Chunks: qr.Chunks})
	}
	return s.Synthesize(ctx, sc.Query, subAnswers)
}

func buildPrompt(sc *types.SearchContext) string {
	prompt := fmt.Sprintf("Question: %s\n\nContext:\n", sc.Query)
	for i, c := range sc.MergedChunks {
		prompt += fmt.Sprintf("[%d] (doc=%s) %s\n", i+1, c.Chunk.KnowledgeID, c.Chunk.Content)
	}
	return prompt
}

func buildSubPrompt(qr types.QueryResult) string {
	prompt := fmt.Sprintf("Question: %s\n\nContext:\n", qr.Query)
	for i, c := range qr.Chunks {
		prompt += fmt.Sprintf("[%d] (doc=%s) %s\n", i+1, c.Chunk.KnowledgeID, c.Chunk.Content)
	}
	return prompt
}

// ResponseAgentStage runs response agents in parallel (podcast synthesis, enrichment
// artifacts); best-effort, never blocks delivery of the answer.
type ResponseAgentStage struct {
	Executor *agentexec.Executor
}

func (s *ResponseAgentStage) Name() string { return "response_agents" }

func (s *ResponseAgentStage) Run(ctx context.Context, sc *types.SearchContext, next func() error) error {
	if s.Executor != nil && s.Executor.HasAgentsForCollection(sc.CollectionID) {
		artifacts, _ := s.Executor.ExecuteResponse(ctx, sc.CollectionID, agentexec.Context{
			CollectionID: sc.CollectionID,
			Query:        sc.Query,
			Chunks:       sc.MergedChunks,
		})
		if sc.Answer != nil && len(artifacts) > 0 {
			if sc.Answer.Metadata == nil {
				sc.Answer.Metadata = make(map[string]any)
			}
			sc.Answer.Metadata["response_agent_artifacts"] = artifacts
		}
	}
	return next()
}
