package container

import (
	"context"
	"strings"

	"go.uber.org/dig"
	"gorm.io/gorm"

	"github.com/manavgup/ragcore/internal/agentexec"
	"github.com/manavgup/ragcore/internal/config"
	"github.com/manavgup/ragcore/internal/conversation"
	"github.com/manavgup/ragcore/internal/cot"
	"github.com/manavgup/ragcore/internal/handler"
	"github.com/manavgup/ragcore/internal/logstore"
	"github.com/manavgup/ragcore/internal/mcpgateway"
	"github.com/manavgup/ragcore/internal/models/embedding"
	"github.com/manavgup/ragcore/internal/pipeline"
	"github.com/manavgup/ragcore/internal/repository"
	"github.com/manavgup/ragcore/internal/retrieval"
	"github.com/manavgup/ragcore/internal/tokentracker"
	"github.com/manavgup/ragcore/internal/types"
	"github.com/manavgup/ragcore/internal/types/interfaces"
	"github.com/manavgup/ragcore/internal/validation"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// buildRAGContainer wires the query-time pipeline on top of the teacher's existing
// infrastructure: its gorm DB connection, ants pool, and ModelService are all reused
// rather than duplicated, so a pipeline resolves chat/embedding providers exactly the
// way the rest of the application does.
func buildRAGContainer(container *dig.Container) *dig.Container {
	must(container.Provide(repository.NewCollectionRepository))
	must(container.Provide(repository.NewPipelineRepository, dig.As(new(pipeline.PipelineResolver))))
	must(container.Provide(repository.NewAgentRegistry, dig.As(new(agentexec.Registry))))

	must(container.Provide(newRAGEmbedder))
	must(container.Provide(retrieval.NewPgVectorStore, dig.As(new(retrieval.VectorStore))))
	must(container.Provide(newKeywordIndex))
	must(container.Provide(newRetriever))

	must(container.Provide(validation.NewAttributionService))
	must(container.Provide(newValidator))

	must(container.Provide(newMCPGatewayClient))
	must(container.Provide(newAgentExecutor))

	must(container.Provide(tokentracker.NewStaticModelLimits, dig.As(new(tokentracker.ModelLimits))))
	must(container.Provide(tokentracker.NewTracker))

	must(container.Provide(newCoTDecomposer, dig.As(new(cot.Decomposer))))
	must(container.Provide(newCoTEngine))
	must(container.Provide(newCoTSynthesizer))

	must(container.Provide(newLogStore))
	must(container.Invoke(registerLogStoreHook))

	must(container.Provide(newConversationManager))

	must(container.Provide(newResolveStage))
	must(container.Provide(newQueryEnhanceStage))
	must(container.Provide(newPreSearchAgentStage))
	must(container.Provide(newRetrieveStage))
	must(container.Provide(newPostSearchAgentStage))
	must(container.Provide(newGenerateStage))
	must(container.Provide(newResponseAgentStage))
	must(container.Provide(newOrchestrator))

	must(container.Provide(handler.NewSearchHandler))
	must(container.Provide(handler.NewChatWSHandler))
	must(container.Provide(handler.NewAdminLogsHandler))
	must(container.Provide(handler.NewTokenUsageHandler))

	return container
}

func newRAGEmbedder(cfg *config.Config, models interfaces.ModelService) (embedding.Embedder, error) {
	return models.GetEmbeddingModel(context.Background(), cfg.RAG.Retrieval.EmbeddingModelID)
}

func newKeywordIndex(db *gorm.DB) retrieval.KeywordIndex {
	return retrieval.NewTFIDFKeywordIndex(db, retrieval.NewSegmenterTokenizer())
}

func newRetriever(vectors retrieval.VectorStore, keywords retrieval.KeywordIndex, embedder embedding.Embedder, cfg *config.Config) *retrieval.Retriever {
	return retrieval.NewRetriever(vectors, keywords, embedder, cfg.RAG.Retrieval.VectorWeight)
}

func newValidator(cfg *config.Config, attribution *validation.AttributionService) *validation.Validator {
	v := validation.NewValidator(attribution)
	if cfg.RAG.Validation.MaxRetries > 0 {
		v.MaxRetries = cfg.RAG.Validation.MaxRetries
	}
	v.MinConfidence = cfg.RAG.Validation.MinConfidence
	v.RequireCitations = cfg.RAG.Validation.RequireCitations
	return v
}

func newMCPGatewayClient(cfg *config.Config) *mcpgateway.Client {
	return mcpgateway.NewClient(mcpgateway.Config{
		BaseURL:          cfg.RAG.MCPGateway.BaseURL,
		PerToolTimeout:   cfg.RAG.MCPGateway.PerToolTimeout,
		AggregateTimeout: cfg.RAG.MCPGateway.AggregateTimeout,
		FailureThreshold: cfg.RAG.MCPGateway.FailureThreshold,
		RecoveryTimeout:  cfg.RAG.MCPGateway.RecoveryTimeout,
	})
}

func newAgentExecutor(registry agentexec.Registry, pool *ants.Pool) *agentexec.Executor {
	return agentexec.NewExecutor(registry, pool)
}

func newCoTDecomposer(models interfaces.ModelService, cfg *config.Config) *cot.LLMDecomposer {
	return cot.NewLLMDecomposer(models, cfg.RAG.CoT.ModelID)
}

func newCoTEngine(decomposer *cot.LLMDecomposer, cfg *config.Config) *cot.Engine {
	engine := cot.NewEngine(decomposer, nil)
	if cfg.RAG.CoT.MaxSubQuestions > 0 {
		engine.MaxSubQuestions = cfg.RAG.CoT.MaxSubQuestions
	}
	return engine
}

func newCoTSynthesizer(models interfaces.ModelService, cfg *config.Config, attribution *validation.AttributionService) *cot.LLMSynthesizer {
	return cot.NewLLMSynthesizer(models, cfg.RAG.CoT.ModelID, attribution)
}

func newLogStore(cfg *config.Config) *logstore.Store {
	capacity := cfg.RAG.LogStore.Capacity
	if capacity <= 0 {
		capacity = 1000
	}
	return logstore.NewStore(capacity)
}

// registerLogStoreHook plugs the pipeline's log ring buffer into the application's
// existing logrus output, so every log line already emitted through logger.GetLogger
// is also retained for the admin tail/stream endpoints without duplicating call sites.
func registerLogStoreHook(store *logstore.Store) {
	logrus.AddHook(logstore.NewHook(store))
}

func newConversationManager(db *gorm.DB, cfg *config.Config) *conversation.Manager {
	maxWindowTokens := cfg.RAG.Conversation.MaxWindowTokens
	if maxWindowTokens <= 0 {
		maxWindowTokens = 4000
	}
	return conversation.NewManager(db, maxWindowTokens)
}

func newResolveStage(resolver pipeline.PipelineResolver) *pipeline.ResolveStage {
	return &pipeline.ResolveStage{Resolver: resolver}
}

// newQueryEnhanceStage rewrites a chat turn's query with entities carried over from
// earlier turns in the same session, so a follow-up like "what about its pricing?"
// resolves against the conversation rather than the bare three words. Requests with no
// SessionID (the plain /search endpoint) pass through unchanged.
func newQueryEnhanceStage(convMgr *conversation.Manager) *pipeline.QueryEnhanceStage {
	return &pipeline.QueryEnhanceStage{
		Enhance: func(ctx context.Context, sc *types.SearchContext) (string, error) {
			if sc.SessionID == "" {
				return "", nil
			}
			_, entities, err := convMgr.BuildContextWindow(ctx, sc.SessionID)
			if err != nil || len(entities) == 0 {
				return "", err
			}
			query := sc.Query
			lowerQuery := strings.ToLower(query)
			for _, e := range entities {
				if !strings.Contains(lowerQuery, strings.ToLower(e)) {
					query = query + " " + e
				}
			}
			return query, nil
		},
	}
}

func newPreSearchAgentStage(executor *agentexec.Executor) *pipeline.PreSearchAgentStage {
	return &pipeline.PreSearchAgentStage{Executor: executor}
}

func newRetrieveStage(retriever *retrieval.Retriever, engine *cot.Engine, collections *repository.CollectionRepository) *pipeline.RetrieveStage {
	return &pipeline.RetrieveStage{Retriever: retriever, CoT: engine, Collections: collections}
}

func newPostSearchAgentStage(executor *agentexec.Executor) *pipeline.PostSearchAgentStage {
	return &pipeline.PostSearchAgentStage{Executor: executor}
}

func newGenerateStage(
	models interfaces.ModelService,
	validator *validation.Validator,
	engine *cot.Engine,
	tracker *tokentracker.Tracker,
	synth *cot.LLMSynthesizer,
) *pipeline.GenerateStage {
	return &pipeline.GenerateStage{
		Models:     models,
		Validator:  validator,
		CoT:        engine,
		Tracker:    tracker,
		Synthesize: synth.Synthesize,
	}
}

func newResponseAgentStage(executor *agentexec.Executor) *pipeline.ResponseAgentStage {
	return &pipeline.ResponseAgentStage{Executor: executor}
}

// newOrchestrator assembles the seven pipeline stages in their required order. dig
// resolves each concrete stage type individually since pipeline.Stage is an interface
// with several distinct implementations rather than one injectable type.
func newOrchestrator(
	resolve *pipeline.ResolveStage,
	enhance *pipeline.QueryEnhanceStage,
	preSearch *pipeline.PreSearchAgentStage,
	retrieve *pipeline.RetrieveStage,
	postSearch *pipeline.PostSearchAgentStage,
	generate *pipeline.GenerateStage,
	response *pipeline.ResponseAgentStage,
) *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(resolve, enhance, preSearch, retrieve, postSearch, generate, response)
}
