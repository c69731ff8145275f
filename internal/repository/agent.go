package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/manavgup/ragcore/internal/agentexec"
	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/mcpgateway"
	"github.com/manavgup/ragcore/internal/types"
)

// AgentRecord is the persisted form of an agentexec.AgentConfig plus the MCP tool and
// argument mapping it wraps, stored so agents can be configured per-collection without
// a redeploy.
type AgentRecord struct {
	ID           string `gorm:"type:varchar(36);primaryKey"`
	CollectionID string `gorm:"index"`
	Name         string
	Stage        string
	Priority     int
	TimeoutMS    int
	Enabled      bool
	MCPTool      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r *AgentRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// AgentRegistry implements agentexec.Registry by loading AgentRecord rows for a
// collection and adapting each into an agentexec.MCPAgent that calls the record's
// configured MCP tool, passing the agent's query/chunks through as tool arguments and
// folding the tool's text content back into the stage-appropriate Output field.
type AgentRegistry struct {
	db     *gorm.DB
	client *mcpgateway.Client
}

func NewAgentRegistry(db *gorm.DB, client *mcpgateway.Client) *AgentRegistry {
	return &AgentRegistry{db: db, client: client}
}

func (r *AgentRegistry) AgentsFor(collectionID string, stage agentexec.Stage) []agentexec.Agent {
	var records []AgentRecord
	if err := r.db.WithContext(context.Background()).
		Where("collection_id = ? AND stage = ?", collectionID, string(stage)).
		Find(&records).Error; err != nil {
		return nil
	}

	agents := make([]agentexec.Agent, 0, len(records))
	for _, rec := range records {
		rec := rec
		cfg := agentexec.AgentConfig{
			ID:           rec.ID,
			CollectionID: rec.CollectionID,
			Name:         rec.Name,
			Stage:        stage,
			Priority:     rec.Priority,
			Timeout:      time.Duration(rec.TimeoutMS) * time.Millisecond,
			Enabled:      rec.Enabled,
		}
		agents = append(agents, agentexec.NewMCPAgent(cfg, r.client, rec.MCPTool, toolArgsFor(stage), outputFor))
	}
	return agents
}

func toolArgsFor(stage agentexec.Stage) func(agentexec.Context) map[string]any {
	return func(ac agentexec.Context) map[string]any {
		args := map[string]any{"collection_id": ac.CollectionID}
		switch stage {
		case agentexec.StagePreSearch:
			args["query"] = ac.Query
		case agentexec.StagePostSearch, agentexec.StageResponse:
			args["query"] = ac.Query
			chunkIDs := make([]string, 0, len(ac.Chunks))
			for _, c := range ac.Chunks {
				chunkIDs = append(chunkIDs, c.Chunk.ID)
			}
			args["chunk_ids"] = chunkIDs
		}
		return args
	}
}

func outputFor(stage agentexec.Stage, ac agentexec.Context, payload map[string]any) agentexec.Output {
	switch stage {
	case agentexec.StagePreSearch:
		if rewritten, ok := payload["content_0"].(string); ok {
			return agentexec.Output{RewrittenQuery: rewritten}
		}
		return agentexec.Output{}
	case agentexec.StagePostSearch:
		return agentexec.Output{Chunks: reorderChunks(ac.Chunks, payload["content_0"])}
	case agentexec.StageResponse:
		return agentexec.Output{Artifact: payload}
	default:
		return agentexec.Output{}
	}
}

// reorderChunks re-ranks/filters the chunk list a post-search agent was given according
// to the ranked chunk ID list the tool returned (a JSON array of chunk IDs, in the
// order the agent wants them kept). Chunk IDs the tool didn't mention are dropped;
// an unparsable or empty result leaves the original chunk list untouched.
func reorderChunks(original []types.ScoredChunk, raw any) []types.ScoredChunk {
	text, ok := raw.(string)
	if !ok || text == "" {
		return original
	}
	var rankedIDs []string
	if err := json.Unmarshal([]byte(text), &rankedIDs); err != nil || len(rankedIDs) == 0 {
		return original
	}

	byID := make(map[string]types.ScoredChunk, len(original))
	for _, c := range original {
		byID[c.Chunk.ID] = c
	}
	reordered := make([]types.ScoredChunk, 0, len(rankedIDs))
	for _, id := range rankedIDs {
		if c, ok := byID[id]; ok {
			reordered = append(reordered, c)
		}
	}
	if len(reordered) == 0 {
		return original
	}
	return reordered
}

// Create persists a new agent configuration for a collection.
func (r *AgentRegistry) Create(ctx context.Context, rec *AgentRecord) (*AgentRecord, error) {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, errors.NewInternalServerError("create agent record: " + err.Error())
	}
	return rec, nil
}
