package types

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Collection is a tenant-scoped set of chunks that a pipeline retrieves against.
// It stands in for the ingestion-owned knowledge base: the query-time core only
// needs to know a collection exists, is ready, and carries an index version that
// the keyword engine uses to decide whether its cached TF-IDF matrix is stale.
type Collection struct {
	ID           string `json:"id" gorm:"type:varchar(36);primaryKey"`
	TenantID     uint   `json:"tenant_id" gorm:"index"`
	Name         string `json:"name"`
	Status       string `json:"status" gorm:"type:varchar(20);default:'ready'"`
	IndexVersion int64  `json:"index_version"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// IsReady reports whether the collection can be queried.
func (c *Collection) IsReady() bool {
	return c.Status == "ready"
}

// ChunkEmbedding stores the dense vector alongside its chunk for pgvector similarity search.
type ChunkEmbedding struct {
	ChunkID      string          `json:"chunk_id" gorm:"type:varchar(36);primaryKey"`
	CollectionID string          `json:"collection_id" gorm:"index"`
	Embedding    pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
}

// Pipeline configures how a SearchRequest is executed: which provider to use,
// generation parameters, and the knobs for hybrid retrieval, validation, and CoT.
type Pipeline struct {
	ID       string `json:"id" gorm:"type:varchar(36);primaryKey"`
	TenantID uint   `json:"tenant_id" gorm:"index"`
	Name     string `json:"name"`
	IsDefault bool  `json:"is_default"`

	ChatModelID      string      `json:"chat_model_id"`
	EmbeddingModelID string      `json:"embedding_model_id"`
	ModelName        string      `json:"model_name"` // cached label, used for token-limit lookups
	Temperature      float64     `json:"temperature"`
	MaxTokens        int         `json:"max_tokens"`

	VectorWeight     float64 `json:"vector_weight"` // w in score = w*vector + (1-w)*keyword
	TopK             int     `json:"top_k"`
	EnableCoT        bool    `json:"enable_cot"`
	RequireCitations bool    `json:"require_citations"`
	MaxRetries       int     `json:"max_retries"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

func (p *Pipeline) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// ScoredChunk is a retrieval hit with its fused hybrid score and the component scores it was built from.
type ScoredChunk struct {
	Chunk         Chunk   `json:"chunk"`
	VectorScore   float64 `json:"vector_score"`
	KeywordScore  float64 `json:"keyword_score"`
	FusedScore    float64 `json:"fused_score"`
}

// QueryResult is the hybrid retriever's output for one query against one collection.
type QueryResult struct {
	Query  string        `json:"query"`
	Chunks []ScoredChunk `json:"chunks"`
}

// Citation attributes a span of a StructuredAnswer to a source chunk.
type Citation struct {
	DocumentID     string  `json:"document_id"`
	ChunkID        string  `json:"chunk_id"`
	Title          string  `json:"title"`
	Excerpt        string  `json:"excerpt"`
	PageNumber     int     `json:"page_number,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}

// ReasoningStep is one step of a chain-of-thought decomposition.
type ReasoningStep struct {
	Thought    string `json:"thought"`
	Conclusion string `json:"conclusion"`
}

// StructuredAnswer is the validated, citation-backed output of the generation stage.
type StructuredAnswer struct {
	Answer         string          `json:"answer"`
	Confidence     float64         `json:"confidence"`
	Citations      []Citation      `json:"citations"`
	ReasoningSteps []ReasoningStep `json:"reasoning_steps,omitempty"`
	QualityScore   float64         `json:"quality_score"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
}

// SearchContext carries the query, resolved pipeline, and accumulated retrieval/generation
// state through every stage of the orchestrator. Stages read and append to it; none of them
// own the whole request.
type SearchContext struct {
	RequestID    string
	TenantID     uint
	SessionID    string
	CollectionID string
	PipelineID   string
	Query        string
	RewrittenQuery string
	Pipeline     *Pipeline

	SubQuestions []string
	QueryResults []QueryResult
	MergedChunks []ScoredChunk

	Answer *StructuredAnswer

	TokenUsage TokenUsage

	History []History
}

// TokenUsage accumulates prompt/completion token counts across a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *TokenUsage) Add(prompt, completion int) {
	u.PromptTokens += prompt
	u.CompletionTokens += completion
	u.TotalTokens += prompt + completion
}

// TokenWarningLevel classifies how close a session is to its context-window limit.
type TokenWarningLevel string

const (
	TokenWarningApproaching TokenWarningLevel = "approaching_limit"
	TokenWarningAtLimit     TokenWarningLevel = "at_limit"
	TokenWarningConvoLong   TokenWarningLevel = "conversation_too_long"
)

// TokenWarningSeverity mirrors the escalating severities the tracker emits.
type TokenWarningSeverity string

const (
	SeverityInfo     TokenWarningSeverity = "info"
	SeverityWarning  TokenWarningSeverity = "warning"
	SeverityCritical TokenWarningSeverity = "critical"
)

// TokenWarning is a persisted record of a threshold crossing, surfaced to the client
// and retained for the per-user usage-stats endpoint.
type TokenWarning struct {
	ID             string                `json:"id" gorm:"type:varchar(36);primaryKey"`
	TenantID       uint                  `json:"tenant_id" gorm:"index"`
	SessionID      string                `json:"session_id" gorm:"index"`
	Level          TokenWarningLevel     `json:"level"`
	Severity       TokenWarningSeverity  `json:"severity"`
	Message        string                `json:"message"`
	UsagePercent   float64               `json:"usage_percent"`
	Acknowledged   bool                  `json:"acknowledged"`
	CreatedAt      time.Time             `json:"created_at"`
}

func (w *TokenWarning) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

// LogEntry is one line in the ring-buffered log store, fanned out to admin subscribers.
type LogEntry struct {
	Seq       uint64            `json:"seq"`
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// StringMap is a JSON-backed map column, mirroring the StringArray convention above.
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, m)
}
