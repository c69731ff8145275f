package retrieval

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	estypes "github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/logger"
	"github.com/manavgup/ragcore/internal/types"
)

// ElasticsearchKeywordIndex is an alternate KeywordIndex backed by Elasticsearch's BM25
// scoring, for corpora too large for a lazily-rebuilt in-memory matrix. The container
// does not construct it: the wired keyword index is always TFIDFKeywordIndex, whatever
// RetrievalConfig.Backend says.
type ElasticsearchKeywordIndex struct {
	client *elasticsearch.TypedClient
	index  string
}

func NewElasticsearchKeywordIndex(client *elasticsearch.TypedClient, index string) *ElasticsearchKeywordIndex {
	if index == "" {
		index = "ragcore_chunks"
	}
	return &ElasticsearchKeywordIndex{client: client, index: index}
}

type esChunkHit struct {
	ID              string `json:"id"`
	KnowledgeID     string `json:"knowledge_id"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
	Content         string `json:"content"`
}

// Search runs a BM25 match query scoped to the collection and normalizes the returned
// relevance scores into [0,1] by dividing by the top hit's score, so they fuse cleanly
// with the dense retriever's cosine similarities.
func (e *ElasticsearchKeywordIndex) Search(ctx context.Context, collectionID string, query string, topK int) ([]types.ScoredChunk, error) {
	if topK <= 0 {
		topK = 10
	}
	resp, err := e.client.Search().
		Index(e.index).
		Request(&search.Request{
			Size: ptrInt(topK),
			Query: &estypes.Query{
				Bool: &estypes.BoolQuery{
					Must: []estypes.Query{
						{Match: map[string]estypes.MatchQuery{"content": {Query: query}}},
					},
					Filter: []estypes.Query{
						{Term: map[string]estypes.TermQuery{"knowledge_base_id": {Value: collectionID}}},
					},
				},
			},
		}).
		Do(ctx)
	if err != nil {
		logger.GetLogger(ctx).Errorf("elasticsearch keyword search: %v", err)
		return nil, errors.NewRetrievalError(fmt.Sprintf("elasticsearch search: %v", err))
	}

	var maxScore float64
	if resp.Hits.MaxScore != nil {
		maxScore = float64(*resp.Hits.MaxScore)
	}
	if maxScore == 0 {
		maxScore = 1
	}

	out := make([]types.ScoredChunk, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var src esChunkHit
		if len(hit.Source_) > 0 {
			if err := json.Unmarshal(hit.Source_, &src); err != nil {
				continue
			}
		}
		var score float64
		if hit.Score_ != nil {
			score = float64(*hit.Score_) / maxScore
		}
		out = append(out, types.ScoredChunk{
			Chunk: types.Chunk{
				ID:              src.ID,
				KnowledgeID:     src.KnowledgeID,
				KnowledgeBaseID: src.KnowledgeBaseID,
				Content:         src.Content,
			},
			KeywordScore: score,
		})
	}
	return out, nil
}

func ptrInt(i int) *int { return &i }
