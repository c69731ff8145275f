package retrieval

import (
	"context"
	"sort"

	"github.com/manavgup/ragcore/internal/models/embedding"
	"github.com/manavgup/ragcore/internal/types"
)

// Retriever is the Hybrid Retriever component: it fuses dense and keyword search into
// one ranked list of chunks for a query against a collection.
type Retriever struct {
	vectors  VectorStore
	keywords KeywordIndex
	embedder embedding.Embedder

	// DefaultVectorWeight is w in score = w*vector + (1-w)*keyword, used when a
	// pipeline doesn't override it.
	DefaultVectorWeight float64
}

func NewRetriever(vectors VectorStore, keywords KeywordIndex, embedder embedding.Embedder, defaultWeight float64) *Retriever {
	if defaultWeight <= 0 {
		defaultWeight = 0.7
	}
	return &Retriever{vectors: vectors, keywords: keywords, embedder: embedder, DefaultVectorWeight: defaultWeight}
}

// Retrieve runs both branches concurrently when possible and fuses their results.
// A chunk found by only one branch is scored using zero for the missing component,
// per the fusion formula: fused = w*vector + (1-w)*keyword.
func (r *Retriever) Retrieve(ctx context.Context, collectionID, query string, topK int, vectorWeight float64) (types.QueryResult, error) {
	if vectorWeight <= 0 {
		vectorWeight = r.DefaultVectorWeight
	}
	candidateK := topK * 3
	if candidateK < topK {
		candidateK = topK
	}

	type vecResult struct {
		chunks []types.ScoredChunk
		err    error
	}
	type kwResult struct {
		chunks []types.ScoredChunk
		err    error
	}
	vecCh := make(chan vecResult, 1)
	kwCh := make(chan kwResult, 1)

	go func() {
		emb, err := r.embedder.Embed(ctx, query)
		if err != nil {
			vecCh <- vecResult{err: err}
			return
		}
		chunks, err := r.vectors.Search(ctx, collectionID, emb, candidateK)
		vecCh <- vecResult{chunks: chunks, err: err}
	}()
	go func() {
		chunks, err := r.keywords.Search(ctx, collectionID, query, candidateK)
		kwCh <- kwResult{chunks: chunks, err: err}
	}()

	vr := <-vecCh
	kr := <-kwCh

	// A failure in one branch degrades to single-branch retrieval rather than failing
	// the whole query, since either signal alone still answers the question.
	merged := make(map[string]*types.ScoredChunk)
	if vr.err == nil {
		for _, c := range vr.chunks {
			cp := c
			merged[c.Chunk.ID] = &cp
		}
	}
	if kr.err == nil {
		for _, c := range kr.chunks {
			if existing, ok := merged[c.Chunk.ID]; ok {
				existing.KeywordScore = c.KeywordScore
			} else {
				cp := c
				merged[c.Chunk.ID] = &cp
			}
		}
	}
	if vr.err != nil && kr.err != nil {
		return types.QueryResult{Query: query}, vr.err
	}

	out := make([]types.ScoredChunk, 0, len(merged))
	for _, c := range merged {
		c.FusedScore = vectorWeight*c.VectorScore + (1-vectorWeight)*c.KeywordScore
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FusedScore != out[j].FusedScore {
			return out[i].FusedScore > out[j].FusedScore
		}
		if out[i].Chunk.ID != out[j].Chunk.ID {
			return out[i].Chunk.ID < out[j].Chunk.ID
		}
		return out[i].Chunk.ChunkIndex < out[j].Chunk.ChunkIndex
	})
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}

	return types.QueryResult{Query: query, Chunks: out}, nil
}
