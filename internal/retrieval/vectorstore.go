// Package retrieval implements the hybrid (dense + keyword) retriever described by
// the query-time pipeline: fuse a pgvector similarity search with a TF-IDF or
// Elasticsearch keyword search into one ranked chunk list.
package retrieval

import (
	"context"
	"fmt"

	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/types"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// VectorStore performs dense nearest-neighbour search over a collection's chunk embeddings.
type VectorStore interface {
	Search(ctx context.Context, collectionID string, embedding []float32, topK int) ([]types.ScoredChunk, error)
}

// PgVectorStore is a VectorStore backed by Postgres + pgvector, the way the teacher's
// postgres retrieval repository stores and queries chunk vectors.
type PgVectorStore struct {
	db *gorm.DB
}

func NewPgVectorStore(db *gorm.DB) *PgVectorStore {
	return &PgVectorStore{db: db}
}

type vectorRow struct {
	types.Chunk
	Distance float64 `gorm:"column:distance"`
}

// Search ranks chunks by cosine distance to the query embedding, restricted to a collection.
// Cosine distance is converted to a [0,1] similarity score (1 - distance/2) for fusion.
func (s *PgVectorStore) Search(ctx context.Context, collectionID string, embedding []float32, topK int) ([]types.ScoredChunk, error) {
	if topK <= 0 {
		topK = 10
	}
	var rows []vectorRow
	err := s.db.WithContext(ctx).
		Table("chunks").
		Select("chunks.*, chunk_embeddings.embedding <=> ? AS distance", pgvector.NewVector(embedding)).
		Joins("JOIN chunk_embeddings ON chunk_embeddings.chunk_id = chunks.id").
		Where("chunks.knowledge_base_id = ? AND chunks.is_enabled = ?", collectionID, true).
		Order("distance ASC").
		Limit(topK).
		Find(&rows).Error
	if err != nil {
		return nil, errors.NewRetrievalError(fmt.Sprintf("vector search: %v", err))
	}

	out := make([]types.ScoredChunk, 0, len(rows))
	for _, r := range rows {
		similarity := 1 - r.Distance/2
		if similarity < 0 {
			similarity = 0
		}
		out = append(out, types.ScoredChunk{Chunk: r.Chunk, VectorScore: similarity})
	}
	return out, nil
}
