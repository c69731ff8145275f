package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/manavgup/ragcore/internal/models/embedding"
	"github.com/manavgup/ragcore/internal/types"
)

type fakeVectorStore struct {
	chunks []types.ScoredChunk
	err    error
}

func (f *fakeVectorStore) Search(ctx context.Context, collectionID string, embedding []float32, topK int) ([]types.ScoredChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type fakeKeywordIndex struct {
	chunks []types.ScoredChunk
	err    error
}

func (f *fakeKeywordIndex) Search(ctx context.Context, collectionID, query string, topK int) ([]types.ScoredChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func (f *fakeEmbedder) GetModelName() string { return "fake-embedder" }

func (f *fakeEmbedder) GetDimensions() int { return len(f.vec) }

func (f *fakeEmbedder) GetModelID() string { return "fake-embedder" }

func (f *fakeEmbedder) BatchEmbedWithPool(ctx context.Context, model embedding.Embedder, texts []string) ([][]float32, error) {
	return f.BatchEmbed(ctx, texts)
}

func TestRetrieverFusesVectorAndKeywordScores(t *testing.T) {
	vectors := &fakeVectorStore{chunks: []types.ScoredChunk{
		{Chunk: types.Chunk{ID: "a"}, VectorScore: 1.0},
		{Chunk: types.Chunk{ID: "b"}, VectorScore: 0.4},
	}}
	keywords := &fakeKeywordIndex{chunks: []types.ScoredChunk{
		{Chunk: types.Chunk{ID: "a"}, KeywordScore: 0.2},
		{Chunk: types.Chunk{ID: "c"}, KeywordScore: 0.9},
	}}
	r := NewRetriever(vectors, keywords, &fakeEmbedder{vec: []float32{0.1}}, 0.5)

	result, err := r.Retrieve(context.Background(), "col-1", "what is x", 10, 0.5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Chunks) != 3 {
		t.Fatalf("len(Chunks) = %d, want 3", len(result.Chunks))
	}

	byID := make(map[string]types.ScoredChunk)
	for _, c := range result.Chunks {
		byID[c.Chunk.ID] = c
	}
	if got, want := byID["a"].FusedScore, 0.5*1.0+0.5*0.2; got != want {
		t.Errorf("chunk a FusedScore = %v, want %v", got, want)
	}
	if got, want := byID["b"].FusedScore, 0.5*0.4; got != want {
		t.Errorf("chunk b FusedScore = %v, want %v (keyword-absent defaults to 0)", got, want)
	}
	if got, want := byID["c"].FusedScore, 0.5*0.9; got != want {
		t.Errorf("chunk c FusedScore = %v, want %v (vector-absent defaults to 0)", got, want)
	}
}

func TestRetrieverDegradesToKeywordOnlyWhenVectorFails(t *testing.T) {
	vectors := &fakeVectorStore{err: errors.New("pgvector unreachable")}
	keywords := &fakeKeywordIndex{chunks: []types.ScoredChunk{
		{Chunk: types.Chunk{ID: "a"}, KeywordScore: 0.6},
	}}
	r := NewRetriever(vectors, keywords, &fakeEmbedder{vec: []float32{0.1}}, 0.5)

	result, err := r.Retrieve(context.Background(), "col-1", "q", 10, 0.5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, want degraded success", err)
	}
	if len(result.Chunks) != 1 || result.Chunks[0].Chunk.ID != "a" {
		t.Fatalf("Chunks = %+v, want single chunk a from keyword branch", result.Chunks)
	}
}

func TestRetrieverDegradesToVectorOnlyWhenKeywordFails(t *testing.T) {
	vectors := &fakeVectorStore{chunks: []types.ScoredChunk{
		{Chunk: types.Chunk{ID: "a"}, VectorScore: 0.7},
	}}
	keywords := &fakeKeywordIndex{err: errors.New("elasticsearch timeout")}
	r := NewRetriever(vectors, keywords, &fakeEmbedder{vec: []float32{0.1}}, 0.5)

	result, err := r.Retrieve(context.Background(), "col-1", "q", 10, 0.5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, want degraded success", err)
	}
	if len(result.Chunks) != 1 || result.Chunks[0].Chunk.ID != "a" {
		t.Fatalf("Chunks = %+v, want single chunk a from vector branch", result.Chunks)
	}
}

func TestRetrieverFailsWhenBothBranchesFail(t *testing.T) {
	vectors := &fakeVectorStore{err: errors.New("pgvector unreachable")}
	keywords := &fakeKeywordIndex{err: errors.New("elasticsearch timeout")}
	r := NewRetriever(vectors, keywords, &fakeEmbedder{vec: []float32{0.1}}, 0.5)

	_, err := r.Retrieve(context.Background(), "col-1", "q", 10, 0.5)
	if err == nil {
		t.Fatal("expected an error when both branches fail")
	}
}

func TestRetrieverTruncatesToTopK(t *testing.T) {
	vectors := &fakeVectorStore{chunks: []types.ScoredChunk{
		{Chunk: types.Chunk{ID: "a"}, VectorScore: 0.9},
		{Chunk: types.Chunk{ID: "b"}, VectorScore: 0.8},
		{Chunk: types.Chunk{ID: "c"}, VectorScore: 0.1},
	}}
	keywords := &fakeKeywordIndex{}
	r := NewRetriever(vectors, keywords, &fakeEmbedder{vec: []float32{0.1}}, 0.5)

	result, err := r.Retrieve(context.Background(), "col-1", "q", 2, 0.5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("len(Chunks) = %d, want 2 (topK truncation)", len(result.Chunks))
	}
	if result.Chunks[0].Chunk.ID != "a" || result.Chunks[1].Chunk.ID != "b" {
		t.Errorf("Chunks = %+v, want [a, b] by descending FusedScore", result.Chunks)
	}
}

func TestRetrieverDefaultsVectorWeightWhenNotPositive(t *testing.T) {
	r := NewRetriever(&fakeVectorStore{}, &fakeKeywordIndex{}, &fakeEmbedder{}, 0)
	if r.DefaultVectorWeight != 0.7 {
		t.Errorf("DefaultVectorWeight = %v, want 0.7 default", r.DefaultVectorWeight)
	}
}
