package retrieval

import (
	"testing"

	"github.com/manavgup/ragcore/internal/types"
)

func chunkResult(id string, fused float64) types.ScoredChunk {
	return types.ScoredChunk{Chunk: types.Chunk{ID: id}, FusedScore: fused}
}

func TestMergeResultsDedupesKeepingHighestScore(t *testing.T) {
	results := []types.QueryResult{
		{Query: "q1", Chunks: []types.ScoredChunk{chunkResult("a", 0.5), chunkResult("b", 0.9)}},
		{Query: "q2", Chunks: []types.ScoredChunk{chunkResult("a", 0.8), chunkResult("c", 0.3)}},
	}

	merged := MergeResults(results)
	if len(merged) != 3 {
		t.Fatalf("len(merged) = %d, want 3", len(merged))
	}

	byID := make(map[string]float64)
	for _, c := range merged {
		byID[c.Chunk.ID] = c.FusedScore
	}
	if byID["a"] != 0.8 {
		t.Errorf("chunk a FusedScore = %v, want 0.8 (highest of the two sightings)", byID["a"])
	}
	if byID["b"] != 0.9 {
		t.Errorf("chunk b FusedScore = %v, want 0.9", byID["b"])
	}
	if byID["c"] != 0.3 {
		t.Errorf("chunk c FusedScore = %v, want 0.3", byID["c"])
	}
}

func TestMergeResultsSortsDescending(t *testing.T) {
	results := []types.QueryResult{
		{Query: "q1", Chunks: []types.ScoredChunk{chunkResult("a", 0.1), chunkResult("b", 0.9), chunkResult("c", 0.5)}},
	}

	merged := MergeResults(results)
	for i := 1; i < len(merged); i++ {
		if merged[i].FusedScore > merged[i-1].FusedScore {
			t.Fatalf("merged[%d].FusedScore = %v > merged[%d].FusedScore = %v, want descending order",
				i, merged[i].FusedScore, i-1, merged[i-1].FusedScore)
		}
	}
}

func TestMergeResultsEmpty(t *testing.T) {
	merged := MergeResults(nil)
	if len(merged) != 0 {
		t.Fatalf("len(merged) = %d, want 0", len(merged))
	}
}
