package retrieval

import "github.com/manavgup/ragcore/internal/types"

// MergeResults deduplicates chunks retrieved for multiple sub-questions, keeping the
// highest fused score seen for each chunk ID and sorting the union by that score,
// mirroring the teacher's approach of merging per-knowledge-base search results before
// handing them to generation.
func MergeResults(results []types.QueryResult) []types.ScoredChunk {
	best := make(map[string]types.ScoredChunk)
	for _, r := range results {
		for _, c := range r.Chunks {
			existing, ok := best[c.Chunk.ID]
			if !ok || c.FusedScore > existing.FusedScore {
				best[c.Chunk.ID] = c
			}
		}
	}
	out := make([]types.ScoredChunk, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	// ranksBefore breaks ties by document-id ascending, then chunk-ordinal ascending,
	// so the union's order doesn't depend on map iteration order.
	ranksBefore := func(a, b types.ScoredChunk) bool {
		if a.FusedScore != b.FusedScore {
			return a.FusedScore > b.FusedScore
		}
		if a.Chunk.ID != b.Chunk.ID {
			return a.Chunk.ID < b.Chunk.ID
		}
		return a.Chunk.ChunkIndex < b.Chunk.ChunkIndex
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && ranksBefore(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
