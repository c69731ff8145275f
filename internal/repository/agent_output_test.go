package repository

import (
	"testing"

	"github.com/manavgup/ragcore/internal/agentexec"
	"github.com/manavgup/ragcore/internal/types"
)

func scoredChunk(id string) types.ScoredChunk {
	return types.ScoredChunk{Chunk: types.Chunk{ID: id}}
}

func TestOutputForPreSearchExtractsRewrittenQuery(t *testing.T) {
	out := outputFor(agentexec.StagePreSearch, agentexec.Context{}, map[string]any{"content_0": "rewritten query text"})
	if out.RewrittenQuery != "rewritten query text" {
		t.Errorf("RewrittenQuery = %q, want %q", out.RewrittenQuery, "rewritten query text")
	}
}

func TestOutputForPreSearchMissingContentIsEmpty(t *testing.T) {
	out := outputFor(agentexec.StagePreSearch, agentexec.Context{}, map[string]any{})
	if out.RewrittenQuery != "" {
		t.Errorf("RewrittenQuery = %q, want empty", out.RewrittenQuery)
	}
}

func TestOutputForPostSearchReordersAndFiltersChunks(t *testing.T) {
	ac := agentexec.Context{Chunks: []types.ScoredChunk{scoredChunk("a"), scoredChunk("b"), scoredChunk("c")}}
	out := outputFor(agentexec.StagePostSearch, ac, map[string]any{"content_0": `["c", "a"]`})

	if len(out.Chunks) != 2 {
		t.Fatalf("len(Chunks) = %d, want 2 (b dropped, not named by the tool)", len(out.Chunks))
	}
	if out.Chunks[0].Chunk.ID != "c" || out.Chunks[1].Chunk.ID != "a" {
		t.Errorf("Chunks = %+v, want [c, a] in tool-specified order", out.Chunks)
	}
}

func TestOutputForPostSearchFallsBackToOriginalOnUnparsablePayload(t *testing.T) {
	original := []types.ScoredChunk{scoredChunk("a"), scoredChunk("b")}
	ac := agentexec.Context{Chunks: original}
	out := outputFor(agentexec.StagePostSearch, ac, map[string]any{"content_0": "not json"})

	if len(out.Chunks) != len(original) {
		t.Fatalf("Chunks = %+v, want original list unchanged on unparsable payload", out.Chunks)
	}
}

func TestOutputForPostSearchFallsBackWhenNoContentReturned(t *testing.T) {
	original := []types.ScoredChunk{scoredChunk("a")}
	ac := agentexec.Context{Chunks: original}
	out := outputFor(agentexec.StagePostSearch, ac, map[string]any{})

	if len(out.Chunks) != 1 || out.Chunks[0].Chunk.ID != "a" {
		t.Fatalf("Chunks = %+v, want original list unchanged", out.Chunks)
	}
}

func TestOutputForResponseReturnsArtifact(t *testing.T) {
	payload := map[string]any{"content_0": "summary text"}
	out := outputFor(agentexec.StageResponse, agentexec.Context{}, payload)
	if out.Artifact["content_0"] != "summary text" {
		t.Errorf("Artifact = %v, want payload echoed back", out.Artifact)
	}
}
