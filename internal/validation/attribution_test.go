package validation

import (
	"context"
	"testing"

	"github.com/manavgup/ragcore/internal/types"
)

func TestAttributeCitationsUsesLexicalFallbackWithoutEmbedder(t *testing.T) {
	s := NewAttributionService(nil)
	chunks := []types.ScoredChunk{
		{Chunk: types.Chunk{ID: "c1", KnowledgeID: "doc-1", Content: "The quick brown fox jumps over the lazy dog near the river bank."}},
		{Chunk: types.Chunk{ID: "c2", KnowledgeID: "doc-2", Content: "Completely unrelated content about quarterly tax filings."}},
	}

	citations := s.AttributeCitations(context.Background(), "the quick brown fox jumps over the lazy dog", chunks, 5)
	if len(citations) == 0 {
		t.Fatal("expected at least one citation from lexical overlap")
	}
	if citations[0].DocumentID != "doc-1" {
		t.Errorf("citations[0].DocumentID = %q, want doc-1 (highest lexical overlap)", citations[0].DocumentID)
	}
}

func TestAttributeCitationsRespectsMaxCitations(t *testing.T) {
	s := NewAttributionService(nil)
	chunks := make([]types.ScoredChunk, 0, 10)
	for i := 0; i < 10; i++ {
		chunks = append(chunks, types.ScoredChunk{
			Chunk: types.Chunk{ID: string(rune('a' + i)), KnowledgeID: "doc", Content: "shared overlapping vocabulary words repeated here"},
		})
	}

	citations := s.AttributeCitations(context.Background(), "shared overlapping vocabulary words repeated here", chunks, 3)
	if len(citations) > 3 {
		t.Fatalf("len(citations) = %d, want <= 3", len(citations))
	}
}

func TestAttributeCitationsReturnsEmptyWhenNothingOverlaps(t *testing.T) {
	s := NewAttributionService(nil)
	chunks := []types.ScoredChunk{
		{Chunk: types.Chunk{ID: "c1", KnowledgeID: "doc-1", Content: "zzz qqq xxx yyy completely disjoint tokens"}},
	}

	citations := s.AttributeCitations(context.Background(), "something else entirely unrelated", chunks, 5)
	if len(citations) != 0 {
		t.Fatalf("len(citations) = %d, want 0 when lexical overlap is below threshold", len(citations))
	}
}

func TestValidateSupportDirectSubstring(t *testing.T) {
	if !ValidateSupport("brown fox", "The quick brown fox jumps", 0.3) {
		t.Fatal("expected direct substring match to validate as supported")
	}
}

func TestValidateSupportTokenOverlap(t *testing.T) {
	if !ValidateSupport("brown fox jumps", "fox brown jumps over dog", 0.5) {
		t.Fatal("expected token overlap above threshold to validate as supported")
	}
}

func TestValidateSupportRejectsUnrelatedExcerpt(t *testing.T) {
	if ValidateSupport("entirely unrelated text", "something else completely different", 0.5) {
		t.Fatal("expected unrelated excerpt to fail support validation")
	}
}
