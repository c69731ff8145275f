// Package validation implements structured-output validation and post-hoc citation
// attribution for generated answers: bounded retry against the LLM, then a deterministic
// fallback that derives citations directly from the retrieved chunks.
package validation

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/manavgup/ragcore/internal/models/embedding"
	"github.com/manavgup/ragcore/internal/types"
)

const (
	semanticSimilarityThreshold = 0.75
	lexicalOverlapThreshold     = 0.3
	minExcerptLength            = 20
	maxExcerptLength            = 500
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+\s+`)
	wordTokenRe     = regexp.MustCompile(`\b\w+\b`)
)

// AttributionService derives citations for an answer directly from the chunks it was
// generated from, used when the model fails to produce valid citations after retrying.
type AttributionService struct {
	embedder            embedding.Embedder
	similarityThreshold  float64
	lexicalThreshold     float64
}

func NewAttributionService(embedder embedding.Embedder) *AttributionService {
	return &AttributionService{
		embedder:            embedder,
		similarityThreshold: semanticSimilarityThreshold,
		lexicalThreshold:    lexicalOverlapThreshold,
	}
}

// AttributeCitations finds which context chunks support the answer, preferring semantic
// similarity (when an embedder is configured) and falling back to lexical Jaccard overlap.
func (s *AttributionService) AttributeCitations(ctx context.Context, answer string, contextChunks []types.ScoredChunk, maxCitations int) []types.Citation {
	if maxCitations <= 0 {
		maxCitations = 5
	}

	var scores map[string]float64
	if s.embedder != nil {
		if sc, err := s.semanticScores(ctx, answer, contextChunks); err == nil {
			scores = sc
		}
	}
	if scores == nil {
		scores = s.lexicalScores(answer, contextChunks)
	}

	return s.buildCitations(answer, contextChunks, scores, maxCitations)
}

func (s *AttributionService) semanticScores(ctx context.Context, answer string, chunks []types.ScoredChunk) (map[string]float64, error) {
	sentences := splitIntoSentences(answer)
	if len(sentences) == 0 {
		sentences = []string{answer}
	}
	sentenceVecs, err := s.embedder.BatchEmbed(ctx, sentences)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Chunk.Content
	}
	chunkVecs, err := s.embedder.BatchEmbed(ctx, contents)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(chunks))
	for i, c := range chunks {
		var best float64
		for _, sv := range sentenceVecs {
			sim := cosineSimilarity(sv, chunkVecs[i])
			if sim > best {
				best = sim
			}
		}
		if best >= s.similarityThreshold {
			scores[c.Chunk.ID] = best
		}
	}
	return scores, nil
}

func (s *AttributionService) lexicalScores(answer string, chunks []types.ScoredChunk) map[string]float64 {
	answerTokens := tokenizeSet(answer)
	scores := make(map[string]float64, len(chunks))
	for _, c := range chunks {
		chunkTokens := tokenizeSet(c.Chunk.Content)
		overlap := jaccard(answerTokens, chunkTokens)
		if overlap >= s.lexicalThreshold {
			scores[c.Chunk.ID] = overlap
		}
	}
	return scores
}

func (s *AttributionService) buildCitations(answer string, chunks []types.ScoredChunk, scores map[string]float64, maxCitations int) []types.Citation {
	type scored struct {
		chunk types.ScoredChunk
		score float64
	}
	var ranked []scored
	for _, c := range chunks {
		if score, ok := scores[c.Chunk.ID]; ok {
			ranked = append(ranked, scored{chunk: c, score: score})
		}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > maxCitations {
		ranked = ranked[:maxCitations]
	}

	citations := make([]types.Citation, 0, len(ranked))
	for _, r := range ranked {
		citations = append(citations, types.Citation{
			DocumentID:     r.chunk.Chunk.KnowledgeID,
			ChunkID:        r.chunk.Chunk.ID,
			Excerpt:        extractExcerpt(answer, r.chunk.Chunk.Content),
			RelevanceScore: r.score,
		})
	}
	return citations
}

// ValidateSupport reports whether a citation's excerpt is actually grounded in its
// source content: a direct substring match, or at least minOverlap token overlap.
func ValidateSupport(excerpt, content string, minOverlap float64) bool {
	if minOverlap <= 0 {
		minOverlap = 0.3
	}
	if strings.Contains(strings.ToLower(content), strings.ToLower(excerpt)) {
		return true
	}
	excerptTokens := tokenizeSet(excerpt)
	contentTokens := tokenizeSet(content)
	if len(excerptTokens) == 0 {
		return false
	}
	var matched int
	for t := range excerptTokens {
		if contentTokens[t] {
			matched++
		}
	}
	return float64(matched)/float64(len(excerptTokens)) >= minOverlap
}

func splitIntoSentences(text string) []string {
	parts := sentenceSplitRe.Split(strings.TrimSpace(text), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func tokenizeSet(text string) map[string]bool {
	tokens := wordTokenRe.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var intersection int
	for t := range a {
		if b[t] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// extractExcerpt finds the sentence of content with the highest word overlap with the
// answer, falling back to a content prefix, and enforces the excerpt length bounds.
func extractExcerpt(answer, content string) string {
	answerTokens := tokenizeSet(answer)
	sentences := splitIntoSentences(content)
	if len(sentences) == 0 {
		sentences = []string{content}
	}

	best := sentences[0]
	bestScore := -1.0
	for _, s := range sentences {
		score := jaccard(answerTokens, tokenizeSet(s))
		if score > bestScore {
			bestScore = score
			best = s
		}
	}

	excerpt := strings.TrimSpace(best)
	if len(excerpt) < minExcerptLength && len(content) >= minExcerptLength {
		if len(content) > maxExcerptLength {
			excerpt = content[:maxExcerptLength]
		} else {
			excerpt = content
		}
	}
	if len(excerpt) > maxExcerptLength {
		excerpt = excerpt[:maxExcerptLength-3] + "..."
	}
	return excerpt
}
