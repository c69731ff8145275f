package validation

import (
	"context"
	"errors"
	"testing"

	rcerrors "github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/models/embedding"
	"github.com/manavgup/ragcore/internal/types"
)

func validAnswer() *types.StructuredAnswer {
	return &types.StructuredAnswer{
		Answer:     "This is a sufficiently long answer grounded in the retrieved context.",
		Confidence: 0.9,
		Citations: []types.Citation{
			{DocumentID: "doc-1", ChunkID: "c1", Excerpt: "a supporting excerpt", RelevanceScore: 0.8},
		},
	}
}

func TestValidatorValidateAcceptsGoodAnswer(t *testing.T) {
	v := NewValidator(nil)
	docs := map[string]bool{"doc-1": true}
	if err := v.Validate(validAnswer(), docs); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestValidatorValidateRejectsShortAnswer(t *testing.T) {
	v := NewValidator(nil)
	answer := validAnswer()
	answer.Answer = "too short"
	if err := v.Validate(answer, map[string]bool{"doc-1": true}); err == nil {
		t.Fatal("expected validation error for short answer")
	}
}

func TestValidatorValidateRejectsUnknownCitationDocument(t *testing.T) {
	v := NewValidator(nil)
	answer := validAnswer()
	if err := v.Validate(answer, map[string]bool{"other-doc": true}); err == nil {
		t.Fatal("expected validation error for citation referencing unknown document")
	}
}

func TestValidatorValidateRejectsMissingCitationsWhenRequired(t *testing.T) {
	v := NewValidator(nil)
	v.RequireCitations = true
	answer := validAnswer()
	answer.Citations = nil
	if err := v.Validate(answer, map[string]bool{"doc-1": true}); err == nil {
		t.Fatal("expected validation error when citations are required but absent")
	}
}

func TestValidatorValidateWithRetrySucceedsOnFirstAttempt(t *testing.T) {
	v := NewValidator(nil)
	calls := 0
	generate := func(ctx context.Context) (*types.StructuredAnswer, error) {
		calls++
		return validAnswer(), nil
	}
	chunks := []types.ScoredChunk{{Chunk: types.Chunk{ID: "c1", KnowledgeID: "doc-1"}}}

	answer, err := v.ValidateWithRetry(context.Background(), generate, chunks, true)
	if err != nil {
		t.Fatalf("ValidateWithRetry() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if answer.QualityScore <= 0 {
		t.Errorf("QualityScore = %v, want > 0", answer.QualityScore)
	}
}

func TestValidatorValidateWithRetryAbortsOnProviderError(t *testing.T) {
	v := NewValidator(nil)
	calls := 0
	generate := func(ctx context.Context) (*types.StructuredAnswer, error) {
		calls++
		return nil, rcerrors.NewProviderError("model unavailable")
	}

	_, err := v.ValidateWithRetry(context.Background(), generate, nil, true)
	if err == nil {
		t.Fatal("expected provider error to propagate")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on provider error)", calls)
	}
}

func TestValidatorValidateWithRetryFallsBackToAttribution(t *testing.T) {
	embedder := &fakeAttributionEmbedder{}
	attribution := NewAttributionService(embedder)
	v := NewValidator(attribution)
	v.MaxRetries = 2
	v.RequireCitations = true

	attempt := 0
	generate := func(ctx context.Context) (*types.StructuredAnswer, error) {
		attempt++
		return &types.StructuredAnswer{
			Answer:     "A long enough answer with no citations attached to it at all.",
			Confidence: 0.9,
		}, nil
	}
	chunks := []types.ScoredChunk{
		{Chunk: types.Chunk{ID: "c1", KnowledgeID: "doc-1", Content: "A long enough answer with no citations attached."}},
	}

	answer, err := v.ValidateWithRetry(context.Background(), generate, chunks, true)
	if err != nil {
		t.Fatalf("ValidateWithRetry() error = %v, want fallback to succeed", err)
	}
	if attempt != 2 {
		t.Errorf("attempt = %d, want MaxRetries (2) attempts before falling back", attempt)
	}
	if answer.Metadata["attribution_method"] != "post_hoc_semantic" {
		t.Errorf("Metadata[attribution_method] = %v, want post_hoc_semantic", answer.Metadata["attribution_method"])
	}
}

func TestValidatorValidateWithRetryFailsWhenFallbackDisabled(t *testing.T) {
	v := NewValidator(nil)
	v.MaxRetries = 1
	generate := func(ctx context.Context) (*types.StructuredAnswer, error) {
		return nil, errors.New("transient generation error")
	}

	_, err := v.ValidateWithRetry(context.Background(), generate, nil, false)
	if err == nil {
		t.Fatal("expected an error when every attempt fails and fallback is disabled")
	}
}

type fakeAttributionEmbedder struct{}

func (f *fakeAttributionEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (f *fakeAttributionEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (f *fakeAttributionEmbedder) GetModelName() string { return "fake" }

func (f *fakeAttributionEmbedder) GetDimensions() int { return 2 }

func (f *fakeAttributionEmbedder) GetModelID() string { return "fake" }

func (f *fakeAttributionEmbedder) BatchEmbedWithPool(ctx context.Context, model embedding.Embedder, texts []string) ([][]float32, error) {
	return f.BatchEmbed(ctx, texts)
}
