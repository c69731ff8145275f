package validation

import (
	"context"
	"fmt"

	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/logger"
	"github.com/manavgup/ragcore/internal/types"
)

const (
	qualityWeightConfidence  = 0.4
	qualityWeightCitations   = 0.3
	qualityWeightAnswerLen   = 0.2
	qualityWeightReasoning   = 0.1
	idealCitationCount       = 3
	idealAnswerLength        = 200
)

// GenerateFunc produces one candidate structured answer; a non-nil ProviderError
// (rather than a validation failure) aborts the retry loop immediately, since retrying
// against a broken provider cannot help.
type GenerateFunc func(ctx context.Context) (*types.StructuredAnswer, error)

// Validator checks structured answers for the invariants the pipeline requires
// (minimum length, confidence, grounded citations, well-formed reasoning steps) and
// retries generation a bounded number of times before falling back to deterministic
// post-hoc attribution.
type Validator struct {
	MaxRetries       int
	MinConfidence    float64
	RequireCitations bool
	MinAnswerLength  int
	Attribution      *AttributionService
}

func NewValidator(attribution *AttributionService) *Validator {
	return &Validator{
		MaxRetries:       3,
		MinConfidence:    0,
		RequireCitations: true,
		MinAnswerLength:  10,
		Attribution:      attribution,
	}
}

// Validate checks one candidate answer against a context document ID set, returning a
// wrapped *errors.AppError (ErrValidationFailed) describing every violation found.
func (v *Validator) Validate(answer *types.StructuredAnswer, contextDocumentIDs map[string]bool) error {
	var issues []string

	if len(answer.Answer) < v.MinAnswerLength {
		issues = append(issues, fmt.Sprintf("answer too short: %d chars, need >= %d", len(answer.Answer), v.MinAnswerLength))
	}
	if answer.Confidence < v.MinConfidence {
		issues = append(issues, fmt.Sprintf("confidence %.2f below minimum %.2f", answer.Confidence, v.MinConfidence))
	}
	if v.RequireCitations && len(answer.Citations) == 0 {
		issues = append(issues, "no citations provided")
	}
	for i, c := range answer.Citations {
		if contextDocumentIDs != nil && !contextDocumentIDs[c.DocumentID] {
			issues = append(issues, fmt.Sprintf("citation %d references unknown document %q", i, c.DocumentID))
		}
		if len(c.Excerpt) < 10 {
			issues = append(issues, fmt.Sprintf("citation %d excerpt too short", i))
		}
		if c.RelevanceScore < 0 || c.RelevanceScore > 1 {
			issues = append(issues, fmt.Sprintf("citation %d relevance score out of [0,1]: %.2f", i, c.RelevanceScore))
		}
	}
	for i, step := range answer.ReasoningSteps {
		if step.Thought == "" || step.Conclusion == "" {
			issues = append(issues, fmt.Sprintf("reasoning step %d missing thought or conclusion", i))
		}
	}

	if len(issues) > 0 {
		return errors.NewValidationFailedError(fmt.Sprintf("structured answer failed validation: %v", issues))
	}
	return nil
}

// ValidateWithRetry calls generate up to MaxRetries times, validating each candidate and
// returning the first that passes. A provider error aborts immediately. When every
// attempt fails validation and enableFallback is set, it falls back to deterministic
// post-hoc attribution against contextChunks before giving up.
func (v *Validator) ValidateWithRetry(
	ctx context.Context,
	generate GenerateFunc,
	contextChunks []types.ScoredChunk,
	enableFallback bool,
) (*types.StructuredAnswer, error) {
	contextDocumentIDs := make(map[string]bool, len(contextChunks))
	for _, c := range contextChunks {
		contextDocumentIDs[c.Chunk.KnowledgeID] = true
	}

	maxRetries := v.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	var lastAnswer *types.StructuredAnswer
	for attempt := 0; attempt < maxRetries; attempt++ {
		answer, err := generate(ctx)
		if err != nil {
			if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrProvider {
				return nil, err
			}
			lastErr = err
			continue
		}
		if verr := v.Validate(answer, contextDocumentIDs); verr != nil {
			lastErr = verr
			lastAnswer = answer
			continue
		}
		answer.QualityScore = v.assessQuality(answer)
		return answer, nil
	}

	if enableFallback && v.Attribution != nil && lastAnswer != nil {
		logger.GetLogger(ctx).Warnf("structured answer validation exhausted %d attempts, falling back to post-hoc attribution", maxRetries)
		citations := v.Attribution.AttributeCitations(ctx, lastAnswer.Answer, contextChunks, 5)
		fallback := *lastAnswer
		fallback.Citations = citations
		if fallback.Metadata == nil {
			fallback.Metadata = make(map[string]any)
		}
		fallback.Metadata["attribution_method"] = "post_hoc_semantic"
		fallback.Metadata["llm_citation_attempts"] = maxRetries

		if verr := v.Validate(&fallback, contextDocumentIDs); verr == nil {
			fallback.QualityScore = v.assessQuality(&fallback)
			return &fallback, nil
		}
	}

	if lastErr == nil {
		lastErr = errors.NewValidationFailedError("no candidate answer was generated")
	}
	return nil, lastErr
}

// assessQuality computes a reporting-only weighted score combining confidence, citation
// count, answer length, and reasoning depth against ideal targets.
func (v *Validator) assessQuality(answer *types.StructuredAnswer) float64 {
	citationScore := float64(len(answer.Citations)) / float64(idealCitationCount)
	if citationScore > 1 {
		citationScore = 1
	}
	lengthScore := float64(len(answer.Answer)) / float64(idealAnswerLength)
	if lengthScore > 1 {
		lengthScore = 1
	}
	reasoningScore := 0.0
	if len(answer.ReasoningSteps) > 0 {
		reasoningScore = 1
	}

	return qualityWeightConfidence*answer.Confidence +
		qualityWeightCitations*citationScore +
		qualityWeightAnswerLen*lengthScore +
		qualityWeightReasoning*reasoningScore
}
