// Package cot implements the Chain-of-Thought Engine: decomposing a complex question
// into sub-questions, answering each against its own retrieval, and synthesizing a
// final answer with an explicit reasoning trail.
package cot

import (
	"context"
	"regexp"
	"strings"

	"github.com/manavgup/ragcore/internal/types"
)

// ComplexityPredicate decides whether a query is complex enough to warrant
// decomposition instead of a single direct retrieval+generation pass. It is pluggable
// so a pipeline can swap in a model-based classifier later without touching the engine.
type ComplexityPredicate func(query string) bool

var conjunctionRe = regexp.MustCompile(`(?i)\b(and|or|but|versus|vs\.?)\b`)
var comparativeRe = regexp.MustCompile(`(?i)\b(compare|difference|why|how does|relationship between|cause[sd]?)\b`)

// DefaultComplexityPredicate flags a query as complex when it joins multiple clauses
// with a coordinating conjunction, uses comparative/causal language, or is simply long.
func DefaultComplexityPredicate(query string) bool {
	words := strings.Fields(query)
	if len(words) > 25 {
		return true
	}
	return conjunctionRe.MatchString(query) || comparativeRe.MatchString(query)
}

// Decomposer splits a complex query into sub-questions. The default implementation
// asks the configured chat model; it is an interface so tests can substitute a fixed
// decomposition without a live provider.
type Decomposer interface {
	Decompose(ctx context.Context, query string, maxSubQuestions int) ([]string, error)
}

// SubAnswerer answers one sub-question given its retrieved chunks.
type SubAnswerer func(ctx context.Context, subQuestion string, chunks []types.ScoredChunk) (string, error)

// Synthesizer combines sub-answers into one final answer with a reasoning trail.
type Synthesizer func(ctx context.Context, originalQuery string, subAnswers []SubAnswer) (*types.StructuredAnswer, error)

// SubAnswer pairs a sub-question with its answer and the chunks it drew from.
type SubAnswer struct {
	Question string
	Answer   string
	Chunks   []types.ScoredChunk
}

// Engine runs the decompose/answer/synthesize pipeline.
type Engine struct {
	IsComplex   ComplexityPredicate
	Decompose   Decomposer
	MaxSubQuestions int
}

func NewEngine(decomposer Decomposer, predicate ComplexityPredicate) *Engine {
	if predicate == nil {
		predicate = DefaultComplexityPredicate
	}
	return &Engine{IsComplex: predicate, Decompose: decomposer, MaxSubQuestions: 4}
}

// ShouldDecompose reports whether the engine would trigger for this query.
func (e *Engine) ShouldDecompose(query string) bool {
	return e.IsComplex(query)
}

// Run decomposes the query, retrieves+answers each sub-question via retrieveAndAnswer,
// then synthesizes the final answer, recording each step as a ReasoningStep.
func (e *Engine) Run(
	ctx context.Context,
	query string,
	retrieveAndAnswer func(ctx context.Context, subQuestion string) (SubAnswer, error),
	synthesize Synthesizer,
) (*types.StructuredAnswer, []string, error) {
	subQuestions, err := e.Decompose.Decompose(ctx, query, e.MaxSubQuestions)
	if err != nil {
		return nil, nil, err
	}
	if len(subQuestions) == 0 {
		subQuestions = []string{query}
	}

	subAnswers := make([]SubAnswer, 0, len(subQuestions))
	for _, q := range subQuestions {
		sa, err := retrieveAndAnswer(ctx, q)
		if err != nil {
			continue
		}
		subAnswers = append(subAnswers, sa)
	}

	answer, err := synthesize(ctx, query, subAnswers)
	if err != nil {
		return nil, subQuestions, err
	}

	if len(answer.ReasoningSteps) == 0 {
		steps := make([]types.ReasoningStep, 0, len(subAnswers))
		for _, sa := range subAnswers {
			steps = append(steps, types.ReasoningStep{Thought: sa.Question, Conclusion: sa.Answer})
		}
		answer.ReasoningSteps = steps
	}

	return answer, subQuestions, nil
}
