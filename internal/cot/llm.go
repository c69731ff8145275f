package cot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/models/chat"
	"github.com/manavgup/ragcore/internal/types"
	"github.com/manavgup/ragcore/internal/validation"
)

// ChatResolver resolves the chat provider a pipeline names. It mirrors the narrower
// interface pipeline.ChatResolver expects so both packages can be satisfied by the same
// ModelService without either depending on the other.
type ChatResolver interface {
	GetChatModel(ctx context.Context, modelID string) (chat.Chat, error)
}

var subQuestionLineRe = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*])\s*`)

// LLMDecomposer asks the chat model named by ModelID to split a complex query into
// sub-questions, one per line, and parses the numbered/bulleted list back out.
type LLMDecomposer struct {
	Models  ChatResolver
	ModelID string
}

func NewLLMDecomposer(models ChatResolver, modelID string) *LLMDecomposer {
	return &LLMDecomposer{Models: models, ModelID: modelID}
}

func (d *LLMDecomposer) Decompose(ctx context.Context, query string, maxSubQuestions int) ([]string, error) {
	if maxSubQuestions <= 0 {
		maxSubQuestions = 4
	}
	chatModel, err := d.Models.GetChatModel(ctx, d.ModelID)
	if err != nil {
		return nil, errors.NewProviderError("resolve decomposition model: " + err.Error())
	}

	prompt := fmt.Sprintf(
		"Break the following question into at most %d independent sub-questions that "+
			"together cover everything needed to answer it. Reply with one sub-question "+
			"per line, numbered, and nothing else.\n\nQuestion: %s",
		maxSubQuestions, query,
	)
	resp, err := chatModel.Chat(ctx, []chat.Message{
		{Role: "system", Content: "You decompose questions for a retrieval pipeline. Output only the numbered sub-questions."},
		{Role: "user", Content: prompt},
	}, &chat.ChatOptions{Temperature: 0})
	if err != nil {
		return nil, errors.NewProviderError("decomposition failed: " + err.Error())
	}

	subQuestions := parseSubQuestions(resp.Content)
	if len(subQuestions) > maxSubQuestions {
		subQuestions = subQuestions[:maxSubQuestions]
	}
	return subQuestions, nil
}

func parseSubQuestions(content string) []string {
	lines := strings.Split(content, "\n")
	subQuestions := make([]string, 0, len(lines))
	for _, line := range lines {
		line = subQuestionLineRe.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		subQuestions = append(subQuestions, line)
	}
	return subQuestions
}

var (
	thinkingBlockRe  = regexp.MustCompile(`(?is)<thinking>.*?</thinking>`)
	answerPrefaceRe  = regexp.MustCompile(`(?im)^\s*answer\s*:\s*`)
	excessBlankLines = regexp.MustCompile(`\n{3,}`)
)

// CleanAnswer strips reasoning leakage a model sometimes emits alongside its answer
// (thinking blocks, an "Answer:" preface) and collapses runs of three or more blank
// lines down to two, so the text returned to a caller is just the answer.
func CleanAnswer(raw string) string {
	cleaned := thinkingBlockRe.ReplaceAllString(raw, "")
	cleaned = answerPrefaceRe.ReplaceAllString(cleaned, "")
	cleaned = excessBlankLines.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// LLMSynthesizer combines sub-answers into one final answer by asking the chat model
// named by ModelID to reconcile them, then deriving citations via post-hoc attribution over
// every chunk the sub-answers drew from (the synthesis prompt doesn't see raw chunk
// text, so it can't be trusted to emit valid citation spans itself).
type LLMSynthesizer struct {
	Models      ChatResolver
	ModelID     string
	Attribution *validation.AttributionService
	Usage       func(promptTokens, completionTokens int)
}

func NewLLMSynthesizer(models ChatResolver, modelID string, attribution *validation.AttributionService) *LLMSynthesizer {
	return &LLMSynthesizer{Models: models, ModelID: modelID, Attribution: attribution}
}

func (s *LLMSynthesizer) Synthesize(ctx context.Context, originalQuery string, subAnswers []SubAnswer) (*types.StructuredAnswer, error) {
	chatModel, err := s.Models.GetChatModel(ctx, s.ModelID)
	if err != nil {
		return nil, errors.NewProviderError("resolve synthesis model: " + err.Error())
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Original question: %s\n\nSub-questions and their answers:\n", originalQuery)
	for i, sa := range subAnswers {
		fmt.Fprintf(&prompt, "%d. Q: %s\n   A: %s\n", i+1, sa.Question, sa.Answer)
	}
	prompt.WriteString("\nSynthesize one final, coherent answer to the original question from the sub-answers above.")

	resp, err := chatModel.Chat(ctx, []chat.Message{
		{Role: "system", Content: "You synthesize a final answer from verified sub-answers. Do not include your reasoning, only the answer."},
		{Role: "user", Content: prompt.String()},
	}, &chat.ChatOptions{Temperature: 0.2})
	if err != nil {
		return nil, errors.NewProviderError("synthesis failed: " + err.Error())
	}
	if s.Usage != nil {
		s.Usage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}

	answer := &types.StructuredAnswer{
		Answer:     CleanAnswer(resp.Content),
		Confidence: averageConfidence(subAnswers),
	}

	if s.Attribution != nil {
		chunks := make([]types.ScoredChunk, 0)
		for _, sa := range subAnswers {
			chunks = append(chunks, sa.Chunks...)
		}
		answer.Citations = s.Attribution.AttributeCitations(ctx, answer.Answer, chunks, 5)
	}

	steps := make([]types.ReasoningStep, 0, len(subAnswers))
	for _, sa := range subAnswers {
		steps = append(steps, types.ReasoningStep{Thought: sa.Question, Conclusion: sa.Answer})
	}
	answer.ReasoningSteps = steps

	return answer, nil
}

// averageConfidence gives a synthesized answer a confidence proportional to how many
// sub-questions actually got an answer, since a partial decomposition is less trustworthy
// than a complete one.
func averageConfidence(subAnswers []SubAnswer) float64 {
	if len(subAnswers) == 0 {
		return 0
	}
	answered := 0
	for _, sa := range subAnswers {
		if strings.TrimSpace(sa.Answer) != "" {
			answered++
		}
	}
	return float64(answered) / float64(len(subAnswers))
}
