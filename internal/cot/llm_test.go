package cot

import (
	"context"
	"testing"

	"github.com/manavgup/ragcore/internal/models/chat"
	"github.com/manavgup/ragcore/internal/types"
)

type fakeChat struct {
	response string
	usage    types.ChatResponse
	err      error
	lastMsgs []chat.Message
}

func (f *fakeChat) Chat(ctx context.Context, messages []chat.Message, opts *chat.ChatOptions) (*types.ChatResponse, error) {
	f.lastMsgs = messages
	if f.err != nil {
		return nil, f.err
	}
	resp := f.usage
	resp.Content = f.response
	return &resp, nil
}

func (f *fakeChat) ChatStream(ctx context.Context, messages []chat.Message, opts *chat.ChatOptions) (<-chan types.StreamResponse, error) {
	return nil, nil
}

func (f *fakeChat) GetModelName() string { return "fake-model" }
func (f *fakeChat) GetModelID() string   { return "fake-model-id" }

type fakeResolver struct {
	chat chat.Chat
	err  error
}

func (r *fakeResolver) GetChatModel(ctx context.Context, modelID string) (chat.Chat, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.chat, nil
}

func TestLLMDecomposerDecompose(t *testing.T) {
	fc := &fakeChat{response: "1. What is the capital of France?\n2. What is the population of Paris?"}
	decomposer := NewLLMDecomposer(&fakeResolver{chat: fc}, "gpt-4o")

	subQuestions, err := decomposer.Decompose(context.Background(), "What is the capital of France and its population?", 4)
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	if len(subQuestions) != 2 {
		t.Fatalf("got %d sub-questions, want 2: %v", len(subQuestions), subQuestions)
	}
	if subQuestions[0] != "What is the capital of France?" {
		t.Errorf("subQuestions[0] = %q", subQuestions[0])
	}
}

func TestLLMDecomposerTruncatesToMax(t *testing.T) {
	fc := &fakeChat{response: "1. a\n2. b\n3. c\n4. d\n5. e"}
	decomposer := NewLLMDecomposer(&fakeResolver{chat: fc}, "gpt-4o")

	subQuestions, err := decomposer.Decompose(context.Background(), "a question", 2)
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	if len(subQuestions) != 2 {
		t.Fatalf("got %d sub-questions, want 2", len(subQuestions))
	}
}

func TestLLMSynthesizerSynthesize(t *testing.T) {
	fc := &fakeChat{
		response: "<thinking>reasoning here</thinking>Answer: Paris is the capital of France and has roughly 2 million residents.",
		usage:    types.ChatResponse{Usage: struct{ PromptTokens, CompletionTokens, TotalTokens int }{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}},
	}
	synth := NewLLMSynthesizer(&fakeResolver{chat: fc}, "gpt-4o", nil)

	var promptTokens, completionTokens int
	synth.Usage = func(p, c int) { promptTokens, completionTokens = p, c }

	subAnswers := []SubAnswer{
		{Question: "What is the capital of France?", Answer: "Paris."},
		{Question: "What is its population?", Answer: "About 2 million."},
	}
	answer, err := synth.Synthesize(context.Background(), "What is the capital of France and its population?", subAnswers)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if answer.Answer != "Paris is the capital of France and has roughly 2 million residents." {
		t.Errorf("Answer = %q, leakage not stripped", answer.Answer)
	}
	if answer.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1 (both sub-answers present)", answer.Confidence)
	}
	if len(answer.ReasoningSteps) != 2 {
		t.Errorf("got %d reasoning steps, want 2", len(answer.ReasoningSteps))
	}
	if promptTokens != 10 || completionTokens != 5 {
		t.Errorf("usage callback got (%d, %d), want (10, 5)", promptTokens, completionTokens)
	}
}

func TestLLMSynthesizerResolveFailure(t *testing.T) {
	synth := NewLLMSynthesizer(&fakeResolver{err: context.DeadlineExceeded}, "gpt-4o", nil)
	if _, err := synth.Synthesize(context.Background(), "q", nil); err == nil {
		t.Error("expected error when chat model resolution fails")
	}
}
