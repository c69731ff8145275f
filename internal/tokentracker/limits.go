package tokentracker

import (
	"context"
	"strings"
)

// StaticModelLimits is a hardcoded table of context-window sizes for commonly
// configured chat models (OpenAI-compatible and Ollama-served). It matches by
// substring so versioned/quantized model names (e.g. "gpt-4o-mini-2024-07-18",
// "llama3.1:8b-instruct-q4_0") still resolve to the right family.
type StaticModelLimits struct {
	windows map[string]int
}

func NewStaticModelLimits() *StaticModelLimits {
	return &StaticModelLimits{
		windows: map[string]int{
			"gpt-4o":       128000,
			"gpt-4-turbo":  128000,
			"gpt-4":        8192,
			"gpt-3.5":      16385,
			"llama3.1":     131072,
			"llama3":       8192,
			"llama2":       4096,
			"mistral":      32768,
			"qwen2":        32768,
			"deepseek":     32768,
		},
	}
}

func (l *StaticModelLimits) ContextWindow(_ context.Context, modelName string) (int, bool) {
	name := strings.ToLower(modelName)
	best, bestLen := 0, 0
	for prefix, window := range l.windows {
		if strings.Contains(name, prefix) && len(prefix) > bestLen {
			best, bestLen = window, len(prefix)
		}
	}
	return best, bestLen > 0
}
