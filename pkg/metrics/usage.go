package metrics

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenUsage captures LLM token counts used to satisfy a request.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// EstimateUsage approximates prompt/completion token counts for a model.
// Upstream responses do not always echo usage numbers back, so the estimate
// keeps the logs and chat responses populated either way.
func EstimateUsage(model, prompt, completion string) TokenUsage {
	usage := TokenUsage{
		PromptTokens:     CountTokens(model, prompt),
		CompletionTokens: CountTokens(model, completion),
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	return usage
}

// CountTokens returns the tiktoken count for text, falling back to a rough
// 4-characters-per-token heuristic when the model encoding is unknown.
func CountTokens(model, text string) int {
	if text == "" {
		return 0
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
