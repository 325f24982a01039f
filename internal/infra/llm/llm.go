package llm

import (
	"context"
	"fmt"
)

// Request is the backend-agnostic payload for one completion call.
type Request struct {
	Instructions       string
	UserPayload        string
	PreviousResponseID string
	Metadata           map[string]string
}

// Result exposes the generated content and the upstream correlation id.
// The content is untrusted model output; callers parse and validate it.
type Result struct {
	ID      string
	Content string
}

// NoContentError marks a call that the backend accepted but answered without
// any extractable content. ResponseID keeps the upstream correlation id so
// callers can report the failure against the response that produced it.
type NoContentError struct {
	ResponseID string
}

func (e *NoContentError) Error() string {
	if e.ResponseID == "" {
		return "completion carried no content"
	}
	return fmt.Sprintf("completion %s carried no content", e.ResponseID)
}

// Generator is a single-shot completion backend. One blocking call per
// request, no retries, no streaming.
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
	Source() string
}
