package chat

import (
	"context"
	"time"

	"github.com/waterbar/waterbar/pkg/metrics"
)

// Config wires runtime settings for the chat panel.
type Config struct {
	Model        string
	Prompt       string
	HistoryLimit int
}

// Request is one user turn.
type Request struct {
	SessionID          string `json:"sessionId,omitempty"`
	Message            string `json:"message"`
	PreviousResponseID string `json:"previousResponseId,omitempty"`
}

// Response carries the coach reply and the continuation token for the
// next turn.
type Response struct {
	SessionID  string              `json:"sessionId"`
	Reply      string              `json:"reply"`
	ResponseID string              `json:"responseId"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// Entry is one transcript line.
type Entry struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Transcript is the per-session chat state.
type Transcript struct {
	Entries        []Entry `json:"entries"`
	LastResponseID string  `json:"lastResponseId,omitempty"`
}

// Store defines the persistence contract for transcripts.
type Store interface {
	Load(ctx context.Context, sessionID string) (Transcript, bool, error)
	Save(ctx context.Context, sessionID string, transcript Transcript) error
}
