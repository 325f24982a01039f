package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/waterbar/waterbar/internal/infra/llm"
	apperrors "github.com/waterbar/waterbar/pkg/errors"
	"github.com/waterbar/waterbar/pkg/metrics"
	"github.com/waterbar/waterbar/pkg/util"
)

const defaultPrompt = "You are a friendly hydration coach at The Water Bar. Answer questions about hydration habits, drink choices and the user's plan. Keep replies short and practical."

// Service exposes the coach chat panel.
type Service interface {
	Send(ctx context.Context, req Request) (Response, error)
	History(ctx context.Context, sessionID string) ([]Entry, error)
}

type service struct {
	cfg       Config
	generator llm.Generator
	store     Store
	logger    *slog.Logger
	now       func() time.Time
}

// NewService is a wire provider for the chat domain.
func NewService(cfg Config, generator llm.Generator, store Store, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.Prompt) == "" {
		cfg.Prompt = defaultPrompt
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	return &service{
		cfg:       cfg,
		generator: generator,
		store:     store,
		logger:    logger.With("component", "chat.service"),
		now:       util.NowUTC,
	}
}

// Send forwards one message to the coach. Context continuity rides on the
// upstream response id, chained automatically from the stored transcript
// unless the caller supplies its own token.
func (s *service) Send(ctx context.Context, req Request) (Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Response{}, apperrors.Wrap("invalid_input", "message cannot be empty", nil)
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	transcript, _, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Response{}, apperrors.Wrap("storage_error", "failed to load transcript", err)
	}

	previousID := req.PreviousResponseID
	if previousID == "" {
		previousID = transcript.LastResponseID
	}

	result, err := s.generator.Generate(ctx, llm.Request{
		Instructions:       s.cfg.Prompt,
		UserPayload:        message,
		PreviousResponseID: previousID,
		Metadata: map[string]string{
			"session_id": sessionID,
			"surface":    "chat",
		},
	})
	if err != nil {
		return Response{}, apperrors.Wrap("llm_error", "chat request failed", err)
	}
	reply := strings.TrimSpace(result.Content)
	if reply == "" {
		return Response{}, apperrors.Wrap("llm_error", "chat backend returned no content", nil)
	}

	now := s.now()
	transcript.Entries = append(transcript.Entries,
		Entry{Role: "user", Content: message, At: now},
		Entry{Role: "assistant", Content: reply, At: now},
	)
	if len(transcript.Entries) > s.cfg.HistoryLimit {
		transcript.Entries = transcript.Entries[len(transcript.Entries)-s.cfg.HistoryLimit:]
	}
	transcript.LastResponseID = result.ID
	if err := s.store.Save(ctx, sessionID, transcript); err != nil {
		return Response{}, apperrors.Wrap("storage_error", "failed to save transcript", err)
	}

	usage := metrics.EstimateUsage(s.cfg.Model, s.cfg.Prompt+message, reply)
	s.logger.Info("chat turn completed", "session", sessionID, "response_id", result.ID, "total_tokens", usage.TotalTokens)
	return Response{
		SessionID:  sessionID,
		Reply:      reply,
		ResponseID: result.ID,
		TokenUsage: &usage,
	}, nil
}

func (s *service) History(ctx context.Context, sessionID string) ([]Entry, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.Wrap("invalid_input", "sessionId cannot be empty", nil)
	}
	transcript, ok, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load transcript", err)
	}
	if !ok {
		return []Entry{}, nil
	}
	return transcript.Entries, nil
}
