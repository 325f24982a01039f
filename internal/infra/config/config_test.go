package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "openai", cfg.LLM.Provider)
	require.Equal(t, "gpt-4.1", cfg.LLM.Model)
	require.Equal(t, 2500, cfg.Tracker.DailyGoalML)
}

func TestDefaultRetryExcludesNonIdempotentEndpoints(t *testing.T) {
	exclude := defaultConfig().HTTP.Retry.Exclude

	// Completion calls are billed per attempt; drink and refill logging
	// append a row before the status read, so a replay double-counts.
	for _, path := range []string{"/plan", "/api/v1/chat", "/api/v1/drinks/log", "/api/v1/refills"} {
		require.Contains(t, exclude, path)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := defaultConfig()
	cfg.LLM.Provider = "llama"
	require.Error(t, cfg.Validate())
}
