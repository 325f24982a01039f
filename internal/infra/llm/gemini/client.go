package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/waterbar/waterbar/internal/infra/llm"
)

// Source tags plans generated through the Gemini backend.
const Source = "gemini_api"

// Client adapts the Gemini API to the Generator contract.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a Gemini-backed generator.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-1.5-pro"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	generative := client.GenerativeModel(model)
	generative.ResponseMIMEType = "application/json"
	return &Client{client: client, model: generative}, nil
}

// Source identifies this backend in GeneratedPlan payloads.
func (c *Client) Source() string { return Source }

// Generate issues one blocking Gemini call. Gemini has no server-side
// continuation token, so the previous response id is not forwarded and each
// result gets a locally minted identifier.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	resp, err := c.model.GenerateContent(ctx,
		genai.Text(req.Instructions),
		genai.Text(req.UserPayload),
	)
	if err != nil {
		return llm.Result{}, fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return llm.Result{}, &llm.NoContentError{}
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return llm.Result{}, errors.New("gemini content is not text")
	}
	return llm.Result{
		ID:      "gen_" + uuid.NewString(),
		Content: string(text),
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}
