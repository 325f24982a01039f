package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/waterbar/waterbar/internal/infra/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Source tags every plan generated through this backend.
const Source = "openai_responses_api"

// Message is one input turn for the Responses API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat hints the API to return a JSON object.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ResponseRequest is the payload sent to the Responses API.
type ResponseRequest struct {
	Model              string            `json:"model"`
	Instructions       string            `json:"instructions,omitempty"`
	Input              []Message         `json:"input"`
	PreviousResponseID string            `json:"previous_response_id,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	ResponseFormat     *ResponseFormat   `json:"response_format,omitempty"`
	Store              bool              `json:"store,omitempty"`
}

// APIError carries the upstream failure category without any credential
// material. The message and type are propagated to callers verbatim.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai request failed: status=%d type=%s message=%s", e.StatusCode, e.Type, e.Message)
}

// Client performs HTTP requests to the OpenAI Responses API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient constructs a Responses API client.
func NewClient(apiKey, baseURL, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4.1"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Source identifies this backend in GeneratedPlan payloads.
func (c *Client) Source() string { return Source }

// Generate issues a single blocking Responses API call. The previous
// response id, metadata and JSON-object format hint are passed through
// exactly once; the API's own identifier comes back as the result ID.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	payload := ResponseRequest{
		Model:              c.model,
		Instructions:       req.Instructions,
		Input:              []Message{{Role: "user", Content: req.UserPayload}},
		PreviousResponseID: req.PreviousResponseID,
		Metadata:           req.Metadata,
		ResponseFormat:     &ResponseFormat{Type: "json_object"},
		Store:              true,
	}

	body, err := c.doRequest(ctx, payload)
	if err != nil {
		return llm.Result{}, err
	}
	return decodeResult(body)
}

func (c *Client) doRequest(ctx context.Context, payload ResponseRequest) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode responses request: %w", err)
	}
	endpoint := c.baseURL + "/responses"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build responses request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request responses api: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

// decodeAPIError extracts the upstream error category while keeping the
// payload free of credential material.
func decodeAPIError(status int, body []byte) *APIError {
	var wire struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &wire); err == nil && wire.Error.Message != "" {
		apiErr.Message = wire.Error.Message
		apiErr.Type = wire.Error.Type
		if apiErr.Type == "" {
			apiErr.Type = wire.Error.Code
		}
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	if apiErr.Type == "" {
		apiErr.Type = "api_error"
	}
	return apiErr
}

// decodeResult pulls the generated text and response id out of the Responses
// API payload. The schema is treated as unstable: content may be a plain
// string, a structured object, or nested inside the output array.
func decodeResult(body []byte) (llm.Result, error) {
	var wire struct {
		ID         string          `json:"id"`
		Content    json.RawMessage `json:"content"`
		OutputText string          `json:"output_text"`
		Output     []struct {
			Type    string `json:"type"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return llm.Result{}, fmt.Errorf("decode responses payload: %w", err)
	}

	result := llm.Result{ID: wire.ID}
	if content := extractContent(wire.Content); content != "" {
		result.Content = content
		return result, nil
	}
	if strings.TrimSpace(wire.OutputText) != "" {
		result.Content = wire.OutputText
		return result, nil
	}
	for _, item := range wire.Output {
		for _, part := range item.Content {
			if strings.TrimSpace(part.Text) != "" {
				result.Content = part.Text
				return result, nil
			}
		}
	}
	return result, &llm.NoContentError{ResponseID: wire.ID}
}

func extractContent(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	// A string value is the serialized plan JSON; anything else is already
	// the structured object and is forwarded as text for uniform parsing.
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return ""
		}
		return text
	}
	return string(raw)
}
