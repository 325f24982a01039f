package planflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/waterbar/waterbar/internal/domain/plan"
	apperrors "github.com/waterbar/waterbar/pkg/errors"
)

const responseBodyLimit = 1 << 20 // 1 MiB

// Client is a typed HTTP client for the plan generation endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client against the given server base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// planErrorBody matches the error payloads the plan endpoint emits.
type planErrorBody struct {
	Error      string `json:"error"`
	Details    string `json:"details"`
	ResponseID string `json:"responseId"`
	ErrorType  string `json:"errorType"`
	Suggestion string `json:"suggestion"`
}

// Generate posts a plan request and decodes the success or error body.
func (c *Client) Generate(ctx context.Context, req plan.Request) (plan.GeneratedPlan, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return plan.GeneratedPlan{}, apperrors.Wrap("invalid_request", "encode plan request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/plan", bytes.NewReader(payload))
	if err != nil {
		return plan.GeneratedPlan{}, apperrors.Wrap("transport_error", "build plan request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return plan.GeneratedPlan{}, apperrors.Wrap("transport_error", "call plan endpoint", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return plan.GeneratedPlan{}, apperrors.Wrap("transport_error", "read plan response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errBody planErrorBody
		if unmarshalErr := json.Unmarshal(body, &errBody); unmarshalErr != nil || errBody.Error == "" {
			return plan.GeneratedPlan{}, apperrors.Wrap("transport_error",
				fmt.Sprintf("plan endpoint returned status %d", resp.StatusCode), nil)
		}
		message := errBody.Error
		if errBody.Details != "" {
			message = message + ": " + errBody.Details
		}
		return plan.GeneratedPlan{}, apperrors.Wrap(codeForStatus(resp.StatusCode), message, nil)
	}

	var generated plan.GeneratedPlan
	if err := json.Unmarshal(body, &generated); err != nil {
		return plan.GeneratedPlan{}, apperrors.Wrap("transport_error", "decode plan response", err)
	}
	return generated, nil
}

func codeForStatus(status int) string {
	if status == http.StatusBadRequest {
		return "invalid_request"
	}
	return "generation_failed"
}
