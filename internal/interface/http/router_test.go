package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waterbar/waterbar/internal/domain/chat"
	"github.com/waterbar/waterbar/internal/domain/plan"
	"github.com/waterbar/waterbar/internal/domain/shop"
	"github.com/waterbar/waterbar/internal/domain/tracker"
	"github.com/waterbar/waterbar/internal/infra/config"
	"github.com/waterbar/waterbar/internal/infra/llm/openai"
	apperrors "github.com/waterbar/waterbar/pkg/errors"
)

const planRequestBody = `{
	"userData": {"weight": 70, "height": 175, "activityLevel": "High", "climate": "Hot", "dietaryRestrictions": "None"},
	"hydrationData": {"recentAverage": 1800},
	"timeframe": "day"
}`

func TestRouter_GeneratePlanSuccess(t *testing.T) {
	generated := plan.GeneratedPlan{
		Plan: "Drink water steadily through the morning.",
		Timeline: plan.Timeline{
			TotalTarget: 3000,
			Units:       "ml",
			Timepoints: []plan.TimePoint{
				{Time: "08:00", Amount: 500, Title: "Wake up", Description: "Start the day with a full glass."},
			},
		},
		PlanID:     "resp_123",
		ResponseID: "resp_123",
		Generated:  time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Source:     "openai_responses_api",
	}
	svc := &stubPlanService{
		generateFn: func(ctx context.Context, req plan.Request) (plan.GeneratedPlan, error) {
			require.Equal(t, plan.TimeframeDay, req.Timeframe)
			require.NotNil(t, req.UserData)
			require.NotNil(t, req.HydrationData)
			return generated, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/plan", planRequestBody, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Contains(t, got["plan"], "Drink water")
	require.Equal(t, "resp_123", got["planId"])
	require.Equal(t, "resp_123", got["responseId"])
	require.Equal(t, "openai_responses_api", got["source"])
	require.NotEmpty(t, got["generated"])

	timeline, ok := got["timeline"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 3000, timeline["totalTarget"])
}

func TestRouter_GeneratePlanMethodNotAllowed(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanService{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		recorder := performRequest(method, "/plan", "", server)
		require.Equal(t, http.StatusMethodNotAllowed, recorder.Code, method)
		require.JSONEq(t, `{"error":"Method not allowed"}`, recorder.Body.String(), method)
	}
}

func TestRouter_GeneratePlanPreflightShortCircuits(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanService{})

	// Browser preflights are answered by the CORS middleware before method
	// dispatch, so OPTIONS gets 204 instead of the 405 body.
	recorder := performRequest(http.MethodOptions, "/plan", "", server)
	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRouter_GeneratePlanMissingParameters(t *testing.T) {
	svc := &stubPlanService{
		generateFn: func(ctx context.Context, req plan.Request) (plan.GeneratedPlan, error) {
			return plan.GeneratedPlan{}, apperrors.Wrap("invalid_request", "userData is required", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/plan", `{"timeframe":"day"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.JSONEq(t, `{"error":"Missing required parameters"}`, recorder.Body.String())
}

func TestRouter_GeneratePlanMalformedBody(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/plan", `{"timeframe":`, newRouterUnderTest(t, &stubPlanService{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.JSONEq(t, `{"error":"Missing required parameters"}`, recorder.Body.String())
}

func TestRouter_GeneratePlanResponseInvalid(t *testing.T) {
	svc := &stubPlanService{
		generateFn: func(ctx context.Context, req plan.Request) (plan.GeneratedPlan, error) {
			inner := &plan.ResponseInvalidError{ResponseID: "resp_bad"}
			return plan.GeneratedPlan{}, apperrors.Wrap("response_invalid", "upstream response invalid", inner)
		},
	}

	recorder := performRequest(http.MethodPost, "/plan", planRequestBody, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "Error processing hydration plan", got["error"])
	require.Equal(t, "The AI response could not be properly processed.", got["details"])
	require.Equal(t, "resp_bad", got["responseId"])
	require.NotContains(t, got, "plan")
	require.NotContains(t, got, "timeline")
}

func TestRouter_GeneratePlanUpstreamFailure(t *testing.T) {
	svc := &stubPlanService{
		generateFn: func(ctx context.Context, req plan.Request) (plan.GeneratedPlan, error) {
			apiErr := &openai.APIError{StatusCode: 401, Type: "invalid_api_key", Message: "Incorrect API key provided"}
			return plan.GeneratedPlan{}, apperrors.Wrap("upstream_error", "plan generation failed", apiErr)
		},
	}

	recorder := performRequest(http.MethodPost, "/plan", planRequestBody, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "Error generating hydration plan", got["error"])
	require.Equal(t, "Incorrect API key provided", got["details"])
	require.Equal(t, "invalid_api_key", got["errorType"])
	require.Equal(t, keySuggestion, got["suggestion"])
	require.NotContains(t, recorder.Body.String(), "sk-")
}

func TestRouter_LogDrinkReturnsStatus(t *testing.T) {
	trackerSvc := &stubTrackerService{
		logDrinkFn: func(ctx context.Context, userID, drinkType string) (tracker.DailyStatus, error) {
			require.Equal(t, "user-1", userID)
			require.Equal(t, "Water", drinkType)
			return tracker.DailyStatus{Date: "2026-03-14", ConsumedML: 250, GoalML: 2500, Percent: 10, Message: "Time to drink up"}, nil
		},
	}
	server := newRouterWithServices(t, &stubPlanService{}, trackerSvc, &stubChatService{}, &stubShopService{})

	recorder := performRequest(http.MethodPost, "/api/v1/drinks/log", `{"userId":"user-1","drinkType":"Water"}`, server)
	require.Equal(t, http.StatusOK, recorder.Code)

	var got tracker.DailyStatus
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, 250, got.ConsumedML)
	require.Equal(t, 10, got.Percent)
}

func TestRouter_LogDrinkUnknownType(t *testing.T) {
	trackerSvc := &stubTrackerService{
		logDrinkFn: func(ctx context.Context, userID, drinkType string) (tracker.DailyStatus, error) {
			return tracker.DailyStatus{}, apperrors.Wrap("invalid_input", "unknown drink type", nil)
		},
	}
	server := newRouterWithServices(t, &stubPlanService{}, trackerSvc, &stubChatService{}, &stubShopService{})

	recorder := performRequest(http.MethodPost, "/api/v1/drinks/log", `{"userId":"user-1","drinkType":"Soda"}`, server)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "unknown drink type")
}

func TestRouter_ChatUpstreamError(t *testing.T) {
	chatSvc := &stubChatService{
		sendFn: func(ctx context.Context, req chat.Request) (chat.Response, error) {
			return chat.Response{}, apperrors.Wrap("llm_error", "completion failed", nil)
		},
	}
	server := newRouterWithServices(t, &stubPlanService{}, &stubTrackerService{}, chatSvc, &stubShopService{})

	recorder := performRequest(http.MethodPost, "/api/v1/chat", `{"message":"how much water?"}`, server)
	require.Equal(t, http.StatusBadGateway, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "llm_error", errBody["error"]["code"])
}

func TestRouter_ShopRecommendationsNotFound(t *testing.T) {
	server := newRouterWithServices(t, &stubPlanService{}, &stubTrackerService{}, &stubChatService{}, &stubShopService{})

	recorder := performRequest(http.MethodGet, "/api/v1/shop/recommendations?userId=user-1", "", server)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRouter_ShopHandoffAccepted(t *testing.T) {
	shopSvc := &stubShopService{
		receiveFn: func(ctx context.Context, handoff shop.Handoff) error {
			require.Equal(t, "user-1", handoff.UserID)
			require.Contains(t, handoff.Plan.Plan, "electrolyte")
			return nil
		},
	}
	server := newRouterWithServices(t, &stubPlanService{}, &stubTrackerService{}, &stubChatService{}, shopSvc)

	body := `{"userId":"user-1","plan":{"plan":"Add an electrolyte drink after training.","timeline":{"totalTarget":2500,"units":"ml","timepoints":[]},"planId":"resp_1","responseId":"resp_1","source":"openai_responses_api"}}`
	recorder := performRequest(http.MethodPost, "/api/v1/shop/handoff", body, server)
	require.Equal(t, http.StatusAccepted, recorder.Code)
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, planSvc plan.Service) *http.Server {
	t.Helper()
	return newRouterWithServices(t, planSvc, &stubTrackerService{}, &stubChatService{}, &stubShopService{})
}

func newRouterWithServices(t *testing.T, planSvc plan.Service, trackerSvc tracker.Service, chatSvc chat.Service, shopSvc shop.Service) *http.Server {
	t.Helper()
	handler := NewHandler(planSvc, trackerSvc, chatSvc, shopSvc, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubPlanService struct {
	generateFn func(ctx context.Context, req plan.Request) (plan.GeneratedPlan, error)
}

func (s *stubPlanService) GeneratePlan(ctx context.Context, req plan.Request) (plan.GeneratedPlan, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, req)
	}
	return plan.GeneratedPlan{}, nil
}

type stubTrackerService struct {
	logDrinkFn func(ctx context.Context, userID, drinkType string) (tracker.DailyStatus, error)
}

func (s *stubTrackerService) Catalog() []tracker.Drink {
	return tracker.DefaultCatalog
}

func (s *stubTrackerService) LogDrink(ctx context.Context, userID, drinkType string) (tracker.DailyStatus, error) {
	if s.logDrinkFn != nil {
		return s.logDrinkFn(ctx, userID, drinkType)
	}
	return tracker.DailyStatus{}, nil
}

func (s *stubTrackerService) Status(ctx context.Context, userID string) (tracker.DailyStatus, error) {
	return tracker.DailyStatus{}, nil
}

func (s *stubTrackerService) History(ctx context.Context, userID string, limit int) ([]tracker.DayTotal, error) {
	return []tracker.DayTotal{}, nil
}

func (s *stubTrackerService) LogRefill(ctx context.Context, userID string) (tracker.Impact, error) {
	return tracker.Impact{}, nil
}

func (s *stubTrackerService) Impact(ctx context.Context, userID string) (tracker.Impact, error) {
	return tracker.Impact{}, nil
}

type stubChatService struct {
	sendFn func(ctx context.Context, req chat.Request) (chat.Response, error)
}

func (s *stubChatService) Send(ctx context.Context, req chat.Request) (chat.Response, error) {
	if s.sendFn != nil {
		return s.sendFn(ctx, req)
	}
	return chat.Response{}, nil
}

func (s *stubChatService) History(ctx context.Context, sessionID string) ([]chat.Entry, error) {
	return []chat.Entry{}, nil
}

type stubShopService struct {
	receiveFn func(ctx context.Context, handoff shop.Handoff) error
}

func (s *stubShopService) Receive(ctx context.Context, handoff shop.Handoff) error {
	if s.receiveFn != nil {
		return s.receiveFn(ctx, handoff)
	}
	return nil
}

func (s *stubShopService) Recommendations(ctx context.Context, userID string) (shop.Recommendations, bool, error) {
	return shop.Recommendations{}, false, nil
}
