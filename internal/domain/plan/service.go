package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/waterbar/waterbar/internal/infra/llm"
	apperrors "github.com/waterbar/waterbar/pkg/errors"
	"github.com/waterbar/waterbar/pkg/metrics"
	"github.com/waterbar/waterbar/pkg/util"
)

// Service exposes the plan generation pipeline.
type Service interface {
	GeneratePlan(ctx context.Context, req Request) (GeneratedPlan, error)
}

type service struct {
	cfg       Config
	generator llm.Generator
	logger    *slog.Logger
	now       func() time.Time
}

// NewService is a wire provider for the plan domain.
func NewService(cfg Config, generator llm.Generator, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		generator: generator,
		logger:    logger.With("component", "plan.service"),
		now:       util.NowUTC,
	}
}

// GeneratePlan runs the full pipeline: validate, assemble the prompt, make a
// single blocking upstream call, then strictly validate and normalize the
// returned content. Any failure is terminal for the request.
func (s *service) GeneratePlan(ctx context.Context, req Request) (GeneratedPlan, error) {
	if err := validate(req); err != nil {
		return GeneratedPlan{}, err
	}

	record := buildPromptContext(req)
	payload, err := json.Marshal(record)
	if err != nil {
		return GeneratedPlan{}, apperrors.Wrap("invalid_request", "failed to encode profile context", err)
	}

	instructions := buildInstructions(req.Timeframe)
	s.logger.Debug("plan prompt assembled",
		"timeframe", req.Timeframe,
		"prompt_tokens", metrics.CountTokens(s.cfg.Model, instructions+string(payload)))

	genReq := llm.Request{
		Instructions:       instructions,
		UserPayload:        string(payload),
		PreviousResponseID: req.PreviousPlanID,
		Metadata: map[string]string{
			"user_id":   record.userID,
			"plan_type": string(req.Timeframe),
		},
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	result, err := s.generator.Generate(ctx, genReq)
	if err != nil {
		var noContent *llm.NoContentError
		if errors.As(err, &noContent) {
			s.logger.Error("upstream plan payload rejected", "response_id", noContent.ResponseID, "error", err)
			return GeneratedPlan{}, apperrors.Wrap("response_invalid", "upstream plan payload failed validation",
				&ResponseInvalidError{ResponseID: noContent.ResponseID, Err: err})
		}
		return GeneratedPlan{}, apperrors.Wrap("upstream_error", "plan generation request failed", err)
	}

	parsed, err := parseGeneratedContent(result.Content)
	if err != nil {
		s.logger.Error("upstream plan payload rejected", "response_id", result.ID, "error", err)
		return GeneratedPlan{}, apperrors.Wrap("response_invalid", "upstream plan payload failed validation",
			&ResponseInvalidError{ResponseID: result.ID, Err: err})
	}

	generated := GeneratedPlan{
		Plan:       parsed.Plan,
		Timeline:   parsed.Timeline,
		PlanID:     result.ID,
		ResponseID: result.ID,
		Generated:  s.now(),
		Source:     s.generator.Source(),
	}
	s.logger.Info("plan generated",
		"plan_id", generated.PlanID,
		"timeframe", req.Timeframe,
		"total_target", generated.Timeline.TotalTarget,
		"timepoints", len(generated.Timeline.Timepoints))
	return generated, nil
}

// validate enforces the presence invariant. It never triggers an upstream
// call and never rejects defaulted profile fields.
func validate(req Request) error {
	if req.UserData == nil || req.HydrationData == nil || req.Timeframe == "" {
		return apperrors.Wrap("invalid_request", "userData, hydrationData and timeframe are required", nil)
	}
	if !req.Timeframe.Valid() {
		return apperrors.Wrap("invalid_request",
			fmt.Sprintf("timeframe must be one of %q, %q or %q", TimeframeDay, TimeframeWeek, TimeframeEvent), nil)
	}
	return nil
}

type boundContext struct {
	promptContext
	userID string
}

func buildPromptContext(req Request) boundContext {
	profile := *req.UserData

	ctx := promptContext{
		Weight:              profile.Weight,
		Height:              profile.Height,
		ActivityLevel:       profile.ActivityLevel,
		Climate:             profile.Climate,
		DietaryRestrictions: profile.DietaryRestrictions,
		Timeframe:           req.Timeframe,
	}
	if ctx.Weight <= 0 {
		ctx.Weight = DefaultWeightKG
	}
	if ctx.Height <= 0 {
		ctx.Height = DefaultHeightCM
	}
	if strings.TrimSpace(ctx.ActivityLevel) == "" {
		ctx.ActivityLevel = DefaultActivityLevel
	}
	if strings.TrimSpace(ctx.Climate) == "" {
		ctx.Climate = DefaultClimate
	}
	if strings.TrimSpace(ctx.DietaryRestrictions) == "" {
		ctx.DietaryRestrictions = DefaultDietary
	}

	if avg := req.HydrationData.RecentAverage; avg != nil && *avg >= 0 {
		ctx.RecentAverage = json.RawMessage(strconv.FormatFloat(*avg, 'f', -1, 64))
	} else {
		ctx.RecentAverage = json.RawMessage(strconv.Quote(UnknownAverage))
	}

	userID := strings.TrimSpace(profile.ID)
	if userID == "" {
		userID = DefaultUserID
	}
	return boundContext{promptContext: ctx, userID: userID}
}

func buildInstructions(timeframe Timeframe) string {
	return fmt.Sprintf(`You are a professional hydration coach at The Water Bar. Create a personalized hydration plan based on the user's profile, activity level, and recent hydration data. Your response must be a valid JSON object with the following structure:
{
  "plan": "Markdown formatted hydration plan with recommendations",
  "timeline": {
    "timepoints": [
      {"time": "7:00 AM", "amount": 500, "title": "Morning hydration", "description": "Start your day with 2 glasses of water"}
    ],
    "totalTarget": 3000,
    "units": "ml"
  }
}

In the plan, include:
1. Daily water intake targets calculated based on body weight, activity level, and climate
2. Specific hydration recommendations before, during, and after activities
3. Suggested water types or hydration products based on user's needs
4. A timeline with specific hydration milestones throughout the %s
5. If there are any specific events or high activity periods, provide tailored recommendations

The plan should be in Markdown format with proper headings, lists, and emphasis.`, timeframe)
}

type generatedContent struct {
	Plan     string
	Timeline Timeline
}

// parseGeneratedContent deserializes the upstream content and applies the
// strict plan/timeline contract. It returns either fully-typed content or an
// error, never a partially-filled object.
func parseGeneratedContent(raw string) (generatedContent, error) {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))
	if sanitized == "" {
		return generatedContent{}, errors.New("empty content")
	}

	var wire struct {
		Plan     string    `json:"plan"`
		Timeline *Timeline `json:"timeline"`
	}
	if err := json.Unmarshal([]byte(sanitized), &wire); err != nil {
		return generatedContent{}, fmt.Errorf("decode plan content: %w", err)
	}

	if strings.TrimSpace(wire.Plan) == "" {
		return generatedContent{}, errors.New("plan missing")
	}
	if wire.Timeline == nil {
		return generatedContent{}, errors.New("timeline missing")
	}
	if wire.Timeline.TotalTarget <= 0 {
		return generatedContent{}, errors.New("timeline totalTarget must be positive")
	}
	for i, point := range wire.Timeline.Timepoints {
		if point.Amount < 0 {
			return generatedContent{}, fmt.Errorf("timepoint %d has negative amount", i)
		}
	}

	timeline := *wire.Timeline
	if strings.TrimSpace(timeline.Units) == "" {
		timeline.Units = "ml"
	}
	if timeline.Timepoints == nil {
		timeline.Timepoints = []TimePoint{}
	}
	return generatedContent{Plan: wire.Plan, Timeline: timeline}, nil
}
