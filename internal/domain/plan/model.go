package plan

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timeframe selects the planning horizon embedded in the generated prompt.
type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeEvent Timeframe = "event"
)

// Valid reports whether the timeframe is one of the supported horizons.
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeDay, TimeframeWeek, TimeframeEvent:
		return true
	}
	return false
}

// Profile defaults applied before prompt assembly. Absent fields are
// filled, never rejected.
const (
	DefaultWeightKG      = 70.0
	DefaultHeightCM      = 175.0
	DefaultActivityLevel = "Moderate"
	DefaultClimate       = "Moderate"
	DefaultDietary       = "None"
	DefaultUserID        = "anonymous"
	UnknownAverage       = "Unknown"
)

// UserProfile is the caller supplied profile, immutable per request.
type UserProfile struct {
	Weight              float64 `json:"weight,omitempty"`
	Height              float64 `json:"height,omitempty"`
	ActivityLevel       string  `json:"activityLevel,omitempty"`
	Climate             string  `json:"climate,omitempty"`
	DietaryRestrictions string  `json:"dietaryRestrictions,omitempty"`
	ID                  string  `json:"id,omitempty"`
}

// HydrationContext carries recent intake volume in milliliters. A nil
// RecentAverage means the caller has no tracking data yet.
type HydrationContext struct {
	RecentAverage *float64 `json:"recentAverage,omitempty"`
}

// Request aggregates everything needed to generate one plan. The three
// pointer/enum fields are required; previousPlanId is optional continuity.
type Request struct {
	UserData       *UserProfile      `json:"userData"`
	HydrationData  *HydrationContext `json:"hydrationData"`
	Timeframe      Timeframe         `json:"timeframe"`
	PreviousPlanID string            `json:"previousPlanId,omitempty"`
}

// TimePoint is one scheduled hydration milestone within a timeline.
type TimePoint struct {
	Time        string  `json:"time"`
	Amount      float64 `json:"amount"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

// Timeline holds the chronological milestones. Timepoint order is the
// presentation order and is never re-sorted.
type Timeline struct {
	TotalTarget float64     `json:"totalTarget"`
	Units       string      `json:"units"`
	Timepoints  []TimePoint `json:"timepoints"`
}

// GeneratedPlan is the normalized success payload returned to callers.
type GeneratedPlan struct {
	Plan       string    `json:"plan"`
	Timeline   Timeline  `json:"timeline"`
	PlanID     string    `json:"planId"`
	ResponseID string    `json:"responseId"`
	Generated  time.Time `json:"generated"`
	Source     string    `json:"source"`
}

// Config wires runtime settings for the plan domain.
type Config struct {
	Model          string
	RequestTimeout time.Duration
}

// ResponseInvalidError marks an upstream payload that deserialized but failed
// the plan/timeline contract. ResponseID lets callers correlate the failure
// with upstream logs.
type ResponseInvalidError struct {
	ResponseID string
	Err        error
}

func (e *ResponseInvalidError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream response invalid (response %s): %v", e.ResponseID, e.Err)
	}
	return fmt.Sprintf("upstream response invalid (response %s)", e.ResponseID)
}

func (e *ResponseInvalidError) Unwrap() error {
	return e.Err
}

// promptContext is the flat record serialized as the user turn.
type promptContext struct {
	Weight              float64         `json:"weight"`
	Height              float64         `json:"height"`
	ActivityLevel       string          `json:"activityLevel"`
	Climate             string          `json:"climate"`
	DietaryRestrictions string          `json:"dietaryRestrictions"`
	RecentAverage       json.RawMessage `json:"recentAverage"`
	Timeframe           Timeframe       `json:"timeframe"`
}
