package planflow

import (
	"context"
	"sync"

	"log/slog"

	"github.com/waterbar/waterbar/internal/domain/plan"
	"github.com/waterbar/waterbar/internal/domain/shop"
	apperrors "github.com/waterbar/waterbar/pkg/errors"
)

// Step enumerates the screens of the plan request flow.
type Step string

const (
	StepOptions  Step = "options"
	StepLoading  Step = "loading"
	StepPlan     Step = "plan"
	StepTimeline Step = "timeline"
)

// Generator abstracts the plan endpoint so tests can supply stubs.
type Generator interface {
	Generate(ctx context.Context, req plan.Request) (plan.GeneratedPlan, error)
}

// ShopSink receives generated plans for product recommendations.
type ShopSink interface {
	Receive(ctx context.Context, handoff shop.Handoff) error
}

// Controller drives the options/loading/plan/timeline flow. All state is
// guarded by a single mutex; generation is single-flight.
type Controller struct {
	mu       sync.Mutex
	step     Step
	inFlight bool
	current  *plan.GeneratedPlan
	lastErr  string
	// lastPlanID is resent as previousPlanId so the model can refine
	// rather than start over.
	lastPlanID string

	client Generator
	shop   ShopSink
	logger *slog.Logger
}

// NewController starts the flow on the options screen.
func NewController(client Generator, shopSink ShopSink, logger *slog.Logger) *Controller {
	return &Controller{
		step:   StepOptions,
		client: client,
		shop:   shopSink,
		logger: logger.With("component", "planflow"),
	}
}

// Step returns the current screen.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Plan returns the current plan, if any.
func (c *Controller) Plan() (plan.GeneratedPlan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return plan.GeneratedPlan{}, false
	}
	return *c.current, true
}

// LastError returns the message from the most recent failed generation.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Generate runs one plan generation. It blocks until the server responds.
// A second call while one is in flight is rejected. On failure the flow
// returns to options with an error message; a previously generated plan is
// kept so a failed refresh does not lose it.
func (c *Controller) Generate(ctx context.Context, req plan.Request) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return apperrors.Wrap("generation_in_flight", "plan generation already in progress", nil)
	}
	c.inFlight = true
	c.step = StepLoading
	c.lastErr = ""
	if req.PreviousPlanID == "" {
		req.PreviousPlanID = c.lastPlanID
	}
	c.mu.Unlock()

	generated, err := c.client.Generate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if err != nil {
		c.step = StepOptions
		c.lastErr = err.Error()
		if c.lastErr == "" {
			c.lastErr = "plan generation failed"
		}
		c.logger.Warn("plan generation failed", "error", err)
		return err
	}

	c.current = &generated
	c.lastPlanID = generated.PlanID
	c.step = StepPlan
	return nil
}

// ViewTimeline switches to the timeline screen. Only valid from the plan
// screen.
func (c *Controller) ViewTimeline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepPlan || c.current == nil {
		return false
	}
	c.step = StepTimeline
	return true
}

// Back returns from the timeline to the plan screen.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == StepTimeline {
		c.step = StepPlan
	}
}

// NewPlan discards the current plan and returns to the options screen. The
// retained plan id survives so the next generation still refines the last
// accepted plan.
func (c *Controller) NewPlan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.step = StepOptions
}

// SendToShop forwards the current plan for product recommendations. It is a
// no-op error when no plan exists. Delivery failures are logged, not
// surfaced; the flow state does not change.
func (c *Controller) SendToShop(ctx context.Context, userID string) error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return apperrors.Wrap("no_plan", "no plan to send", nil)
	}
	handoff := shop.Handoff{UserID: userID, Plan: *c.current}
	c.mu.Unlock()

	if err := c.shop.Receive(ctx, handoff); err != nil {
		c.logger.Warn("shop handoff failed", "error", err)
		return err
	}
	return nil
}
