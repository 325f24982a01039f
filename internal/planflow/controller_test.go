package planflow

import (
	"context"
	"io"
	"sync"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/require"

	"github.com/waterbar/waterbar/internal/domain/plan"
	"github.com/waterbar/waterbar/internal/domain/shop"
	apperrors "github.com/waterbar/waterbar/pkg/errors"
)

func validRequest() plan.Request {
	avg := 1800.0
	return plan.Request{
		UserData:      &plan.UserProfile{Weight: 70, Height: 175, ActivityLevel: "High"},
		HydrationData: &plan.HydrationContext{RecentAverage: &avg},
		Timeframe:     plan.TimeframeDay,
	}
}

func generatedFixture(id string) plan.GeneratedPlan {
	return plan.GeneratedPlan{
		Plan:       "Drink steadily through the day.",
		Timeline:   plan.Timeline{TotalTarget: 2500, Units: "ml", Timepoints: []plan.TimePoint{}},
		PlanID:     id,
		ResponseID: id,
		Source:     "openai_responses_api",
	}
}

func TestController_GenerateSuccessAdvancesToPlan(t *testing.T) {
	gen := &stubFlowGenerator{result: generatedFixture("resp_1")}
	ctrl := NewController(gen, &stubShopSink{}, testLogger())

	require.Equal(t, StepOptions, ctrl.Step())
	require.NoError(t, ctrl.Generate(context.Background(), validRequest()))
	require.Equal(t, StepPlan, ctrl.Step())

	got, ok := ctrl.Plan()
	require.True(t, ok)
	require.Equal(t, "resp_1", got.PlanID)
	require.Empty(t, ctrl.LastError())
}

func TestController_FailureReturnsToOptionsWithError(t *testing.T) {
	gen := &stubFlowGenerator{err: apperrors.Wrap("generation_failed", "Error generating hydration plan", nil)}
	ctrl := NewController(gen, &stubShopSink{}, testLogger())

	err := ctrl.Generate(context.Background(), validRequest())
	require.Error(t, err)
	require.Equal(t, StepOptions, ctrl.Step())
	require.NotEmpty(t, ctrl.LastError())

	_, ok := ctrl.Plan()
	require.False(t, ok)
}

func TestController_FailedRefreshPreservesExistingPlan(t *testing.T) {
	gen := &stubFlowGenerator{result: generatedFixture("resp_1")}
	ctrl := NewController(gen, &stubShopSink{}, testLogger())
	require.NoError(t, ctrl.Generate(context.Background(), validRequest()))

	gen.setErr(apperrors.Wrap("generation_failed", "upstream down", nil))
	require.Error(t, ctrl.Generate(context.Background(), validRequest()))

	require.Equal(t, StepOptions, ctrl.Step())
	got, ok := ctrl.Plan()
	require.True(t, ok)
	require.Equal(t, "resp_1", got.PlanID)
}

func TestController_PreviousPlanIDResentOnNextGenerate(t *testing.T) {
	gen := &stubFlowGenerator{result: generatedFixture("resp_1")}
	ctrl := NewController(gen, &stubShopSink{}, testLogger())
	require.NoError(t, ctrl.Generate(context.Background(), validRequest()))

	gen.setResult(generatedFixture("resp_2"))
	require.NoError(t, ctrl.Generate(context.Background(), validRequest()))

	require.Equal(t, "resp_1", gen.lastRequest().PreviousPlanID)
	got, _ := ctrl.Plan()
	require.Equal(t, "resp_2", got.PlanID)
}

func TestController_ConcurrentGenerateRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	gen := &stubFlowGenerator{result: generatedFixture("resp_1"), block: release, onStart: started}
	ctrl := NewController(gen, &stubShopSink{}, testLogger())

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Generate(context.Background(), validRequest())
	}()
	<-started
	require.Equal(t, StepLoading, ctrl.Step())

	err := ctrl.Generate(context.Background(), validRequest())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "generation_in_flight"))

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, 1, gen.callCount())
}

func TestController_TimelineNavigation(t *testing.T) {
	gen := &stubFlowGenerator{result: generatedFixture("resp_1")}
	ctrl := NewController(gen, &stubShopSink{}, testLogger())

	require.False(t, ctrl.ViewTimeline())

	require.NoError(t, ctrl.Generate(context.Background(), validRequest()))
	require.True(t, ctrl.ViewTimeline())
	require.Equal(t, StepTimeline, ctrl.Step())

	ctrl.Back()
	require.Equal(t, StepPlan, ctrl.Step())
}

func TestController_NewPlanDiscardsCurrent(t *testing.T) {
	gen := &stubFlowGenerator{result: generatedFixture("resp_1")}
	ctrl := NewController(gen, &stubShopSink{}, testLogger())
	require.NoError(t, ctrl.Generate(context.Background(), validRequest()))

	ctrl.NewPlan()
	require.Equal(t, StepOptions, ctrl.Step())
	_, ok := ctrl.Plan()
	require.False(t, ok)

	gen.setResult(generatedFixture("resp_2"))
	require.NoError(t, ctrl.Generate(context.Background(), validRequest()))
	require.Equal(t, "resp_1", gen.lastRequest().PreviousPlanID)
}

func TestController_SendToShopRequiresPlan(t *testing.T) {
	sink := &stubShopSink{}
	ctrl := NewController(&stubFlowGenerator{result: generatedFixture("resp_1")}, sink, testLogger())

	err := ctrl.SendToShop(context.Background(), "user-1")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "no_plan"))

	require.NoError(t, ctrl.Generate(context.Background(), validRequest()))
	require.NoError(t, ctrl.SendToShop(context.Background(), "user-1"))
	require.Equal(t, "user-1", sink.last.UserID)
	require.Equal(t, "resp_1", sink.last.Plan.PlanID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubFlowGenerator struct {
	mu      sync.Mutex
	result  plan.GeneratedPlan
	err     error
	calls   int
	lastReq plan.Request
	block   chan struct{}
	onStart chan struct{}
}

func (s *stubFlowGenerator) Generate(ctx context.Context, req plan.Request) (plan.GeneratedPlan, error) {
	s.mu.Lock()
	s.calls++
	s.lastReq = req
	block := s.block
	onStart := s.onStart
	result, err := s.result, s.err
	s.mu.Unlock()

	if onStart != nil {
		onStart <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return plan.GeneratedPlan{}, err
	}
	return result, nil
}

func (s *stubFlowGenerator) setResult(result plan.GeneratedPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.err = nil
}

func (s *stubFlowGenerator) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *stubFlowGenerator) lastRequest() plan.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq
}

func (s *stubFlowGenerator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubShopSink struct {
	mu   sync.Mutex
	last shop.Handoff
	err  error
}

func (s *stubShopSink) Receive(ctx context.Context, handoff shop.Handoff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = handoff
	return s.err
}
