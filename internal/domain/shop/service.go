package shop

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/waterbar/waterbar/internal/domain/plan"
	apperrors "github.com/waterbar/waterbar/pkg/errors"
	"github.com/waterbar/waterbar/pkg/util"
)

// Service receives plan handoffs and serves product recommendations.
type Service interface {
	Receive(ctx context.Context, handoff Handoff) error
	Recommendations(ctx context.Context, userID string) (Recommendations, bool, error)
}

type service struct {
	cfg    Config
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService is a wire provider for the shop domain.
func NewService(cfg Config, store Store, logger *slog.Logger) Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.MaxProducts <= 0 {
		cfg.MaxProducts = 6
	}
	return &service{
		cfg:    cfg,
		store:  store,
		logger: logger.With("component", "shop.service"),
		now:    util.NowUTC,
	}
}

// Receive accepts a plan handoff. The sender gets no recommendation data
// back; a handoff without an actual plan is rejected.
func (s *service) Receive(ctx context.Context, handoff Handoff) error {
	if strings.TrimSpace(handoff.Plan.Plan) == "" {
		return apperrors.Wrap("invalid_input", "handoff requires a generated plan", nil)
	}
	userID := strings.TrimSpace(handoff.UserID)
	if userID == "" {
		userID = "anonymous"
	}

	recs := Recommendations{
		UserID:     userID,
		PlanID:     handoff.Plan.PlanID,
		Products:   deriveProducts(handoff.Plan, s.cfg.MaxProducts),
		ReceivedAt: s.now(),
	}
	if err := s.store.Save(ctx, userID, recs, s.cfg.TTL); err != nil {
		return apperrors.Wrap("storage_error", "failed to save recommendations", err)
	}
	s.logger.Info("plan handed off to shop", "user", userID, "plan_id", recs.PlanID, "products", len(recs.Products))
	return nil
}

func (s *service) Recommendations(ctx context.Context, userID string) (Recommendations, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "anonymous"
	}
	recs, ok, err := s.store.Latest(ctx, userID)
	if err != nil {
		return Recommendations{}, false, apperrors.Wrap("storage_error", "failed to load recommendations", err)
	}
	return recs, ok, nil
}

// deriveProducts scans the plan narrative and timeline for product cues.
func deriveProducts(generated plan.GeneratedPlan, max int) []Product {
	text := strings.ToLower(generated.Plan)

	var products []Product
	add := func(name, reason string) {
		for _, existing := range products {
			if existing.Name == name {
				return
			}
		}
		products = append(products, Product{Name: name, Reason: reason})
	}

	add("Reusable Bottle", "Track every refill against your daily target")
	if strings.Contains(text, "electrolyte") || strings.Contains(text, "sport") || strings.Contains(text, "workout") {
		add("Electrolyte Mix", "Recommended around high-activity periods in your plan")
	}
	if strings.Contains(text, "coconut") {
		add("Coconut Water", "Named in your plan as a recovery drink")
	}
	if strings.Contains(text, "mineral") {
		add("Mineral Water", "Named in your plan for steady intake")
	}
	if generated.Timeline.TotalTarget >= 3000 {
		add("1L Insulated Bottle", "Your target needs fewer, larger refills")
	}

	if len(products) > max {
		products = products[:max]
	}
	return products
}
