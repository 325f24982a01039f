package tracker

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/waterbar/waterbar/pkg/errors"
	"github.com/waterbar/waterbar/pkg/util"
)

// One 500ml single-use bottle avoided per refill visit.
const (
	co2PerBottleKG = 0.135
	co2PerTreeKG   = 1.89
)

const dateLayout = "2006-01-02"

// Service exposes drink logging and the dashboard cards built from it.
type Service interface {
	Catalog() []Drink
	LogDrink(ctx context.Context, userID, drinkType string) (DailyStatus, error)
	Status(ctx context.Context, userID string) (DailyStatus, error)
	History(ctx context.Context, userID string, limit int) ([]DayTotal, error)
	LogRefill(ctx context.Context, userID string) (Impact, error)
	Impact(ctx context.Context, userID string) (Impact, error)
}

type service struct {
	cfg     Config
	catalog []Drink
	repo    Repository
	logger  *slog.Logger
	now     func() time.Time
}

// NewService is a wire provider for the tracker domain.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	if cfg.DailyGoalML <= 0 {
		cfg.DailyGoalML = 2500
	}
	return &service{
		cfg:     cfg,
		catalog: DefaultCatalog,
		repo:    repo,
		logger:  logger.With("component", "tracker.service"),
		now:     util.NowUTC,
	}
}

func (s *service) Catalog() []Drink {
	out := make([]Drink, len(s.catalog))
	copy(out, s.catalog)
	return out
}

func (s *service) LogDrink(ctx context.Context, userID, drinkType string) (DailyStatus, error) {
	userID = normalizeUser(userID)
	drink, ok := s.findDrink(drinkType)
	if !ok {
		return DailyStatus{}, apperrors.Wrap("invalid_input", "unknown drink type", nil)
	}

	entry := IntakeEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		DrinkType: drink.Type,
		AmountML:  drink.AmountML,
		LoggedAt:  s.now(),
	}
	if err := s.repo.SaveIntake(ctx, entry); err != nil {
		return DailyStatus{}, apperrors.Wrap("storage_error", "failed to save intake", err)
	}
	s.logger.Info("drink logged", "user", userID, "drink", drink.Type, "amount_ml", drink.AmountML)
	return s.Status(ctx, userID)
}

func (s *service) Status(ctx context.Context, userID string) (DailyStatus, error) {
	userID = normalizeUser(userID)
	today := s.now().Format(dateLayout)
	entries, err := s.repo.IntakesOn(ctx, userID, today)
	if err != nil {
		return DailyStatus{}, apperrors.Wrap("storage_error", "failed to load intakes", err)
	}

	consumed := 0
	for _, entry := range entries {
		consumed += entry.AmountML
	}
	percent := consumed * 100 / s.cfg.DailyGoalML
	if percent > 100 {
		percent = 100
	}
	return DailyStatus{
		Date:       today,
		ConsumedML: consumed,
		GoalML:     s.cfg.DailyGoalML,
		Percent:    percent,
		Message:    statusMessage(percent),
	}, nil
}

func (s *service) History(ctx context.Context, userID string, limit int) ([]DayTotal, error) {
	userID = normalizeUser(userID)
	if limit <= 0 {
		limit = 30
	}
	totals, err := s.repo.DailyTotals(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load history", err)
	}
	return totals, nil
}

func (s *service) LogRefill(ctx context.Context, userID string) (Impact, error) {
	userID = normalizeUser(userID)
	visit := RefillVisit{
		ID:        uuid.NewString(),
		UserID:    userID,
		VisitedAt: s.now(),
	}
	if err := s.repo.SaveRefill(ctx, visit); err != nil {
		return Impact{}, apperrors.Wrap("storage_error", "failed to save refill visit", err)
	}
	s.logger.Info("refill station visit logged", "user", userID)
	return s.Impact(ctx, userID)
}

func (s *service) Impact(ctx context.Context, userID string) (Impact, error) {
	userID = normalizeUser(userID)
	bottles, err := s.repo.CountRefills(ctx, userID)
	if err != nil {
		return Impact{}, apperrors.Wrap("storage_error", "failed to count refills", err)
	}
	saved := float64(bottles) * co2PerBottleKG
	return Impact{
		BottlesAvoided:  bottles,
		CO2SavedKG:      math.Round(saved*100) / 100,
		TreesEquivalent: int(math.Round(saved / co2PerTreeKG)),
	}, nil
}

func (s *service) findDrink(drinkType string) (Drink, bool) {
	for _, drink := range s.catalog {
		if strings.EqualFold(drink.Type, strings.TrimSpace(drinkType)) {
			return drink, true
		}
	}
	return Drink{}, false
}

func statusMessage(percent int) string {
	switch {
	case percent >= 100:
		return "Goal reached!"
	case percent >= 75:
		return "Almost at your goal"
	case percent >= 50:
		return "Getting there!"
	case percent >= 25:
		return "Keep sipping"
	default:
		return "Time to drink up"
	}
}

func normalizeUser(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "anonymous"
	}
	return userID
}
