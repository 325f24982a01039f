package tracker

import "context"

// Repository defines the persistence contract for intake data. Dates use
// the YYYY-MM-DD form in UTC.
type Repository interface {
	SaveIntake(ctx context.Context, entry IntakeEntry) error
	IntakesOn(ctx context.Context, userID, date string) ([]IntakeEntry, error)
	DailyTotals(ctx context.Context, userID string, limit int) ([]DayTotal, error)
	SaveRefill(ctx context.Context, visit RefillVisit) error
	CountRefills(ctx context.Context, userID string) (int, error)
}
