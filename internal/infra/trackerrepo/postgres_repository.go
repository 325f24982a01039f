package trackerrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/waterbar/waterbar/internal/domain/tracker"
)

// PostgresRepository implements tracker.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveIntake inserts one logged drink.
func (r *PostgresRepository) SaveIntake(ctx context.Context, entry tracker.IntakeEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO intakes (id, user_id, drink_type, amount_ml, logged_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.UserID, entry.DrinkType, entry.AmountML, entry.LoggedAt)
	return err
}

// IntakesOn fetches the drinks logged on one UTC day.
func (r *PostgresRepository) IntakesOn(ctx context.Context, userID, date string) ([]tracker.IntakeEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, drink_type, amount_ml, logged_at
		FROM intakes
		WHERE user_id = $1 AND (logged_at AT TIME ZONE 'UTC')::date = $2::date
		ORDER BY logged_at
	`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tracker.IntakeEntry
	for rows.Next() {
		var entry tracker.IntakeEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.DrinkType, &entry.AmountML, &entry.LoggedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// DailyTotals aggregates intake volume per day, newest first.
func (r *PostgresRepository) DailyTotals(ctx context.Context, userID string, limit int) ([]tracker.DayTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char((logged_at AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(amount_ml), 0) AS total
		FROM intakes
		WHERE user_id = $1
		GROUP BY day
		ORDER BY day DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tracker.DayTotal
	for rows.Next() {
		var total tracker.DayTotal
		if err := rows.Scan(&total.Date, &total.TotalML); err != nil {
			return nil, err
		}
		out = append(out, total)
	}
	return out, rows.Err()
}

// SaveRefill inserts one refill-station visit.
func (r *PostgresRepository) SaveRefill(ctx context.Context, visit tracker.RefillVisit) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refill_visits (id, user_id, visited_at)
		VALUES ($1, $2, $3)
	`, visit.ID, visit.UserID, visit.VisitedAt)
	return err
}

// CountRefills returns the lifetime refill visit count.
func (r *PostgresRepository) CountRefills(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM refill_visits WHERE user_id = $1
	`, userID).Scan(&count)
	return count, err
}
