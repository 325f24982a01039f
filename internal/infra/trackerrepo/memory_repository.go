package trackerrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/waterbar/waterbar/internal/domain/tracker"
)

// MemoryRepository keeps intake data in process memory. It backs local
// development and tests when no Postgres DSN is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	intakes []tracker.IntakeEntry
	refills []tracker.RefillVisit
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) SaveIntake(ctx context.Context, entry tracker.IntakeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intakes = append(r.intakes, entry)
	return nil
}

func (r *MemoryRepository) IntakesOn(ctx context.Context, userID, date string) ([]tracker.IntakeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []tracker.IntakeEntry
	for _, entry := range r.intakes {
		if entry.UserID == userID && entry.LoggedAt.UTC().Format("2006-01-02") == date {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *MemoryRepository) DailyTotals(ctx context.Context, userID string, limit int) ([]tracker.DayTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	totals := make(map[string]int)
	for _, entry := range r.intakes {
		if entry.UserID == userID {
			totals[entry.LoggedAt.UTC().Format("2006-01-02")] += entry.AmountML
		}
	}
	out := make([]tracker.DayTotal, 0, len(totals))
	for date, total := range totals {
		out = append(out, tracker.DayTotal{Date: date, TotalML: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) SaveRefill(ctx context.Context, visit tracker.RefillVisit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refills = append(r.refills, visit)
	return nil
}

func (r *MemoryRepository) CountRefills(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, visit := range r.refills {
		if visit.UserID == userID {
			count++
		}
	}
	return count, nil
}
