package tracker

import "time"

// Drink is one catalog entry the dashboard can log with a single tap.
type Drink struct {
	Type     string `json:"type"`
	AmountML int    `json:"amountMl"`
	Icon     string `json:"icon"`
}

// DefaultCatalog mirrors the drinks offered on the dashboard.
var DefaultCatalog = []Drink{
	{Type: "Water", AmountML: 250, Icon: "💧"},
	{Type: "Sport Drink", AmountML: 330, Icon: "🏃"},
	{Type: "Coconut Water", AmountML: 300, Icon: "🥥"},
	{Type: "Mineral Water", AmountML: 250, Icon: "💎"},
}

// IntakeEntry is one logged drink.
type IntakeEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	DrinkType string    `json:"drinkType"`
	AmountML  int       `json:"amountMl"`
	LoggedAt  time.Time `json:"loggedAt"`
}

// RefillVisit records one trip to a refill station instead of a bottle.
type RefillVisit struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	VisitedAt time.Time `json:"visitedAt"`
}

// DailyStatus is the hydration-level card state.
type DailyStatus struct {
	Date       string `json:"date"`
	ConsumedML int    `json:"consumedMl"`
	GoalML     int    `json:"goalMl"`
	Percent    int    `json:"percent"`
	Message    string `json:"message"`
}

// DayTotal is one row of the intake history.
type DayTotal struct {
	Date    string `json:"date"`
	TotalML int    `json:"totalMl"`
}

// Impact summarizes the environmental savings card.
type Impact struct {
	BottlesAvoided  int     `json:"bottlesAvoided"`
	CO2SavedKG      float64 `json:"co2SavedKg"`
	TreesEquivalent int     `json:"treesEquivalent"`
}

// Config wires runtime settings for the tracker domain.
type Config struct {
	DailyGoalML int
}
