package shop

import (
	"context"
	"time"

	"github.com/waterbar/waterbar/internal/domain/plan"
)

// Product is one recommended item on the shop surface.
type Product struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Recommendations is the latest product snapshot derived from a plan.
type Recommendations struct {
	UserID     string    `json:"userId"`
	PlanID     string    `json:"planId"`
	Products   []Product `json:"products"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Handoff is the fire-and-forget payload sent from the plan surface.
type Handoff struct {
	UserID string             `json:"userId,omitempty"`
	Plan   plan.GeneratedPlan `json:"plan"`
}

// Config wires runtime settings for the shop domain.
type Config struct {
	TTL         time.Duration
	MaxProducts int
}

// Store defines the persistence contract for recommendation snapshots.
type Store interface {
	Save(ctx context.Context, userID string, recs Recommendations, ttl time.Duration) error
	Latest(ctx context.Context, userID string) (Recommendations, bool, error)
}
