package store

import (
	"context"

	"github.com/ykvlv/regimen-bot/internal/domain"
)

// Repo defines storage operations for subscribers and the shared settings.
type Repo interface {
	// AddSubscriber registers a chat; added is false if it was already known.
	AddSubscriber(ctx context.Context, chatID int64) (added bool, err error)
	ListSubscribers(ctx context.Context) ([]int64, error)

	// Settings returns a consistent snapshot including the plan.
	Settings(ctx context.Context) (domain.Settings, error)
	PlanSize(ctx context.Context) (int, error)

	SetWindow(ctx context.Context, w domain.Window) error
	SetWaterGoal(ctx context.Context, goalML int) error
	AddWater(ctx context.Context, ml int) (domain.Water, error)
	ResetWater(ctx context.Context) error
	SetWaterReminder(ctx context.Context, r domain.WaterReminder) error
	ReplacePlan(ctx context.Context, entries []domain.PlanEntry) error
	ClearPlan(ctx context.Context) error

	Close() error
}
