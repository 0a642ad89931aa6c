package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andy/timesheet/internal/db"
	"github.com/andy/timesheet/internal/domain"
)

// ActivityTypeRepo is a SQLite implementation of ActivityTypeRepository
type ActivityTypeRepo struct {
	db *db.DB
}

// NewActivityTypeRepo creates a new ActivityTypeRepo
func NewActivityTypeRepo(database *db.DB) *ActivityTypeRepo {
	return &ActivityTypeRepo{db: database}
}

// Save inserts the activity type or updates the rates of an existing one
func (r *ActivityTypeRepo) Save(ctx context.Context, activity *domain.ActivityType) error {
	if err := activity.Validate(); err != nil {
		return fmt.Errorf("invalid activity type: %w", err)
	}

	activity.UpdatedAt = time.Now()

	query := `
		INSERT INTO activity_types (name, billing_rate, costing_rate, disabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			billing_rate = excluded.billing_rate,
			costing_rate = excluded.costing_rate,
			disabled = excluded.disabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		activity.Name,
		activity.BillingRate.String(),
		activity.CostingRate.String(),
		activity.Disabled,
		formatTime(activity.CreatedAt),
		formatTime(activity.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save activity type: %w", err)
	}

	err = r.db.QueryRowContext(ctx, "SELECT id FROM activity_types WHERE name = ?", activity.Name).Scan(&activity.ID)
	if err != nil {
		return fmt.Errorf("failed to get activity type ID: %w", err)
	}

	return nil
}

func (r *ActivityTypeRepo) GetByName(ctx context.Context, name string) (*domain.ActivityType, error) {
	query := `
		SELECT id, name, billing_rate, costing_rate, disabled, created_at, updated_at
		FROM activity_types
		WHERE name = ?
	`

	a := &domain.ActivityType{}
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&a.ID,
		&a.Name,
		&a.BillingRate,
		&a.CostingRate,
		&a.Disabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("activity type", name)
		}
		return nil, fmt.Errorf("failed to get activity type: %w", err)
	}

	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return a, nil
}

func (r *ActivityTypeRepo) List(ctx context.Context) ([]*domain.ActivityType, error) {
	query := `
		SELECT id, name, billing_rate, costing_rate, disabled, created_at, updated_at
		FROM activity_types
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity types: %w", err)
	}
	defer rows.Close()

	activities := make([]*domain.ActivityType, 0)
	for rows.Next() {
		a := &domain.ActivityType{}
		var createdAt, updatedAt string
		if err := rows.Scan(&a.ID, &a.Name, &a.BillingRate, &a.CostingRate, &a.Disabled, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity type: %w", err)
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity types: %w", err)
	}
	return activities, nil
}

// RateFor returns the rates of an activity. Unknown and disabled activities
// have no configured rate and yield zero.
func (r *ActivityTypeRepo) RateFor(ctx context.Context, name string) (domain.ActivityRate, error) {
	if name == "" {
		return domain.ActivityRate{}, nil
	}

	activity, err := r.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.ActivityRate{}, nil
		}
		return domain.ActivityRate{}, err
	}
	if activity.Disabled {
		return domain.ActivityRate{}, nil
	}
	return activity.Rate(), nil
}
