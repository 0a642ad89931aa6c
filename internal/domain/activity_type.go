package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ActivityType is a kind of work with its default hourly rates
type ActivityType struct {
	ID          int64
	Name        string
	BillingRate decimal.Decimal
	CostingRate decimal.Decimal
	Disabled    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewActivityType creates an activity type with the given rates
func NewActivityType(name string, billingRate, costingRate decimal.Decimal) *ActivityType {
	now := time.Now()
	return &ActivityType{
		Name:        strings.TrimSpace(name),
		BillingRate: billingRate,
		CostingRate: costingRate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Rate returns the rates used when logging time against this activity
func (a *ActivityType) Rate() ActivityRate {
	return ActivityRate{Billing: a.BillingRate, Costing: a.CostingRate}
}

// Validate returns an error if the activity type is invalid
func (a *ActivityType) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("activity type name is required")
	}
	if a.BillingRate.IsNegative() || a.CostingRate.IsNegative() {
		return errors.New("rates cannot be negative")
	}
	return nil
}
