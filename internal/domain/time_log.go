package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var hourNanos = decimal.NewFromInt(int64(time.Hour))

// ActivityRate holds the hourly rates configured for an activity type
type ActivityRate struct {
	Billing decimal.Decimal
	Costing decimal.Decimal
}

// TimeLog is a single logged interval within a timesheet
type TimeLog struct {
	ID            int64
	Idx           int // 1-based position inside the timesheet
	ActivityType  string
	Description   string
	FromTime      time.Time
	ToTime        time.Time
	Hours         decimal.Decimal
	ExpectedHours decimal.Decimal
	IsBillable    bool
	BillingHours  decimal.Decimal
	BillingRate   decimal.Decimal
	BillingAmount decimal.Decimal
	CostingRate   decimal.Decimal
	CostingAmount decimal.Decimal
	Project       string
	Task          string
	Company       string
	SalesInvoice  string // set once an invoice consumes this log
}

// HoursBetween returns the fractional number of hours from start to end
func HoursBetween(start, end time.Time) decimal.Decimal {
	return HoursOf(end.Sub(start))
}

// HoursOf converts a duration to fractional hours
func HoursOf(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(hourNanos)
}

// DurationOf converts fractional hours to a duration
func DurationOf(hours decimal.Decimal) time.Duration {
	return time.Duration(hours.Mul(hourNanos).IntPart())
}

// NormalizeTimes fills in whichever of ToTime or Hours is derivable.
// An explicit ToTime always determines Hours; Hours only determines
// ToTime when ToTime is missing.
func (l *TimeLog) NormalizeTimes() {
	if l.FromTime.IsZero() {
		return
	}
	if l.ToTime.IsZero() {
		if l.Hours.IsPositive() {
			l.ToTime = l.FromTime.Add(DurationOf(l.Hours))
		}
		return
	}
	l.Hours = HoursBetween(l.FromTime, l.ToTime)
}

// ApplyRates computes billing and costing figures from the activity rates
func (l *TimeLog) ApplyRates(rate ActivityRate) {
	l.CostingRate = rate.Costing
	l.CostingAmount = rate.Costing.Mul(l.Hours)

	if !l.IsBillable {
		l.BillingRate = decimal.Zero
		l.BillingHours = decimal.Zero
		l.BillingAmount = decimal.Zero
		return
	}

	l.BillingRate = rate.Billing
	l.BillingHours = l.Hours
	l.BillingAmount = rate.Billing.Mul(l.Hours)
}

// Overlaps reports whether the log shares any instant with [from, to).
// Intervals that only touch at an endpoint do not overlap.
func (l *TimeLog) Overlaps(from, to time.Time) bool {
	return l.FromTime.Before(to) && from.Before(l.ToTime)
}

// Shift moves the log by d, keeping its hours
func (l *TimeLog) Shift(d time.Duration) {
	l.FromTime = l.FromTime.Add(d)
	l.ToTime = l.FromTime.Add(DurationOf(l.Hours))
}

// IsInvoiced returns true if an invoice has consumed the log
func (l *TimeLog) IsInvoiced() bool {
	return l.SalesInvoice != ""
}

// IsUnbilled returns true if the log is billable and not yet invoiced
func (l *TimeLog) IsUnbilled() bool {
	return l.IsBillable && !l.IsInvoiced()
}

// Validate returns an error if the log is invalid
func (l *TimeLog) Validate() error {
	field := fmt.Sprintf("time_logs[%d]", l.Idx)
	if l.FromTime.IsZero() {
		return invalid(field+".from_time", "from time is required")
	}
	if l.ToTime.IsZero() {
		return invalid(field+".to_time", "to time or hours is required")
	}
	if !l.ToTime.After(l.FromTime) {
		return invalid(field+".to_time", "to time must be after from time")
	}
	if l.Hours.IsNegative() {
		return invalid(field+".hours", "hours cannot be negative")
	}
	if l.ExpectedHours.IsNegative() {
		return invalid(field+".expected_hours", "expected hours cannot be negative")
	}
	return nil
}
