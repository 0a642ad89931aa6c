package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TimesheetStatus string

const (
	TimesheetStatusDraft           TimesheetStatus = "Draft"
	TimesheetStatusSubmitted       TimesheetStatus = "Submitted"
	TimesheetStatusPartiallyBilled TimesheetStatus = "Partially Billed"
	TimesheetStatusBilled          TimesheetStatus = "Billed"
	TimesheetStatusCancelled       TimesheetStatus = "Cancelled"
)

// DocStatus is the lifecycle stage shared by timesheets and invoices
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

var hundred = decimal.NewFromInt(100)

type Timesheet struct {
	ID            int64
	Name          string
	Employee      string
	Company       string
	Customer      string
	ParentProject string
	Currency      string
	Note          string
	StartDate     time.Time
	EndDate       time.Time

	TimeLogs []*TimeLog

	TotalHours          decimal.Decimal
	TotalBillableHours  decimal.Decimal
	TotalBillableAmount decimal.Decimal
	TotalBilledHours    decimal.Decimal
	TotalBilledAmount   decimal.Decimal
	TotalCostingAmount  decimal.Decimal
	PerBilled           decimal.Decimal

	Status    TimesheetStatus
	DocStatus DocStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTimesheet creates an empty draft timesheet for an employee
func NewTimesheet(employee string) *Timesheet {
	now := time.Now()
	return &Timesheet{
		Employee:  strings.TrimSpace(employee),
		Status:    TimesheetStatusDraft,
		DocStatus: DocStatusDraft,
		TimeLogs:  make([]*TimeLog, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendLog adds a log at the end of the sheet and returns it
func (t *Timesheet) AppendLog(log *TimeLog) *TimeLog {
	if log.Company == "" {
		log.Company = t.Company
	}
	t.TimeLogs = append(t.TimeLogs, log)
	t.renumber()
	return log
}

// RemoveLog drops the log at the given 1-based row
func (t *Timesheet) RemoveLog(row int) error {
	if row < 1 || row > len(t.TimeLogs) {
		return invalid("time_logs", "row out of range")
	}
	t.TimeLogs = append(t.TimeLogs[:row-1], t.TimeLogs[row:]...)
	t.renumber()
	return nil
}

func (t *Timesheet) renumber() {
	for i, log := range t.TimeLogs {
		log.Idx = i + 1
	}
}

// CanEdit returns true if logs may still be changed
func (t *Timesheet) CanEdit() bool {
	return t.DocStatus == DocStatusDraft
}

// CalculateTotals recomputes the hour and amount totals from the logs
func (t *Timesheet) CalculateTotals() {
	t.TotalHours = decimal.Zero
	t.TotalBillableHours = decimal.Zero
	t.TotalBillableAmount = decimal.Zero
	t.TotalCostingAmount = decimal.Zero
	t.StartDate = time.Time{}
	t.EndDate = time.Time{}

	for _, log := range t.TimeLogs {
		t.TotalHours = t.TotalHours.Add(log.Hours)
		if log.IsBillable {
			t.TotalBillableHours = t.TotalBillableHours.Add(log.BillingHours)
		}
		t.TotalBillableAmount = t.TotalBillableAmount.Add(log.BillingAmount)
		t.TotalCostingAmount = t.TotalCostingAmount.Add(log.CostingAmount)

		if !log.FromTime.IsZero() && (t.StartDate.IsZero() || log.FromTime.Before(t.StartDate)) {
			t.StartDate = log.FromTime
		}
		if !log.ToTime.IsZero() && log.ToTime.After(t.EndDate) {
			t.EndDate = log.ToTime
		}
	}
	t.UpdatedAt = time.Now()
}

// CalculateBilledTotals sums the logs consumed by submitted invoices.
// isSubmitted reports whether a given invoice name has been submitted.
func (t *Timesheet) CalculateBilledTotals(isSubmitted func(invoice string) bool) {
	t.TotalBilledHours = decimal.Zero
	t.TotalBilledAmount = decimal.Zero
	for _, log := range t.TimeLogs {
		if !log.IsInvoiced() || !isSubmitted(log.SalesInvoice) {
			continue
		}
		t.TotalBilledHours = t.TotalBilledHours.Add(log.BillingHours)
		t.TotalBilledAmount = t.TotalBilledAmount.Add(log.BillingAmount)
	}
}

// CalculatePercentageBilled derives PerBilled. Amounts take precedence over
// hours whenever any billable amount exists. The result is not clamped.
func (t *Timesheet) CalculatePercentageBilled() {
	switch {
	case t.TotalBillableAmount.IsPositive():
		t.PerBilled = t.TotalBilledAmount.Mul(hundred).Div(t.TotalBillableAmount)
	case t.TotalBillableHours.IsPositive():
		t.PerBilled = t.TotalBilledHours.Mul(hundred).Div(t.TotalBillableHours)
	default:
		t.PerBilled = decimal.Zero
	}
}

// SetStatus derives Status from DocStatus and PerBilled
func (t *Timesheet) SetStatus() {
	switch t.DocStatus {
	case DocStatusDraft:
		t.Status = TimesheetStatusDraft
	case DocStatusCancelled:
		t.Status = TimesheetStatusCancelled
	default:
		switch {
		case t.PerBilled.GreaterThanOrEqual(hundred):
			t.Status = TimesheetStatusBilled
		case t.PerBilled.IsPositive():
			t.Status = TimesheetStatusPartiallyBilled
		default:
			t.Status = TimesheetStatusSubmitted
		}
	}
}

// Submit moves a draft to submitted
func (t *Timesheet) Submit() error {
	if t.DocStatus != DocStatusDraft {
		return errors.New("only draft timesheets can be submitted")
	}
	if len(t.TimeLogs) == 0 {
		return invalid("time_logs", "at least one time log is required")
	}
	t.DocStatus = DocStatusSubmitted
	t.SetStatus()
	t.UpdatedAt = time.Now()
	return nil
}

// Cancel moves a submitted timesheet to cancelled
func (t *Timesheet) Cancel() error {
	if t.DocStatus != DocStatusSubmitted {
		return errors.New("only submitted timesheets can be cancelled")
	}
	for _, log := range t.TimeLogs {
		if log.IsInvoiced() {
			return errors.New("timesheet is linked to sales invoice " + log.SalesInvoice)
		}
	}
	t.DocStatus = DocStatusCancelled
	t.SetStatus()
	t.UpdatedAt = time.Now()
	return nil
}

// UnbilledLogs returns the billable logs no invoice has consumed yet
func (t *Timesheet) UnbilledLogs() []*TimeLog {
	logs := make([]*TimeLog, 0)
	for _, log := range t.TimeLogs {
		if log.IsUnbilled() {
			logs = append(logs, log)
		}
	}
	return logs
}

// Validate returns an error if the timesheet or any of its logs is invalid
func (t *Timesheet) Validate() error {
	if strings.TrimSpace(t.Employee) == "" {
		return invalid("employee", "employee is required")
	}
	for _, log := range t.TimeLogs {
		if err := log.Validate(); err != nil {
			return err
		}
	}
	return nil
}
