package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/repository"
)

// BillingSummary aggregates logged and billed time over a set of timesheets
type BillingSummary struct {
	TotalHours          decimal.Decimal
	BillableHours       decimal.Decimal
	BillableAmount      decimal.Decimal
	BilledAmount        decimal.Decimal
	UnbilledAmount      decimal.Decimal
	CostingAmount       decimal.Decimal
	ByActivity          map[string]decimal.Decimal // hours per activity type
	ByDay               map[time.Weekday]decimal.Decimal
	SubmittedTimesheets int
}

// ReportService provides aggregations over timesheets and invoices
type ReportService interface {
	// EmployeeSummary summarizes the non-cancelled timesheets of an employee
	EmployeeSummary(ctx context.Context, employee string) (*BillingSummary, error)

	// ProjectSummary summarizes the logs recorded against a project
	ProjectSummary(ctx context.Context, project string) (*BillingSummary, error)

	// OutstandingTotal sums the grand totals of unpaid invoices
	OutstandingTotal(ctx context.Context) (decimal.Decimal, error)
}

type reportService struct {
	timesheets repository.TimesheetRepository
	invoices   repository.InvoiceRepository
}

// NewReportService creates a new report service
func NewReportService(
	timesheets repository.TimesheetRepository,
	invoices repository.InvoiceRepository,
) ReportService {
	return &reportService{
		timesheets: timesheets,
		invoices:   invoices,
	}
}

func newBillingSummary() *BillingSummary {
	return &BillingSummary{
		ByActivity: make(map[string]decimal.Decimal),
		ByDay:      make(map[time.Weekday]decimal.Decimal),
	}
}

func (s *reportService) EmployeeSummary(ctx context.Context, employee string) (*BillingSummary, error) {
	sheets, err := s.timesheets.List(ctx, repository.TimesheetFilter{Employee: employee})
	if err != nil {
		return nil, err
	}

	summary := newBillingSummary()
	for _, ts := range sheets {
		summary.addSheet(ts, func(*domain.TimeLog) bool { return true })
	}
	return summary, nil
}

func (s *reportService) ProjectSummary(ctx context.Context, project string) (*BillingSummary, error) {
	sheets, err := s.timesheets.List(ctx, repository.TimesheetFilter{Project: project})
	if err != nil {
		return nil, err
	}

	summary := newBillingSummary()
	for _, ts := range sheets {
		summary.addSheet(ts, func(log *domain.TimeLog) bool { return log.Project == project })
	}
	return summary, nil
}

// addSheet folds the matching logs of a non-cancelled timesheet into the summary.
// A log counts as billed once any invoice references it.
func (b *BillingSummary) addSheet(ts *domain.Timesheet, match func(*domain.TimeLog) bool) {
	if ts.DocStatus == domain.DocStatusCancelled {
		return
	}
	if ts.DocStatus == domain.DocStatusSubmitted {
		b.SubmittedTimesheets++
	}

	for _, log := range ts.TimeLogs {
		if !match(log) {
			continue
		}

		b.TotalHours = b.TotalHours.Add(log.Hours)
		b.CostingAmount = b.CostingAmount.Add(log.CostingAmount)
		b.ByActivity[log.ActivityType] = b.ByActivity[log.ActivityType].Add(log.Hours)

		weekday := log.FromTime.Weekday()
		b.ByDay[weekday] = b.ByDay[weekday].Add(log.Hours)

		if !log.IsBillable {
			continue
		}
		b.BillableHours = b.BillableHours.Add(log.BillingHours)
		b.BillableAmount = b.BillableAmount.Add(log.BillingAmount)
		if log.IsInvoiced() {
			b.BilledAmount = b.BilledAmount.Add(log.BillingAmount)
		} else {
			b.UnbilledAmount = b.UnbilledAmount.Add(log.BillingAmount)
		}
	}
}

func (s *reportService) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	unpaid := domain.InvoiceStatusUnpaid
	invoices, err := s.invoices.List(ctx, "", &unpaid)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, invoice := range invoices {
		total = total.Add(invoice.GrandTotal)
	}
	return total, nil
}
