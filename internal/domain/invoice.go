package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "Draft"
	InvoiceStatusUnpaid    InvoiceStatus = "Unpaid"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

type SalesInvoice struct {
	ID          int64
	Name        string
	Customer    string
	Company     string
	Currency    string
	Project     string
	PostingDate time.Time
	DueDate     *time.Time

	Items      []*SalesInvoiceItem
	Timesheets []*SalesInvoiceTimesheet

	TotalBillingHours  decimal.Decimal
	TotalBillingAmount decimal.Decimal
	GrandTotal         decimal.Decimal

	DocStatus DocStatus
	Status    InvoiceStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SalesInvoiceItem is one billed line; qty is in hours
type SalesInvoiceItem struct {
	ID          int64
	Idx         int
	ItemCode    string
	Description string
	Qty         decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// SalesInvoiceTimesheet links an invoice to one consumed time log
type SalesInvoiceTimesheet struct {
	ID            int64
	Timesheet     string
	TimeLogID     int64
	ActivityType  string
	Project       string
	BillingHours  decimal.Decimal
	BillingRate   decimal.Decimal
	BillingAmount decimal.Decimal
}

// NewSalesInvoice creates a new draft invoice
func NewSalesInvoice(name, customer, currency string) *SalesInvoice {
	now := time.Now()
	return &SalesInvoice{
		Name:        name,
		Customer:    customer,
		Currency:    currency,
		PostingDate: now,
		Status:      InvoiceStatusDraft,
		DocStatus:   DocStatusDraft,
		Items:       make([]*SalesInvoiceItem, 0),
		Timesheets:  make([]*SalesInvoiceTimesheet, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddTimeLogs attaches logs of a timesheet to the invoice
func (i *SalesInvoice) AddTimeLogs(timesheet string, logs []*TimeLog) {
	for _, log := range logs {
		i.Timesheets = append(i.Timesheets, &SalesInvoiceTimesheet{
			Timesheet:     timesheet,
			TimeLogID:     log.ID,
			ActivityType:  log.ActivityType,
			Project:       log.Project,
			BillingHours:  log.BillingHours,
			BillingRate:   log.BillingRate,
			BillingAmount: log.BillingAmount,
		})
	}
}

// BuildItems replaces the item lines with one line per distinct rate,
// summing the hours of the attached logs as quantity
func (i *SalesInvoice) BuildItems(itemCode string) {
	i.Items = make([]*SalesInvoiceItem, 0)
	byRate := make(map[string]*SalesInvoiceItem)

	for _, row := range i.Timesheets {
		key := row.BillingRate.String()
		item, ok := byRate[key]
		if !ok {
			item = &SalesInvoiceItem{
				Idx:         len(i.Items) + 1,
				ItemCode:    itemCode,
				Description: fmt.Sprintf("Billable time at %s per hour", row.BillingRate.StringFixed(2)),
				Rate:        row.BillingRate,
			}
			byRate[key] = item
			i.Items = append(i.Items, item)
		}
		item.Qty = item.Qty.Add(row.BillingHours)
		item.Amount = item.Amount.Add(row.BillingAmount)
	}
}

// CalculateTotals recalculates the billing totals and grand total
func (i *SalesInvoice) CalculateTotals() {
	i.TotalBillingHours = decimal.Zero
	i.TotalBillingAmount = decimal.Zero
	for _, row := range i.Timesheets {
		i.TotalBillingHours = i.TotalBillingHours.Add(row.BillingHours)
		i.TotalBillingAmount = i.TotalBillingAmount.Add(row.BillingAmount)
	}

	i.GrandTotal = decimal.Zero
	for _, item := range i.Items {
		i.GrandTotal = i.GrandTotal.Add(item.Amount)
	}
	i.UpdatedAt = time.Now()
}

// TimesheetNames returns the distinct timesheets billed by the invoice
func (i *SalesInvoice) TimesheetNames() []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, row := range i.Timesheets {
		if !seen[row.Timesheet] {
			seen[row.Timesheet] = true
			names = append(names, row.Timesheet)
		}
	}
	return names
}

// TimeLogIDs returns the IDs of the consumed time logs
func (i *SalesInvoice) TimeLogIDs() []int64 {
	ids := make([]int64, len(i.Timesheets))
	for n, row := range i.Timesheets {
		ids[n] = row.TimeLogID
	}
	return ids
}

// Submit finalizes a draft invoice
func (i *SalesInvoice) Submit() error {
	if i.DocStatus != DocStatusDraft {
		return errors.New("only draft invoices can be submitted")
	}
	if err := i.Validate(); err != nil {
		return err
	}
	i.DocStatus = DocStatusSubmitted
	i.Status = InvoiceStatusUnpaid
	i.UpdatedAt = time.Now()
	return nil
}

// Cancel voids the invoice and releases its time logs
func (i *SalesInvoice) Cancel() error {
	if i.DocStatus == DocStatusCancelled {
		return errors.New("invoice is already cancelled")
	}
	i.DocStatus = DocStatusCancelled
	i.Status = InvoiceStatusCancelled
	i.UpdatedAt = time.Now()
	return nil
}

// Validate returns an error if the invoice is invalid
func (i *SalesInvoice) Validate() error {
	if i.Customer == "" {
		return invalid("customer", "customer is required")
	}
	if len(i.Items) == 0 {
		return invalid("items", "at least one item is required")
	}
	for _, item := range i.Items {
		if item.ItemCode == "" {
			return invalid(fmt.Sprintf("items[%d].item_code", item.Idx), "item code is required")
		}
	}
	if i.DueDate != nil && i.DueDate.Before(i.PostingDate.Truncate(24*time.Hour)) {
		return invalid("due_date", "due date cannot be before posting date")
	}
	return nil
}
