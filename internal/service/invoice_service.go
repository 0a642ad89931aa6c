package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/repository"
)

var (
	ErrNothingToBill    = errors.New("no billable time logs left to invoice")
	ErrCustomerRequired = errors.New("customer is required to make an invoice")
)

// InvoiceOptions carries the defaults applied to generated invoices
type InvoiceOptions struct {
	NumberPrefix    string
	DefaultItem     string
	DefaultCurrency string
	DueDays         int
}

// InvoiceService turns billable time into sales invoices and reports billing
// progress back to the timesheets
type InvoiceService interface {
	// MakeSalesInvoice creates a draft invoice from the unbilled billable
	// logs of a submitted timesheet. Empty arguments fall back to the
	// timesheet, customer and configured defaults.
	MakeSalesInvoice(ctx context.Context, timesheet, itemCode, customer, currency string) (*domain.SalesInvoice, error)

	// MakeProjectInvoice creates a draft invoice from the unbilled billable
	// logs recorded against a project on all submitted timesheets
	MakeProjectInvoice(ctx context.Context, project, customer, itemCode string) (*domain.SalesInvoice, error)

	// Submit finalizes the invoice and updates billed totals of its timesheets
	Submit(ctx context.Context, name string) (*domain.SalesInvoice, error)

	// Cancel voids the invoice and releases its time logs
	Cancel(ctx context.Context, name string) (*domain.SalesInvoice, error)

	Get(ctx context.Context, name string) (*domain.SalesInvoice, error)
	List(ctx context.Context, customer string, status *domain.InvoiceStatus) ([]*domain.SalesInvoice, error)
}

type invoiceService struct {
	invoices   repository.InvoiceRepository
	timesheets repository.TimesheetRepository
	customers  repository.CustomerRepository
	projects   repository.ProjectRepository
	opts       InvoiceOptions
	log        zerolog.Logger
	now        func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoices repository.InvoiceRepository,
	timesheets repository.TimesheetRepository,
	customers repository.CustomerRepository,
	projects repository.ProjectRepository,
	opts InvoiceOptions,
	logger zerolog.Logger,
) InvoiceService {
	if opts.NumberPrefix == "" {
		opts.NumberPrefix = "ACC-SINV"
	}
	return &invoiceService{
		invoices:   invoices,
		timesheets: timesheets,
		customers:  customers,
		projects:   projects,
		opts:       opts,
		log:        logger.With().Str("component", "invoice").Logger(),
		now:        time.Now,
	}
}

func (s *invoiceService) MakeSalesInvoice(
	ctx context.Context,
	timesheet, itemCode, customer, currency string,
) (*domain.SalesInvoice, error) {
	ts, err := s.timesheets.GetByName(ctx, timesheet)
	if err != nil {
		return nil, err
	}
	if ts.DocStatus != domain.DocStatusSubmitted {
		return nil, fmt.Errorf("%w: %s", ErrTimesheetNotSubmitted, ts.Name)
	}

	logs := ts.UnbilledLogs()
	if len(logs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNothingToBill, ts.Name)
	}

	if customer == "" {
		customer = ts.Customer
	}
	if currency == "" {
		currency = ts.Currency
	}

	invoice, err := s.newInvoice(ctx, customer, currency)
	if err != nil {
		return nil, err
	}
	invoice.Company = ts.Company
	invoice.Project = ts.ParentProject
	invoice.AddTimeLogs(ts.Name, logs)

	if err := s.create(ctx, invoice, itemCode); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) MakeProjectInvoice(ctx context.Context, project, customer, itemCode string) (*domain.SalesInvoice, error) {
	p, err := s.projects.GetByName(ctx, project)
	if err != nil {
		return nil, err
	}
	if customer == "" {
		customer = p.Customer
	}

	invoice, err := s.newInvoice(ctx, customer, "")
	if err != nil {
		return nil, err
	}
	invoice.Company = p.Company
	invoice.Project = p.Name

	submitted := domain.DocStatusSubmitted
	sheets, err := s.timesheets.List(ctx, repository.TimesheetFilter{Project: p.Name, DocStatus: &submitted})
	if err != nil {
		return nil, err
	}

	// Oldest sheets first so invoice rows follow the order time was logged
	for i := len(sheets) - 1; i >= 0; i-- {
		logs := make([]*domain.TimeLog, 0)
		for _, log := range sheets[i].UnbilledLogs() {
			if log.Project == p.Name {
				logs = append(logs, log)
			}
		}
		invoice.AddTimeLogs(sheets[i].Name, logs)
	}

	if len(invoice.Timesheets) == 0 {
		return nil, fmt.Errorf("%w: project %s", ErrNothingToBill, p.Name)
	}

	if err := s.create(ctx, invoice, itemCode); err != nil {
		return nil, err
	}
	return invoice, nil
}

// newInvoice names a draft invoice for the customer, resolving the currency
// from the customer or the configured default
func (s *invoiceService) newInvoice(ctx context.Context, customer, currency string) (*domain.SalesInvoice, error) {
	if customer == "" {
		return nil, ErrCustomerRequired
	}

	c, err := s.customers.GetByName(ctx, customer)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = c.DefaultCurrency
	}
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}

	now := s.now()
	name, err := s.invoices.NextName(ctx, s.opts.NumberPrefix, now.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice name: %w", err)
	}

	invoice := domain.NewSalesInvoice(name, c.Name, currency)
	invoice.PostingDate = now
	if s.opts.DueDays > 0 {
		due := now.AddDate(0, 0, s.opts.DueDays)
		invoice.DueDate = &due
	}
	return invoice, nil
}

// create builds the item lines, stamps the consumed logs and persists the
// invoice. The stamps are released again if the invoice cannot be stored.
func (s *invoiceService) create(ctx context.Context, invoice *domain.SalesInvoice, itemCode string) error {
	if itemCode == "" {
		itemCode = s.opts.DefaultItem
	}

	invoice.BuildItems(itemCode)
	invoice.CalculateTotals()
	if err := invoice.Validate(); err != nil {
		return err
	}

	ids := invoice.TimeLogIDs()
	if err := s.timesheets.SetLogInvoice(ctx, ids, invoice.Name); err != nil {
		return fmt.Errorf("failed to attach time logs: %w", err)
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		if relErr := s.timesheets.SetLogInvoice(ctx, ids, ""); relErr != nil {
			s.log.Error().Err(relErr).Str("invoice", invoice.Name).Msg("failed to release time logs")
		}
		return err
	}

	s.log.Info().
		Str("invoice", invoice.Name).
		Str("customer", invoice.Customer).
		Strs("timesheets", invoice.TimesheetNames()).
		Str("grand_total", invoice.GrandTotal.String()).
		Msg("sales invoice created")
	return nil
}

func (s *invoiceService) Submit(ctx context.Context, name string) (*domain.SalesInvoice, error) {
	invoice, err := s.invoices.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := invoice.Submit(); err != nil {
		return nil, err
	}

	if err := s.invoices.UpdateStatus(ctx, invoice); err != nil {
		return nil, err
	}

	if err := s.updateBilling(ctx, invoice.TimesheetNames()); err != nil {
		return nil, err
	}

	s.log.Info().Str("invoice", invoice.Name).Msg("sales invoice submitted")
	return invoice, nil
}

func (s *invoiceService) Cancel(ctx context.Context, name string) (*domain.SalesInvoice, error) {
	invoice, err := s.invoices.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(); err != nil {
		return nil, err
	}

	if err := s.invoices.UpdateStatus(ctx, invoice); err != nil {
		return nil, err
	}

	if err := s.timesheets.SetLogInvoice(ctx, invoice.TimeLogIDs(), ""); err != nil {
		return nil, fmt.Errorf("failed to release time logs: %w", err)
	}

	if err := s.updateBilling(ctx, invoice.TimesheetNames()); err != nil {
		return nil, err
	}

	s.log.Info().Str("invoice", invoice.Name).Msg("sales invoice cancelled")
	return invoice, nil
}

// updateBilling recomputes billed totals, percent billed and status of the
// given timesheets from the invoices that currently reference their logs
func (s *invoiceService) updateBilling(ctx context.Context, names []string) error {
	for _, name := range names {
		ts, err := s.timesheets.GetByName(ctx, name)
		if err != nil {
			return err
		}

		submitted := make(map[string]bool)
		for _, log := range ts.TimeLogs {
			if !log.IsInvoiced() {
				continue
			}
			if _, seen := submitted[log.SalesInvoice]; seen {
				continue
			}
			status, err := s.invoices.DocStatus(ctx, log.SalesInvoice)
			if err != nil {
				return err
			}
			submitted[log.SalesInvoice] = status == domain.DocStatusSubmitted
		}

		ts.CalculateBilledTotals(func(invoice string) bool { return submitted[invoice] })
		ts.CalculatePercentageBilled()
		ts.SetStatus()

		if err := s.timesheets.UpdateBilling(ctx, ts); err != nil {
			return err
		}

		s.log.Debug().
			Str("timesheet", ts.Name).
			Str("per_billed", ts.PerBilled.String()).
			Str("status", string(ts.Status)).
			Msg("timesheet billing updated")
	}
	return nil
}

func (s *invoiceService) Get(ctx context.Context, name string) (*domain.SalesInvoice, error) {
	return s.invoices.GetByName(ctx, name)
}

func (s *invoiceService) List(ctx context.Context, customer string, status *domain.InvoiceStatus) ([]*domain.SalesInvoice, error) {
	return s.invoices.List(ctx, customer, status)
}
