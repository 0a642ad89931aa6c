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
	ErrTimesheetNotEditable  = errors.New("timesheet cannot be edited after submission")
	ErrTimesheetNotSubmitted = errors.New("timesheet is not submitted")
)

// TimesheetOptions carries the settings the timesheet service needs
type TimesheetOptions struct {
	NumberPrefix string
	Overlap      domain.OverlapSettings
}

// TimesheetService validates, prices and persists timesheets
type TimesheetService interface {
	// Save derives times and rates, recomputes totals, checks overlaps and
	// persists the draft. Nothing is written when any check fails.
	Save(ctx context.Context, ts *domain.Timesheet) error

	// SaveWithRetry saves, shifting the conflicting log on overlap
	SaveWithRetry(ctx context.Context, ts *domain.Timesheet, policy RetryPolicy) error

	// Submit moves a draft to submitted
	Submit(ctx context.Context, name string) (*domain.Timesheet, error)

	// Cancel moves a submitted timesheet to cancelled
	Cancel(ctx context.Context, name string) (*domain.Timesheet, error)

	Get(ctx context.Context, name string) (*domain.Timesheet, error)
	List(ctx context.Context, filter repository.TimesheetFilter) ([]*domain.Timesheet, error)

	// Delete removes a draft timesheet
	Delete(ctx context.Context, name string) error
}

type timesheetService struct {
	timesheets repository.TimesheetRepository
	employees  repository.EmployeeRepository
	activities repository.ActivityTypeRepository
	opts       TimesheetOptions
	log        zerolog.Logger
	now        func() time.Time
}

// NewTimesheetService creates a new timesheet service
func NewTimesheetService(
	timesheets repository.TimesheetRepository,
	employees repository.EmployeeRepository,
	activities repository.ActivityTypeRepository,
	opts TimesheetOptions,
	logger zerolog.Logger,
) TimesheetService {
	if opts.NumberPrefix == "" {
		opts.NumberPrefix = "TS"
	}
	return &timesheetService{
		timesheets: timesheets,
		employees:  employees,
		activities: activities,
		opts:       opts,
		log:        logger.With().Str("component", "timesheet").Logger(),
		now:        time.Now,
	}
}

func (s *timesheetService) Save(ctx context.Context, ts *domain.Timesheet) error {
	if !ts.CanEdit() {
		return ErrTimesheetNotEditable
	}

	for _, log := range ts.TimeLogs {
		log.NormalizeTimes()

		rate, err := s.activities.RateFor(ctx, log.ActivityType)
		if err != nil {
			return fmt.Errorf("failed to look up rate for %q: %w", log.ActivityType, err)
		}
		log.ApplyRates(rate)
	}

	ts.CalculateTotals()
	if err := ts.Validate(); err != nil {
		return err
	}

	employee, err := s.employees.GetByName(ctx, ts.Employee)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}
	if ts.Company == "" {
		ts.Company = employee.Company
	}
	for _, log := range ts.TimeLogs {
		if log.Company == "" {
			log.Company = ts.Company
		}
	}

	if err := s.checkOverlap(ctx, ts); err != nil {
		return err
	}

	ts.SetStatus()

	if ts.ID == 0 {
		name, err := s.timesheets.NextName(ctx, s.opts.NumberPrefix, s.now().Year())
		if err != nil {
			return fmt.Errorf("failed to generate timesheet name: %w", err)
		}
		ts.Name = name

		if err := s.timesheets.Create(ctx, ts); err != nil {
			ts.Name = ""
			return err
		}
	} else if err := s.timesheets.Update(ctx, ts); err != nil {
		return err
	}

	s.log.Info().
		Str("timesheet", ts.Name).
		Str("employee", ts.Employee).
		Str("total_hours", ts.TotalHours.String()).
		Str("total_billable_amount", ts.TotalBillableAmount.String()).
		Msg("timesheet saved")
	return nil
}

func (s *timesheetService) checkOverlap(ctx context.Context, ts *domain.Timesheet) error {
	if s.opts.Overlap.IgnoreEmployeeTimeOverlap {
		return nil
	}

	existing, err := s.timesheets.ListEmployeeLogs(ctx, ts.Employee, ts.Name)
	if err != nil {
		return err
	}

	if err := domain.CheckOverlap(ts, existing, s.opts.Overlap); err != nil {
		s.log.Warn().Err(err).Str("employee", ts.Employee).Msg("overlapping time log rejected")
		return err
	}
	return nil
}

func (s *timesheetService) SaveWithRetry(ctx context.Context, ts *domain.Timesheet, policy RetryPolicy) error {
	return RetryOnOverlap(ctx, policy, ts, func(ctx context.Context, ts *domain.Timesheet) error {
		return s.Save(ctx, ts)
	}, s.log)
}

func (s *timesheetService) Submit(ctx context.Context, name string) (*domain.Timesheet, error) {
	ts, err := s.timesheets.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	// Another sheet may have claimed the interval since this one was saved
	if err := s.checkOverlap(ctx, ts); err != nil {
		return nil, err
	}

	if err := ts.Submit(); err != nil {
		return nil, err
	}

	if err := s.timesheets.UpdateBilling(ctx, ts); err != nil {
		return nil, err
	}

	s.log.Info().Str("timesheet", ts.Name).Str("status", string(ts.Status)).Msg("timesheet submitted")
	return ts, nil
}

func (s *timesheetService) Cancel(ctx context.Context, name string) (*domain.Timesheet, error) {
	ts, err := s.timesheets.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := ts.Cancel(); err != nil {
		return nil, err
	}

	if err := s.timesheets.UpdateBilling(ctx, ts); err != nil {
		return nil, err
	}

	s.log.Info().Str("timesheet", ts.Name).Msg("timesheet cancelled")
	return ts, nil
}

func (s *timesheetService) Get(ctx context.Context, name string) (*domain.Timesheet, error) {
	return s.timesheets.GetByName(ctx, name)
}

func (s *timesheetService) List(ctx context.Context, filter repository.TimesheetFilter) ([]*domain.Timesheet, error) {
	return s.timesheets.List(ctx, filter)
}

func (s *timesheetService) Delete(ctx context.Context, name string) error {
	ts, err := s.timesheets.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if !ts.CanEdit() {
		return ErrTimesheetNotEditable
	}

	if err := s.timesheets.Delete(ctx, name); err != nil {
		return err
	}

	s.log.Info().Str("timesheet", name).Msg("timesheet deleted")
	return nil
}
