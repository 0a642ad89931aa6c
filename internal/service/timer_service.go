package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/repository"
)

var (
	ErrTimerAlreadyRunning = errors.New("timer is already running")
	ErrTimerNotRunning     = errors.New("timer is not running")
	ErrTimerNotPaused      = errors.New("timer is not paused")
	ErrNoActiveTimer       = errors.New("no active timer")
)

// StartTimer describes the work a new timer tracks
type StartTimer struct {
	Employee     string
	ActivityType string
	Project      string
	Task         string
	Timesheet    string // draft to append to; empty starts a new timesheet
	Description  string
	IsBillable   bool
}

// TimerService manages the timer state machine
type TimerService interface {
	// GetState returns the current timer state (idle, running, paused)
	GetState(ctx context.Context) (domain.TimerState, error)

	// GetActiveTimer returns the current active timer, or nil if idle
	GetActiveTimer(ctx context.Context) (*domain.ActiveTimer, error)

	// Start creates a new timer (only from Idle state)
	Start(ctx context.Context, req StartTimer) error

	// Pause pauses the running timer (only from Running state)
	Pause(ctx context.Context) error

	// Resume resumes a paused timer (only from Paused state)
	Resume(ctx context.Context) error

	// Stop stops the timer and saves its interval as a time log (from
	// Running or Paused). The timer survives if the timesheet cannot be saved.
	Stop(ctx context.Context) (*domain.Timesheet, error)

	// Discard discards the active timer without logging time
	Discard(ctx context.Context) error

	// ElapsedDuration returns the elapsed time of the active timer
	ElapsedDuration(ctx context.Context) (time.Duration, error)

	// AccruedValue prices the elapsed time at the activity's billing rate
	AccruedValue(ctx context.Context) (decimal.Decimal, error)

	// RecoverFromCrash reports a timer left over from a previous run
	RecoverFromCrash(ctx context.Context) (*domain.ActiveTimer, error)
}

type timerService struct {
	timerRepo  repository.TimerRepository
	employees  repository.EmployeeRepository
	activities repository.ActivityTypeRepository
	timesheets TimesheetService
	log        zerolog.Logger
	now        func() time.Time
}

// NewTimerService creates a new timer service
func NewTimerService(
	timerRepo repository.TimerRepository,
	employees repository.EmployeeRepository,
	activities repository.ActivityTypeRepository,
	timesheets TimesheetService,
	logger zerolog.Logger,
) TimerService {
	return &timerService{
		timerRepo:  timerRepo,
		employees:  employees,
		activities: activities,
		timesheets: timesheets,
		log:        logger.With().Str("component", "timer").Logger(),
		now:        time.Now,
	}
}

func (s *timerService) GetState(ctx context.Context) (domain.TimerState, error) {
	timer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return "", err
	}
	if timer == nil {
		return domain.TimerStateIdle, nil
	}
	return timer.State(), nil
}

func (s *timerService) GetActiveTimer(ctx context.Context) (*domain.ActiveTimer, error) {
	return s.timerRepo.Get(ctx)
}

func (s *timerService) Start(ctx context.Context, req StartTimer) error {
	if _, err := s.employees.GetByName(ctx, req.Employee); err != nil {
		return err
	}

	existingTimer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return err
	}
	if existingTimer != nil {
		return ErrTimerAlreadyRunning
	}

	timer := domain.NewActiveTimer(req.Employee, req.ActivityType)
	timer.Project = req.Project
	timer.Task = req.Task
	timer.Timesheet = req.Timesheet
	timer.Description = req.Description
	timer.IsBillable = req.IsBillable
	timer.StartTime = s.now()

	if err := s.timerRepo.Save(ctx, timer); err != nil {
		return err
	}

	s.log.Info().Str("employee", timer.Employee).Str("activity_type", timer.ActivityType).Msg("timer started")
	return nil
}

func (s *timerService) Pause(ctx context.Context) error {
	timer, err := s.active(ctx)
	if err != nil {
		return err
	}
	if timer.State() != domain.TimerStateRunning {
		return ErrTimerNotRunning
	}

	timer.Pause(s.now())
	return s.timerRepo.Save(ctx, timer)
}

func (s *timerService) Resume(ctx context.Context) error {
	timer, err := s.active(ctx)
	if err != nil {
		return err
	}
	if timer.State() != domain.TimerStatePaused {
		return ErrTimerNotPaused
	}

	timer.Resume(s.now())
	return s.timerRepo.Save(ctx, timer)
}

func (s *timerService) Stop(ctx context.Context) (*domain.Timesheet, error) {
	timer, err := s.active(ctx)
	if err != nil {
		return nil, err
	}

	var ts *domain.Timesheet
	if timer.Timesheet != "" {
		if ts, err = s.timesheets.Get(ctx, timer.Timesheet); err != nil {
			return nil, err
		}
		if !ts.CanEdit() {
			return nil, fmt.Errorf("%w: %s", ErrTimesheetNotEditable, ts.Name)
		}
		if ts.Employee != timer.Employee {
			return nil, fmt.Errorf("timesheet %s belongs to employee %s", ts.Name, ts.Employee)
		}
	} else {
		ts = domain.NewTimesheet(timer.Employee)
	}

	ts.AppendLog(timer.ToTimeLog(s.now()))

	if err := s.timesheets.Save(ctx, ts); err != nil {
		return nil, err
	}

	if err := s.timerRepo.Delete(ctx); err != nil {
		return nil, err
	}

	s.log.Info().Str("employee", timer.Employee).Str("timesheet", ts.Name).Msg("timer stopped")
	return ts, nil
}

func (s *timerService) Discard(ctx context.Context) error {
	if _, err := s.active(ctx); err != nil {
		return err
	}
	return s.timerRepo.Delete(ctx)
}

func (s *timerService) ElapsedDuration(ctx context.Context) (time.Duration, error) {
	timer, err := s.active(ctx)
	if err != nil {
		return 0, err
	}
	return timer.ElapsedAt(s.now()), nil
}

func (s *timerService) AccruedValue(ctx context.Context) (decimal.Decimal, error) {
	timer, err := s.active(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if !timer.IsBillable {
		return decimal.Zero, nil
	}

	rate, err := s.activities.RateFor(ctx, timer.ActivityType)
	if err != nil {
		return decimal.Zero, err
	}

	return rate.Billing.Mul(domain.HoursOf(timer.ElapsedAt(s.now()))), nil
}

func (s *timerService) RecoverFromCrash(ctx context.Context) (*domain.ActiveTimer, error) {
	timer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	// The timer state is persisted, so a recovered timer simply keeps running
	if timer != nil {
		s.log.Info().
			Str("employee", timer.Employee).
			Time("start_time", timer.StartTime).
			Msg("recovered active timer")
	}
	return timer, nil
}

func (s *timerService) active(ctx context.Context) (*domain.ActiveTimer, error) {
	timer, err := s.timerRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if timer == nil {
		return nil, ErrNoActiveTimer
	}
	return timer, nil
}
