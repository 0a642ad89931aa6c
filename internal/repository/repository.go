package repository

import (
	"context"

	"github.com/andy/timesheet/internal/domain"
)

// EmployeeRepository manages employee persistence
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByName(ctx context.Context, name string) (*domain.Employee, error)
	List(ctx context.Context) ([]*domain.Employee, error)
}

// CustomerRepository manages customer persistence
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByName(ctx context.Context, name string) (*domain.Customer, error)
	List(ctx context.Context) ([]*domain.Customer, error)
}

// ActivityTypeRepository manages activity types and answers rate lookups
type ActivityTypeRepository interface {
	Save(ctx context.Context, activity *domain.ActivityType) error // insert or update by name
	GetByName(ctx context.Context, name string) (*domain.ActivityType, error)
	List(ctx context.Context) ([]*domain.ActivityType, error)
	RateFor(ctx context.Context, name string) (domain.ActivityRate, error) // zero rate when unknown
}

// ProjectRepository manages projects
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByName(ctx context.Context, name string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Delete(ctx context.Context, name string) error // removes the project's tasks too
}

// TaskRepository manages tasks
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByName(ctx context.Context, name string) (*domain.Task, error)
	ListByProject(ctx context.Context, project string) ([]*domain.Task, error)
}

// TimesheetFilter narrows timesheet listings; zero values match everything
type TimesheetFilter struct {
	Employee  string
	Project   string // matches sheets with any log on the project
	DocStatus *domain.DocStatus
}

// TimesheetRepository manages timesheets and their time logs
type TimesheetRepository interface {
	NextName(ctx context.Context, prefix string, year int) (string, error)
	Create(ctx context.Context, ts *domain.Timesheet) error // sheet and logs in one transaction
	Update(ctx context.Context, ts *domain.Timesheet) error // replaces logs in one transaction
	GetByName(ctx context.Context, name string) (*domain.Timesheet, error)
	List(ctx context.Context, filter TimesheetFilter) ([]*domain.Timesheet, error)
	Delete(ctx context.Context, name string) error

	// ListEmployeeLogs returns the employee's logs on non-cancelled sheets,
	// skipping the sheet named exclude
	ListEmployeeLogs(ctx context.Context, employee, exclude string) ([]domain.EmployeeLog, error)

	// SetLogInvoice stamps (or clears, when invoice is empty) the back-reference
	SetLogInvoice(ctx context.Context, logIDs []int64, invoice string) error

	// UpdateBilling persists billed totals, percent billed, status and docstatus
	UpdateBilling(ctx context.Context, ts *domain.Timesheet) error
}

// InvoiceRepository manages sales invoice persistence
type InvoiceRepository interface {
	NextName(ctx context.Context, prefix string, year int) (string, error)
	Create(ctx context.Context, invoice *domain.SalesInvoice) error // items and timesheet rows in one transaction
	GetByName(ctx context.Context, name string) (*domain.SalesInvoice, error)
	List(ctx context.Context, customer string, status *domain.InvoiceStatus) ([]*domain.SalesInvoice, error)
	UpdateStatus(ctx context.Context, invoice *domain.SalesInvoice) error
	DocStatus(ctx context.Context, name string) (domain.DocStatus, error)
}

// TimerRepository manages the active timer state (singleton)
type TimerRepository interface {
	Get(ctx context.Context) (*domain.ActiveTimer, error) // Returns nil if no active timer
	Save(ctx context.Context, timer *domain.ActiveTimer) error
	Delete(ctx context.Context) error
}
