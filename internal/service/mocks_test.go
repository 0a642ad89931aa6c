package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/repository"
)

// in-memory repository implementations

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func notFound(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, repository.ErrNotFound)
}

func cloneSheet(ts *domain.Timesheet) *domain.Timesheet {
	c := *ts
	c.TimeLogs = make([]*domain.TimeLog, len(ts.TimeLogs))
	for i, log := range ts.TimeLogs {
		l := *log
		c.TimeLogs[i] = &l
	}
	return &c
}

type memTimesheetRepo struct {
	sheets    map[string]*domain.Timesheet
	nextID    int64
	nextLogID int64
	created   int
	failNext  error
}

func newMemTimesheetRepo() *memTimesheetRepo {
	return &memTimesheetRepo{sheets: make(map[string]*domain.Timesheet)}
}

func (m *memTimesheetRepo) NextName(ctx context.Context, prefix string, year int) (string, error) {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, m.created+1), nil
}

func (m *memTimesheetRepo) assignLogIDs(ts *domain.Timesheet) {
	for _, log := range ts.TimeLogs {
		if log.ID == 0 {
			m.nextLogID++
			log.ID = m.nextLogID
		}
	}
}

func (m *memTimesheetRepo) Create(ctx context.Context, ts *domain.Timesheet) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.nextID++
	m.created++
	ts.ID = m.nextID
	m.assignLogIDs(ts)
	m.sheets[ts.Name] = cloneSheet(ts)
	return nil
}

func (m *memTimesheetRepo) Update(ctx context.Context, ts *domain.Timesheet) error {
	if _, ok := m.sheets[ts.Name]; !ok {
		return notFound("timesheet", ts.Name)
	}
	m.assignLogIDs(ts)
	m.sheets[ts.Name] = cloneSheet(ts)
	return nil
}

func (m *memTimesheetRepo) GetByName(ctx context.Context, name string) (*domain.Timesheet, error) {
	ts, ok := m.sheets[name]
	if !ok {
		return nil, notFound("timesheet", name)
	}
	return cloneSheet(ts), nil
}

func (m *memTimesheetRepo) List(ctx context.Context, filter repository.TimesheetFilter) ([]*domain.Timesheet, error) {
	out := make([]*domain.Timesheet, 0)
	for _, ts := range m.sheets {
		if filter.Employee != "" && ts.Employee != filter.Employee {
			continue
		}
		if filter.DocStatus != nil && ts.DocStatus != *filter.DocStatus {
			continue
		}
		if filter.Project != "" && !sheetTouchesProject(ts, filter.Project) {
			continue
		}
		out = append(out, cloneSheet(ts))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func sheetTouchesProject(ts *domain.Timesheet, project string) bool {
	if ts.ParentProject == project {
		return true
	}
	for _, log := range ts.TimeLogs {
		if log.Project == project {
			return true
		}
	}
	return false
}

func (m *memTimesheetRepo) Delete(ctx context.Context, name string) error {
	if _, ok := m.sheets[name]; !ok {
		return notFound("timesheet", name)
	}
	delete(m.sheets, name)
	return nil
}

func (m *memTimesheetRepo) ListEmployeeLogs(ctx context.Context, employee, exclude string) ([]domain.EmployeeLog, error) {
	out := make([]domain.EmployeeLog, 0)
	for _, ts := range m.sheets {
		if ts.Employee != employee || ts.DocStatus == domain.DocStatusCancelled || ts.Name == exclude {
			continue
		}
		for _, log := range ts.TimeLogs {
			out = append(out, domain.EmployeeLog{Timesheet: ts.Name, Row: log.Idx, FromTime: log.FromTime, ToTime: log.ToTime})
		}
	}
	return out, nil
}

func (m *memTimesheetRepo) findLog(id int64) *domain.TimeLog {
	for _, ts := range m.sheets {
		for _, log := range ts.TimeLogs {
			if log.ID == id {
				return log
			}
		}
	}
	return nil
}

func (m *memTimesheetRepo) SetLogInvoice(ctx context.Context, logIDs []int64, invoice string) error {
	for _, id := range logIDs {
		log := m.findLog(id)
		if log == nil || (invoice != "" && log.SalesInvoice != "") {
			return fmt.Errorf("time log %d not found or already invoiced", id)
		}
	}
	for _, id := range logIDs {
		m.findLog(id).SalesInvoice = invoice
	}
	return nil
}

func (m *memTimesheetRepo) UpdateBilling(ctx context.Context, ts *domain.Timesheet) error {
	stored, ok := m.sheets[ts.Name]
	if !ok {
		return notFound("timesheet", ts.Name)
	}
	stored.TotalBilledHours = ts.TotalBilledHours
	stored.TotalBilledAmount = ts.TotalBilledAmount
	stored.PerBilled = ts.PerBilled
	stored.Status = ts.Status
	stored.DocStatus = ts.DocStatus
	return nil
}

type memInvoiceRepo struct {
	invoices map[string]*domain.SalesInvoice
	nextID   int64
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[string]*domain.SalesInvoice)}
}

func (m *memInvoiceRepo) NextName(ctx context.Context, prefix string, year int) (string, error) {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, len(m.invoices)+1), nil
}

func (m *memInvoiceRepo) Create(ctx context.Context, invoice *domain.SalesInvoice) error {
	m.nextID++
	invoice.ID = m.nextID
	c := *invoice
	m.invoices[invoice.Name] = &c
	return nil
}

func (m *memInvoiceRepo) GetByName(ctx context.Context, name string) (*domain.SalesInvoice, error) {
	inv, ok := m.invoices[name]
	if !ok {
		return nil, notFound("sales invoice", name)
	}
	c := *inv
	return &c, nil
}

func (m *memInvoiceRepo) List(ctx context.Context, customer string, status *domain.InvoiceStatus) ([]*domain.SalesInvoice, error) {
	out := make([]*domain.SalesInvoice, 0)
	for _, inv := range m.invoices {
		if customer != "" && inv.Customer != customer {
			continue
		}
		if status != nil && inv.Status != *status {
			continue
		}
		c := *inv
		out = append(out, &c)
	}
	return out, nil
}

func (m *memInvoiceRepo) UpdateStatus(ctx context.Context, invoice *domain.SalesInvoice) error {
	stored, ok := m.invoices[invoice.Name]
	if !ok {
		return notFound("sales invoice", invoice.Name)
	}
	stored.DocStatus = invoice.DocStatus
	stored.Status = invoice.Status
	return nil
}

func (m *memInvoiceRepo) DocStatus(ctx context.Context, name string) (domain.DocStatus, error) {
	inv, ok := m.invoices[name]
	if !ok {
		return domain.DocStatusDraft, notFound("sales invoice", name)
	}
	return inv.DocStatus, nil
}

type memActivityRepo struct {
	activities map[string]*domain.ActivityType
}

func newMemActivityRepo(activities ...*domain.ActivityType) *memActivityRepo {
	m := &memActivityRepo{activities: make(map[string]*domain.ActivityType)}
	for _, a := range activities {
		m.activities[a.Name] = a
	}
	return m
}

func (m *memActivityRepo) Save(ctx context.Context, activity *domain.ActivityType) error {
	m.activities[activity.Name] = activity
	return nil
}

func (m *memActivityRepo) GetByName(ctx context.Context, name string) (*domain.ActivityType, error) {
	a, ok := m.activities[name]
	if !ok {
		return nil, notFound("activity type", name)
	}
	return a, nil
}

func (m *memActivityRepo) List(ctx context.Context) ([]*domain.ActivityType, error) {
	out := make([]*domain.ActivityType, 0, len(m.activities))
	for _, a := range m.activities {
		out = append(out, a)
	}
	return out, nil
}

func (m *memActivityRepo) RateFor(ctx context.Context, name string) (domain.ActivityRate, error) {
	a, ok := m.activities[name]
	if !ok || a.Disabled {
		return domain.ActivityRate{}, nil
	}
	return a.Rate(), nil
}

type memEmployeeRepo struct {
	employees map[string]*domain.Employee
}

func (m *memEmployeeRepo) Create(ctx context.Context, employee *domain.Employee) error {
	m.employees[employee.Name] = employee
	return nil
}

func (m *memEmployeeRepo) GetByName(ctx context.Context, name string) (*domain.Employee, error) {
	e, ok := m.employees[name]
	if !ok {
		return nil, notFound("employee", name)
	}
	return e, nil
}

func (m *memEmployeeRepo) List(ctx context.Context) ([]*domain.Employee, error) {
	out := make([]*domain.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	return out, nil
}

type memCustomerRepo struct {
	customers map[string]*domain.Customer
}

func (m *memCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	m.customers[customer.Name] = customer
	return nil
}

func (m *memCustomerRepo) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	c, ok := m.customers[name]
	if !ok {
		return nil, notFound("customer", name)
	}
	return c, nil
}

func (m *memCustomerRepo) List(ctx context.Context) ([]*domain.Customer, error) {
	return nil, nil
}

type memProjectRepo struct {
	projects map[string]*domain.Project
}

func (m *memProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	m.projects[project.Name] = project
	return nil
}

func (m *memProjectRepo) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	p, ok := m.projects[name]
	if !ok {
		return nil, notFound("project", name)
	}
	return p, nil
}

func (m *memProjectRepo) List(ctx context.Context) ([]*domain.Project, error) { return nil, nil }

func (m *memProjectRepo) Delete(ctx context.Context, name string) error {
	delete(m.projects, name)
	return nil
}

type memTaskRepo struct {
	tasks map[string]*domain.Task
}

func (m *memTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	m.tasks[task.Name] = task
	return nil
}

func (m *memTaskRepo) GetByName(ctx context.Context, name string) (*domain.Task, error) {
	t, ok := m.tasks[name]
	if !ok {
		return nil, notFound("task", name)
	}
	return t, nil
}

func (m *memTaskRepo) ListByProject(ctx context.Context, project string) ([]*domain.Task, error) {
	return nil, nil
}

type memTimerRepo struct {
	timer *domain.ActiveTimer
}

func (m *memTimerRepo) Get(ctx context.Context) (*domain.ActiveTimer, error) {
	if m.timer == nil {
		return nil, nil
	}
	c := *m.timer
	return &c, nil
}

func (m *memTimerRepo) Save(ctx context.Context, timer *domain.ActiveTimer) error {
	c := *timer
	m.timer = &c
	return nil
}

func (m *memTimerRepo) Delete(ctx context.Context) error {
	m.timer = nil
	return nil
}

var errStoreDown = errors.New("store unavailable")

// testEnv wires every service against in-memory repositories
type testEnv struct {
	timesheets *memTimesheetRepo
	invoices   *memInvoiceRepo
	activities *memActivityRepo
	employees  *memEmployeeRepo
	customers  *memCustomerRepo
	projects   *memProjectRepo
	tasks      *memTaskRepo
	timers     *memTimerRepo

	timesheetSvc *timesheetService
	invoiceSvc   *invoiceService
	mapperSvc    *mapperService
	timerSvc     *timerService
	reportSvc    *reportService

	clock time.Time
}

func newTestEnv(t *testing.T, overlap domain.OverlapSettings) *testEnv {
	t.Helper()

	env := &testEnv{
		timesheets: newMemTimesheetRepo(),
		invoices:   newMemInvoiceRepo(),
		activities: newMemActivityRepo(
			domain.NewActivityType("_Test Activity Type", dec("50"), dec("20")),
			domain.NewActivityType("Planning", dec("80"), dec("30")),
		),
		employees: &memEmployeeRepo{employees: map[string]*domain.Employee{
			"EMP-0001": domain.NewEmployee("EMP-0001", "_Test Employee", "_Test Company"),
			"EMP-0002": domain.NewEmployee("EMP-0002", "_Test Employee 2", "_Test Company"),
		}},
		customers: &memCustomerRepo{customers: map[string]*domain.Customer{
			"_Test Customer": domain.NewCustomer("_Test Customer", "INR"),
		}},
		projects: &memProjectRepo{projects: make(map[string]*domain.Project)},
		tasks:    &memTaskRepo{tasks: make(map[string]*domain.Task)},
		timers:   &memTimerRepo{},
		clock:    time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
	}

	now := func() time.Time { return env.clock }
	logger := zerolog.Nop()

	env.timesheetSvc = NewTimesheetService(
		env.timesheets, env.employees, env.activities,
		TimesheetOptions{Overlap: overlap}, logger,
	).(*timesheetService)
	env.timesheetSvc.now = now

	env.invoiceSvc = NewInvoiceService(
		env.invoices, env.timesheets, env.customers, env.projects,
		InvoiceOptions{DefaultItem: "_Test Item", DefaultCurrency: "USD", DueDays: 30}, logger,
	).(*invoiceService)
	env.invoiceSvc.now = now

	env.mapperSvc = NewMapperService(env.projects, env.tasks).(*mapperService)

	env.timerSvc = NewTimerService(env.timers, env.employees, env.activities, env.timesheetSvc, logger).(*timerService)
	env.timerSvc.now = now

	env.reportSvc = NewReportService(env.timesheets, env.invoices).(*reportService)
	return env
}

type logSpan struct {
	from  time.Time
	hours string
}

func span(from time.Time, hours string) logSpan {
	return logSpan{from: from, hours: hours}
}

// newSheet builds an unsaved sheet with one log per span
func newSheet(employee string, billable bool, spans ...logSpan) *domain.Timesheet {
	ts := domain.NewTimesheet(employee)
	for _, l := range spans {
		ts.AppendLog(&domain.TimeLog{
			ActivityType: "_Test Activity Type",
			FromTime:     l.from,
			Hours:        dec(l.hours),
			IsBillable:   billable,
		})
	}
	return ts
}
