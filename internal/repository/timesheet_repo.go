package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andy/timesheet/internal/db"
	"github.com/andy/timesheet/internal/domain"
)

// TimesheetRepo is a SQLite implementation of TimesheetRepository
type TimesheetRepo struct {
	db *db.DB
}

// NewTimesheetRepo creates a new TimesheetRepo
func NewTimesheetRepo(database *db.DB) *TimesheetRepo {
	return &TimesheetRepo{db: database}
}

const timesheetColumns = `
	id, name, employee, company, customer, parent_project, currency, note,
	start_date, end_date, total_hours, total_billable_hours, total_billable_amount,
	total_billed_hours, total_billed_amount, total_costing_amount, per_billed,
	status, docstatus, created_at, updated_at
`

const logColumns = `
	id, idx, activity_type, description, from_time, to_time, hours, expected_hours,
	is_billable, billing_hours, billing_rate, billing_amount, costing_rate, costing_amount,
	project, task, company, sales_invoice
`

// NextName generates the next timesheet name in format "PREFIX-YEAR-SEQUENCE"
func (r *TimesheetRepo) NextName(ctx context.Context, prefix string, year int) (string, error) {
	return nextName(ctx, r.db, "timesheets", prefix, year)
}

// Create inserts a new timesheet and its logs
func (r *TimesheetRepo) Create(ctx context.Context, ts *domain.Timesheet) error {
	if ts.Name == "" {
		return fmt.Errorf("invalid timesheet: name is required")
	}
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("invalid timesheet: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO timesheets (
			name, employee, company, customer, parent_project, currency, note,
			start_date, end_date, total_hours, total_billable_hours, total_billable_amount,
			total_billed_hours, total_billed_amount, total_costing_amount, per_billed,
			status, docstatus, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		ts.Name,
		ts.Employee,
		ts.Company,
		ts.Customer,
		ts.ParentProject,
		ts.Currency,
		ts.Note,
		nullableTime(ts.StartDate),
		nullableTime(ts.EndDate),
		ts.TotalHours.String(),
		ts.TotalBillableHours.String(),
		ts.TotalBillableAmount.String(),
		ts.TotalBilledHours.String(),
		ts.TotalBilledAmount.String(),
		ts.TotalCostingAmount.String(),
		ts.PerBilled.String(),
		string(ts.Status),
		int(ts.DocStatus),
		formatTime(ts.CreatedAt),
		formatTime(ts.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create timesheet: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get timesheet ID: %w", err)
	}

	if err := insertLogs(ctx, tx, id, ts.TimeLogs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	ts.ID = id
	return nil
}

// Update rewrites the timesheet header and replaces all of its logs
func (r *TimesheetRepo) Update(ctx context.Context, ts *domain.Timesheet) error {
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("invalid timesheet: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ts.UpdatedAt = time.Now()

	query := `
		UPDATE timesheets
		SET employee = ?, company = ?, customer = ?, parent_project = ?, currency = ?, note = ?,
		    start_date = ?, end_date = ?, total_hours = ?, total_billable_hours = ?,
		    total_billable_amount = ?, total_billed_hours = ?, total_billed_amount = ?,
		    total_costing_amount = ?, per_billed = ?, status = ?, docstatus = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query,
		ts.Employee,
		ts.Company,
		ts.Customer,
		ts.ParentProject,
		ts.Currency,
		ts.Note,
		nullableTime(ts.StartDate),
		nullableTime(ts.EndDate),
		ts.TotalHours.String(),
		ts.TotalBillableHours.String(),
		ts.TotalBillableAmount.String(),
		ts.TotalBilledHours.String(),
		ts.TotalBilledAmount.String(),
		ts.TotalCostingAmount.String(),
		ts.PerBilled.String(),
		string(ts.Status),
		int(ts.DocStatus),
		formatTime(ts.UpdatedAt),
		ts.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update timesheet: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("timesheet", ts.Name)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM timesheet_logs WHERE timesheet_id = ?", ts.ID); err != nil {
		return fmt.Errorf("failed to clear time logs: %w", err)
	}

	if err := insertLogs(ctx, tx, ts.ID, ts.TimeLogs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByName retrieves a timesheet with its logs
func (r *TimesheetRepo) GetByName(ctx context.Context, name string) (*domain.Timesheet, error) {
	query := "SELECT " + timesheetColumns + " FROM timesheets WHERE name = ?"

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}
	sheets, err := scanTimesheets(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, notFound("timesheet", name)
	}

	ts := sheets[0]
	if ts.TimeLogs, err = r.loadLogs(ctx, ts.ID); err != nil {
		return nil, err
	}
	return ts, nil
}

// List retrieves timesheets with their logs, newest first
func (r *TimesheetRepo) List(ctx context.Context, filter TimesheetFilter) ([]*domain.Timesheet, error) {
	query := "SELECT " + timesheetColumns + " FROM timesheets WHERE 1=1"
	args := make([]interface{}, 0)

	if filter.Employee != "" {
		query += " AND employee = ?"
		args = append(args, filter.Employee)
	}

	if filter.Project != "" {
		query += " AND (parent_project = ? OR id IN (SELECT timesheet_id FROM timesheet_logs WHERE project = ?))"
		args = append(args, filter.Project, filter.Project)
	}

	if filter.DocStatus != nil {
		query += " AND docstatus = ?"
		args = append(args, int(*filter.DocStatus))
	}

	query += " ORDER BY name DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	sheets, err := scanTimesheets(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	for _, ts := range sheets {
		if ts.TimeLogs, err = r.loadLogs(ctx, ts.ID); err != nil {
			return nil, err
		}
	}
	return sheets, nil
}

// Delete removes a timesheet and its logs
func (r *TimesheetRepo) Delete(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "DELETE FROM timesheet_logs WHERE timesheet_id = (SELECT id FROM timesheets WHERE name = ?)"
	if _, err := tx.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("failed to delete time logs: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM timesheets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("timesheet", name)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListEmployeeLogs returns the intervals an employee has logged on every
// non-cancelled timesheet other than exclude
func (r *TimesheetRepo) ListEmployeeLogs(ctx context.Context, employee, exclude string) ([]domain.EmployeeLog, error) {
	query := `
		SELECT t.name, l.idx, l.from_time, l.to_time
		FROM timesheet_logs l
		JOIN timesheets t ON t.id = l.timesheet_id
		WHERE t.employee = ?
		  AND t.docstatus < 2
		  AND t.name != ?
		ORDER BY l.from_time
	`

	rows, err := r.db.QueryContext(ctx, query, employee, exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee logs: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.EmployeeLog, 0)
	for rows.Next() {
		var l domain.EmployeeLog
		var fromTime, toTime string
		if err := rows.Scan(&l.Timesheet, &l.Row, &fromTime, &toTime); err != nil {
			return nil, fmt.Errorf("failed to scan employee log: %w", err)
		}
		if l.FromTime, err = parseTime(fromTime); err != nil {
			return nil, fmt.Errorf("failed to parse from_time: %w", err)
		}
		if l.ToTime, err = parseTime(toTime); err != nil {
			return nil, fmt.Errorf("failed to parse to_time: %w", err)
		}
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employee logs: %w", err)
	}
	return logs, nil
}

// SetLogInvoice stamps logs with an invoice name. Stamping only applies to
// logs not yet attached to an invoice; an empty name releases the logs.
func (r *TimesheetRepo) SetLogInvoice(ctx context.Context, logIDs []int64, invoice string) error {
	if len(logIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "UPDATE timesheet_logs SET sales_invoice = ? WHERE id = ?"
	if invoice != "" {
		query += " AND sales_invoice = ''"
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range logIDs {
		result, err := stmt.ExecContext(ctx, invoice, id)
		if err != nil {
			return fmt.Errorf("failed to stamp time log %d: %w", id, err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected for time log %d: %w", id, err)
		}
		if rows == 0 {
			return fmt.Errorf("time log %d not found or already invoiced", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateBilling persists the billing progress of a timesheet
func (r *TimesheetRepo) UpdateBilling(ctx context.Context, ts *domain.Timesheet) error {
	ts.UpdatedAt = time.Now()

	query := `
		UPDATE timesheets
		SET total_billed_hours = ?, total_billed_amount = ?, per_billed = ?,
		    status = ?, docstatus = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		ts.TotalBilledHours.String(),
		ts.TotalBilledAmount.String(),
		ts.PerBilled.String(),
		string(ts.Status),
		int(ts.DocStatus),
		formatTime(ts.UpdatedAt),
		ts.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update timesheet billing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("timesheet", ts.Name)
	}
	return nil
}

func (r *TimesheetRepo) loadLogs(ctx context.Context, timesheetID int64) ([]*domain.TimeLog, error) {
	query := "SELECT " + logColumns + " FROM timesheet_logs WHERE timesheet_id = ? ORDER BY idx"

	rows, err := r.db.QueryContext(ctx, query, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load time logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*domain.TimeLog, 0)
	for rows.Next() {
		l := &domain.TimeLog{}
		var fromTime, toTime string

		err := rows.Scan(
			&l.ID,
			&l.Idx,
			&l.ActivityType,
			&l.Description,
			&fromTime,
			&toTime,
			&l.Hours,
			&l.ExpectedHours,
			&l.IsBillable,
			&l.BillingHours,
			&l.BillingRate,
			&l.BillingAmount,
			&l.CostingRate,
			&l.CostingAmount,
			&l.Project,
			&l.Task,
			&l.Company,
			&l.SalesInvoice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time log: %w", err)
		}

		if l.FromTime, err = parseTime(fromTime); err != nil {
			return nil, fmt.Errorf("failed to parse from_time: %w", err)
		}
		if l.ToTime, err = parseTime(toTime); err != nil {
			return nil, fmt.Errorf("failed to parse to_time: %w", err)
		}

		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time logs: %w", err)
	}
	return logs, nil
}

func insertLogs(ctx context.Context, tx *sql.Tx, timesheetID int64, logs []*domain.TimeLog) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO timesheet_logs (
			timesheet_id, idx, activity_type, description, from_time, to_time, hours, expected_hours,
			is_billable, billing_hours, billing_rate, billing_amount, costing_rate, costing_amount,
			project, task, company, sales_invoice
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range logs {
		result, err := stmt.ExecContext(ctx,
			timesheetID,
			l.Idx,
			l.ActivityType,
			l.Description,
			formatTime(l.FromTime),
			formatTime(l.ToTime),
			l.Hours.String(),
			l.ExpectedHours.String(),
			l.IsBillable,
			l.BillingHours.String(),
			l.BillingRate.String(),
			l.BillingAmount.String(),
			l.CostingRate.String(),
			l.CostingAmount.String(),
			l.Project,
			l.Task,
			l.Company,
			l.SalesInvoice,
		)
		if err != nil {
			return fmt.Errorf("failed to insert time log %d: %w", l.Idx, err)
		}

		if l.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get time log ID: %w", err)
		}
	}
	return nil
}

func scanTimesheets(rows *sql.Rows) ([]*domain.Timesheet, error) {
	sheets := make([]*domain.Timesheet, 0)
	for rows.Next() {
		ts := &domain.Timesheet{}
		var startDate, endDate sql.NullString
		var status, createdAt, updatedAt string
		var docStatus int

		err := rows.Scan(
			&ts.ID,
			&ts.Name,
			&ts.Employee,
			&ts.Company,
			&ts.Customer,
			&ts.ParentProject,
			&ts.Currency,
			&ts.Note,
			&startDate,
			&endDate,
			&ts.TotalHours,
			&ts.TotalBillableHours,
			&ts.TotalBillableAmount,
			&ts.TotalBilledHours,
			&ts.TotalBilledAmount,
			&ts.TotalCostingAmount,
			&ts.PerBilled,
			&status,
			&docStatus,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}

		ts.Status = domain.TimesheetStatus(status)
		ts.DocStatus = domain.DocStatus(docStatus)

		if ts.StartDate, err = parseNullTime(startDate); err != nil {
			return nil, fmt.Errorf("failed to parse start_date: %w", err)
		}
		if ts.EndDate, err = parseNullTime(endDate); err != nil {
			return nil, fmt.Errorf("failed to parse end_date: %w", err)
		}
		if ts.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if ts.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		sheets = append(sheets, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timesheets: %w", err)
	}
	return sheets, nil
}
