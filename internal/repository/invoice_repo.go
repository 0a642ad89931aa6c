package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andy/timesheet/internal/db"
	"github.com/andy/timesheet/internal/domain"
)

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	db *db.DB
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database}
}

const invoiceColumns = `
	id, name, customer, company, currency, project, posting_date, due_date,
	total_billing_hours, total_billing_amount, grand_total, docstatus, status,
	created_at, updated_at
`

// NextName generates the next invoice name in format "PREFIX-YEAR-SEQUENCE"
func (r *InvoiceRepo) NextName(ctx context.Context, prefix string, year int) (string, error) {
	return nextName(ctx, r.db, "sales_invoices", prefix, year)
}

// Create inserts a new invoice with its item lines and timesheet rows
func (r *InvoiceRepo) Create(ctx context.Context, invoice *domain.SalesInvoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sales_invoices (
			name, customer, company, currency, project, posting_date, due_date,
			total_billing_hours, total_billing_amount, grand_total, docstatus, status,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var dueDate interface{}
	if invoice.DueDate != nil {
		dueDate = formatTime(*invoice.DueDate)
	}

	result, err := tx.ExecContext(ctx, query,
		invoice.Name,
		invoice.Customer,
		invoice.Company,
		invoice.Currency,
		invoice.Project,
		formatTime(invoice.PostingDate),
		dueDate,
		invoice.TotalBillingHours.String(),
		invoice.TotalBillingAmount.String(),
		invoice.GrandTotal.String(),
		int(invoice.DocStatus),
		string(invoice.Status),
		formatTime(invoice.CreatedAt),
		formatTime(invoice.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get invoice ID: %w", err)
	}

	if err := insertInvoiceItems(ctx, tx, id, invoice.Items); err != nil {
		return err
	}
	if err := insertInvoiceTimesheets(ctx, tx, id, invoice.Timesheets); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	invoice.ID = id
	return nil
}

// GetByName retrieves an invoice with its item lines and timesheet rows
func (r *InvoiceRepo) GetByName(ctx context.Context, name string) (*domain.SalesInvoice, error) {
	query := "SELECT " + invoiceColumns + " FROM sales_invoices WHERE name = ?"

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	invoices, err := scanInvoices(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, notFound("sales invoice", name)
	}

	invoice := invoices[0]
	if invoice.Items, err = r.loadItems(ctx, invoice.ID); err != nil {
		return nil, err
	}
	if invoice.Timesheets, err = r.loadTimesheets(ctx, invoice.ID); err != nil {
		return nil, err
	}
	return invoice, nil
}

// List retrieves invoice headers, optionally filtered by customer and status
func (r *InvoiceRepo) List(ctx context.Context, customer string, status *domain.InvoiceStatus) ([]*domain.SalesInvoice, error) {
	query := "SELECT " + invoiceColumns + " FROM sales_invoices WHERE 1=1"
	args := make([]interface{}, 0)

	if customer != "" {
		query += " AND customer = ?"
		args = append(args, customer)
	}

	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}

	query += " ORDER BY name DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	return scanInvoices(rows)
}

// UpdateStatus persists the invoice docstatus and status
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, invoice *domain.SalesInvoice) error {
	invoice.UpdatedAt = time.Now()

	query := `
		UPDATE sales_invoices
		SET docstatus = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		int(invoice.DocStatus),
		string(invoice.Status),
		formatTime(invoice.UpdatedAt),
		invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("sales invoice", invoice.Name)
	}
	return nil
}

// DocStatus returns the lifecycle stage of an invoice
func (r *InvoiceRepo) DocStatus(ctx context.Context, name string) (domain.DocStatus, error) {
	var status int
	err := r.db.QueryRowContext(ctx, "SELECT docstatus FROM sales_invoices WHERE name = ?", name).Scan(&status)
	if err != nil {
		if isNoRows(err) {
			return domain.DocStatusDraft, notFound("sales invoice", name)
		}
		return domain.DocStatusDraft, fmt.Errorf("failed to get invoice docstatus: %w", err)
	}
	return domain.DocStatus(status), nil
}

func (r *InvoiceRepo) loadItems(ctx context.Context, invoiceID int64) ([]*domain.SalesInvoiceItem, error) {
	query := `
		SELECT id, idx, item_code, description, qty, rate, amount
		FROM sales_invoice_items
		WHERE invoice_id = ?
		ORDER BY idx
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.SalesInvoiceItem, 0)
	for rows.Next() {
		item := &domain.SalesInvoiceItem{}
		if err := rows.Scan(&item.ID, &item.Idx, &item.ItemCode, &item.Description, &item.Qty, &item.Rate, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice items: %w", err)
	}
	return items, nil
}

func (r *InvoiceRepo) loadTimesheets(ctx context.Context, invoiceID int64) ([]*domain.SalesInvoiceTimesheet, error) {
	query := `
		SELECT id, timesheet, time_log_id, activity_type, project,
		       billing_hours, billing_rate, billing_amount
		FROM sales_invoice_timesheets
		WHERE invoice_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice timesheets: %w", err)
	}
	defer rows.Close()

	links := make([]*domain.SalesInvoiceTimesheet, 0)
	for rows.Next() {
		l := &domain.SalesInvoiceTimesheet{}
		err := rows.Scan(
			&l.ID,
			&l.Timesheet,
			&l.TimeLogID,
			&l.ActivityType,
			&l.Project,
			&l.BillingHours,
			&l.BillingRate,
			&l.BillingAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice timesheet: %w", err)
		}
		links = append(links, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice timesheets: %w", err)
	}
	return links, nil
}

func insertInvoiceItems(ctx context.Context, tx *sql.Tx, invoiceID int64, items []*domain.SalesInvoiceItem) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_invoice_items (invoice_id, idx, item_code, description, qty, rate, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		result, err := stmt.ExecContext(ctx,
			invoiceID,
			item.Idx,
			item.ItemCode,
			item.Description,
			item.Qty.String(),
			item.Rate.String(),
			item.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice item %d: %w", item.Idx, err)
		}
		if item.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get invoice item ID: %w", err)
		}
	}
	return nil
}

func insertInvoiceTimesheets(ctx context.Context, tx *sql.Tx, invoiceID int64, links []*domain.SalesInvoiceTimesheet) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_invoice_timesheets (
			invoice_id, timesheet, time_log_id, activity_type, project,
			billing_hours, billing_rate, billing_amount
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range links {
		result, err := stmt.ExecContext(ctx,
			invoiceID,
			l.Timesheet,
			l.TimeLogID,
			l.ActivityType,
			l.Project,
			l.BillingHours.String(),
			l.BillingRate.String(),
			l.BillingAmount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice timesheet for log %d: %w", l.TimeLogID, err)
		}
		if l.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get invoice timesheet ID: %w", err)
		}
	}
	return nil
}

func scanInvoices(rows *sql.Rows) ([]*domain.SalesInvoice, error) {
	invoices := make([]*domain.SalesInvoice, 0)
	for rows.Next() {
		inv := &domain.SalesInvoice{}
		var postingDate, status, createdAt, updatedAt string
		var dueDate sql.NullString
		var docStatus int

		err := rows.Scan(
			&inv.ID,
			&inv.Name,
			&inv.Customer,
			&inv.Company,
			&inv.Currency,
			&inv.Project,
			&postingDate,
			&dueDate,
			&inv.TotalBillingHours,
			&inv.TotalBillingAmount,
			&inv.GrandTotal,
			&docStatus,
			&status,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}

		inv.DocStatus = domain.DocStatus(docStatus)
		inv.Status = domain.InvoiceStatus(status)

		if inv.PostingDate, err = parseTime(postingDate); err != nil {
			return nil, fmt.Errorf("failed to parse posting_date: %w", err)
		}
		if dueDate.Valid {
			t, err := parseTime(dueDate.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse due_date: %w", err)
			}
			inv.DueDate = &t
		}
		if inv.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if inv.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}
	return invoices, nil
}
