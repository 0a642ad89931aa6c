package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/timesheet/internal/db"
	"github.com/andy/timesheet/internal/domain"
)

// EmployeeRepo is a SQLite implementation of EmployeeRepository
type EmployeeRepo struct {
	db *db.DB
}

// NewEmployeeRepo creates a new EmployeeRepo
func NewEmployeeRepo(database *db.DB) *EmployeeRepo {
	return &EmployeeRepo{db: database}
}

func (r *EmployeeRepo) Create(ctx context.Context, employee *domain.Employee) error {
	if err := employee.Validate(); err != nil {
		return fmt.Errorf("invalid employee: %w", err)
	}

	query := `
		INSERT INTO employees (name, employee_name, company, user_email, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		employee.Name,
		employee.EmployeeName,
		employee.Company,
		employee.UserEmail,
		formatTime(employee.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get employee ID: %w", err)
	}

	employee.ID = id
	return nil
}

func (r *EmployeeRepo) GetByName(ctx context.Context, name string) (*domain.Employee, error) {
	query := `
		SELECT id, name, employee_name, company, user_email, created_at
		FROM employees
		WHERE name = ?
	`

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	defer rows.Close()

	employees, err := scanEmployees(rows)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, notFound("employee", name)
	}
	return employees[0], nil
}

func (r *EmployeeRepo) List(ctx context.Context) ([]*domain.Employee, error) {
	query := `
		SELECT id, name, employee_name, company, user_email, created_at
		FROM employees
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	return scanEmployees(rows)
}

func scanEmployees(rows *sql.Rows) ([]*domain.Employee, error) {
	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		e := &domain.Employee{}
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Name, &e.EmployeeName, &e.Company, &e.UserEmail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		var err error
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}
	return employees, nil
}

// isNoRows reports whether err is sql.ErrNoRows
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
