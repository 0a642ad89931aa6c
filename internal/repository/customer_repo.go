package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andy/timesheet/internal/db"
	"github.com/andy/timesheet/internal/domain"
)

// CustomerRepo is a SQLite implementation of CustomerRepository
type CustomerRepo struct {
	db *db.DB
}

// NewCustomerRepo creates a new CustomerRepo
func NewCustomerRepo(database *db.DB) *CustomerRepo {
	return &CustomerRepo{db: database}
}

func (r *CustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	if err := customer.Validate(); err != nil {
		return fmt.Errorf("invalid customer: %w", err)
	}

	query := `
		INSERT INTO customers (name, customer_name, default_currency, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		customer.Name,
		customer.CustomerName,
		customer.DefaultCurrency,
		formatTime(customer.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get customer ID: %w", err)
	}

	customer.ID = id
	return nil
}

func (r *CustomerRepo) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	query := `
		SELECT id, name, customer_name, default_currency, created_at
		FROM customers
		WHERE name = ?
	`

	c := &domain.Customer{}
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, name).Scan(&c.ID, &c.Name, &c.CustomerName, &c.DefaultCurrency, &createdAt)
	if err != nil {
		if isNoRows(err) {
			return nil, notFound("customer", name)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return c, nil
}

func (r *CustomerRepo) List(ctx context.Context) ([]*domain.Customer, error) {
	query := `
		SELECT id, name, customer_name, default_currency, created_at
		FROM customers
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

func scanCustomers(rows *sql.Rows) ([]*domain.Customer, error) {
	customers := make([]*domain.Customer, 0)
	for rows.Next() {
		c := &domain.Customer{}
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.CustomerName, &c.DefaultCurrency, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		var err error
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return customers, nil
}
