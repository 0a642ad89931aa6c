package domain

import (
	"errors"
	"strings"
	"time"
)

type Employee struct {
	ID           int64
	Name         string
	EmployeeName string
	Company      string
	UserEmail    string
	CreatedAt    time.Time
}

// NewEmployee creates an employee record
func NewEmployee(name, employeeName, company string) *Employee {
	return &Employee{
		Name:         strings.TrimSpace(name),
		EmployeeName: strings.TrimSpace(employeeName),
		Company:      company,
		CreatedAt:    time.Now(),
	}
}

// Validate returns an error if the employee is invalid
func (e *Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("employee ID is required")
	}
	return nil
}

type Customer struct {
	ID              int64
	Name            string
	CustomerName    string
	DefaultCurrency string
	CreatedAt       time.Time
}

// NewCustomer creates a customer record
func NewCustomer(name, currency string) *Customer {
	name = strings.TrimSpace(name)
	return &Customer{
		Name:            name,
		CustomerName:    name,
		DefaultCurrency: currency,
		CreatedAt:       time.Now(),
	}
}

// Validate returns an error if the customer is invalid
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("customer name is required")
	}
	return nil
}
