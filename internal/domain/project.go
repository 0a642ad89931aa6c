package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ProjectStatus string

const (
	ProjectStatusOpen      ProjectStatus = "Open"
	ProjectStatusCompleted ProjectStatus = "Completed"
	ProjectStatusCancelled ProjectStatus = "Cancelled"
)

type Project struct {
	ID                int64
	Name              string
	ProjectName       string
	Customer          string // empty when the project is internal
	Company           string
	Status            ProjectStatus
	ExpectedStartDate *time.Time
	CreatedAt         time.Time
}

// NewProject creates an open project
func NewProject(name, projectName, company string) *Project {
	return &Project{
		Name:        strings.TrimSpace(name),
		ProjectName: strings.TrimSpace(projectName),
		Company:     company,
		Status:      ProjectStatusOpen,
		CreatedAt:   time.Now(),
	}
}

// Validate returns an error if the project is invalid
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("project ID is required")
	}
	if strings.TrimSpace(p.ProjectName) == "" {
		return errors.New("project name is required")
	}
	return nil
}

type Task struct {
	ID            int64
	Name          string
	Subject       string
	Project       string
	ExpectedHours decimal.Decimal
	Status        ProjectStatus
	CreatedAt     time.Time
}

// NewTask creates an open task under a project
func NewTask(name, subject, project string, expectedHours decimal.Decimal) *Task {
	return &Task{
		Name:          strings.TrimSpace(name),
		Subject:       strings.TrimSpace(subject),
		Project:       project,
		ExpectedHours: expectedHours,
		Status:        ProjectStatusOpen,
		CreatedAt:     time.Now(),
	}
}

// Validate returns an error if the task is invalid
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("task ID is required")
	}
	if strings.TrimSpace(t.Subject) == "" {
		return errors.New("task subject is required")
	}
	if t.ExpectedHours.IsNegative() {
		return errors.New("expected hours cannot be negative")
	}
	return nil
}
