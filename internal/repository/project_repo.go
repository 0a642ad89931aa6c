package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andy/timesheet/internal/db"
	"github.com/andy/timesheet/internal/domain"
)

// ProjectRepo is a SQLite implementation of ProjectRepository and TaskRepository
type ProjectRepo struct {
	db *db.DB
}

// NewProjectRepo creates a new ProjectRepo
func NewProjectRepo(database *db.DB) *ProjectRepo {
	return &ProjectRepo{db: database}
}

func (r *ProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	query := `
		INSERT INTO projects (name, project_name, customer, company, status, expected_start_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var customer, startDate interface{}
	if project.Customer != "" {
		customer = project.Customer
	}
	if project.ExpectedStartDate != nil {
		startDate = formatTime(*project.ExpectedStartDate)
	}

	result, err := r.db.ExecContext(ctx, query,
		project.Name,
		project.ProjectName,
		customer,
		project.Company,
		string(project.Status),
		startDate,
		formatTime(project.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get project ID: %w", err)
	}

	project.ID = id
	return nil
}

func (r *ProjectRepo) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	query := `
		SELECT id, name, project_name, customer, company, status, expected_start_date, created_at
		FROM projects
		WHERE name = ?
	`

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	defer rows.Close()

	projects, err := scanProjects(rows)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, notFound("project", name)
	}
	return projects[0], nil
}

func (r *ProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	query := `
		SELECT id, name, project_name, customer, company, status, expected_start_date, created_at
		FROM projects
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

// Delete removes a project together with its tasks
func (r *ProjectRepo) Delete(ctx context.Context, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE project = ?", name); err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound("project", name)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanProjects(rows *sql.Rows) ([]*domain.Project, error) {
	projects := make([]*domain.Project, 0)
	for rows.Next() {
		p := &domain.Project{}
		var customer, startDate sql.NullString
		var status, createdAt string

		err := rows.Scan(&p.ID, &p.Name, &p.ProjectName, &customer, &p.Company, &status, &startDate, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		p.Customer = customer.String
		p.Status = domain.ProjectStatus(status)
		if startDate.Valid {
			t, err := parseTime(startDate.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse expected_start_date: %w", err)
			}
			p.ExpectedStartDate = &t
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

// TaskRepo is a SQLite implementation of TaskRepository
type TaskRepo struct {
	db *db.DB
}

// NewTaskRepo creates a new TaskRepo
func NewTaskRepo(database *db.DB) *TaskRepo {
	return &TaskRepo{db: database}
}

func (r *TaskRepo) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	query := `
		INSERT INTO tasks (name, subject, project, expected_hours, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var project interface{}
	if task.Project != "" {
		project = task.Project
	}

	result, err := r.db.ExecContext(ctx, query,
		task.Name,
		task.Subject,
		project,
		task.ExpectedHours.String(),
		string(task.Status),
		formatTime(task.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get task ID: %w", err)
	}

	task.ID = id
	return nil
}

func (r *TaskRepo) GetByName(ctx context.Context, name string) (*domain.Task, error) {
	query := `
		SELECT id, name, subject, project, expected_hours, status, created_at
		FROM tasks
		WHERE name = ?
	`

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, notFound("task", name)
	}
	return tasks[0], nil
}

func (r *TaskRepo) ListByProject(ctx context.Context, project string) ([]*domain.Task, error) {
	query := `
		SELECT id, name, subject, project, expected_hours, status, created_at
		FROM tasks
		WHERE project = ?
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, project)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t := &domain.Task{}
		var project sql.NullString
		var status, createdAt string

		err := rows.Scan(&t.ID, &t.Name, &t.Subject, &project, &t.ExpectedHours, &status, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		t.Project = project.String
		t.Status = domain.ProjectStatus(status)
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}
