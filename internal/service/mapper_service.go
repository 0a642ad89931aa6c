package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/repository"
)

// MapperService builds draft timesheets pre-filled from projects and tasks.
// The drafts are not persisted; callers set the employee and save them.
type MapperService interface {
	FromProject(ctx context.Context, project string) (*domain.Timesheet, error)
	FromTask(ctx context.Context, task string) (*domain.Timesheet, error)
}

type mapperService struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
}

// NewMapperService creates a new mapper service
func NewMapperService(projects repository.ProjectRepository, tasks repository.TaskRepository) MapperService {
	return &mapperService{projects: projects, tasks: tasks}
}

func (s *mapperService) FromProject(ctx context.Context, project string) (*domain.Timesheet, error) {
	p, err := s.projects.GetByName(ctx, project)
	if err != nil {
		return nil, err
	}

	ts := domain.NewTimesheet("")
	ts.ParentProject = p.Name
	ts.Customer = p.Customer
	ts.Company = p.Company
	ts.AppendLog(&domain.TimeLog{
		Project:       p.Name,
		ExpectedHours: decimal.Zero,
	})
	return ts, nil
}

func (s *mapperService) FromTask(ctx context.Context, task string) (*domain.Timesheet, error) {
	t, err := s.tasks.GetByName(ctx, task)
	if err != nil {
		return nil, err
	}

	ts := domain.NewTimesheet("")
	ts.ParentProject = t.Project

	if t.Project != "" {
		p, err := s.projects.GetByName(ctx, t.Project)
		if err != nil {
			return nil, err
		}
		ts.Customer = p.Customer
		ts.Company = p.Company
	}

	ts.AppendLog(&domain.TimeLog{
		Project:       t.Project,
		Task:          t.Name,
		Description:   t.Subject,
		ExpectedHours: t.ExpectedHours,
	})
	return ts, nil
}
