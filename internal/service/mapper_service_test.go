package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/repository"
)

func TestMapperService_FromProject(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})
	env.projects.projects["PROJ-0001"] = &domain.Project{Name: "PROJ-0001", Company: "_Test Company"}
	env.projects.projects["PROJ-0002"] = &domain.Project{Name: "PROJ-0002", Customer: "_Test Customer", Company: "_Test Company"}

	tests := []struct {
		name     string
		project  string
		customer string
	}{
		{"internal project", "PROJ-0001", ""},
		{"customer project", "PROJ-0002", "_Test Customer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := env.mapperSvc.FromProject(ctx, tt.project)
			require.NoError(t, err)

			assert.Equal(t, domain.DocStatusDraft, ts.DocStatus)
			assert.Equal(t, tt.project, ts.ParentProject)
			assert.Equal(t, tt.customer, ts.Customer)
			require.Len(t, ts.TimeLogs, 1)

			log := ts.TimeLogs[0]
			assert.Equal(t, tt.project, log.Project)
			assert.Empty(t, log.Task)
			assertDecimal(t, "0", log.ExpectedHours)
		})
	}
}

func TestMapperService_FromTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})
	env.projects.projects["PROJ-0002"] = &domain.Project{Name: "PROJ-0002", Customer: "_Test Customer", Company: "_Test Company"}
	env.tasks.tasks["TASK-0001"] = domain.NewTask("TASK-0001", "_Test Task", "PROJ-0002", dec("120"))

	ts, err := env.mapperSvc.FromTask(ctx, "TASK-0001")
	require.NoError(t, err)

	assert.Equal(t, "PROJ-0002", ts.ParentProject)
	assert.Equal(t, "_Test Customer", ts.Customer)
	assert.Equal(t, "_Test Company", ts.Company)
	require.Len(t, ts.TimeLogs, 1)

	log := ts.TimeLogs[0]
	assert.Equal(t, "TASK-0001", log.Task)
	assert.Equal(t, "PROJ-0002", log.Project)
	assertDecimal(t, "120", log.ExpectedHours)
}

func TestMapperService_TaskWithoutProject(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})
	env.tasks.tasks["TASK-0002"] = domain.NewTask("TASK-0002", "Standalone", "", dec("4"))

	ts, err := env.mapperSvc.FromTask(ctx, "TASK-0002")
	require.NoError(t, err)
	assert.Empty(t, ts.ParentProject)
	assert.Empty(t, ts.Customer)
	assert.Equal(t, "TASK-0002", ts.TimeLogs[0].Task)
}

func TestMapperService_MappedSheetSaves(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})
	env.projects.projects["PROJ-0002"] = &domain.Project{Name: "PROJ-0002", Customer: "_Test Customer", Company: "_Test Company"}

	ts, err := env.mapperSvc.FromProject(ctx, "PROJ-0002")
	require.NoError(t, err)

	ts.Employee = "EMP-0001"
	log := ts.TimeLogs[0]
	log.ActivityType = "_Test Activity Type"
	log.FromTime = nine
	log.Hours = dec("2")
	log.IsBillable = true

	require.NoError(t, env.timesheetSvc.Save(ctx, ts))
	assertDecimal(t, "100", ts.TotalBillableAmount)
	assert.Equal(t, "_Test Customer", env.timesheets.sheets[ts.Name].Customer)
}

func TestMapperService_UnknownSource(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})

	_, err := env.mapperSvc.FromProject(ctx, "PROJ-9999")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = env.mapperSvc.FromTask(ctx, "TASK-9999")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
