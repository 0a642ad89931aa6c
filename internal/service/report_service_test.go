package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/timesheet/internal/domain"
)

func TestReportService_Summaries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})

	ts := newSheet("EMP-0001", true, span(nine, "2"), span(nine.Add(2*time.Hour), "1"))
	ts.TimeLogs[0].Project = "PROJ-0001"
	ts.TimeLogs[1].IsBillable = false
	name := submittedSheet(t, env, ts)

	inv, err := env.invoiceSvc.MakeSalesInvoice(ctx, name, "", "_Test Customer", "")
	require.NoError(t, err)
	_, err = env.invoiceSvc.Submit(ctx, inv.Name)
	require.NoError(t, err)

	require.NoError(t, env.timesheetSvc.Save(ctx, newSheet("EMP-0001", true, span(nine.Add(24*time.Hour), "1"))))

	summary, err := env.reportSvc.EmployeeSummary(ctx, "EMP-0001")
	require.NoError(t, err)
	assertDecimal(t, "4", summary.TotalHours)
	assertDecimal(t, "3", summary.BillableHours)
	assertDecimal(t, "150", summary.BillableAmount)
	assertDecimal(t, "100", summary.BilledAmount)
	assertDecimal(t, "50", summary.UnbilledAmount)
	assertDecimal(t, "80", summary.CostingAmount)
	assertDecimal(t, "4", summary.ByActivity["_Test Activity Type"])
	assertDecimal(t, "3", summary.ByDay[time.Monday])
	assert.Equal(t, 1, summary.SubmittedTimesheets)

	project, err := env.reportSvc.ProjectSummary(ctx, "PROJ-0001")
	require.NoError(t, err)
	assertDecimal(t, "2", project.TotalHours)
	assertDecimal(t, "100", project.BilledAmount)

	outstanding, err := env.reportSvc.OutstandingTotal(ctx)
	require.NoError(t, err)
	assertDecimal(t, "100", outstanding)
}
