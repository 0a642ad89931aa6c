package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/repository"
)

// submittedSheet saves and submits a sheet, returning its name
func submittedSheet(t *testing.T, env *testEnv, ts *domain.Timesheet) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, env.timesheetSvc.Save(ctx, ts))
	_, err := env.timesheetSvc.Submit(ctx, ts.Name)
	require.NoError(t, err)
	return ts.Name
}

func TestInvoiceService_BillsTimesheetEndToEnd(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})

	// GIVEN a submitted sheet with one billable two hour log at rate 50
	name := submittedSheet(t, env, newSheet("EMP-0001", true, span(nine, "2")))

	// WHEN an invoice is made for it
	inv, err := env.invoiceSvc.MakeSalesInvoice(ctx, name, "_Test Item", "_Test Customer", "INR")
	require.NoError(t, err)

	// THEN the invoice has one line of two hours at 50
	assert.Equal(t, "ACC-SINV-2026-00001", inv.Name)
	assert.Equal(t, "INR", inv.Currency)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "_Test Item", inv.Items[0].ItemCode)
	assertDecimal(t, "2", inv.Items[0].Qty)
	assertDecimal(t, "50", inv.Items[0].Rate)
	assertDecimal(t, "100", inv.GrandTotal)
	require.NotNil(t, inv.DueDate)
	assert.True(t, inv.DueDate.Equal(env.clock.AddDate(0, 0, 30)))

	// AND the log is stamped but a draft invoice bills nothing yet
	ts, err := env.timesheets.GetByName(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, inv.Name, ts.TimeLogs[0].SalesInvoice)
	assert.Equal(t, domain.TimesheetStatusSubmitted, ts.Status)

	// WHEN the invoice is submitted
	_, err = env.invoiceSvc.Submit(ctx, inv.Name)
	require.NoError(t, err)

	// THEN the sheet is fully billed
	ts, err = env.timesheets.GetByName(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetStatusBilled, ts.Status)
	assertDecimal(t, "100", ts.PerBilled)
	assertDecimal(t, "2", ts.TotalBilledHours)
	assertDecimal(t, "100", ts.TotalBilledAmount)

	stored, err := env.invoiceSvc.Get(ctx, inv.Name)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusUnpaid, stored.Status)
}

func TestInvoiceService_GroupsLinesByRate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})

	ts := newSheet("EMP-0001", true, span(nine, "2"), span(nine.Add(2*time.Hour), "1"), span(nine.Add(3*time.Hour), "1.5"))
	ts.TimeLogs[1].ActivityType = "Planning"
	ts.Customer = "_Test Customer"
	name := submittedSheet(t, env, ts)

	inv, err := env.invoiceSvc.MakeSalesInvoice(ctx, name, "", "", "")
	require.NoError(t, err)

	// Customer, item and currency fall back to the sheet and defaults
	assert.Equal(t, "_Test Customer", inv.Customer)
	assert.Equal(t, "INR", inv.Currency)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "_Test Item", inv.Items[0].ItemCode)
	assertDecimal(t, "3.5", inv.Items[0].Qty)
	assertDecimal(t, "50", inv.Items[0].Rate)
	assertDecimal(t, "1", inv.Items[1].Qty)
	assertDecimal(t, "80", inv.Items[1].Rate)
	assertDecimal(t, "255", inv.GrandTotal)
	assert.Len(t, inv.Timesheets, 3)
}

func TestInvoiceService_SkipsNonBillableAndInvoicedLogs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})

	ts := newSheet("EMP-0001", true, span(nine, "2"), span(nine.Add(2*time.Hour), "1"))
	ts.TimeLogs[1].IsBillable = false
	name := submittedSheet(t, env, ts)

	inv, err := env.invoiceSvc.MakeSalesInvoice(ctx, name, "", "_Test Customer", "")
	require.NoError(t, err)
	require.Len(t, inv.Timesheets, 1)
	assertDecimal(t, "2", inv.TotalBillingHours)

	// Everything billable is consumed by the first invoice
	_, err = env.invoiceSvc.MakeSalesInvoice(ctx, name, "", "_Test Customer", "")
	assert.ErrorIs(t, err, ErrNothingToBill)
}

func TestInvoiceService_MakeRequiresSubmittedSheetAndCustomer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})

	draft := newSheet("EMP-0001", true, span(nine, "2"))
	require.NoError(t, env.timesheetSvc.Save(ctx, draft))

	_, err := env.invoiceSvc.MakeSalesInvoice(ctx, draft.Name, "", "_Test Customer", "")
	assert.ErrorIs(t, err, ErrTimesheetNotSubmitted)

	name := submittedSheet(t, env, newSheet("EMP-0001", true, span(nine.Add(24*time.Hour), "2")))
	_, err = env.invoiceSvc.MakeSalesInvoice(ctx, name, "", "", "")
	assert.ErrorIs(t, err, ErrCustomerRequired)

	_, err = env.invoiceSvc.MakeSalesInvoice(ctx, name, "", "Unknown Customer", "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, env.invoices.invoices)
}

func TestInvoiceService_ProjectInvoicePartiallyBills(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})
	env.projects.projects["PROJ-0001"] = &domain.Project{Name: "PROJ-0001", Customer: "_Test Customer", Company: "_Test Company"}

	// GIVEN one sheet with two hours on the project and two hours elsewhere
	ts := newSheet("EMP-0001", true, span(nine, "2"), span(nine.Add(2*time.Hour), "2"))
	ts.TimeLogs[0].Project = "PROJ-0001"
	ts.TimeLogs[1].Project = "PROJ-0002"
	name := submittedSheet(t, env, ts)

	// AND a second sheet with one more hour on the project
	other := newSheet("EMP-0002", true, span(nine, "1"))
	other.TimeLogs[0].Project = "PROJ-0001"
	otherName := submittedSheet(t, env, other)

	// WHEN the project is invoiced and the invoice submitted
	inv, err := env.invoiceSvc.MakeProjectInvoice(ctx, "PROJ-0001", "", "")
	require.NoError(t, err)
	assert.Equal(t, "PROJ-0001", inv.Project)
	assert.Equal(t, []string{name, otherName}, inv.TimesheetNames())
	assertDecimal(t, "3", inv.TotalBillingHours)

	_, err = env.invoiceSvc.Submit(ctx, inv.Name)
	require.NoError(t, err)

	// THEN only the project's share of the first sheet is billed
	got, err := env.timesheets.GetByName(ctx, name)
	require.NoError(t, err)
	assertDecimal(t, "50", got.PerBilled)
	assert.Equal(t, domain.TimesheetStatusPartiallyBilled, got.Status)
	assert.Empty(t, got.TimeLogs[1].SalesInvoice)

	got, err = env.timesheets.GetByName(ctx, otherName)
	require.NoError(t, err)
	assertDecimal(t, "100", got.PerBilled)
	assert.Equal(t, domain.TimesheetStatusBilled, got.Status)

	_, err = env.invoiceSvc.MakeProjectInvoice(ctx, "PROJ-0001", "", "")
	assert.ErrorIs(t, err, ErrNothingToBill)
}

func TestInvoiceService_CancelReleasesLogs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})

	name := submittedSheet(t, env, newSheet("EMP-0001", true, span(nine, "2")))
	inv, err := env.invoiceSvc.MakeSalesInvoice(ctx, name, "", "_Test Customer", "")
	require.NoError(t, err)
	_, err = env.invoiceSvc.Submit(ctx, inv.Name)
	require.NoError(t, err)

	// A sheet consumed by an invoice cannot be cancelled
	_, err = env.timesheetSvc.Cancel(ctx, name)
	assert.Error(t, err)

	cancelled, err := env.invoiceSvc.Cancel(ctx, inv.Name)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, cancelled.Status)

	ts, err := env.timesheets.GetByName(ctx, name)
	require.NoError(t, err)
	assert.Empty(t, ts.TimeLogs[0].SalesInvoice)
	assertDecimal(t, "0", ts.PerBilled)
	assert.Equal(t, domain.TimesheetStatusSubmitted, ts.Status)

	// Released logs can be billed again
	again, err := env.invoiceSvc.MakeSalesInvoice(ctx, name, "", "_Test Customer", "")
	require.NoError(t, err)
	assert.Equal(t, "ACC-SINV-2026-00002", again.Name)

	_, err = env.invoiceSvc.Cancel(ctx, inv.Name)
	assert.Error(t, err, "cancelling twice")
}

func TestInvoiceService_SubmitTwiceFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, domain.OverlapSettings{})

	name := submittedSheet(t, env, newSheet("EMP-0001", true, span(nine, "2")))
	inv, err := env.invoiceSvc.MakeSalesInvoice(ctx, name, "", "_Test Customer", "")
	require.NoError(t, err)

	_, err = env.invoiceSvc.Submit(ctx, inv.Name)
	require.NoError(t, err)
	_, err = env.invoiceSvc.Submit(ctx, inv.Name)
	assert.Error(t, err)

	unpaid := domain.InvoiceStatusUnpaid
	list, err := env.invoiceSvc.List(ctx, "_Test Customer", &unpaid)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
