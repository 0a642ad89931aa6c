package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/timesheet/internal/app"
	"github.com/andy/timesheet/internal/config"
	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/repository"
)

func setupApp(t *testing.T) *app.App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "timesheet.db")
	cfg.Invoice.OutputDir = t.TempDir()
	cfg.Log.Level = "error"
	cfg.Log.Pretty = false

	a, err := app.Open(context.Background(), cfg, "test-key")
	require.NoError(t, err)

	SetApp(a)
	t.Cleanup(func() {
		SetApp(nil)
		a.Close()
	})
	return a
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestCLI_BillTimesheet(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()

	mustRun(t, "employees", "add", "EMP-0001", "Test Employee", "--company", "_Test Company")
	mustRun(t, "customers", "add", "_Test Customer", "--currency", "INR")
	mustRun(t, "activities", "set", "_Test Activity Type", "--billing-rate", "50", "--costing-rate", "20")

	newArgs := []string{"timesheets", "new",
		"--employee", "EMP-0001",
		"--customer", "_Test Customer",
		"--activity", "_Test Activity Type",
		"--from", "2026-03-02T09:00:00Z",
		"--hours", "2",
		"--billable",
	}
	out := mustRun(t, newArgs...)
	assert.Contains(t, out, "100.00")

	_, err := run(t, newArgs...)
	assert.ErrorIs(t, err, domain.ErrOverlap)

	sheets, err := a.TimesheetService.List(ctx, repository.TimesheetFilter{Employee: "EMP-0001"})
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	name := sheets[0].Name

	mustRun(t, "timesheets", "submit", name)
	out = mustRun(t, "invoices", "make", name)
	assert.Contains(t, out, "INR")

	invoices, err := a.InvoiceService.List(ctx, "_Test Customer", nil)
	require.NoError(t, err)
	require.Len(t, invoices, 1)

	mustRun(t, "invoices", "submit", invoices[0].Name)

	pdfDir := t.TempDir()
	mustRun(t, "invoices", "pdf", invoices[0].Name, "--out", pdfDir)
	assert.FileExists(t, filepath.Join(pdfDir, invoices[0].Name+".pdf"))

	out = mustRun(t, "timesheets", "show", name)
	assert.Contains(t, out, string(domain.TimesheetStatusBilled))
	assert.Contains(t, out, "100.00%")

	out = mustRun(t, "report", "outstanding")
	assert.Contains(t, out, "100.00")
}

func TestCLI_ResetInvoicesReleasesLogs(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()

	mustRun(t, "employees", "add", "EMP-0002", "Second Employee")
	mustRun(t, "customers", "add", "Reset Customer")
	mustRun(t, "activities", "set", "Support", "--billing-rate", "80")
	mustRun(t, "timesheets", "new",
		"--employee", "EMP-0002",
		"--customer", "Reset Customer",
		"--activity", "Support",
		"--from", "2026-03-03T09:00:00Z",
		"--hours", "1",
		"--billable",
	)

	sheets, err := a.TimesheetService.List(ctx, repository.TimesheetFilter{Employee: "EMP-0002"})
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	name := sheets[0].Name

	mustRun(t, "timesheets", "submit", name)
	mustRun(t, "invoices", "make", name)

	out := mustRun(t, "reset", "invoices")
	assert.Contains(t, out, "Cancelled.")

	mustRun(t, "reset", "invoices", "--yes")

	ts, err := a.TimesheetService.Get(ctx, name)
	require.NoError(t, err)
	assert.Empty(t, ts.TimeLogs[0].SalesInvoice)
	assert.Equal(t, domain.TimesheetStatusSubmitted, ts.Status)

	invoices, err := a.InvoiceService.List(ctx, "", nil)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestParseTime(t *testing.T) {
	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-02T09:30:00Z", time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)},
		{"2026-03-01 08:15", time.Date(2026, 3, 1, 8, 15, 0, 0, time.UTC)},
		{"14:45", time.Date(2026, 3, 2, 14, 45, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTime(tt.in, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), got)
		})
	}

	_, err := parseTime("yesterday", now)
	assert.Error(t, err)
	_, err = parseTime("", now)
	assert.Error(t, err)
}

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("1.25")
	require.NoError(t, err)
	assert.Equal(t, "1.25", d.String())

	d, err = parseDecimal("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = parseDecimal("-1")
	assert.Error(t, err)
	_, err = parseDecimal("lots")
	assert.Error(t, err)
}

func TestParseDocStatus(t *testing.T) {
	ds, err := parseDocStatus("Submitted")
	require.NoError(t, err)
	assert.Equal(t, domain.DocStatusSubmitted, ds)

	_, err = parseDocStatus("archived")
	assert.Error(t, err)
}
