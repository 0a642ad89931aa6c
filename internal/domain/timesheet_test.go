package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

var testRate = ActivityRate{Billing: dec("50"), Costing: dec("20")}

func newTwoHourSheet(billable bool) *Timesheet {
	from := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ts := NewTimesheet("EMP-0001")
	ts.Company = "_Test Company"
	log := ts.AppendLog(&TimeLog{
		ActivityType: "_Test Activity Type",
		FromTime:     from,
		Hours:        dec("2"),
		IsBillable:   billable,
	})
	log.NormalizeTimes()
	log.ApplyRates(testRate)
	ts.CalculateTotals()
	return ts
}

func TestTimesheet_BillingAmount(t *testing.T) {
	ts := newTwoHourSheet(true)

	assertDecimal(t, "2", ts.TotalHours)
	assertDecimal(t, "2", ts.TotalBillableHours)
	assertDecimal(t, "50", ts.TimeLogs[0].BillingRate)
	assertDecimal(t, "100", ts.TimeLogs[0].BillingAmount)
	assertDecimal(t, "100", ts.TotalBillableAmount)
	assertDecimal(t, "40", ts.TotalCostingAmount)
}

func TestTimesheet_BillingAmount_NotBillable(t *testing.T) {
	ts := newTwoHourSheet(false)

	assertDecimal(t, "2", ts.TotalHours)
	assertDecimal(t, "0", ts.TotalBillableHours)
	assertDecimal(t, "0", ts.TimeLogs[0].BillingRate)
	assertDecimal(t, "0", ts.TimeLogs[0].BillingAmount)
	assertDecimal(t, "0", ts.TotalBillableAmount)
	// Costing is tracked regardless of billability
	assertDecimal(t, "40", ts.TotalCostingAmount)
}

func TestTimesheet_TotalsAcrossMixedLogs(t *testing.T) {
	from := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ts := NewTimesheet("EMP-0001")
	billable := ts.AppendLog(&TimeLog{FromTime: from, ToTime: from.Add(90 * time.Minute), IsBillable: true})
	internal := ts.AppendLog(&TimeLog{FromTime: from.Add(2 * time.Hour), ToTime: from.Add(3 * time.Hour)})

	for _, log := range ts.TimeLogs {
		log.NormalizeTimes()
		log.ApplyRates(testRate)
	}
	ts.CalculateTotals()

	assertDecimal(t, "1.5", billable.Hours)
	assertDecimal(t, "75", billable.BillingAmount)
	assertDecimal(t, "1", internal.Hours)
	assertDecimal(t, "2.5", ts.TotalHours)
	assertDecimal(t, "1.5", ts.TotalBillableHours)
	assertDecimal(t, "75", ts.TotalBillableAmount)
	assert.True(t, ts.StartDate.Equal(from))
	assert.True(t, ts.EndDate.Equal(from.Add(3*time.Hour)))
	assert.Equal(t, 1, billable.Idx)
	assert.Equal(t, 2, internal.Idx)
}

func TestTimesheet_PerBilled_Hours(t *testing.T) {
	// Amounts are zero, so hours decide
	ts := NewTimesheet("EMP-0001")
	ts.TotalBillableHours = dec("2")

	ts.TotalBilledHours = dec("0.5")
	ts.CalculatePercentageBilled()
	assertDecimal(t, "25", ts.PerBilled)

	ts.TotalBilledHours = dec("2")
	ts.CalculatePercentageBilled()
	assertDecimal(t, "100", ts.PerBilled)
}

func TestTimesheet_PerBilled_Amount(t *testing.T) {
	// Once any billable amount exists, hours are ignored
	ts := NewTimesheet("EMP-0001")
	ts.TotalBillableHours = dec("2")
	ts.TotalBilledHours = dec("1")
	ts.TotalBillableAmount = dec("200")
	ts.TotalBilledAmount = dec("50")
	ts.CalculatePercentageBilled()
	assertDecimal(t, "25", ts.PerBilled)

	ts.TotalBilledHours = dec("3")
	ts.TotalBilledAmount = dec("200")
	ts.CalculatePercentageBilled()
	assertDecimal(t, "100", ts.PerBilled)
}

func TestTimesheet_PerBilled_NothingBillable(t *testing.T) {
	ts := NewTimesheet("EMP-0001")
	ts.TotalBilledHours = dec("3")
	ts.CalculatePercentageBilled()
	assertDecimal(t, "0", ts.PerBilled)
}

func TestTimesheet_SetStatus(t *testing.T) {
	tests := []struct {
		name      string
		docStatus DocStatus
		perBilled string
		want      TimesheetStatus
	}{
		{"draft", DocStatusDraft, "100", TimesheetStatusDraft},
		{"submitted", DocStatusSubmitted, "0", TimesheetStatusSubmitted},
		{"partially billed", DocStatusSubmitted, "40", TimesheetStatusPartiallyBilled},
		{"billed", DocStatusSubmitted, "100", TimesheetStatusBilled},
		{"cancelled", DocStatusCancelled, "0", TimesheetStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTimesheet("EMP-0001")
			ts.DocStatus = tt.docStatus
			ts.PerBilled = dec(tt.perBilled)
			ts.SetStatus()
			assert.Equal(t, tt.want, ts.Status)
		})
	}
}

func TestTimesheet_CalculateBilledTotals(t *testing.T) {
	ts := newTwoHourSheet(true)
	ts.TimeLogs[0].SalesInvoice = "ACC-SINV-2026-00001"

	ts.CalculateBilledTotals(func(string) bool { return false })
	assertDecimal(t, "0", ts.TotalBilledAmount)

	ts.CalculateBilledTotals(func(name string) bool { return name == "ACC-SINV-2026-00001" })
	assertDecimal(t, "2", ts.TotalBilledHours)
	assertDecimal(t, "100", ts.TotalBilledAmount)
}

func TestTimesheet_Validate_RequiresEmployee(t *testing.T) {
	ts := newTwoHourSheet(true)
	ts.Employee = " "

	err := ts.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "employee", verr.Field)
}

func TestTimesheet_SubmitAndCancel(t *testing.T) {
	ts := newTwoHourSheet(true)
	require.NoError(t, ts.Submit())
	assert.Equal(t, TimesheetStatusSubmitted, ts.Status)
	assert.False(t, ts.CanEdit())
	assert.Error(t, ts.Submit())

	ts.TimeLogs[0].SalesInvoice = "ACC-SINV-2026-00001"
	assert.Error(t, ts.Cancel(), "invoiced sheets cannot be cancelled")

	ts.TimeLogs[0].SalesInvoice = ""
	require.NoError(t, ts.Cancel())
	assert.Equal(t, TimesheetStatusCancelled, ts.Status)
}

func TestTimesheet_SubmitEmpty(t *testing.T) {
	ts := NewTimesheet("EMP-0001")
	assert.ErrorIs(t, ts.Submit(), ErrInvalid)
}

func TestTimesheet_RemoveLog(t *testing.T) {
	from := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ts := NewTimesheet("EMP-0001")
	ts.AppendLog(&TimeLog{FromTime: from, ToTime: from.Add(time.Hour)})
	second := ts.AppendLog(&TimeLog{FromTime: from.Add(time.Hour), ToTime: from.Add(2 * time.Hour)})

	require.NoError(t, ts.RemoveLog(1))
	require.Len(t, ts.TimeLogs, 1)
	assert.Equal(t, 1, second.Idx)
	assert.Error(t, ts.RemoveLog(5))
}

func TestTimesheet_UnbilledLogs(t *testing.T) {
	ts := newTwoHourSheet(true)
	from := ts.TimeLogs[0].ToTime
	ts.AppendLog(&TimeLog{FromTime: from, ToTime: from.Add(time.Hour), IsBillable: true, SalesInvoice: "ACC-SINV-2026-00001"})
	ts.AppendLog(&TimeLog{FromTime: from.Add(time.Hour), ToTime: from.Add(2 * time.Hour)})

	unbilled := ts.UnbilledLogs()
	require.Len(t, unbilled, 1)
	assert.Equal(t, 1, unbilled[0].Idx)
}
