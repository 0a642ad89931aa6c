package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesInvoice_BuildItems_GroupsByRate(t *testing.T) {
	inv := NewSalesInvoice("ACC-SINV-2026-00001", "_Test Customer", "INR")
	inv.AddTimeLogs("TS-2026-00001", []*TimeLog{
		{ID: 1, BillingHours: dec("2"), BillingRate: dec("50"), BillingAmount: dec("100")},
		{ID: 2, BillingHours: dec("1.5"), BillingRate: dec("80"), BillingAmount: dec("120")},
	})
	inv.AddTimeLogs("TS-2026-00002", []*TimeLog{
		{ID: 3, BillingHours: dec("1"), BillingRate: dec("50"), BillingAmount: dec("50")},
	})

	inv.BuildItems("_Test Item")
	inv.CalculateTotals()

	require.Len(t, inv.Items, 2)
	assert.Equal(t, "_Test Item", inv.Items[0].ItemCode)
	assertDecimal(t, "3", inv.Items[0].Qty)
	assertDecimal(t, "50", inv.Items[0].Rate)
	assertDecimal(t, "150", inv.Items[0].Amount)
	assertDecimal(t, "1.5", inv.Items[1].Qty)
	assertDecimal(t, "80", inv.Items[1].Rate)

	assertDecimal(t, "4.5", inv.TotalBillingHours)
	assertDecimal(t, "270", inv.TotalBillingAmount)
	assertDecimal(t, "270", inv.GrandTotal)
	assert.Equal(t, []string{"TS-2026-00001", "TS-2026-00002"}, inv.TimesheetNames())
	assert.Equal(t, []int64{1, 2, 3}, inv.TimeLogIDs())
}

func TestSalesInvoice_SubmitAndCancel(t *testing.T) {
	inv := NewSalesInvoice("ACC-SINV-2026-00001", "_Test Customer", "INR")
	assert.ErrorIs(t, inv.Submit(), ErrInvalid, "no items")

	inv.AddTimeLogs("TS-2026-00001", []*TimeLog{{ID: 1, BillingHours: dec("2"), BillingRate: dec("50"), BillingAmount: dec("100")}})
	inv.BuildItems("_Test Item")
	require.NoError(t, inv.Submit())
	assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
	assert.Error(t, inv.Submit())

	require.NoError(t, inv.Cancel())
	assert.Equal(t, DocStatusCancelled, inv.DocStatus)
	assert.Error(t, inv.Cancel())
}

func TestSalesInvoice_Validate(t *testing.T) {
	inv := NewSalesInvoice("ACC-SINV-2026-00001", "", "INR")
	assert.ErrorIs(t, inv.Validate(), ErrInvalid)

	inv.Customer = "_Test Customer"
	inv.Items = append(inv.Items, &SalesInvoiceItem{Idx: 1, ItemCode: "_Test Item"})
	past := inv.PostingDate.Add(-72 * time.Hour)
	inv.DueDate = &past
	assert.ErrorIs(t, inv.Validate(), ErrInvalid)

	inv.DueDate = nil
	assert.NoError(t, inv.Validate())
}

func TestActiveTimer_ToTimeLog(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	timer := &ActiveTimer{Employee: "EMP-0001", ActivityType: "Planning", IsBillable: true, StartTime: start}

	timer.Pause(start.Add(time.Hour))
	assert.Equal(t, TimerStatePaused, timer.State())
	timer.Resume(start.Add(90 * time.Minute))
	assert.Equal(t, TimerStateRunning, timer.State())

	log := timer.ToTimeLog(start.Add(2 * time.Hour))
	assert.True(t, log.FromTime.Equal(start))
	assert.True(t, log.ToTime.Equal(start.Add(90*time.Minute)))
	assertDecimal(t, "1.5", log.Hours)
	assert.True(t, log.IsBillable)
}
