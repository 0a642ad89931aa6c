package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/timesheet/internal/service"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize logged and billed time",
}

var reportEmployeeCmd = &cobra.Command{
	Use:   "employee [employee]",
	Short: "Summarize an employee's timesheets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := appInstance.ReportService.EmployeeSummary(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		showSummary(cmd, "Employee "+args[0], summary)
		return nil
	},
}

var reportProjectCmd = &cobra.Command{
	Use:   "project [project]",
	Short: "Summarize time logged against a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := appInstance.ReportService.ProjectSummary(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		showSummary(cmd, "Project "+args[0], summary)
		return nil
	},
}

var reportOutstandingCmd = &cobra.Command{
	Use:   "outstanding",
	Short: "Show the total of unpaid invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		total, err := appInstance.ReportService.OutstandingTotal(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render("Outstanding:"), formatHours(total))
		return nil
	},
}

func showSummary(cmd *cobra.Command, title string, s *service.BillingSummary) {
	out := cmd.OutOrStdout()
	renderFields(out, title, [][2]string{
		{"Total Hours", formatHours(s.TotalHours)},
		{"Billable Hours", formatHours(s.BillableHours)},
		{"Billable Amount", formatHours(s.BillableAmount)},
		{"Billed Amount", formatHours(s.BilledAmount)},
		{"Unbilled Amount", formatHours(s.UnbilledAmount)},
		{"Costing Amount", formatHours(s.CostingAmount)},
		{"Submitted", fmt.Sprintf("%d timesheet(s)", s.SubmittedTimesheets)},
	})

	if len(s.ByActivity) > 0 {
		activities := make([]string, 0, len(s.ByActivity))
		for name := range s.ByActivity {
			activities = append(activities, name)
		}
		sort.Strings(activities)

		rows := make([][]string, 0, len(activities))
		for _, name := range activities {
			rows = append(rows, []string{name, formatHours(s.ByActivity[name])})
		}
		fmt.Fprintln(out)
		renderTable(out, []string{"Activity", "Hours"}, rows)
	}

	if len(s.ByDay) > 0 {
		rows := make([][]string, 0, 7)
		for day := time.Sunday; day <= time.Saturday; day++ {
			if hours, ok := s.ByDay[day]; ok {
				rows = append(rows, []string{day.String(), formatHours(hours)})
			}
		}
		renderTable(out, []string{"Weekday", "Hours"}, rows)
	}
}

func init() {
	reportCmd.AddCommand(reportEmployeeCmd)
	reportCmd.AddCommand(reportProjectCmd)
	reportCmd.AddCommand(reportOutstandingCmd)
}
