package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/repository"
)

var timesheetsCmd = &cobra.Command{
	Use:     "timesheets",
	Aliases: []string{"ts"},
	Short:   "Manage timesheets and their time logs",
}

var timesheetsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a draft timesheet, optionally with a first time log",
	RunE: func(cmd *cobra.Command, args []string) error {
		employee, _ := cmd.Flags().GetString("employee")
		customer, _ := cmd.Flags().GetString("customer")
		project, _ := cmd.Flags().GetString("project")
		note, _ := cmd.Flags().GetString("note")

		ts := domain.NewTimesheet(employee)
		ts.Customer = customer
		ts.ParentProject = project
		ts.Note = note

		if cmd.Flags().Changed("from") {
			log, err := readLogFlags(cmd)
			if err != nil {
				return err
			}
			if log.Project == "" {
				log.Project = project
			}
			ts.AppendLog(log)
		}

		return saveAndShow(cmd, ts)
	},
}

var timesheetsAddLogCmd = &cobra.Command{
	Use:   "add-log [timesheet]",
	Short: "Append a time log to a draft timesheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := appInstance.TimesheetService.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get timesheet: %w", err)
		}

		log, err := readLogFlags(cmd)
		if err != nil {
			return err
		}
		if log.Project == "" {
			log.Project = ts.ParentProject
		}
		ts.AppendLog(log)

		return saveAndShow(cmd, ts)
	},
}

var timesheetsRemoveLogCmd = &cobra.Command{
	Use:   "remove-log [timesheet] [row]",
	Short: "Remove a time log from a draft timesheet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid row: %w", err)
		}

		ts, err := appInstance.TimesheetService.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get timesheet: %w", err)
		}
		if err := ts.RemoveLog(row); err != nil {
			return err
		}

		return saveAndShow(cmd, ts)
	},
}

var timesheetsFromProjectCmd = &cobra.Command{
	Use:   "from-project [project]",
	Short: "Start a draft timesheet for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := appInstance.MapperService.FromProject(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to map project: %w", err)
		}
		return saveMapped(cmd, ts)
	},
}

var timesheetsFromTaskCmd = &cobra.Command{
	Use:   "from-task [task]",
	Short: "Start a draft timesheet for a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := appInstance.MapperService.FromTask(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to map task: %w", err)
		}
		return saveMapped(cmd, ts)
	},
}

var timesheetsSubmitCmd = &cobra.Command{
	Use:   "submit [timesheet]",
	Short: "Submit a draft timesheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := appInstance.TimesheetService.Submit(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to submit timesheet: %w", err)
		}
		success(cmd.OutOrStdout(), "Timesheet %s submitted (%s)", ts.Name, ts.Status)
		return nil
	},
}

var timesheetsCancelCmd = &cobra.Command{
	Use:   "cancel [timesheet]",
	Short: "Cancel a submitted timesheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := appInstance.TimesheetService.Cancel(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to cancel timesheet: %w", err)
		}
		success(cmd.OutOrStdout(), "Timesheet %s cancelled", ts.Name)
		return nil
	},
}

var timesheetsDeleteCmd = &cobra.Command{
	Use:   "delete [timesheet]",
	Short: "Delete a draft timesheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.TimesheetService.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete timesheet: %w", err)
		}
		success(cmd.OutOrStdout(), "Timesheet %s deleted", args[0])
		return nil
	},
}

var timesheetsShowCmd = &cobra.Command{
	Use:   "show [timesheet]",
	Short: "Show a timesheet with its time logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := appInstance.TimesheetService.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get timesheet: %w", err)
		}
		showTimesheet(cmd, ts)
		return nil
	},
}

var timesheetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List timesheets",
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter repository.TimesheetFilter
		filter.Employee, _ = cmd.Flags().GetString("employee")
		filter.Project, _ = cmd.Flags().GetString("project")

		if cmd.Flags().Changed("docstatus") {
			s, _ := cmd.Flags().GetString("docstatus")
			ds, err := parseDocStatus(s)
			if err != nil {
				return err
			}
			filter.DocStatus = &ds
		}

		sheets, err := appInstance.TimesheetService.List(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list timesheets: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sheets) == 0 {
			fmt.Fprintln(out, "No timesheets found")
			return nil
		}

		rows := make([][]string, 0, len(sheets))
		for _, ts := range sheets {
			rows = append(rows, []string{
				ts.Name,
				ts.Employee,
				formatDate(ts.StartDate),
				formatHours(ts.TotalHours),
				formatHours(ts.TotalBillableAmount),
				ts.PerBilled.StringFixed(0) + "%",
				statusStyle(string(ts.Status)).Render(string(ts.Status)),
			})
		}
		renderTable(out, []string{"Name", "Employee", "Start", "Hours", "Billable", "Billed", "Status"}, rows)
		fmt.Fprintf(out, "\nTotal: %d timesheet(s)\n", len(sheets))
		return nil
	},
}

func addLogFlags(cmd *cobra.Command) {
	cmd.Flags().String("activity", "", "activity type")
	cmd.Flags().String("from", "", "start time (YYYY-MM-DD HH:MM, HH:MM or RFC3339)")
	cmd.Flags().String("to", "", "end time; takes precedence over --hours")
	cmd.Flags().String("hours", "", "hours worked")
	cmd.Flags().String("expected-hours", "", "estimated hours")
	cmd.Flags().String("log-project", "", "project for this log")
	cmd.Flags().String("task", "", "task for this log")
	cmd.Flags().String("description", "", "what was done")
	cmd.Flags().Bool("billable", false, "bill this log to the customer")
}

func readLogFlags(cmd *cobra.Command) (*domain.TimeLog, error) {
	now := time.Now()
	log := &domain.TimeLog{}

	log.ActivityType, _ = cmd.Flags().GetString("activity")
	log.Project, _ = cmd.Flags().GetString("log-project")
	log.Task, _ = cmd.Flags().GetString("task")
	log.Description, _ = cmd.Flags().GetString("description")
	log.IsBillable, _ = cmd.Flags().GetBool("billable")

	fromStr, _ := cmd.Flags().GetString("from")
	from, err := parseTime(fromStr, now)
	if err != nil {
		return nil, fmt.Errorf("invalid --from: %w", err)
	}
	log.FromTime = from

	if toStr, _ := cmd.Flags().GetString("to"); toStr != "" {
		to, err := parseTime(toStr, now)
		if err != nil {
			return nil, fmt.Errorf("invalid --to: %w", err)
		}
		log.ToTime = to
	}

	hoursStr, _ := cmd.Flags().GetString("hours")
	if log.Hours, err = parseDecimal(hoursStr); err != nil {
		return nil, fmt.Errorf("invalid --hours: %w", err)
	}
	expectedStr, _ := cmd.Flags().GetString("expected-hours")
	if log.ExpectedHours, err = parseDecimal(expectedStr); err != nil {
		return nil, fmt.Errorf("invalid --expected-hours: %w", err)
	}

	return log, nil
}

// saveMapped fills the mapped log from flags before saving the new draft
func saveMapped(cmd *cobra.Command, ts *domain.Timesheet) error {
	ts.Employee, _ = cmd.Flags().GetString("employee")

	log, err := readLogFlags(cmd)
	if err != nil {
		return err
	}

	mapped := ts.TimeLogs[0]
	mapped.ActivityType = log.ActivityType
	mapped.FromTime = log.FromTime
	mapped.ToTime = log.ToTime
	mapped.Hours = log.Hours
	mapped.IsBillable = log.IsBillable
	if log.Description != "" {
		mapped.Description = log.Description
	}
	if !log.ExpectedHours.IsZero() {
		mapped.ExpectedHours = log.ExpectedHours
	}

	return saveAndShow(cmd, ts)
}

func saveAndShow(cmd *cobra.Command, ts *domain.Timesheet) error {
	if err := save(cmd, ts); err != nil {
		return fmt.Errorf("failed to save timesheet: %w", err)
	}
	success(cmd.OutOrStdout(), "Timesheet %s saved", ts.Name)
	showTimesheet(cmd, ts)
	return nil
}

func save(cmd *cobra.Command, ts *domain.Timesheet) error {
	if retry, _ := cmd.Flags().GetBool("retry"); retry {
		return appInstance.TimesheetService.SaveWithRetry(cmd.Context(), ts, appInstance.RetryPolicy())
	}
	return appInstance.TimesheetService.Save(cmd.Context(), ts)
}

func showTimesheet(cmd *cobra.Command, ts *domain.Timesheet) {
	out := cmd.OutOrStdout()
	renderFields(out, "Timesheet "+ts.Name, [][2]string{
		{"Employee", ts.Employee},
		{"Company", ts.Company},
		{"Customer", ts.Customer},
		{"Project", ts.ParentProject},
		{"Period", strings.Trim(formatTime(ts.StartDate)+" - "+formatTime(ts.EndDate), " -")},
		{"Hours", formatHours(ts.TotalHours)},
		{"Billable", formatHours(ts.TotalBillableHours) + "h / " + formatHours(ts.TotalBillableAmount)},
		{"Billed", formatHours(ts.TotalBilledHours) + "h / " + formatHours(ts.TotalBilledAmount)},
		{"Costing", formatHours(ts.TotalCostingAmount)},
		{"Per Billed", ts.PerBilled.StringFixed(2) + "%"},
		{"Status", statusStyle(string(ts.Status)).Render(string(ts.Status))},
		{"Note", ts.Note},
	})

	if len(ts.TimeLogs) == 0 {
		return
	}

	rows := make([][]string, 0, len(ts.TimeLogs))
	for _, log := range ts.TimeLogs {
		rows = append(rows, []string{
			strconv.Itoa(log.Idx),
			log.ActivityType,
			formatTime(log.FromTime),
			formatTime(log.ToTime),
			formatHours(log.Hours),
			yesNo(log.IsBillable),
			formatHours(log.BillingAmount),
			log.Project,
			log.Task,
			log.SalesInvoice,
		})
	}
	fmt.Fprintln(out)
	renderTable(out, []string{"#", "Activity", "From", "To", "Hours", "Billable", "Amount", "Project", "Task", "Invoice"}, rows)
}

func parseDocStatus(s string) (domain.DocStatus, error) {
	switch strings.ToLower(s) {
	case "draft", "0":
		return domain.DocStatusDraft, nil
	case "submitted", "1":
		return domain.DocStatusSubmitted, nil
	case "cancelled", "canceled", "2":
		return domain.DocStatusCancelled, nil
	}
	return 0, fmt.Errorf("invalid docstatus %q (draft, submitted, cancelled)", s)
}

func init() {
	timesheetsNewCmd.Flags().String("employee", "", "employee the timesheet belongs to")
	timesheetsNewCmd.Flags().String("customer", "", "customer to bill")
	timesheetsNewCmd.Flags().String("project", "", "parent project")
	timesheetsNewCmd.Flags().String("note", "", "free text note")

	for _, cmd := range []*cobra.Command{timesheetsFromProjectCmd, timesheetsFromTaskCmd} {
		cmd.Flags().String("employee", "", "employee the timesheet belongs to")
	}

	for _, cmd := range []*cobra.Command{timesheetsNewCmd, timesheetsAddLogCmd, timesheetsFromProjectCmd, timesheetsFromTaskCmd} {
		addLogFlags(cmd)
	}
	for _, cmd := range []*cobra.Command{timesheetsNewCmd, timesheetsAddLogCmd, timesheetsRemoveLogCmd, timesheetsFromProjectCmd, timesheetsFromTaskCmd} {
		cmd.Flags().Bool("retry", false, "shift an overlapping log forward until it fits")
	}

	timesheetsListCmd.Flags().String("employee", "", "filter by employee")
	timesheetsListCmd.Flags().String("project", "", "filter by project")
	timesheetsListCmd.Flags().String("docstatus", "", "filter by draft, submitted or cancelled")

	timesheetsCmd.AddCommand(timesheetsNewCmd)
	timesheetsCmd.AddCommand(timesheetsAddLogCmd)
	timesheetsCmd.AddCommand(timesheetsRemoveLogCmd)
	timesheetsCmd.AddCommand(timesheetsFromProjectCmd)
	timesheetsCmd.AddCommand(timesheetsFromTaskCmd)
	timesheetsCmd.AddCommand(timesheetsSubmitCmd)
	timesheetsCmd.AddCommand(timesheetsCancelCmd)
	timesheetsCmd.AddCommand(timesheetsDeleteCmd)
	timesheetsCmd.AddCommand(timesheetsShowCmd)
	timesheetsCmd.AddCommand(timesheetsListCmd)
}
