package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andy/timesheet/internal/db"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the database",
	Long: `Reset data in the database.

Examples:
  timesheet reset invoices     # Delete invoices and release their time logs
  timesheet reset timesheets   # Delete timesheets, invoices and timer state
  timesheet reset all          # Wipe everything including master data`,
}

// releaseBilling returns every timesheet to its unbilled figures
var releaseBilling = []string{
	"UPDATE timesheet_logs SET sales_invoice = ''",
	`UPDATE timesheets SET total_billed_hours = '0', total_billed_amount = '0', per_billed = '0',
		status = CASE docstatus WHEN 0 THEN 'Draft' WHEN 1 THEN 'Submitted' ELSE 'Cancelled' END`,
}

var resetInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Delete all invoices and release their time logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReset(cmd, "ALL invoices will be deleted and their time logs released.",
			append(releaseBilling, deleteFrom("sales_invoice_timesheets", "sales_invoice_items", "sales_invoices")...))
	},
}

var resetTimesheetsCmd = &cobra.Command{
	Use:   "timesheets",
	Short: "Delete all timesheets, invoices and timer state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReset(cmd, "ALL timesheets, invoices and timer state will be deleted.",
			deleteFrom("sales_invoice_timesheets", "sales_invoice_items", "sales_invoices",
				"timesheet_logs", "timesheets", "active_timer"))
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data including employees, customers and projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReset(cmd, "ALL data will be deleted.",
			deleteFrom("sales_invoice_timesheets", "sales_invoice_items", "sales_invoices",
				"timesheet_logs", "timesheets", "active_timer",
				"tasks", "projects", "activity_types", "customers", "employees"))
	},
}

// deleteFrom builds DELETE statements in the given order, children first
func deleteFrom(tables ...string) []string {
	stmts := make([]string, 0, len(tables))
	for _, table := range tables {
		stmts = append(stmts, "DELETE FROM "+table)
	}
	return stmts
}

func runReset(cmd *cobra.Command, warning string, stmts []string) error {
	out := cmd.OutOrStdout()

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !confirmPrompt(cmd.InOrStdin(), out, warning+" Continue?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := execAll(cmd.Context(), appInstance.DB, stmts); err != nil {
		return err
	}

	appInstance.Log.Warn().Str("command", cmd.Name()).Msg("database reset")
	success(out, "Reset complete")
	return nil
}

func execAll(ctx context.Context, database *db.DB, stmts []string) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func confirmPrompt(in io.Reader, out io.Writer, message string) bool {
	fmt.Fprintf(out, "%s [y/N] ", message)
	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	for _, cmd := range []*cobra.Command{resetInvoicesCmd, resetTimesheetsCmd, resetAllCmd} {
		cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
		resetCmd.AddCommand(cmd)
	}
}
