package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/pdf"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Make and manage sales invoices from billable time",
}

var invoicesMakeCmd = &cobra.Command{
	Use:   "make [timesheet]",
	Short: "Make a draft invoice from a submitted timesheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, _ := cmd.Flags().GetString("item")
		customer, _ := cmd.Flags().GetString("customer")
		currency, _ := cmd.Flags().GetString("currency")

		invoice, err := appInstance.InvoiceService.MakeSalesInvoice(cmd.Context(), args[0], item, customer, currency)
		if err != nil {
			return fmt.Errorf("failed to make invoice: %w", err)
		}

		success(cmd.OutOrStdout(), "Invoice %s created", invoice.Name)
		showInvoice(cmd, invoice)
		return nil
	},
}

var invoicesMakeProjectCmd = &cobra.Command{
	Use:   "make-project [project]",
	Short: "Make a draft invoice from all unbilled time on a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, _ := cmd.Flags().GetString("item")
		customer, _ := cmd.Flags().GetString("customer")

		invoice, err := appInstance.InvoiceService.MakeProjectInvoice(cmd.Context(), args[0], customer, item)
		if err != nil {
			return fmt.Errorf("failed to make invoice: %w", err)
		}

		success(cmd.OutOrStdout(), "Invoice %s created", invoice.Name)
		showInvoice(cmd, invoice)
		return nil
	},
}

var invoicesSubmitCmd = &cobra.Command{
	Use:   "submit [invoice]",
	Short: "Submit a draft invoice and mark its time as billed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := appInstance.InvoiceService.Submit(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to submit invoice: %w", err)
		}
		success(cmd.OutOrStdout(), "Invoice %s submitted (%s)", invoice.Name, invoice.Status)
		return nil
	},
}

var invoicesCancelCmd = &cobra.Command{
	Use:   "cancel [invoice]",
	Short: "Cancel an invoice and release its time logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := appInstance.InvoiceService.Cancel(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to cancel invoice: %w", err)
		}
		success(cmd.OutOrStdout(), "Invoice %s cancelled", invoice.Name)
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [invoice]",
	Short: "Show an invoice with its items and time logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := appInstance.InvoiceService.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}
		showInvoice(cmd, invoice)
		return nil
	},
}

var invoicesPDFCmd = &cobra.Command{
	Use:   "pdf [invoice]",
	Short: "Write an invoice as PDF to the output directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("out")
		if dir == "" {
			dir = appInstance.Config.Invoice.OutputDir
		}

		invoice, err := appInstance.InvoiceService.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}

		path, err := pdf.WriteInvoice(dir, invoice)
		if err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Invoice written to %s", path)
		return nil
	},
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		customer, _ := cmd.Flags().GetString("customer")

		var status *domain.InvoiceStatus
		if cmd.Flags().Changed("status") {
			s, _ := cmd.Flags().GetString("status")
			st := domain.InvoiceStatus(s)
			status = &st
		}

		invoices, err := appInstance.InvoiceService.List(cmd.Context(), customer, status)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(invoices) == 0 {
			fmt.Fprintln(out, "No invoices found")
			return nil
		}

		rows := make([][]string, 0, len(invoices))
		for _, inv := range invoices {
			rows = append(rows, []string{
				inv.Name,
				inv.Customer,
				formatDate(inv.PostingDate),
				formatHours(inv.TotalBillingHours),
				formatMoney(inv.GrandTotal, inv.Currency),
				statusStyle(string(inv.Status)).Render(string(inv.Status)),
			})
		}
		renderTable(out, []string{"Name", "Customer", "Posted", "Hours", "Total", "Status"}, rows)
		fmt.Fprintf(out, "\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

func showInvoice(cmd *cobra.Command, inv *domain.SalesInvoice) {
	out := cmd.OutOrStdout()

	due := ""
	if inv.DueDate != nil {
		due = formatDate(*inv.DueDate)
	}
	renderFields(out, "Sales Invoice "+inv.Name, [][2]string{
		{"Customer", inv.Customer},
		{"Company", inv.Company},
		{"Project", inv.Project},
		{"Posted", formatDate(inv.PostingDate)},
		{"Due", due},
		{"Hours", formatHours(inv.TotalBillingHours)},
		{"Grand Total", formatMoney(inv.GrandTotal, inv.Currency)},
		{"Status", statusStyle(string(inv.Status)).Render(string(inv.Status))},
	})

	items := make([][]string, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, []string{
			strconv.Itoa(item.Idx),
			item.ItemCode,
			item.Description,
			formatHours(item.Qty),
			formatHours(item.Rate),
			formatHours(item.Amount),
		})
	}
	fmt.Fprintln(out)
	renderTable(out, []string{"#", "Item", "Description", "Qty", "Rate", "Amount"}, items)

	logs := make([][]string, 0, len(inv.Timesheets))
	for _, row := range inv.Timesheets {
		logs = append(logs, []string{
			row.Timesheet,
			row.ActivityType,
			row.Project,
			formatHours(row.BillingHours),
			formatHours(row.BillingRate),
			formatHours(row.BillingAmount),
		})
	}
	renderTable(out, []string{"Timesheet", "Activity", "Project", "Hours", "Rate", "Amount"}, logs)
}

func init() {
	invoicesMakeCmd.Flags().String("item", "", "item code for the invoice lines (default from config)")
	invoicesMakeCmd.Flags().String("customer", "", "customer to bill (default from the timesheet)")
	invoicesMakeCmd.Flags().String("currency", "", "invoice currency (default from the customer)")

	invoicesMakeProjectCmd.Flags().String("item", "", "item code for the invoice lines (default from config)")
	invoicesMakeProjectCmd.Flags().String("customer", "", "customer to bill (default from the project)")

	invoicesPDFCmd.Flags().String("out", "", "output directory (default from config)")

	invoicesListCmd.Flags().String("customer", "", "filter by customer")
	invoicesListCmd.Flags().String("status", "", "filter by status (Draft, Unpaid, Cancelled)")

	invoicesCmd.AddCommand(invoicesMakeCmd)
	invoicesCmd.AddCommand(invoicesMakeProjectCmd)
	invoicesCmd.AddCommand(invoicesSubmitCmd)
	invoicesCmd.AddCommand(invoicesCancelCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesPDFCmd)
	invoicesCmd.AddCommand(invoicesListCmd)
}
