package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/timesheet/internal/domain"
)

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "Manage employees",
}

var employeesAddCmd = &cobra.Command{
	Use:   "add [id] [full name]",
	Short: "Add an employee",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		company, _ := cmd.Flags().GetString("company")
		email, _ := cmd.Flags().GetString("email")

		employee := domain.NewEmployee(args[0], args[1], company)
		employee.UserEmail = email
		if err := employee.Validate(); err != nil {
			return fmt.Errorf("invalid employee: %w", err)
		}

		if err := appInstance.EmployeeRepo.Create(cmd.Context(), employee); err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}

		success(cmd.OutOrStdout(), "Employee created: %s (%s)", employee.Name, employee.EmployeeName)
		return nil
	},
}

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	RunE: func(cmd *cobra.Command, args []string) error {
		employees, err := appInstance.EmployeeRepo.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(employees) == 0 {
			fmt.Fprintln(out, "No employees found")
			return nil
		}

		rows := make([][]string, 0, len(employees))
		for _, e := range employees {
			rows = append(rows, []string{e.Name, e.EmployeeName, e.Company, e.UserEmail})
		}
		renderTable(out, []string{"ID", "Name", "Company", "Email"}, rows)
		return nil
	},
}

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Manage customers",
}

var customersAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		currency, _ := cmd.Flags().GetString("currency")

		customer := domain.NewCustomer(args[0], currency)
		if err := customer.Validate(); err != nil {
			return fmt.Errorf("invalid customer: %w", err)
		}

		if err := appInstance.CustomerRepo.Create(cmd.Context(), customer); err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}

		success(cmd.OutOrStdout(), "Customer created: %s", customer.Name)
		return nil
	},
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		customers, err := appInstance.CustomerRepo.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list customers: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(customers) == 0 {
			fmt.Fprintln(out, "No customers found")
			return nil
		}

		rows := make([][]string, 0, len(customers))
		for _, c := range customers {
			rows = append(rows, []string{c.Name, c.DefaultCurrency})
		}
		renderTable(out, []string{"Name", "Currency"}, rows)
		return nil
	},
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Manage activity types and their hourly rates",
}

var activitiesSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Create or update an activity type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		billingStr, _ := cmd.Flags().GetString("billing-rate")
		costingStr, _ := cmd.Flags().GetString("costing-rate")
		disabled, _ := cmd.Flags().GetBool("disabled")

		billing, err := parseDecimal(billingStr)
		if err != nil {
			return fmt.Errorf("invalid billing rate: %w", err)
		}
		costing, err := parseDecimal(costingStr)
		if err != nil {
			return fmt.Errorf("invalid costing rate: %w", err)
		}

		activity := domain.NewActivityType(args[0], billing, costing)
		activity.Disabled = disabled
		if err := activity.Validate(); err != nil {
			return fmt.Errorf("invalid activity type: %w", err)
		}

		if err := appInstance.ActivityRepo.Save(cmd.Context(), activity); err != nil {
			return fmt.Errorf("failed to save activity type: %w", err)
		}

		success(cmd.OutOrStdout(), "Activity type saved: %s (billing %s, costing %s)",
			activity.Name, formatHours(billing), formatHours(costing))
		return nil
	},
}

var activitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List activity types",
	RunE: func(cmd *cobra.Command, args []string) error {
		activities, err := appInstance.ActivityRepo.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list activity types: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(activities) == 0 {
			fmt.Fprintln(out, "No activity types found")
			return nil
		}

		rows := make([][]string, 0, len(activities))
		for _, a := range activities {
			rows = append(rows, []string{
				a.Name,
				formatHours(a.BillingRate),
				formatHours(a.CostingRate),
				yesNo(a.Disabled),
			})
		}
		renderTable(out, []string{"Activity", "Billing Rate", "Costing Rate", "Disabled"}, rows)
		return nil
	},
}

func init() {
	employeesAddCmd.Flags().String("company", "", "company the employee works for")
	employeesAddCmd.Flags().String("email", "", "user email")
	employeesCmd.AddCommand(employeesAddCmd)
	employeesCmd.AddCommand(employeesListCmd)

	customersAddCmd.Flags().String("currency", "", "default billing currency")
	customersCmd.AddCommand(customersAddCmd)
	customersCmd.AddCommand(customersListCmd)

	activitiesSetCmd.Flags().String("billing-rate", "0", "hourly billing rate")
	activitiesSetCmd.Flags().String("costing-rate", "0", "hourly costing rate")
	activitiesSetCmd.Flags().Bool("disabled", false, "disable the activity type; its rates then price as zero")
	activitiesCmd.AddCommand(activitiesSetCmd)
	activitiesCmd.AddCommand(activitiesListCmd)
}
