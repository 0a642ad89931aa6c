package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andy/timesheet/internal/domain"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
}

var projectsAddCmd = &cobra.Command{
	Use:   "add [id] [project name]",
	Short: "Add a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		company, _ := cmd.Flags().GetString("company")
		customer, _ := cmd.Flags().GetString("customer")
		start, _ := cmd.Flags().GetString("start")

		project := domain.NewProject(args[0], args[1], company)
		project.Customer = customer
		if start != "" {
			t, err := time.ParseInLocation(dateLayout, start, time.Local)
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}
			project.ExpectedStartDate = &t
		}
		if err := project.Validate(); err != nil {
			return fmt.Errorf("invalid project: %w", err)
		}

		if err := appInstance.ProjectRepo.Create(cmd.Context(), project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		success(cmd.OutOrStdout(), "Project created: %s (%s)", project.Name, project.ProjectName)
		return nil
	},
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := appInstance.ProjectRepo.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects found")
			return nil
		}

		rows := make([][]string, 0, len(projects))
		for _, p := range projects {
			start := ""
			if p.ExpectedStartDate != nil {
				start = formatDate(*p.ExpectedStartDate)
			}
			rows = append(rows, []string{p.Name, p.ProjectName, p.Customer, p.Company, string(p.Status), start})
		}
		renderTable(out, []string{"ID", "Name", "Customer", "Company", "Status", "Start"}, rows)
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a project and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.ProjectRepo.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		success(cmd.OutOrStdout(), "Project deleted: %s", args[0])
		return nil
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage project tasks",
}

var tasksAddCmd = &cobra.Command{
	Use:   "add [id] [subject]",
	Short: "Add a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		expectedStr, _ := cmd.Flags().GetString("expected-hours")

		expected, err := parseDecimal(expectedStr)
		if err != nil {
			return fmt.Errorf("invalid expected hours: %w", err)
		}

		task := domain.NewTask(args[0], args[1], project, expected)
		if err := task.Validate(); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}

		if err := appInstance.TaskRepo.Create(cmd.Context(), task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		success(cmd.OutOrStdout(), "Task created: %s (%s)", task.Name, task.Subject)
		return nil
	},
}

var tasksListCmd = &cobra.Command{
	Use:   "list [project]",
	Short: "List the tasks of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := appInstance.TaskRepo.ListByProject(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found")
			return nil
		}

		rows := make([][]string, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, []string{t.Name, t.Subject, formatHours(t.ExpectedHours), string(t.Status)})
		}
		renderTable(out, []string{"ID", "Subject", "Expected Hours", "Status"}, rows)
		return nil
	},
}

func init() {
	projectsAddCmd.Flags().String("company", "", "company running the project")
	projectsAddCmd.Flags().String("customer", "", "customer billed for the project; empty for internal work")
	projectsAddCmd.Flags().String("start", "", "expected start date (YYYY-MM-DD)")
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)

	tasksAddCmd.Flags().String("project", "", "project the task belongs to")
	tasksAddCmd.Flags().String("expected-hours", "0", "estimated hours")
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksListCmd)
}
