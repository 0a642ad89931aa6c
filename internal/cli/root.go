package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andy/timesheet/internal/app"
	"github.com/andy/timesheet/internal/config"
)

var (
	appInstance *app.App
	configPath  string
)

var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Track employee time and bill it to customers",
	Long: `Timesheet records time logs against projects and tasks, rejects
overlapping work for the same employee, and turns billable time into
sales invoices.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appInstance != nil {
			return nil
		}

		if err := config.LoadEnv(configPath); err != nil {
			return err
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		a, err := app.NewWithConfig(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		appInstance = a

		if cmd.Parent() != timerCmd {
			warnLeftoverTimer(cmd)
		}
		return nil
	},
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	defer func() {
		if appInstance != nil {
			appInstance.Close()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func warnLeftoverTimer(cmd *cobra.Command) {
	timer, err := appInstance.RecoverTimer(cmd.Context())
	if err != nil || timer == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "note: a timer for %s is still %s (see `timesheet timer status`)\n",
		timer.Employee, timer.State())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "path to config file")

	rootCmd.AddCommand(employeesCmd)
	rootCmd.AddCommand(customersCmd)
	rootCmd.AddCommand(activitiesCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(timesheetsCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resetCmd)
}
