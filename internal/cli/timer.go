package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/andy/timesheet/internal/domain"
	"github.com/andy/timesheet/internal/service"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Manage the active timer",
	Long:  `Start, stop, pause, resume, or check the status of the active timer.`,
}

var timerStartCmd = &cobra.Command{
	Use:   "start [employee] [activity type]",
	Short: "Start a new timer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := service.StartTimer{Employee: args[0], ActivityType: args[1]}
		req.Project, _ = cmd.Flags().GetString("project")
		req.Task, _ = cmd.Flags().GetString("task")
		req.Timesheet, _ = cmd.Flags().GetString("timesheet")
		req.Description, _ = cmd.Flags().GetString("description")
		req.IsBillable, _ = cmd.Flags().GetBool("billable")

		if err := appInstance.TimerService.Start(cmd.Context(), req); err != nil {
			return fmt.Errorf("failed to start timer: %w", err)
		}

		success(cmd.OutOrStdout(), "Timer started for %s (%s)", req.Employee, req.ActivityType)
		return nil
	},
}

var timerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active timer and log its time",
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := appInstance.TimerService.Stop(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to stop timer: %w", err)
		}

		log := ts.TimeLogs[len(ts.TimeLogs)-1]
		out := cmd.OutOrStdout()
		success(out, "Timer stopped")
		renderFields(out, "Logged to "+ts.Name, [][2]string{
			{"Activity", log.ActivityType},
			{"Duration", formatDuration(log.ToTime.Sub(log.FromTime))},
			{"Amount", formatHours(log.BillingAmount)},
		})
		return nil
	},
}

var timerPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the active timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.TimerService.Pause(cmd.Context()); err != nil {
			return fmt.Errorf("failed to pause timer: %w", err)
		}
		success(cmd.OutOrStdout(), "Timer paused")
		return nil
	},
}

var timerResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.TimerService.Resume(cmd.Context()); err != nil {
			return fmt.Errorf("failed to resume timer: %w", err)
		}
		success(cmd.OutOrStdout(), "Timer resumed")
		return nil
	},
}

var timerDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Discard the active timer without logging time",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.TimerService.Discard(cmd.Context()); err != nil {
			return fmt.Errorf("failed to discard timer: %w", err)
		}
		success(cmd.OutOrStdout(), "Timer discarded")
		return nil
	},
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of the active timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		timer, err := appInstance.TimerService.GetActiveTimer(ctx)
		if err != nil {
			return fmt.Errorf("failed to get active timer: %w", err)
		}
		if timer == nil {
			fmt.Fprintln(out, "No active timer")
			return nil
		}

		elapsed, err := appInstance.TimerService.ElapsedDuration(ctx)
		if err != nil {
			return err
		}
		value, err := appInstance.TimerService.AccruedValue(ctx)
		if err != nil {
			return err
		}

		state := timer.State()
		stateColor := successColor
		if state == domain.TimerStatePaused {
			stateColor = warningColor
		}

		renderFields(out, "Timer", [][2]string{
			{"State", lipgloss.NewStyle().Bold(true).Foreground(stateColor).Render(string(state))},
			{"Employee", timer.Employee},
			{"Activity", timer.ActivityType},
			{"Project", timer.Project},
			{"Task", timer.Task},
			{"Timesheet", timer.Timesheet},
			{"Description", timer.Description},
			{"Started", formatTime(timer.StartTime)},
			{"Elapsed", formatDuration(elapsed)},
			{"Value", formatHours(value)},
		})
		return nil
	},
}

func init() {
	timerStartCmd.Flags().String("project", "", "project the time is logged against")
	timerStartCmd.Flags().String("task", "", "task the time is logged against")
	timerStartCmd.Flags().String("timesheet", "", "draft timesheet to append to")
	timerStartCmd.Flags().String("description", "", "what is being worked on")
	timerStartCmd.Flags().Bool("billable", false, "bill the logged time")

	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerStopCmd)
	timerCmd.AddCommand(timerPauseCmd)
	timerCmd.AddCommand(timerResumeCmd)
	timerCmd.AddCommand(timerDiscardCmd)
	timerCmd.AddCommand(timerStatusCmd)
}
