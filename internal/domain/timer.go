package domain

import "time"

type TimerState string

const (
	TimerStateIdle    TimerState = "idle"
	TimerStateRunning TimerState = "running"
	TimerStatePaused  TimerState = "paused"
)

// ActiveTimer is the single running stopwatch that becomes a time log
type ActiveTimer struct {
	Employee           string
	ActivityType       string
	Project            string
	Task               string
	Timesheet          string // draft to append to; empty starts a new sheet
	Description        string
	IsBillable         bool
	StartTime          time.Time
	PausedAt           *time.Time
	TotalPausedSeconds int64
}

// NewActiveTimer creates a new running timer
func NewActiveTimer(employee, activityType string) *ActiveTimer {
	return &ActiveTimer{
		Employee:     employee,
		ActivityType: activityType,
		IsBillable:   true,
		StartTime:    time.Now(),
	}
}

// State returns the current timer state
func (t *ActiveTimer) State() TimerState {
	if t.PausedAt != nil {
		return TimerStatePaused
	}
	return TimerStateRunning
}

// ElapsedAt returns the active duration up to now, excluding paused time
func (t *ActiveTimer) ElapsedAt(now time.Time) time.Duration {
	paused := time.Duration(t.TotalPausedSeconds) * time.Second
	if t.PausedAt != nil {
		paused += now.Sub(*t.PausedAt)
	}
	return now.Sub(t.StartTime) - paused
}

// Pause pauses the timer
func (t *ActiveTimer) Pause(now time.Time) {
	if t.PausedAt == nil {
		t.PausedAt = &now
	}
}

// Resume resumes a paused timer
func (t *ActiveTimer) Resume(now time.Time) {
	if t.PausedAt != nil {
		t.TotalPausedSeconds += int64(now.Sub(*t.PausedAt).Seconds())
		t.PausedAt = nil
	}
}

// ToTimeLog converts the stopped timer into a log starting at StartTime
// and lasting the elapsed active time
func (t *ActiveTimer) ToTimeLog(now time.Time) *TimeLog {
	t.Resume(now)
	elapsed := t.ElapsedAt(now).Truncate(time.Second)

	return &TimeLog{
		ActivityType: t.ActivityType,
		Description:  t.Description,
		FromTime:     t.StartTime,
		ToTime:       t.StartTime.Add(elapsed),
		Hours:        HoursBetween(t.StartTime, t.StartTime.Add(elapsed)),
		IsBillable:   t.IsBillable,
		Project:      t.Project,
		Task:         t.Task,
	}
}
