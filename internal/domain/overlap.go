package domain

import "time"

// OverlapSettings controls employee time overlap validation
type OverlapSettings struct {
	IgnoreEmployeeTimeOverlap bool
}

// EmployeeLog is a stored interval of an employee on some timesheet
type EmployeeLog struct {
	Timesheet string
	Row       int
	FromTime  time.Time
	ToTime    time.Time
}

// CheckOverlap rejects the sheet when any of its logs intersects another of
// its own logs or one of the employee's stored logs. Logs stored on the sheet
// itself are skipped since the sheet's current rows replace them.
func CheckOverlap(t *Timesheet, existing []EmployeeLog, settings OverlapSettings) error {
	if settings.IgnoreEmployeeTimeOverlap {
		return nil
	}

	for i, log := range t.TimeLogs {
		if log.FromTime.IsZero() || log.ToTime.IsZero() {
			continue
		}

		for _, prev := range t.TimeLogs[:i] {
			if prev.FromTime.IsZero() || prev.ToTime.IsZero() {
				continue
			}
			if log.Overlaps(prev.FromTime, prev.ToTime) {
				return &OverlapError{
					Employee:    t.Employee,
					Row:         log.Idx,
					FromTime:    log.FromTime,
					ToTime:      log.ToTime,
					Timesheet:   t.Name,
					ConflictRow: prev.Idx,
				}
			}
		}

		for _, other := range existing {
			if t.Name != "" && other.Timesheet == t.Name {
				continue
			}
			if log.Overlaps(other.FromTime, other.ToTime) {
				return &OverlapError{
					Employee:    t.Employee,
					Row:         log.Idx,
					FromTime:    log.FromTime,
					ToTime:      log.ToTime,
					Timesheet:   other.Timesheet,
					ConflictRow: other.Row,
				}
			}
		}
	}

	return nil
}
