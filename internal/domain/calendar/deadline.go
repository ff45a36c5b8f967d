package calendar

import (
	"time"
)

// DefaultCutOffHour is the end of the court business day.
const DefaultCutOffHour = 16

// DeadlineCalculator derives response and submission deadlines.
type DeadlineCalculator struct {
	cal        *WorkingDayCalendar
	cutOffHour int
}

// NewDeadlineCalculator returns a calculator using cal. A cutOffHour outside
// 1..23 falls back to DefaultCutOffHour.
func NewDeadlineCalculator(cal *WorkingDayCalendar, cutOffHour int) *DeadlineCalculator {
	if cutOffHour < 1 || cutOffHour > 23 {
		cutOffHour = DefaultCutOffHour
	}
	return &DeadlineCalculator{cal: cal, cutOffHour: cutOffHour}
}

func (d *DeadlineCalculator) Calendar() *WorkingDayCalendar {
	return d.cal
}

// ResponseDeadline computes the deadline for a response due days after base.
// Anything received at or after the cut-off counts as received the next day.
// The result is the first working day on or after the shifted date, at the
// cut-off hour in the calendar's location.
func (d *DeadlineCalculator) ResponseDeadline(base time.Time, days int) time.Time {
	local := base.In(d.cal.Location())
	if local.Hour() >= d.cutOffHour {
		local = local.AddDate(0, 0, 1)
	}
	due := d.cal.NextWorkingDay(startOfDay(local).AddDate(0, 0, days))
	return d.atCutOff(due)
}

// WorkingDaysDeadline counts days working days from base, applying the same
// cut-off rule, and returns the result at the cut-off hour.
func (d *DeadlineCalculator) WorkingDaysDeadline(base time.Time, days int) time.Time {
	local := base.In(d.cal.Location())
	if local.Hour() >= d.cutOffHour {
		local = local.AddDate(0, 0, 1)
	}
	start := d.cal.NextWorkingDay(startOfDay(local))
	return d.atCutOff(d.cal.AddWorkingDays(start, days))
}

// IsPast reports whether deadline has passed at now.
func (d *DeadlineCalculator) IsPast(deadline, now time.Time) bool {
	return now.After(deadline)
}

func (d *DeadlineCalculator) atCutOff(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), d.cutOffHour, 0, 0, 0, d.cal.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

//Personal.AI order the ending
