// Package calendar decides which days are court working days and derives
// response deadlines from them.
package calendar

import (
	"sort"
	"time"
)

const dateKeyLayout = "2006-01-02"

// WorkingDayCalendar excludes weekends and the registered public holidays.
// It is immutable; WithHolidays returns an extended copy.
type WorkingDayCalendar struct {
	loc      *time.Location
	holidays map[string]struct{}
}

// NewWorkingDayCalendar builds a calendar in loc. A nil loc means UTC.
func NewWorkingDayCalendar(loc *time.Location, holidays ...time.Time) *WorkingDayCalendar {
	if loc == nil {
		loc = time.UTC
	}
	c := &WorkingDayCalendar{loc: loc, holidays: make(map[string]struct{}, len(holidays))}
	for _, h := range holidays {
		c.holidays[c.key(h)] = struct{}{}
	}
	return c
}

func (c *WorkingDayCalendar) key(t time.Time) string {
	// Holidays are calendar dates; take the wall date as given rather than
	// shifting it into loc.
	return t.Format(dateKeyLayout)
}

// Location is the zone deadlines are expressed in.
func (c *WorkingDayCalendar) Location() *time.Location {
	return c.loc
}

// WithHolidays returns a copy that also excludes extra.
func (c *WorkingDayCalendar) WithHolidays(extra ...time.Time) *WorkingDayCalendar {
	cp := &WorkingDayCalendar{loc: c.loc, holidays: make(map[string]struct{}, len(c.holidays)+len(extra))}
	for k := range c.holidays {
		cp.holidays[k] = struct{}{}
	}
	for _, h := range extra {
		cp.holidays[cp.key(h)] = struct{}{}
	}
	return cp
}

// IsHoliday reports whether t's date is a registered public holiday.
func (c *WorkingDayCalendar) IsHoliday(t time.Time) bool {
	_, ok := c.holidays[c.key(t.In(c.loc))]
	return ok
}

// IsWorkingDay reports whether t falls on a weekday that is not a holiday.
func (c *WorkingDayCalendar) IsWorkingDay(t time.Time) bool {
	local := t.In(c.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(local)
}

// NextWorkingDay returns t itself when it is a working day, otherwise the
// same wall-clock time on the first working day after it.
func (c *WorkingDayCalendar) NextWorkingDay(t time.Time) time.Time {
	for !c.IsWorkingDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddWorkingDays moves t forward by n working days. n <= 0 returns t unchanged.
func (c *WorkingDayCalendar) AddWorkingDays(t time.Time, n int) time.Time {
	for n > 0 {
		t = t.AddDate(0, 0, 1)
		if c.IsWorkingDay(t) {
			n--
		}
	}
	return t
}

// Holidays lists the registered holidays in ascending order.
func (c *WorkingDayCalendar) Holidays() []string {
	out := make([]string, 0, len(c.holidays))
	for k := range c.holidays {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

//Personal.AI order the ending
