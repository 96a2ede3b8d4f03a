// Package models defines the typed records recovered from server
// responses.
package models

import (
	"time"

	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

// PunchType is the direction of a badge punch.
type PunchType int

const (
	PunchUnknown PunchType = iota
	PunchClockIn
	PunchClockOut
)

func (p PunchType) String() string {
	switch p {
	case PunchClockIn:
		return "clock-in"
	case PunchClockOut:
		return "clock-out"
	default:
		return "unknown"
	}
}

// TimeEntry is a single badge entry on a day. Entries alternate between
// clock-in and clock-out in time order.
type TimeEntry struct {
	MinuteOfDay int       `json:"minute_of_day"`
	Type        PunchType `json:"type"`
}

// DayPresence holds the worked and expected durations for one day plus
// the badge entries recorded on it.
type DayPresence struct {
	Date     time.Time     `json:"date"`
	Worked   time.Duration `json:"worked"`
	Expected time.Duration `json:"expected"`
	Entries  []TimeEntry   `json:"entries,omitempty"`
}

// WeekPresence is a week of presence data, Monday first.
type WeekPresence struct {
	Days [7]DayPresence `json:"days"`
}

// TotalWorked is the sum of the daily worked durations.
func (w *WeekPresence) TotalWorked() time.Duration {
	var total time.Duration
	for i := range w.Days {
		total += w.Days[i].Worked
	}

	return total
}

// TotalExpected is the sum of the daily expected durations.
func (w *WeekPresence) TotalExpected() time.Duration {
	var total time.Duration
	for i := range w.Days {
		total += w.Days[i].Expected
	}

	return total
}

// MonthPresence aggregates the weeks overlapping a calendar month.
type MonthPresence struct {
	Month timeutil.Month `json:"month"`
	Weeks []WeekPresence `json:"weeks"`
}

// TotalWorked sums worked time over the days of the month itself,
// excluding days that belong to adjacent months in overlapping weeks.
func (m *MonthPresence) TotalWorked() time.Duration {
	var total time.Duration

	for i := range m.Weeks {
		for _, d := range m.Weeks[i].Days {
			if timeutil.MonthOf(d.Date) == m.Month {
				total += d.Worked
			}
		}
	}

	return total
}

// AbsenceKind classifies a day in the absence calendar.
type AbsenceKind int

const (
	AbsenceNone AbsenceKind = iota
	AbsenceVacation
	AbsenceSick
	AbsencePrivate
	AbsenceHalfHoliday
	AbsenceHoliday
	AbsenceRestDay
	AbsenceWeekend
)

func (k AbsenceKind) String() string {
	switch k {
	case AbsenceVacation:
		return "vacation"
	case AbsenceSick:
		return "sick"
	case AbsencePrivate:
		return "private appointment"
	case AbsenceHalfHoliday:
		return "half holiday"
	case AbsenceHoliday:
		return "holiday"
	case AbsenceRestDay:
		return "rest day"
	case AbsenceWeekend:
		return "weekend"
	default:
		return "none"
	}
}

// AbsenceDay is the classification of a single day.
type AbsenceDay struct {
	Date        time.Time   `json:"date"`
	Kind        AbsenceKind `json:"kind"`
	Holiday     bool        `json:"holiday"`
	Weekend     bool        `json:"weekend"`
	RestDay     bool        `json:"rest_day"`
	HalfHoliday bool        `json:"half_holiday"`
	Color       int         `json:"color,omitempty"`
	Label       string      `json:"label,omitempty"`
}

// AbsenceLegendEntry maps a color value to its human label.
type AbsenceLegendEntry struct {
	Color int    `json:"color"`
	Label string `json:"label"`
}

// AbsenceCalendar is a contiguous range of classified days plus the
// legend the server sent alongside them.
type AbsenceCalendar struct {
	Start  time.Time            `json:"start"`
	End    time.Time            `json:"end"`
	Days   []AbsenceDay         `json:"days"`
	Legend []AbsenceLegendEntry `json:"legend,omitempty"`
}

// MonthSlice returns the days of the calendar falling in the given
// month, or nil if the calendar does not cover it completely.
func (c *AbsenceCalendar) MonthSlice(m timeutil.Month) []AbsenceDay {
	var days []AbsenceDay

	for _, d := range c.Days {
		if timeutil.MonthOf(d.Date) == m {
			days = append(days, d)
		}
	}

	if len(days) != m.Days() {
		return nil
	}

	return days
}

// AbsenceMonth is one cached month of the absence calendar.
type AbsenceMonth struct {
	Month  timeutil.Month       `json:"month"`
	Days   []AbsenceDay         `json:"days"`
	Legend []AbsenceLegendEntry `json:"legend,omitempty"`
}

// PunchResult is derived from the free-text message the server returns
// after a punch.
type PunchResult struct {
	Success   bool      `json:"success"`
	Type      PunchType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Label     string    `json:"label,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ColleagueAbsence lists the absent days of one colleague in a month.
type ColleagueAbsence struct {
	Name        string `json:"name"`
	EmployeeID  int    `json:"employee_id,omitempty"`
	BadgeAlias  string `json:"badge_alias,omitempty"`
	AbsenceDays []int  `json:"absence_days"` // day numbers, 1-based
	Month       int    `json:"month"`
	Year        int    `json:"year"`
}
