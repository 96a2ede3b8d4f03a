// Package timeutil provides utility functions and types for working with
// the protocol's date and duration encodings.
package timeutil

import (
	"fmt"
	"time"
)

const minutesInAnHour = 60

// DayFormat encodes a time value as the yyyymmdd integer the wire
// format uses for dates (year*10000 + month*100 + day).
func DayFormat(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// ParseDayFormat is the inverse of DayFormat. The resulting time is
// midnight local time.
func ParseDayFormat(v int) time.Time {
	year := v / 10000
	month := (v / 100) % 100
	day := v % 100

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
}

// IsWireDate reports whether v looks like a yyyymmdd date within the
// range the server is known to emit.
func IsWireDate(v int) bool {
	return v >= 20200101 && v <= 20301231
}

// DaysIn returns the number of days in the month for the specified time.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Month identifies a calendar month. It is the key type for the
// month-granular caches.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Add returns the month n months after m (or before, for negative n).
func (m Month) Add(n int) Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Before reports whether m is chronologically before other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}

	return m.Month < other.Month
}

// Sub returns the number of months from other to m.
func (m Month) Sub(other Month) int {
	return (m.Year-other.Year)*12 + int(m.Month) - int(other.Month)
}

// First returns midnight on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.Local)
}

// Last returns midnight on the last day of the month.
func (m Month) Last() time.Time {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.Local)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.Last().Day()
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// StartOfWeek returns midnight on the Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}

	day := t.AddDate(0, 0, 1-weekday)

	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// WeeksOf returns the Mondays of every week that overlaps the month, in
// chronological order.
func (m Month) Weeks() []time.Time {
	var weeks []time.Time

	cur := StartOfWeek(m.First())
	last := m.Last()

	for !cur.After(last) {
		weeks = append(weeks, cur)
		cur = cur.AddDate(0, 0, 7)
	}

	return weeks
}

// FormatSeconds renders a seconds count as H:MM.
func FormatSeconds(seconds int) string {
	mins := seconds / 60
	return fmt.Sprintf("%d:%02d", mins/minutesInAnHour, mins%minutesInAnHour)
}

// FormatMinuteOfDay renders a minute-of-day value (0-1440) as a clock
// time, 24-hour ("14:05") or 12-hour ("2:05 PM").
func FormatMinuteOfDay(minute int, twentyFourHour bool) string {
	hour, min := minute/minutesInAnHour, minute%minutesInAnHour

	if twentyFourHour {
		return fmt.Sprintf("%d:%02d", hour, min)
	}

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}

	hour %= 12
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%d:%02d %s", hour, min, suffix)
}
