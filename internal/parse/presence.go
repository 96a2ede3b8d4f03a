package parse

import (
	"log/slog"
	"sort"
	"time"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/rpc"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

const (
	secondsInDay       = 86400
	maxSmallValue      = 1000
	minExpectedSeconds = 18000 // 5h
	maxExpectedSeconds = 36000 // 10h
	valuesPerDay       = 5
	daysPerWeek        = 7
	maxMinuteOfDay     = 1440
)

// WeekPresence recovers a week of presence data. It returns nil when
// the response type does not match or the body carries an exception;
// otherwise it returns a best-effort record even when some heuristics
// miss.
func WeekPresence(msg *rpc.Message) *models.WeekPresence {
	if rejects(msg, weekResponseMarker) {
		return nil
	}

	values := collectDurationValues(msg)

	start, ok := findWeekStart(values)
	if !ok {
		slog.Warn("presence: no 7-day block located", "values", len(values))
		return nil
	}

	week := &models.WeekPresence{}

	for day := 0; day < daysPerWeek; day++ {
		base := start + day*valuesPerDay
		week.Days[day].Worked = time.Duration(values[base+3]) * time.Second
		week.Days[day].Expected = time.Duration(values[base+4]) * time.Second
	}

	attachDates(msg, week)
	attachBadgeEntries(msg, week)

	return week
}

// collectDurationValues gathers every integer matched by the repeating
// triple {markerIndex},0,{seconds} in the data stream. When the marker
// type name is absent from the string table the fixed fallback index is
// used instead.
func collectDurationValues(msg *rpc.Message) []int64 {
	marker := durationMarkerIndex(msg)

	var values []int64

	tokens := msg.DataTokens
	for i := 0; i+2 < len(tokens); {
		if tokens[i].IsInt(marker) && tokens[i+1].IsInt(0) && tokens[i+2].Kind == rpc.KindInteger {
			values = append(values, tokens[i+2].Int)
			i += 3

			continue
		}

		i++
	}

	return values
}

func durationMarkerIndex(msg *rpc.Message) int64 {
	marker := int64(msg.StringIndex(durationMarkerType))
	if marker == 0 {
		marker = durationMarkerFallbackIndex
	}

	return marker
}

// findWeekStart locates the first value of the 7-day block inside the
// collected durations. The primary scan keys on the day layout
// [a,b,c,worked,expected] with small leading values and a plausible
// expected duration; the fallback accepts any block where at least
// three days carry a nonzero expectation.
func findWeekStart(values []int64) (int, bool) {
	want := daysPerWeek * valuesPerDay

	for s := 0; s+want <= len(values); s++ {
		a, b, c := values[s], values[s+1], values[s+2]
		expected := values[s+4]

		if a < 0 || a > maxSmallValue || b < 0 || b > maxSmallValue || c < 0 || c > maxSmallValue {
			continue
		}

		if expected == 0 || (expected >= minExpectedSeconds && expected <= maxExpectedSeconds) {
			return s, true
		}
	}

	for s := 0; s+want <= len(values); s++ {
		inRange := true
		nonzeroExpected := 0

		for i := 0; i < want; i++ {
			if values[s+i] < 0 || values[s+i] > secondsInDay {
				inRange = false
				break
			}

			if i%valuesPerDay == 4 && values[s+i] != 0 {
				nonzeroExpected++
			}
		}

		if inRange && nonzeroExpected >= 3 {
			return s, true
		}
	}

	return 0, false
}

// attachDates recovers day dates by scanning for 8-digit integers in
// the plausible range. Missing trailing dates are extrapolated from the
// first one found.
func attachDates(msg *rpc.Message, week *models.WeekPresence) {
	var dates []time.Time

	for _, tok := range msg.DataTokens {
		if tok.Kind != rpc.KindInteger || !timeutil.IsWireDate(int(tok.Int)) {
			continue
		}

		dates = append(dates, timeutil.ParseDayFormat(int(tok.Int)))
		if len(dates) == daysPerWeek {
			break
		}
	}

	if len(dates) == 0 {
		slog.Warn("presence: no dates recovered")
		return
	}

	for i := 0; i < daysPerWeek; i++ {
		if i < len(dates) {
			week.Days[i].Date = dates[i]
		} else {
			week.Days[i].Date = dates[0].AddDate(0, 0, i)
		}
	}
}

// attachBadgeEntries collects minute-of-day values that immediately
// follow a date token or the hour marker index, assigns them to the
// most recently seen date, and labels them alternately clock-in and
// clock-out in chronological order.
func attachBadgeEntries(msg *rpc.Message, week *models.WeekPresence) {
	hourMarker := int64(msg.StringIndex(hourMarkerType))
	if hourMarker == 0 {
		return
	}

	durationMarker := durationMarkerIndex(msg)

	dayFor := make(map[int]int, daysPerWeek)
	for i := range week.Days {
		if !week.Days[i].Date.IsZero() {
			dayFor[timeutil.DayFormat(week.Days[i].Date)] = i
		}
	}

	minutes := make([][]int, daysPerWeek)
	current := -1

	tokens := msg.DataTokens
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != rpc.KindInteger {
			continue
		}

		isDate := false

		if day, ok := dayFor[int(tok.Int)]; ok && timeutil.IsWireDate(int(tok.Int)) {
			current = day
			isDate = true
		} else if tok.Int != hourMarker {
			continue
		}

		if current < 0 || i+1 >= len(tokens) {
			continue
		}

		// A minute may directly follow the date, but a marker index in
		// that position is not a minute.
		next := tokens[i+1]
		if next.Kind == rpc.KindInteger && next.Int >= 0 && next.Int <= maxMinuteOfDay &&
			(!isDate || (next.Int != hourMarker && next.Int != durationMarker)) {
			minutes[current] = append(minutes[current], int(next.Int))
			i++
		}
	}

	for day, mins := range minutes {
		sort.Ints(mins)

		for i, m := range mins {
			entry := models.TimeEntry{MinuteOfDay: m, Type: models.PunchClockIn}
			if i%2 == 1 {
				entry.Type = models.PunchClockOut
			}

			week.Days[day].Entries = append(week.Days[day].Entries, entry)
		}
	}
}
