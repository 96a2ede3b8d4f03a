package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/christophergoltz/elogio-sub001/internal/models"
)

func TestPrintWeekTable(t *testing.T) {
	disableStyling()

	week := &models.WeekPresence{}
	week.Days[0] = models.DayPresence{
		Date:     time.Date(2025, time.July, 14, 0, 0, 0, 0, time.Local),
		Worked:   8 * time.Hour,
		Expected: 8 * time.Hour,
		Entries: []models.TimeEntry{
			{MinuteOfDay: 483, Type: models.PunchClockIn},
			{MinuteOfDay: 963, Type: models.PunchClockOut},
		},
	}

	var buf bytes.Buffer

	printWeekTable(&buf, week, true)

	out := buf.String()
	assert.Contains(t, out, "Mon, Jul 14")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "8:03")
	assert.Contains(t, out, "16:03")

	// The 12-hour clock switches only the badge times.
	buf.Reset()
	printWeekTable(&buf, week, false)

	out = buf.String()
	assert.Contains(t, out, "8:03 AM")
	assert.Contains(t, out, "4:03 PM")
	assert.NotContains(t, out, "16:03")
}
