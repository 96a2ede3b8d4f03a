package parse_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/parse"
	"github.com/christophergoltz/elogio-sub001/internal/rpc"
)

const (
	responseEnvelope = "com.bodet.bwt.kernel.shared.reponse.ReponseBWT"
	weekResponse     = "com.bodet.bwt.applicatif.temps.shared.reponse.ReponseSemaine"
	durationType     = "com.bodet.bwt.applicatif.temps.shared.type.DureeValeur"
	hourType         = "com.bodet.bwt.applicatif.temps.shared.type.HeureValeur"
	exceptionType    = "com.bodet.bwt.kernel.shared.exception.ExceptionBWT"
)

func mustTokenize(t *testing.T, body string) *rpc.Message {
	t.Helper()

	msg, err := rpc.Tokenize(body)
	require.NoError(t, err)

	return msg
}

// weekBody builds a week response: seven dates, then per-day duration
// tuples [a,b,c,worked,expected] emitted as {marker},0,{value} triples.
func weekBody(worked, expected [7]int) string {
	table := []string{responseEnvelope, "sid", weekResponse, durationType, hourType}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("%d", len(table)))
	for _, s := range table {
		b.WriteString(fmt.Sprintf(",%q", s))
	}

	for day := 0; day < 7; day++ {
		b.WriteString(fmt.Sprintf(",%d", 20250714+day))
	}

	for day := 0; day < 7; day++ {
		for _, v := range []int{1, 2, 3, worked[day], expected[day]} {
			b.WriteString(fmt.Sprintf(",4,0,%d", v))
		}
	}

	return b.String()
}

func TestWeekPresenceTotals(t *testing.T) {
	worked := [7]int{28800, 27000, 30600, 28800, 25200, 0, 0}
	expected := [7]int{28800, 28800, 28800, 28800, 27000, 0, 0}

	week := parse.WeekPresence(mustTokenize(t, weekBody(worked, expected)))
	require.NotNil(t, week)

	var wantWorked, wantExpected time.Duration
	for i := 0; i < 7; i++ {
		wantWorked += time.Duration(worked[i]) * time.Second
		wantExpected += time.Duration(expected[i]) * time.Second

		assert.Equal(t, time.Duration(worked[i])*time.Second, week.Days[i].Worked, "day %d", i)
	}

	assert.Equal(t, wantWorked, week.TotalWorked())
	assert.Equal(t, wantExpected, week.TotalExpected())
}

func TestWeekPresenceDates(t *testing.T) {
	week := parse.WeekPresence(mustTokenize(t, weekBody(
		[7]int{1000, 1001, 1002, 1003, 1004, 0, 0},
		[7]int{28800, 28800, 28800, 28800, 28800, 0, 0},
	)))
	require.NotNil(t, week)

	assert.Equal(t, time.Date(2025, time.July, 14, 0, 0, 0, 0, time.Local), week.Days[0].Date)
	assert.Equal(t, time.Date(2025, time.July, 20, 0, 0, 0, 0, time.Local), week.Days[6].Date)
}

func TestWeekPresenceBadgeEntries(t *testing.T) {
	// Hour marker is table entry 5; minutes follow it after the day's
	// date token re-occurs.
	body := weekBody(
		[7]int{28800, 0, 0, 0, 0, 0, 0},
		[7]int{28800, 0, 0, 0, 0, 0, 0},
	) + ",20250714,5,483,5,720,5,779,5,1035"

	week := parse.WeekPresence(mustTokenize(t, body))
	require.NotNil(t, week)

	entries := week.Days[0].Entries
	require.Len(t, entries, 4)

	want := []models.TimeEntry{
		{MinuteOfDay: 483, Type: models.PunchClockIn},
		{MinuteOfDay: 720, Type: models.PunchClockOut},
		{MinuteOfDay: 779, Type: models.PunchClockIn},
		{MinuteOfDay: 1035, Type: models.PunchClockOut},
	}

	assert.Equal(t, want, entries)
	assert.Empty(t, week.Days[1].Entries)

	// The duration marker following the last date is not a minute.
	assert.Empty(t, week.Days[6].Entries)
}

func TestWeekPresenceWrongType(t *testing.T) {
	body := fmt.Sprintf(`3,%q,"sid","com.bodet.SomethingElse",4,0,1`, responseEnvelope)

	assert.Nil(t, parse.WeekPresence(mustTokenize(t, body)))
}

func TestWeekPresenceException(t *testing.T) {
	body := fmt.Sprintf(`4,%q,"sid",%q,%q,0`, responseEnvelope, weekResponse, exceptionType)

	assert.Nil(t, parse.WeekPresence(mustTokenize(t, body)))
}

func TestWeekPresenceNoBlock(t *testing.T) {
	// Well-typed but without enough duration values for seven days.
	body := fmt.Sprintf(`4,%q,"sid",%q,%q,4,0,100,4,0,200`,
		responseEnvelope, weekResponse, durationType)

	assert.Nil(t, parse.WeekPresence(mustTokenize(t, body)))
}

// Fallback scan: leading values too large for the primary pattern, but
// all in range with enough nonzero expectations.
func TestWeekPresenceFallbackScan(t *testing.T) {
	table := []string{responseEnvelope, "sid", weekResponse, durationType}

	var b strings.Builder

	b.WriteString("4")
	for _, s := range table {
		b.WriteString(fmt.Sprintf(",%q", s))
	}

	for day := 0; day < 7; day++ {
		expected := 40000 // outside [18000,36000], so the primary scan misses
		if day > 4 {
			expected = 0
		}

		for _, v := range []int{5000, 6000, 7000, 20000, expected} {
			b.WriteString(fmt.Sprintf(",4,0,%d", v))
		}
	}

	week := parse.WeekPresence(mustTokenize(t, b.String()))
	require.NotNil(t, week)

	assert.Equal(t, 40000*time.Second, week.Days[0].Expected)
	assert.Equal(t, 20000*time.Second, week.Days[6].Worked)
}
