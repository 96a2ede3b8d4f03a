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
)

const absenceResponse = "com.bodet.bwt.applicatif.planning.shared.reponse.ReponseAbsences"

func absenceHeader() string {
	table := []string{responseEnvelope, "sid", absenceResponse, "Urlaub", "Krank"}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("%d", len(table)))
	for _, s := range table {
		b.WriteString(fmt.Sprintf(",%q", s))
	}

	return b.String()
}

func TestAbsenceCalendarClassification(t *testing.T) {
	body := absenceHeader() +
		// Saturday: weekend flag and a vacation color; weekend wins.
		fmt.Sprintf(",20250705,0,1,0,4,%d", parse.ColorVacation) +
		// Vacation with motif reference to "Urlaub".
		fmt.Sprintf(",20250707,0,0,0,4,%d", parse.ColorVacation) +
		// Sick without motif; label comes from the legend.
		fmt.Sprintf(",20250708,0,0,0,%d", parse.ColorSick) +
		// Public holiday via flag.
		",20250709,1,0,0" +
		// Half holiday via color.
		fmt.Sprintf(",20250710,0,0,0,%d", parse.ColorHalfHoliday) +
		// Rest day via flag.
		",20250711,0,0,1" +
		// Plain working day.
		",20250712,0,0,0" +
		// Legend: Urlaub -> vacation color, Krank -> sick color.
		fmt.Sprintf(",9999,4,%d,5,%d", parse.ColorVacation, parse.ColorSick)

	cal := parse.AbsenceCalendar(mustTokenize(t, body))
	require.NotNil(t, cal)
	require.Len(t, cal.Days, 7)

	kinds := make([]models.AbsenceKind, 0, 7)
	for _, d := range cal.Days {
		kinds = append(kinds, d.Kind)
	}

	assert.Equal(t, []models.AbsenceKind{
		models.AbsenceWeekend,
		models.AbsenceVacation,
		models.AbsenceSick,
		models.AbsenceHoliday,
		models.AbsenceHalfHoliday,
		models.AbsenceRestDay,
		models.AbsenceNone,
	}, kinds)

	assert.Equal(t, time.Date(2025, time.July, 5, 0, 0, 0, 0, time.Local), cal.Start)
	assert.Equal(t, time.Date(2025, time.July, 12, 0, 0, 0, 0, time.Local), cal.End)

	assert.Equal(t, "Urlaub", cal.Days[1].Label)
	assert.Equal(t, "Krank", cal.Days[2].Label, "legend label for color without motif")
	assert.True(t, cal.Days[4].HalfHoliday)

	require.Len(t, cal.Legend, 2)
	assert.Equal(t, models.AbsenceLegendEntry{Color: parse.ColorVacation, Label: "Urlaub"}, cal.Legend[0])
}

// A day bearing both the weekend flag and a vacation color must
// classify as weekend, not vacation.
func TestAbsencePrecedenceWeekendOverVacation(t *testing.T) {
	body := absenceHeader() + fmt.Sprintf(",20250705,0,1,0,%d", parse.ColorVacation)

	cal := parse.AbsenceCalendar(mustTokenize(t, body))
	require.NotNil(t, cal)
	require.Len(t, cal.Days, 1)

	assert.Equal(t, models.AbsenceWeekend, cal.Days[0].Kind)
	assert.True(t, cal.Days[0].Weekend)
	assert.Equal(t, parse.ColorVacation, cal.Days[0].Color)
}

func TestAbsenceColorPrecedenceOverFlags(t *testing.T) {
	// Holiday flag set, but a sick color is present: the color wins.
	body := absenceHeader() + fmt.Sprintf(",20250709,1,0,0,%d", parse.ColorSick)

	cal := parse.AbsenceCalendar(mustTokenize(t, body))
	require.NotNil(t, cal)

	assert.Equal(t, models.AbsenceSick, cal.Days[0].Kind)
	assert.True(t, cal.Days[0].Holiday)
}

func TestAbsenceWrongTypeAndException(t *testing.T) {
	wrong := fmt.Sprintf(`3,%q,"sid","com.bodet.ReponseSemaine",20250701,0,0,0`, responseEnvelope)
	assert.Nil(t, parse.AbsenceCalendar(mustTokenize(t, wrong)))

	exc := fmt.Sprintf(`4,%q,"sid",%q,%q,20250701,0,0,0`,
		responseEnvelope, absenceResponse, exceptionType)
	assert.Nil(t, parse.AbsenceCalendar(mustTokenize(t, exc)))
}

func TestAbsenceNoSegments(t *testing.T) {
	body := absenceHeader() + ",1,2,3"

	assert.Nil(t, parse.AbsenceCalendar(mustTokenize(t, body)))
}
