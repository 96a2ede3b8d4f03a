package parse_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/parse"
)

const punchResponse = "com.bodet.bwt.applicatif.badgeage.shared.reponse.ReponseBadgeage"

var punchDay = time.Date(2025, time.July, 14, 0, 0, 0, 0, time.Local)

func punchBody(message, label string) string {
	return fmt.Sprintf(`5,%q,"sid",%q,%q,%q,0`,
		responseEnvelope, punchResponse, message, label)
}

func TestPunchClockIn(t *testing.T) {
	res := parse.PunchResult(mustTokenize(t,
		punchBody("Ihre Buchung Kommen wurde um 8:03 registriert.", "OK")), punchDay)
	require.NotNil(t, res)

	assert.True(t, res.Success)
	assert.Equal(t, models.PunchClockIn, res.Type)
	assert.Equal(t, "OK", res.Label)
	assert.Empty(t, res.Error)

	want := time.Date(2025, time.July, 14, 8, 3, 0, 0, time.Local)
	assert.Equal(t, want, res.Timestamp)
}

func TestPunchClockOut(t *testing.T) {
	res := parse.PunchResult(mustTokenize(t,
		punchBody("Ihre Buchung Gehen wurde um 17:15 registriert.", "OK")), punchDay)
	require.NotNil(t, res)

	assert.Equal(t, models.PunchClockOut, res.Type)
	assert.Equal(t, 17, res.Timestamp.Hour())
	assert.Equal(t, 15, res.Timestamp.Minute())
}

func TestPunchErrorKeywords(t *testing.T) {
	for _, message := range []string{
		"Fehler: Buchung konnte nicht verarbeitet werden",
		"Buchung abgelehnt",
		"Buchung zurzeit nicht möglich",
	} {
		res := parse.PunchResult(mustTokenize(t, punchBody(message, "")), punchDay)
		require.NotNil(t, res, message)

		assert.False(t, res.Success, message)
		assert.Equal(t, message, res.Error, message)
	}
}

func TestPunchUnknownDirection(t *testing.T) {
	res := parse.PunchResult(mustTokenize(t,
		punchBody("Buchung wurde um 9:00 registriert.", "")), punchDay)
	require.NotNil(t, res)

	assert.Equal(t, models.PunchUnknown, res.Type)
	assert.True(t, res.Success)
}

func TestPunchRejections(t *testing.T) {
	wrongType := fmt.Sprintf(`3,%q,"sid","com.bodet.ReponseSemaine",0`, responseEnvelope)
	assert.Nil(t, parse.PunchResult(mustTokenize(t, wrongType), punchDay))

	exc := fmt.Sprintf(`4,%q,"sid",%q,%q,0`, responseEnvelope, punchResponse, exceptionType)
	assert.Nil(t, parse.PunchResult(mustTokenize(t, exc), punchDay))

	noMessage := fmt.Sprintf(`3,%q,"sid",%q,0`, responseEnvelope, punchResponse)
	assert.Nil(t, parse.PunchResult(mustTokenize(t, noMessage), punchDay))
}
