package parse

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/rpc"
)

// Substrings that identify the time-stamped message among the string
// table entries.
var punchMessageKeywords = []string{
	"Buchung", "Kommen", "Gehen", "registriert", "gebucht",
}

// German error keywords: any of these in the message marks the punch
// as failed.
var punchErrorKeywords = []string{
	"Fehler", "abgelehnt", "ungültig", "nicht möglich", "fehlgeschlagen",
}

// PunchResult derives the punch outcome from the free-text server
// message. day supplies the calendar date the recovered time-of-day is
// anchored to. Returns nil on type mismatch or exception.
func PunchResult(msg *rpc.Message, day time.Time) *models.PunchResult {
	if rejects(msg, punchResponseMarker) {
		return nil
	}

	message, label := punchCandidates(msg)
	if message == "" {
		slog.Warn("punch: no message candidate in string table")
		return nil
	}

	result := &models.PunchResult{
		Success: true,
		Type:    models.PunchUnknown,
		Message: message,
		Label:   label,
	}

	switch {
	case strings.Contains(message, "Kommen"):
		result.Type = models.PunchClockIn
	case strings.Contains(message, "Gehen"):
		result.Type = models.PunchClockOut
	}

	if m := punchTime.FindStringSubmatch(message); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])

		result.Timestamp = time.Date(
			day.Year(), day.Month(), day.Day(),
			hour, minute, 0, 0, day.Location(),
		)
	}

	for _, kw := range punchErrorKeywords {
		if strings.Contains(message, kw) {
			result.Success = false
			result.Error = message

			break
		}
	}

	return result
}

// punchCandidates scans the string table for exactly two interesting
// entries: the time-stamped message and a short residual label. Class
// names and envelope entries are skipped.
func punchCandidates(msg *rpc.Message) (message, label string) {
	for i, s := range msg.StringTable {
		// Entry 2 is the session id echo.
		if i == 1 || s == "" || strings.Contains(s, "com.bodet") {
			continue
		}

		if message == "" && isPunchMessage(s) {
			message = s
			continue
		}

		if label == "" && len(s) < 40 {
			label = s
		}
	}

	return message, label
}

func isPunchMessage(s string) bool {
	if punchTime.MatchString(s) {
		return true
	}

	for _, kw := range punchMessageKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}

	return false
}
