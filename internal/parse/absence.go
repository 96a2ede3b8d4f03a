package parse

import (
	"log/slog"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/rpc"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
)

// AbsenceCalendar recovers a contiguous range of classified days plus
// the trailing legend. Returns nil on type mismatch or exception.
func AbsenceCalendar(msg *rpc.Message) *models.AbsenceCalendar {
	if rejects(msg, absenceResponseMarker) {
		return nil
	}

	tokens := msg.DataTokens

	legendStart := findLegendStart(tokens)
	legend := parseLegend(msg, tokens[legendStart:])

	segments := splitDaySegments(tokens[:legendStart])
	if len(segments) == 0 {
		slog.Warn("absence: no day segments found")
		return nil
	}

	cal := &models.AbsenceCalendar{Legend: legend}

	legendLabel := make(map[int]string, len(legend))
	for _, entry := range legend {
		legendLabel[entry.Color] = entry.Label
	}

	for _, seg := range segments {
		day := classifyDaySegment(msg, seg)

		if day.Label == "" && day.Color != 0 {
			day.Label = legendLabel[day.Color]
		}

		cal.Days = append(cal.Days, day)
	}

	cal.Start = cal.Days[0].Date
	cal.End = cal.Days[len(cal.Days)-1].Date

	return cal
}

type daySegment struct {
	date   int
	tokens []rpc.Token
}

// splitDaySegments cuts the data stream at every 8-digit date token;
// each segment runs to the next date.
func splitDaySegments(tokens []rpc.Token) []daySegment {
	var segments []daySegment

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != rpc.KindInteger || !timeutil.IsWireDate(int(tok.Int)) {
			continue
		}

		end := len(tokens)
		for j := i + 1; j < len(tokens); j++ {
			if tokens[j].Kind == rpc.KindInteger && timeutil.IsWireDate(int(tokens[j].Int)) {
				end = j
				break
			}
		}

		segments = append(segments, daySegment{date: int(tok.Int), tokens: tokens[i+1 : end]})
		i = end - 1
	}

	return segments
}

// classifyDaySegment applies the precedence rules to one day segment:
// the weekend flag wins outright; a vacation/sick/private color beats
// the half-holiday color, which beats the holiday and rest-day flags.
func classifyDaySegment(msg *rpc.Message, seg daySegment) models.AbsenceDay {
	day := models.AbsenceDay{Date: timeutil.ParseDayFormat(seg.date)}

	flags := findFlagRun(seg.tokens)
	flagEnd := -1

	if flags >= 0 {
		day.Holiday = seg.tokens[flags].Int == 1
		day.Weekend = seg.tokens[flags+1].Int == 1
		day.RestDay = seg.tokens[flags+2].Int == 1
		flagEnd = flags + 2

		// An optional fourth 0/1 flag marks a half holiday.
		if flags+3 < len(seg.tokens) && isFlag(seg.tokens[flags+3]) {
			day.HalfHoliday = seg.tokens[flags+3].Int == 1
			flagEnd = flags + 3
		}
	}

	colors := make(map[int]bool)

	for i, tok := range seg.tokens {
		if tok.Kind != rpc.KindInteger || tok.Int >= 0 {
			continue
		}

		color := int(tok.Int)
		colors[color] = true

		if day.Color == 0 {
			day.Color = color

			// A small integer right before the first color references
			// the motif string. Flag-run members do not qualify.
			if i > 0 && (i-1 < flags || i-1 > flagEnd) {
				prev := seg.tokens[i-1]
				if prev.Kind == rpc.KindInteger && validStringRef(msg, prev.Int) {
					day.Label = msg.GetString(int(prev.Int))
				}
			}
		}
	}

	if colors[ColorHalfHoliday] {
		day.HalfHoliday = true
	}

	switch {
	case day.Weekend:
		day.Kind = models.AbsenceWeekend
	case colors[ColorVacation]:
		day.Kind = models.AbsenceVacation
	case colors[ColorSick]:
		day.Kind = models.AbsenceSick
	case colors[ColorPrivate]:
		day.Kind = models.AbsencePrivate
	case colors[ColorHalfHoliday]:
		day.Kind = models.AbsenceHalfHoliday
	case day.Holiday:
		day.Kind = models.AbsenceHoliday
	case day.RestDay:
		day.Kind = models.AbsenceRestDay
	default:
		day.Kind = models.AbsenceNone
	}

	return day
}

// findFlagRun returns the index of the first run of three adjacent 0/1
// integers (holiday, weekend, rest-day in that order), or -1.
func findFlagRun(tokens []rpc.Token) int {
	for i := 0; i+2 < len(tokens); i++ {
		if isFlag(tokens[i]) && isFlag(tokens[i+1]) && isFlag(tokens[i+2]) {
			return i
		}
	}

	return -1
}

func isFlag(tok rpc.Token) bool {
	return tok.Kind == rpc.KindInteger && (tok.Int == 0 || tok.Int == 1)
}

// findLegendStart locates the legend sentinel; the returned index
// points at the sentinel itself (len(tokens) when absent).
func findLegendStart(tokens []rpc.Token) int {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].IsInt(legendDelimiter) {
			return i
		}
	}

	return len(tokens)
}

// parseLegend reads {labelRef, color} pairs after the sentinel.
func parseLegend(msg *rpc.Message, tokens []rpc.Token) []models.AbsenceLegendEntry {
	var legend []models.AbsenceLegendEntry

	for i := 1; i+1 < len(tokens); i++ {
		ref, color := tokens[i], tokens[i+1]

		if ref.Kind != rpc.KindInteger || color.Kind != rpc.KindInteger {
			continue
		}

		if color.Int >= 0 || !validStringRef(msg, ref.Int) {
			continue
		}

		legend = append(legend, models.AbsenceLegendEntry{
			Color: int(color.Int),
			Label: msg.GetString(int(ref.Int)),
		})
		i++
	}

	return legend
}
