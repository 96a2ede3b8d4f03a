package ui

import (
	"github.com/pterm/pterm"

	"github.com/christophergoltz/elogio-sub001/internal/models"
)

var DarkTheme bool

func Green(a any) string {
	if DarkTheme {
		return pterm.LightGreen(a)
	}

	return pterm.Green(a)
}

func Cyan(a any) string {
	if DarkTheme {
		return pterm.LightCyan(a)
	}

	return pterm.Cyan(a)
}

func Magenta(a any) string {
	if DarkTheme {
		return pterm.LightMagenta(a)
	}

	return pterm.Magenta(a)
}

func Blue(a any) string {
	if DarkTheme {
		return pterm.LightBlue(a)
	}

	return pterm.Blue(a)
}

func Red(a any) string {
	if DarkTheme {
		return pterm.LightRed(a)
	}

	return pterm.Red(a)
}

func Yellow(a any) string {
	if DarkTheme {
		return pterm.LightYellow(a)
	}

	return pterm.Yellow(a)
}

func Highlight(a any) string {
	if DarkTheme {
		return pterm.LightWhite(a)
	}

	return pterm.Black(a)
}

// AbsenceLabel renders an absence kind in its conventional color.
func AbsenceLabel(kind models.AbsenceKind) string {
	switch kind {
	case models.AbsenceVacation:
		return Green(kind.String())
	case models.AbsenceSick:
		return Red(kind.String())
	case models.AbsencePrivate:
		return Blue(kind.String())
	case models.AbsenceHalfHoliday, models.AbsenceHoliday:
		return Yellow(kind.String())
	case models.AbsenceWeekend, models.AbsenceRestDay:
		return Cyan(kind.String())
	default:
		return kind.String()
	}
}
