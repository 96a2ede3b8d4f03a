package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
	"github.com/christophergoltz/elogio-sub001/internal/ui"
)

// weekAction prints the presence data for the week containing --date.
func weekAction(ctx *cli.Context) error {
	date, err := resolveDate(ctx)
	if err != nil {
		return err
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	week, err := s.client.WeekPresence(ctx.Context, date)
	if err != nil {
		return err
	}

	dumpDebug(ctx, week)

	if ctx.Bool("json") {
		return printJSON(week)
	}

	printWeekTable(os.Stdout, week, s.cfg.Display.TwentyFourHour)

	return nil
}

// printWeekTable prints one row per day plus a totals row.
func printWeekTable(w io.Writer, week *models.WeekPresence, twentyFourHour bool) {
	tableBody := make([][]string, 0, len(week.Days)+1)

	for i := range week.Days {
		day := week.Days[i]

		date := ""
		if !day.Date.IsZero() {
			date = day.Date.Format("Mon, Jan 02")
		}

		tableBody = append(tableBody, []string{
			date,
			formatDuration(day.Worked),
			formatDuration(day.Expected),
			formatEntries(day.Entries, twentyFourHour),
		})
	}

	worked := week.TotalWorked()
	expected := week.TotalExpected()

	total := ui.Red(formatDuration(worked))
	if worked >= expected {
		total = ui.Green(formatDuration(worked))
	}

	tableBody = append(tableBody, []string{
		ui.Highlight("TOTAL"), total, formatDuration(expected), "",
	})

	tableBody = append([][]string{
		{"DAY", "WORKED", "EXPECTED", "BADGE TIMES"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}

func formatDuration(d time.Duration) string {
	return timeutil.FormatSeconds(int(d.Seconds()))
}

// formatEntries renders badge times as in/out pairs.
func formatEntries(entries []models.TimeEntry, twentyFourHour bool) string {
	parts := make([]string, 0, len(entries))

	for _, e := range entries {
		t := timeutil.FormatMinuteOfDay(e.MinuteOfDay, twentyFourHour)

		if e.Type == models.PunchClockOut {
			parts = append(parts, ui.Cyan(t))
		} else {
			parts = append(parts, ui.Green(t))
		}
	}

	return strings.Join(parts, " · ")
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(b))

	return nil
}
