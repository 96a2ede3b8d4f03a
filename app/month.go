package app

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
	"github.com/christophergoltz/elogio-sub001/internal/ui"
)

// monthAction prints per-week presence totals for the month containing
// --date.
func monthAction(ctx *cli.Context) error {
	date, err := resolveDate(ctx)
	if err != nil {
		return err
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.client.MonthPresence(ctx.Context, timeutil.MonthOf(date))
	if err != nil {
		return err
	}

	dumpDebug(ctx, rec)

	if ctx.Bool("json") {
		return printJSON(rec)
	}

	printMonthTable(os.Stdout, rec)

	return nil
}

func printMonthTable(w io.Writer, rec *models.MonthPresence) {
	tableBody := make([][]string, 0, len(rec.Weeks)+1)

	for i := range rec.Weeks {
		week := &rec.Weeks[i]

		span := ""
		if !week.Days[0].Date.IsZero() {
			span = week.Days[0].Date.Format("Jan 02") + " – " +
				week.Days[6].Date.Format("Jan 02")
		}

		tableBody = append(tableBody, []string{
			span,
			formatDuration(week.TotalWorked()),
			formatDuration(week.TotalExpected()),
		})
	}

	tableBody = append(tableBody, []string{
		ui.Highlight(rec.Month.String()),
		ui.Green(formatDuration(rec.TotalWorked())),
		"",
	})

	tableBody = append([][]string{
		{"WEEK", "WORKED", "EXPECTED"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}
