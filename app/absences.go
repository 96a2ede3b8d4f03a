package app

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
	"github.com/christophergoltz/elogio-sub001/internal/ui"
)

// absencesAction prints the absence calendar for the month containing
// --date. Plain working days are omitted.
func absencesAction(ctx *cli.Context) error {
	date, err := resolveDate(ctx)
	if err != nil {
		return err
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	month := timeutil.MonthOf(date)

	// Only uncached months hit the network and deserve a spinner.
	var spinner *pterm.SpinnerPrinter
	if !s.client.IsMonthCached(month) {
		spinner, _ = pterm.DefaultSpinner.Start("Fetching absence calendar...")
	}

	rec, err := s.client.MonthAbsences(ctx.Context, month)

	if spinner != nil {
		if err != nil {
			spinner.Fail("Fetch failed")
		} else {
			spinner.Success("Fetched")
		}
	}

	if err != nil {
		return err
	}

	dumpDebug(ctx, rec)

	if ctx.Bool("json") {
		return printJSON(rec)
	}

	printAbsenceTable(os.Stdout, rec)

	return nil
}

func printAbsenceTable(w io.Writer, rec *models.AbsenceMonth) {
	var tableBody [][]string

	for _, day := range rec.Days {
		if day.Kind == models.AbsenceNone {
			continue
		}

		tableBody = append(tableBody, []string{
			day.Date.Format("Mon, Jan 02"),
			ui.AbsenceLabel(day.Kind),
			day.Label,
		})
	}

	if len(tableBody) == 0 {
		pterm.Info.Printfln("No absences in %s", rec.Month)
		return
	}

	tableBody = append([][]string{
		{"DAY", "KIND", "DETAIL"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}
