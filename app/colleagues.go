package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/timeutil"
	"github.com/christophergoltz/elogio-sub001/internal/ui"
)

// colleaguesAction prints which team members are absent in the month
// containing --date.
func colleaguesAction(ctx *cli.Context) error {
	date, err := resolveDate(ctx)
	if err != nil {
		return err
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	out, err := s.client.ColleagueAbsences(ctx.Context, timeutil.MonthOf(date))
	if err != nil {
		return err
	}

	dumpDebug(ctx, out)

	sort.Slice(out, func(i, j int) bool {
		return natural.Less(out[i].Name, out[j].Name)
	})

	if ctx.Bool("json") {
		return printJSON(out)
	}

	printColleagueTable(os.Stdout, out)

	return nil
}

func printColleagueTable(w io.Writer, colleagues []models.ColleagueAbsence) {
	if len(colleagues) == 0 {
		pterm.Info.Println("No team members found")
		return
	}

	tableBody := make([][]string, 0, len(colleagues)+1)

	for i := range colleagues {
		col := colleagues[i]

		identity := col.Name
		if col.EmployeeID != 0 {
			identity = fmt.Sprintf("%s (%d)", col.Name, col.EmployeeID)
		}

		days := make([]string, 0, len(col.AbsenceDays))
		for _, d := range col.AbsenceDays {
			days = append(days, fmt.Sprintf("%d", d))
		}

		absent := strings.Join(days, ", ")
		if absent == "" {
			absent = ui.Green("present all month")
		} else {
			absent = ui.Red(absent)
		}

		tableBody = append(tableBody, []string{
			identity,
			col.BadgeAlias,
			absent,
		})
	}

	tableBody = append([][]string{
		{"NAME", "BADGE", "ABSENT ON"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}
