// Package app wires the command-line interface to the protocol client.
package app

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/christophergoltz/elogio-sub001/internal/config"
)

const (
	envNoColor       = "NO_COLOR"
	envElogioNoColor = "ELOGIO_NO_COLOR"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the elogio app instance.
func Get() *cli.App {
	elogioApp := &cli.App{
		Name: "elogio",
		Usage: `
		Elogio is a command-line client for Kelio time and attendance
		servers. It records badge punches and shows presence times,
		absence calendars and team availability without a browser.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Verify the credentials and warm the cache snapshot",
				Action: loginAction,
			},
			{
				Name:   "punch",
				Usage:  "Record a badge punch (clock in or out)",
				Action: punchAction,
				Flags:  []cli.Flag{noNotifyFlag, punchCmdFlag},
			},
			{
				Name:   "week",
				Usage:  "Show worked and expected times for one week",
				Action: weekAction,
				Flags:  []cli.Flag{dateFlag, jsonFlag},
			},
			{
				Name:   "month",
				Usage:  "Show worked and expected times for one month",
				Action: monthAction,
				Flags:  []cli.Flag{dateFlag, jsonFlag},
			},
			{
				Name:   "absences",
				Usage:  "Show the absence calendar for one month",
				Action: absencesAction,
				Flags:  []cli.Flag{dateFlag, jsonFlag},
			},
			{
				Name:   "colleagues",
				Usage:  "Show which colleagues are absent in one month",
				Action: colleaguesAction,
				Flags:  []cli.Flag{dateFlag, jsonFlag},
			},
			{
				Name:   "status",
				Usage:  "Show the login state and cache coverage",
				Action: statusAction,
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags: []cli.Flag{
			serverFlag,
			userFlag,
			noColorFlag,
			debugFlag,
		},
		Action: weekAction,
		Before: beforeAction,
	}

	return elogioApp
}

func beforeAction(ctx *cli.Context) error {
	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envElogioNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	config.InitializePaths()
	config.InitLogger(ctx.Bool("debug"))

	return nil
}
