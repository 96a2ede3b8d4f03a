package app

import "github.com/urfave/cli/v2"

var (
	serverFlag = &cli.StringFlag{
		Name:  "server",
		Usage: "Base URL of the Kelio server (e.g. https://kelio.example.com)",
	}

	userFlag = &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "Login username. The password is read from ELOGIO_PASSWORD or prompted for",
	}

	dateFlag = &cli.StringFlag{
		Name:    "date",
		Aliases: []string{"d"},
		Usage:   "Date inside the period to show (e.g. '2025-07-14', 'last monday'). Defaults to today",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the result as JSON instead of a table",
	}

	noNotifyFlag = &cli.BoolFlag{
		Name:  "no-notify",
		Usage: "Disable the system notification after a punch",
	}

	punchCmdFlag = &cli.StringFlag{
		Name:    "punch-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after a successful punch",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Log protocol details to the log file",
	}
)
