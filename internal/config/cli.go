package config

import (
	"strings"

	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	Server        string
	Username      string
	PunchCmd      string
	DisableNotify bool
}

// WithCLIConfig returns an Option that overrides file settings with CLI
// flags.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			Server:        ctx.String("server"),
			Username:      ctx.String("user"),
			PunchCmd:      ctx.String("punch-cmd"),
			DisableNotify: ctx.Bool("no-notify"),
		}

		return applyCLIOptions(c, opts)
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) error {
	if opts.Server != "" {
		c.Server.URL = strings.TrimSuffix(opts.Server, "/")
	}

	if opts.Username != "" {
		c.Account.Username = opts.Username
	}

	if opts.PunchCmd != "" {
		c.Punch.Cmd = opts.PunchCmd
	}

	if opts.DisableNotify {
		c.Punch.Notify = false
	}

	return nil
}
