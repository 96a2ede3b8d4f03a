package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// viperKeys defines the mapping between config keys and their Viper counterparts.
const (
	keyServerURL       = "server.url"
	keyImpersonate     = "server.impersonate"
	keyTimeout         = "server.timeout"
	keyUsername        = "account.username"
	keyBufferMonths    = "prefetch.buffer_months"
	keyInitialBack     = "prefetch.initial_back_months"
	keyInitialForward  = "prefetch.initial_forward_months"
	keyNavigationWait  = "prefetch.navigation_wait"
	keyWeekParallelism = "prefetch.week_parallelism"
	keyPunchCmd        = "punch.cmd"
	keyPunchNotify     = "punch.notify"
	keyDarkTheme       = "display.dark_theme"
	keyTwentyFourHour  = "display.24hr_clock"
)

// WithViperConfig returns an Option that loads configuration from Viper.
// A missing config file is written out with the defaults first.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setViperDefaults(v)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config file failed: %w", err)
		}

		if err := v.WriteConfig(); err != nil {
			return fmt.Errorf("writing default config failed: %w", err)
		}

		return loadViperConfig(v, c)
	}
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault(keyServerURL, "")
	v.SetDefault(keyImpersonate, "chrome120")
	v.SetDefault(keyTimeout, "30s")
	v.SetDefault(keyUsername, "")
	v.SetDefault(keyBufferMonths, 2)
	v.SetDefault(keyInitialBack, 6)
	v.SetDefault(keyInitialForward, 12)
	v.SetDefault(keyNavigationWait, "3s")
	v.SetDefault(keyWeekParallelism, 4)
	v.SetDefault(keyPunchCmd, "")
	v.SetDefault(keyPunchNotify, true)
	v.SetDefault(keyDarkTheme, true)
	v.SetDefault(keyTwentyFourHour, true)
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	c.Server.URL = v.GetString(keyServerURL)
	c.Server.Impersonate = v.GetString(keyImpersonate)
	c.Server.Timeout = v.GetDuration(keyTimeout)

	c.Account.Username = v.GetString(keyUsername)

	c.Prefetch.BufferMonths = v.GetInt(keyBufferMonths)
	c.Prefetch.InitialBack = v.GetInt(keyInitialBack)
	c.Prefetch.InitialForward = v.GetInt(keyInitialForward)
	c.Prefetch.NavigationWait = v.GetDuration(keyNavigationWait)
	c.Prefetch.WeekParallelism = v.GetInt(keyWeekParallelism)

	c.Punch.Cmd = v.GetString(keyPunchCmd)
	c.Punch.Notify = v.GetBool(keyPunchNotify)

	c.Display.DarkTheme = v.GetBool(keyDarkTheme)
	c.Display.TwentyFourHour = v.GetBool(keyTwentyFourHour)

	return c.validate()
}

func (c *Config) validate() error {
	if c.Prefetch.BufferMonths < 1 {
		return fmt.Errorf("prefetch buffer must be at least 1 month, got %d", c.Prefetch.BufferMonths)
	}

	if c.Prefetch.WeekParallelism < 1 {
		return fmt.Errorf("week parallelism must be at least 1, got %d", c.Prefetch.WeekParallelism)
	}

	if c.Prefetch.InitialBack < 0 || c.Prefetch.InitialForward < 0 {
		return errors.New("initial prefetch ranges cannot be negative")
	}

	return nil
}
