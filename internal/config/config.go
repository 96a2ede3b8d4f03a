// Package config loads and persists all settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Server   ServerConfig
		Account  AccountConfig
		Prefetch PrefetchConfig
		Punch    PunchConfig
		Display  DisplayConfig
		System   SystemConfig
	}

	// ServerConfig identifies the Kelio server and the client identity
	// presented to it.
	ServerConfig struct {
		URL         string
		Impersonate string
		Timeout     time.Duration
	}

	// AccountConfig holds the login credentials. The password is never
	// written to the config file; it comes from the environment or an
	// interactive prompt.
	AccountConfig struct {
		Username string
		Password string
	}

	// PrefetchConfig tunes the cache warm-up behavior.
	PrefetchConfig struct {
		BufferMonths    int
		InitialBack     int
		InitialForward  int
		NavigationWait  time.Duration
		WeekParallelism int
	}

	// PunchConfig controls what happens after a successful punch.
	PunchConfig struct {
		Cmd    string
		Notify bool
	}

	// DisplayConfig holds display-related settings.
	DisplayConfig struct {
		DarkTheme      bool
		TwentyFourHour bool
	}

	// SystemConfig holds derived file locations.
	SystemConfig struct {
		ConfigPath string
		DBPath     string
		LogPath    string
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.3.1"

// PasswordEnv is the environment variable consulted for the account
// password before falling back to an interactive prompt.
const PasswordEnv = "ELOGIO_PASSWORD"

var (
	configDir      = "elogio"
	configFileName = "config.yml"
	dbFileName     = "elogio.db"
	logFileName    = "elogio.log"
	dbFilePath     string
	configFilePath string
	logFilePath    string
)

func DBFilePath() string {
	return dbFilePath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

func InitializePaths() {
	elogioEnv := strings.TrimSpace(os.Getenv("ELOGIO_ENV"))
	if elogioEnv != "" {
		configFileName = fmt.Sprintf("config_%s.yml", elogioEnv)
		dbFileName = fmt.Sprintf("elogio_%s.db", elogioEnv)
		logFileName = fmt.Sprintf("elogio_%s.log", elogioEnv)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)
}

// New creates a new Config with default values and applies options.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("config option error: %w", err)
		}
	}

	cfg.System.ConfigPath = configFilePath
	cfg.System.DBPath = dbFilePath
	cfg.System.LogPath = logFilePath

	if cfg.Account.Password == "" {
		cfg.Account.Password = os.Getenv(PasswordEnv)
	}

	return cfg, nil
}
