package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/davecgh/go-spew/spew"
	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"
	"github.com/markusmobius/go-dateparser"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/christophergoltz/elogio-sub001/internal/cache"
	"github.com/christophergoltz/elogio-sub001/internal/client"
	"github.com/christophergoltz/elogio-sub001/internal/config"
	"github.com/christophergoltz/elogio-sub001/internal/models"
	"github.com/christophergoltz/elogio-sub001/internal/transport"
	"github.com/christophergoltz/elogio-sub001/internal/ui"
)

var errNoServer = errors.New(
	"no server configured: set server.url in the config file or pass --server",
)

// appSession bundles everything one command invocation needs.
type appSession struct {
	cfg      *config.Config
	client   *client.Client
	snapshot *cache.Snapshot
}

// newSession loads the configuration, opens the cache snapshot and logs
// in. Callers must Close the session so background work is cancelled
// and the caches are persisted.
func newSession(ctx *cli.Context) (*appSession, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	ui.DarkTheme = cfg.Display.DarkTheme

	tr := transport.NewClient(
		profileFor(cfg.Server.Impersonate), cfg.Server.Timeout, slog.Default(),
	)

	opts := []client.Option{}

	snapshot, err := cache.NewSnapshot(config.DBFilePath())
	if err != nil {
		slog.Warn("cache snapshot unavailable", slog.Any("error", err))
		snapshot = nil
	} else {
		if err := snapshot.Validate(cfg.Server.URL, cfg.Account.Username); err != nil {
			slog.Warn("cache snapshot validation failed", slog.Any("error", err))
		}

		opts = append(opts, client.WithSnapshot(snapshot))
	}

	c := client.New(cfg, tr, opts...)

	if err := c.RestoreSnapshot(); err != nil {
		slog.Warn("restoring cache snapshot failed", slog.Any("error", err))
	}

	spinner, _ := pterm.DefaultSpinner.Start("Logging in...")

	if err := c.Login(ctx.Context); err != nil {
		spinner.Fail("Login failed")

		if snapshot != nil {
			_ = snapshot.Close()
		}

		return nil, err
	}

	spinner.Success("Logged in")

	c.StartBackgroundWarmup()

	return &appSession{cfg: cfg, client: c, snapshot: snapshot}, nil
}

func (s *appSession) Close() {
	if err := s.client.Logout(); err != nil {
		slog.Warn("persisting caches on logout failed", slog.Any("error", err))
	}

	if s.snapshot != nil {
		_ = s.snapshot.Close()
	}
}

// loadConfig merges the config file, CLI flags and credential prompts.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.New(
		config.WithViperConfig(config.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return nil, err
	}

	if cfg.Server.URL == "" {
		return nil, errNoServer
	}

	if err := promptCredentials(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// promptCredentials asks for whatever the config and environment did
// not provide.
func promptCredentials(cfg *config.Config) error {
	var fields []huh.Field

	if cfg.Account.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&cfg.Account.Username))
	}

	if cfg.Account.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&cfg.Account.Password))
	}

	if len(fields) == 0 {
		return nil
	}

	form := huh.NewForm(huh.NewGroup(fields...))

	if err := form.Run(); err != nil {
		return fmt.Errorf("credential prompt failed: %w", err)
	}

	return nil
}

func profileFor(name string) transport.Profile {
	profile := transport.ChromeProfile()

	if name != "" && name != profile.Name {
		slog.Warn("unknown impersonation profile, using default",
			slog.String("requested", name),
			slog.String("using", profile.Name),
		)
	}

	return profile
}

// resolveDate parses the --date flag, accepting both fixed formats and
// natural language.
func resolveDate(ctx *cli.Context) (time.Time, error) {
	raw := ctx.String("date")
	if raw == "" {
		return time.Now(), nil
	}

	dt, err := dateparser.Parse(nil, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q: %w", raw, err)
	}

	return dt.Time, nil
}

func dumpDebug(ctx *cli.Context, v any) {
	if ctx.Bool("debug") {
		slog.Debug(spew.Sdump(v))
	}
}

// loginAction authenticates against the server and persists whatever
// the warm-up fetched. Other commands log in implicitly; this one
// exists to verify credentials without querying anything.
func loginAction(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if id := s.client.EmployeeID(); id != 0 {
		pterm.Info.Printfln("Logged in as employee %d", id)
	}

	return nil
}

// punchAction records a badge punch and runs the configured follow-ups.
func punchAction(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.client.Punch(ctx.Context)
	if err != nil {
		return err
	}

	dumpDebug(ctx, res)

	if !res.Success {
		pterm.Error.Println(res.Error)
		return errors.New("punch rejected by the server")
	}

	message := punchMessage(res)
	pterm.Success.Println(message)

	if s.cfg.Punch.Notify {
		if err := beeep.Notify("Elogio", message, ""); err != nil {
			slog.Warn("notification failed", slog.Any("error", err))
		}
	}

	if s.cfg.Punch.Cmd != "" {
		if err := runPunchCmd(s.cfg.Punch.Cmd); err != nil {
			slog.Warn("punch command failed", slog.Any("error", err))
		}
	}

	return nil
}

func punchMessage(res *models.PunchResult) string {
	when := res.Timestamp.Format("15:04")

	switch res.Type {
	case models.PunchClockIn:
		return fmt.Sprintf("Clocked in at %s", when)
	case models.PunchClockOut:
		return fmt.Sprintf("Clocked out at %s", when)
	default:
		return fmt.Sprintf("Punch recorded at %s", when)
	}
}

// runPunchCmd executes the user's follow-up command with shell-style
// argument splitting but without a shell.
func runPunchCmd(cmdStr string) error {
	args, err := shellquote.Split(cmdStr)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return nil
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

// statusAction prints the configuration and cache coverage without
// touching the network. Credentials are deliberately not prompted for.
func statusAction(ctx *cli.Context) error {
	cfg, err := config.New(
		config.WithViperConfig(config.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return err
	}

	if cfg.Server.URL == "" {
		pterm.Info.Println("No server configured yet. Run 'elogio edit-config' to set one.")
		return nil
	}

	pterm.Info.Printfln("Server: %s", cfg.Server.URL)
	pterm.Info.Printfln("User:   %s", cfg.Account.Username)

	snapshot, err := cache.NewSnapshot(config.DBFilePath())
	if err != nil {
		pterm.Warning.Printfln("Cache unavailable: %s", err.Error())
		return nil
	}
	defer snapshot.Close()

	presence, absences, err := snapshot.Stats()
	if err != nil {
		return err
	}

	pterm.Info.Printfln("Cached months: %d presence, %d absences", presence, absences)

	// Coverage comes from restoring the snapshot into a client that
	// never logs in.
	tr := transport.NewClient(
		profileFor(cfg.Server.Impersonate), cfg.Server.Timeout, slog.Default(),
	)

	c := client.New(cfg, tr, client.WithSnapshot(snapshot))

	if err := c.RestoreSnapshot(); err == nil {
		if start, end, ok := c.CacheRange(); ok {
			pterm.Info.Printfln("Absence coverage: %s to %s", start, end)
		}
	}

	return nil
}

// editConfigAction opens the config file in the user's editor.
func editConfigAction(_ *cli.Context) error {
	defaultEditor := "nano"

	if runtime.GOOS == "windows" {
		defaultEditor = "C:\\Windows\\system32\\notepad.exe"
	}

	editor := firstNonEmptyString(
		os.Getenv("VISUAL"),
		os.Getenv("EDITOR"),
		defaultEditor,
	)

	cmd := exec.Command(editor, config.ConfigFilePath())

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

// firstNonEmptyString returns its first non-empty argument, or "" if all
// arguments are empty.
func firstNonEmptyString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}
