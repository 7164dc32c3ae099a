package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/smileynet/agenda"
	"github.com/smileynet/agenda/internal/config"
	"github.com/smileynet/agenda/internal/locale"
	"github.com/smileynet/agenda/internal/shell"
	"github.com/smileynet/agenda/internal/store"
	"github.com/smileynet/agenda/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for agenda. Every flag is optional;
// without flags the menu runs against ./users.json.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	File    string           `help:"Users JSON file (overrides store.path)." short:"f" type:"path"`
	Lang    string           `help:"Message language: es or en (overrides ui.language)." short:"l"`
	Plain   bool             `help:"Force plain line prompts even if stdout is a TTY." default:"false"`
	Config  string           `help:"Extra config file applied after the user and project layers." type:"path"`
}

// Run starts the interactive menu on the process terminal.
func (c *CLI) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.run(ctx, os.Stdin, os.Stdout)
}

// run wires config, logging, catalog, store and prompter around the given
// streams, enabling testable wiring.
func (c *CLI) run(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("%w: %w", errSetup, err)
	}

	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("%w: %w", errSetup, err)
	}
	defer func() { _ = closeLog() }()

	msgs, err := locale.Load(agenda.OverlayFS(cfg.UI.LocalesDir, agenda.Locales), cfg.UI.Language)
	if err != nil {
		return fmt.Errorf("%w: %w", errSetup, err)
	}

	prompter := tui.NewPrompter(tui.PrompterOptions{In: in, Out: out, ForcePlain: cfg.UI.Plain})
	_, styled := prompter.(*tui.TUIPrompter)

	st := store.NewFileStore(cfg.Store.Path, logger)
	logger.Debug("starting",
		slog.String("store", st.Path()),
		slog.String("language", msgs.Lang()),
		slog.Bool("tui", styled),
	)

	sh := shell.New(st, prompter, msgs,
		shell.WithOutput(out),
		shell.WithLogger(logger),
		shell.WithStyledOutput(styled),
	)
	return sh.Run(ctx)
}

// loadConfig loads layered config from user and project paths with env
// overrides, then applies CLI flags.
func (c *CLI) loadConfig() (*config.Config, error) {
	paths := []string{
		os.ExpandEnv("$HOME/.config/agenda/config.yaml"),
		".agenda/config.yaml",
	}
	if c.Config != "" {
		paths = append(paths, c.Config)
	}

	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if c.File != "" {
		cfg.Store.Path = c.File
	}
	if c.Lang != "" {
		cfg.UI.Language = c.Lang
	}
	if c.Plain {
		cfg.UI.Plain = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds a text slog.Logger at the configured level, writing to
// the log file (appending) or stderr. The returned func closes the file.
func newLogger(lc config.Log) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", lc.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	if lc.File == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() error { return nil }, nil
	}

	f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), f.Close, nil
}

// errSetup marks failures before the menu starts.
var errSetup = errors.New("setup")

// Exit codes.
const (
	exitSuccess = 0
	exitRuntime = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, errSetup) {
		return exitSetup
	}
	return exitRuntime
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("agenda"),
		kong.Description("Interactive contact manager backed by a JSON file."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	if err := cli.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
