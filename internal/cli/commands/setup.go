package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tipy-dev/tipy/internal/cli/config"
	"github.com/tipy-dev/tipy/internal/dispatch"
	"github.com/tipy-dev/tipy/internal/session"
)

// AnnotationTUI marks commands that take over the terminal. The root
// command never logs to stderr for them.
const AnnotationTUI = "tipy/tui"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext collects the loaded configuration and logger.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// Request builds a session request for path from the configured CSV options.
func (c *CommandContext) Request(mode session.Mode, path string) session.Request {
	return session.Request{
		Mode:      mode,
		Path:      path,
		Delimiter: c.Cfg.Delimiter,
		Encoding:  c.Cfg.Encoding,
	}
}

// Open opens path and attaches a dispatcher to it. The caller closes the
// session.
func (c *CommandContext) Open(cmd *cobra.Command, path string) (*dispatch.Dispatcher, error) {
	s, err := session.Open(cmd.Context(), c.Request(session.Edit, path), c.Logger)
	if err != nil {
		return nil, describe(err)
	}
	return dispatch.New(s, dispatch.Options{PlotsDir: c.Cfg.PlotsDir, Logger: c.Logger}), nil
}

// getConfig returns the current configuration, or the defaults when no
// configuration was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Delimiter:      config.DefaultDelimiter,
		Encoding:       config.DefaultEncoding,
		PlotsDir:       config.DefaultPlotsDir,
		LogLevel:       config.DefaultLogLevel,
		OutputFormat:   config.DefaultOutput,
		ConfirmDeletes: true,
		Watch:          true,
	}
}

// selectTable focuses the tab called name. An empty name keeps the active
// tab.
func selectTable(d *dispatch.Dispatcher, name string) error {
	if name == "" {
		return nil
	}
	s := d.Session()
	_, i, ok := s.TabByName(name)
	if !ok {
		names := make([]string, len(s.Tabs))
		for j, t := range s.Tabs {
			names[j] = t.Name
		}
		return fmt.Errorf("table %q not found (have %v)", name, names)
	}
	return d.SelectTab(i)
}

// describe keeps err for errors.Is but leads with the message the editor
// would show in its dialog.
func describe(err error) error {
	if err == nil {
		return nil
	}
	_, msg := dispatch.Classify(err)
	if msg == err.Error() {
		return err
	}
	if prefix, ok := strings.CutSuffix(msg, err.Error()); ok {
		return fmt.Errorf("%s%w", prefix, err)
	}
	return fmt.Errorf("%s (%w)", msg, err)
}

// closeSession closes the dispatcher's session and logs a failure.
func closeSession(d *dispatch.Dispatcher, logger *slog.Logger) {
	if err := d.Session().Close(); err != nil {
		logger.Warn("failed to close session", "error", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
