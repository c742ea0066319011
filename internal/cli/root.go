// Package cli provides the command-line interface for TIPY.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tipy-dev/tipy/internal/cli/commands"
	"github.com/tipy-dev/tipy/internal/cli/config"
	"github.com/tipy-dev/tipy/internal/tui"
)

var (
	cfgFile string

	// logFile is the open log_file, closed by Execute.
	logFile *os.File
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tipy [path]",
		Short: "TIPY - table editor for CSV files and SQLite databases",
		Long: `TIPY opens CSV files and SQLite databases as tabs of editable tables,
writes edits back to their source and draws plots of two columns.

Run it with a path to start editing, or without one to get the entry form.`,
		Version:     Version,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{commands.AnnotationTUI: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))
			tui.SetColor(!cfg.NoColor)

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}
			return nil
		},
		RunE:          commands.RunOpen,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
` + fmt.Sprintf("built %s from %s\n", BuildDate, GitCommit))

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./tipy.yaml)")
	flags.StringP("delimiter", "d", "", "CSV delimiter, one character (default \",\")")
	flags.StringP("encoding", "e", "", "CSV text encoding (default \"utf-8\", see 'tipy encodings')")
	flags.String("plots-dir", "", "Directory plots are written to (default \"plots\")")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-file", "", "Write logs to this file")
	flags.StringP("output", "o", "", "Output format (table|json|csv|md|yaml)")
	flags.Bool("no-color", false, "Disable colors in the editor")
	flags.BoolP("verbose", "v", false, "Verbose output (debug logging)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewOpenCommand())
	rootCmd.AddCommand(commands.NewNewCommand())
	rootCmd.AddCommand(commands.NewShowCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewEditCommand())
	rootCmd.AddCommand(commands.NewPlotCommand())
	rootCmd.AddCommand(commands.NewEncodingsCommand())
	rootCmd.AddCommand(commands.NewGuideCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger builds the text logger for cmd. Commands that own the terminal
// log only to log_file.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	var w io.Writer
	switch {
	case cfg.LogFile != "":
		closeLog()
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		w = f
	case cmd.Annotations[commands.AnnotationTUI] != "":
		return slog.New(slog.DiscardHandler), nil
	default:
		w = cmd.ErrOrStderr()
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func closeLog() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	defer closeLog()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for TIPY.

To load completions:

Bash:
  $ source <(tipy completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tipy completion bash > /etc/bash_completion.d/tipy
  # macOS:
  $ tipy completion bash > $(brew --prefix)/etc/bash_completion.d/tipy

Zsh:
  $ tipy completion zsh > "${fpath[1]}/_tipy"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ tipy completion fish > ~/.config/fish/completions/tipy.fish

PowerShell:
  PS> tipy completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
