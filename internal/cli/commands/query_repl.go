package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tipy-dev/tipy/internal/cli/config"
	"github.com/tipy-dev/tipy/internal/dispatch"
)

const (
	replPrompt     = "tipy> "
	replContPrompt = "  ...> "
)

// replState is what the dot-commands change between statements.
type replState struct {
	d      *dispatch.Dispatcher
	format string
	delim  rune
}

func runQueryREPL(cmd *cobra.Command, d *dispatch.Dispatcher, path, format string, delim rune) error {
	st := &replState{d: d, format: format, delim: delim}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile(),
		AutoComplete:    newTableCompleter(d),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "TIPY SQL (database: %s)\n", path)
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmd, st, line); quit {
				break
			}
			continue
		}

		// Statements run once they end with a semicolon.
		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString("\n")
			rl.SetPrompt(replContPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		stmt := buf.String()
		buf.Reset()
		if err := executeAndRender(cmd, d, stmt, "", st.format, st.delim); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		rl.Config.AutoComplete = newTableCompleter(d)
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

// handleDotCommand runs one dot-command and reports whether the REPL should
// exit.
func handleDotCommand(cmd *cobra.Command, st *replState, line string) bool {
	parts := strings.Fields(line)
	errOut := cmd.ErrOrStderr()

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())

	case ".tables":
		s := st.d.Session()
		for i, t := range s.Tabs {
			marker := " "
			if i == s.Active {
				marker = "*"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d rows)\n", marker, t.Name, t.Grid.RowCount())
		}

	case ".use":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errOut, "Usage: .use <table>")
			break
		}
		if err := selectTable(st.d, parts[1]); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			break
		}
		if err := printActive(cmd, st.d, st.format, st.delim); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".show":
		if err := printActive(cmd, st.d, st.format, st.delim); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".format":
		if len(parts) < 2 || !slices.Contains(config.OutputFormats, parts[1]) {
			_, _ = fmt.Fprintf(errOut, "Usage: .format <%s>\n", strings.Join(config.OutputFormats, "|"))
			break
		}
		st.format = parts[1]

	case ".clear":
		_, _ = fmt.Fprint(cmd.OutOrStdout(), "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .tables          List the tables, * marks the current one
  .use <table>     Make a table current and print it
  .show            Print the current table
  .format <name>   Switch output: table, json, csv, md, yaml
  .clear           Clear the screen
  .quit / .exit    Exit

Statements run when a line ends with a semicolon (;). After each statement
the current table is printed; tables it created are picked up.
`
	_, _ = fmt.Fprintln(w, help)
}

// historyFile returns the REPL history path under the user cache dir, or ""
// to keep history in memory.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "tipy")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "query_history")
}

// newTableCompleter completes table and column names and dot-commands.
func newTableCompleter(d *dispatch.Dispatcher) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	seen := map[string]bool{}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		items = append(items, readline.PcItem(name))
	}

	var tables []readline.PrefixCompleterInterface
	for _, t := range d.Session().Tabs {
		add(t.Name)
		tables = append(tables, readline.PcItem(t.Name))
		for _, h := range t.Grid.Headers() {
			add(h)
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".use", tables...),
		readline.PcItem(".show"),
		readline.PcItem(".format"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
