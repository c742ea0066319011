package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tipy-dev/tipy/internal/guide"
)

// NewGuideCommand creates the guide command.
func NewGuideCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "guide [topic]",
		Short: "Show how to use the editor",
		Long: `Print the usage instructions, or one section of them.

The editor shows the same text on its instructions screen (? or F1).`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return guide.Topics(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				_, _ = fmt.Fprint(out, guide.Text())
				return nil
			}
			body, ok := guide.Section(args[0])
			if !ok {
				return fmt.Errorf("unknown topic %q (topics: %s)", args[0], strings.Join(guide.Topics(), ", "))
			}
			_, _ = fmt.Fprintln(out, body)
			return nil
		},
	}
}
