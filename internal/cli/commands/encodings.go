package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tipy-dev/tipy/internal/textenc"
)

// NewEncodingsCommand creates the encodings command.
func NewEncodingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encodings",
		Short: "List the accepted CSV encodings",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range textenc.Names() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
