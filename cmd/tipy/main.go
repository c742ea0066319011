// Package main is the entry point of the TIPY table editor.
package main

import (
	"os"

	"github.com/tipy-dev/tipy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
