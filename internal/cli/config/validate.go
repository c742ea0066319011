package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/tipy-dev/tipy/internal/csvio"
	"github.com/tipy-dev/tipy/internal/textenc"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := csvio.ParseDelimiter(c.Delimiter); err != nil {
		return fmt.Errorf("invalid delimiter: %w", err)
	}
	if !textenc.Known(c.Encoding) {
		return fmt.Errorf("%w: %q\nHint: run 'tipy encodings' for the recognized names", textenc.ErrUnknownEncoding, c.Encoding)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	return nil
}

// Level returns the slog level named by LogLevel. Verbose forces debug.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return lvl, nil
}
