// Package config loads TIPY's CLI configuration.
//
// Values come from built-in defaults, an optional tipy.yaml, TIPY_*
// environment variables and explicitly set command-line flags, in that
// order of precedence.
package config

// Config holds all CLI configuration options.
type Config struct {
	Delimiter      string `koanf:"delimiter"`
	Encoding       string `koanf:"encoding"`
	PlotsDir       string `koanf:"plots_dir"`
	LogLevel       string `koanf:"log_level"`
	LogFile        string `koanf:"log_file"`
	OutputFormat   string `koanf:"output"`
	ConfirmDeletes bool   `koanf:"confirm_deletes"`
	Watch          bool   `koanf:"watch"`
	NoColor        bool   `koanf:"no_color"`
	Verbose        bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultDelimiter = ","
	DefaultEncoding  = "utf-8"
	DefaultPlotsDir  = "plots"
	DefaultLogLevel  = "warn"
	DefaultOutput    = "table"

	// FileName is the config file looked up in the working directory and
	// in ~/.tipy.
	FileName = "tipy.yaml"
)

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"table", "json", "csv", "md", "yaml"}
