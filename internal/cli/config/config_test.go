package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipy-dev/tipy/internal/textenc"
)

// isolate runs the test from an empty directory with no home config.
func isolate(t *testing.T) string {
	t.Helper()
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	prev := homeDir
	homeDir = func() (string, error) { return filepath.Join(dir, "home"), nil }
	t.Cleanup(func() { homeDir = prev })
	return dir
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDelimiter, cfg.Delimiter)
	assert.Equal(t, DefaultEncoding, cfg.Encoding)
	assert.Equal(t, DefaultPlotsDir, cfg.PlotsDir)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.True(t, cfg.ConfirmDeletes)
	assert.True(t, cfg.Watch)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_FileLookup(t *testing.T) {
	t.Run("working directory", func(t *testing.T) {
		dir := isolate(t)
		writeConfig(t, filepath.Join(dir, FileName), "delimiter: \";\"\n")

		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.Equal(t, ";", cfg.Delimiter)
		assert.Equal(t, FileName, GetConfigFileUsed())
	})

	t.Run("home directory", func(t *testing.T) {
		dir := isolate(t)
		home := filepath.Join(dir, "home", ".tipy", FileName)
		writeConfig(t, home, "plots_dir: charts\n")

		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.Equal(t, "charts", cfg.PlotsDir)
		assert.Equal(t, home, GetConfigFileUsed())
	})

	t.Run("explicit file", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "custom.yaml")
		writeConfig(t, path, "encoding: cp1251\nconfirm_deletes: false\n")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "cp1251", cfg.Encoding)
		assert.False(t, cfg.ConfirmDeletes)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		isolate(t)
		_, err := LoadConfig("nope.yaml", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, filepath.Join(dir, FileName), "plots_dir: from_file\n")
	t.Setenv("TIPY_PLOTS_DIR", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("plots-dir", "", "plots directory")
	require.NoError(t, flags.Set("plots-dir", "from_flag"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from_flag", cfg.PlotsDir, "flag value should override config file and env var")
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, filepath.Join(dir, FileName), "plots_dir: from_file\n")
	t.Setenv("TIPY_PLOTS_DIR", "from_env")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.PlotsDir, "env var should override config file")
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TIPY_ENCODING", "latin_1")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("encoding", DefaultEncoding, "text encoding")

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "latin_1", cfg.Encoding, "env var should be used when flag is not set")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("TIPY_ENCODING", "klingon")

	_, err := LoadConfig("", nil)
	require.ErrorIs(t, err, textenc.ErrUnknownEncoding)
	assert.Nil(t, GetCurrentConfig())
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Delimiter: ",", Encoding: "utf-8", LogLevel: "warn", OutputFormat: "table"}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "tab delimiter", mutate: func(c *Config) { c.Delimiter = `\t` }},
		{name: "long delimiter", mutate: func(c *Config) { c.Delimiter = ";;" }, errSubstr: "invalid delimiter"},
		{name: "unknown encoding", mutate: func(c *Config) { c.Encoding = "x" }, errSubstr: "unknown"},
		{name: "unknown level", mutate: func(c *Config) { c.LogLevel = "loud" }, errSubstr: "unknown log level"},
		{name: "unknown output", mutate: func(c *Config) { c.OutputFormat = "xml" }, errSubstr: "unknown output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_Level(t *testing.T) {
	cfg := Config{LogLevel: "error"}
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, lvl)

	cfg.Verbose = true
	lvl, err = cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "falls back to a discard logger")

	l := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, GetLogger(ctx))
	assert.Equal(t, l, ctx.Value(LoggerKey()))
}
