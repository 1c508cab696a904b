package emitter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/trxkit/trx-emitter/flags"
)

func parseConfig(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var cfg *Config
	var cfgErr error
	app := cli.NewApp()
	app.Flags = flags.Flags
	app.Action = func(ctx *cli.Context) error {
		cfg, cfgErr = NewConfig(ctx, log.NewLogger(log.DiscardHandler()))
		return nil
	}
	err := app.Run(append([]string{"trx-emitter"}, args...))
	require.NoError(t, err)
	return cfg, cfgErr
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(t, "--input", "traversals.jsonl")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.InputPath))
	assert.True(t, filepath.IsAbs(cfg.OutputPath))
	assert.Equal(t, "results.trx", filepath.Base(cfg.OutputPath))
	assert.Equal(t, "", cfg.SourcePathPrefix)
	assert.Empty(t, cfg.AttachmentPaths)
	assert.True(t, cfg.RunOnce)
	assert.Equal(t, ":8080", cfg.HealthzAddr)
	assert.Equal(t, ":7300", cfg.MetricsAddr)
	assert.True(t, cfg.ShowDataRows)
	assert.NotNil(t, cfg.Log)
}

func TestNewConfig_AllFlags(t *testing.T) {
	cfg, err := parseConfig(t,
		"--input", "in.jsonl",
		"--output", "out.trx",
		"--source-prefix", "/src/",
		"--attachment", "a.log",
		"--attachment", "b.log",
		"--run-interval", "30s",
		"--show-data-rows=false",
	)
	require.NoError(t, err)

	assert.Equal(t, "out.trx", filepath.Base(cfg.OutputPath))
	assert.Equal(t, "/src/", cfg.SourcePathPrefix)
	assert.Equal(t, []string{"a.log", "b.log"}, cfg.AttachmentPaths)
	assert.Equal(t, 30*time.Second, cfg.RunInterval)
	assert.False(t, cfg.RunOnce)
	assert.False(t, cfg.ShowDataRows)
}

func TestNewConfig_FileConfigMerge(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yaml := `
output: from-file.trx
source_path_prefix: /file/prefix/
attachments:
  - file-a.log
`
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o644))

	cfg, err := parseConfig(t, "--input", "in.jsonl", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "from-file.trx", filepath.Base(cfg.OutputPath))
	assert.Equal(t, "/file/prefix/", cfg.SourcePathPrefix)
	assert.Equal(t, []string{"file-a.log"}, cfg.AttachmentPaths)
}

func TestNewConfig_FlagsBeatFileConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output: from-file.trx\n"), 0o644))

	cfg, err := parseConfig(t,
		"--input", "in.jsonl",
		"--config", configPath,
		"--output", "from-flag.trx",
	)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.trx", filepath.Base(cfg.OutputPath))
}

func TestNewConfig_MissingFileConfig(t *testing.T) {
	_, err := parseConfig(t, "--input", "in.jsonl", "--config", "/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFileConfig_BadYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output: [unclosed"), 0o644))

	_, err := LoadFileConfig(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
