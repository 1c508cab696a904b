package emitter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/trxkit/trx-emitter/flags"
)

// Config holds the application configuration
type Config struct {
	InputPath        string        // Traversal log to read
	OutputPath       string        // TRX document to write
	SourcePathPrefix string        // Prefix stripped from source file paths in stack lines
	AttachmentPaths  []string      // Attachment files embedded in the result summary
	RunInterval      time.Duration // Interval between re-emissions
	RunOnce          bool          // Exit after a single emission
	HealthzAddr      string        // Listen address for /healthz (continuous mode)
	MetricsAddr      string        // Listen address for /metrics (continuous mode)
	ShowDataRows     bool          // List data rows in the console summary
	Log              log.Logger
}

// FileConfig is the optional YAML config file. Flags take precedence
// over its values.
type FileConfig struct {
	Output           string   `yaml:"output,omitempty"`
	SourcePathPrefix string   `yaml:"source_path_prefix,omitempty"`
	Attachments      []string `yaml:"attachments,omitempty"`
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	return &fc, nil
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	inputPath := ctx.String(flags.Input.Name)
	if inputPath == "" {
		return nil, errors.New("traversal log path is required")
	}

	outputPath := ctx.String(flags.Output.Name)
	sourcePrefix := ctx.String(flags.SourcePrefix.Name)
	attachments := ctx.StringSlice(flags.Attachment.Name)

	// Merge in the config file, flags winning.
	if configFile := ctx.String(flags.ConfigFile.Name); configFile != "" {
		fc, err := LoadFileConfig(configFile)
		if err != nil {
			return nil, err
		}
		if !ctx.IsSet(flags.Output.Name) && fc.Output != "" {
			outputPath = fc.Output
		}
		if !ctx.IsSet(flags.SourcePrefix.Name) && fc.SourcePathPrefix != "" {
			sourcePrefix = fc.SourcePathPrefix
		}
		if len(attachments) == 0 {
			attachments = fc.Attachments
		}
	}

	if outputPath == "" {
		return nil, errors.New("output path is required")
	}

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for traversal log '%s': %w", inputPath, err)
	}
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for output '%s': %w", outputPath, err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	return &Config{
		InputPath:        absInput,
		OutputPath:       absOutput,
		SourcePathPrefix: sourcePrefix,
		AttachmentPaths:  attachments,
		RunInterval:      runInterval,
		RunOnce:          runOnce,
		HealthzAddr:      ctx.String(flags.HealthzAddr.Name),
		MetricsAddr:      ctx.String(flags.MetricsAddr.Name),
		ShowDataRows:     ctx.Bool(flags.ShowDataRows.Name),
		Log:              logger,
	}, nil
}
