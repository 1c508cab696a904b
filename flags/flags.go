package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "TRX_EMITTER"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Input = &cli.StringFlag{
		Name:     "input",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVars("INPUT"),
		Usage:    "Path to the traversal log to read (JSON Lines, one traversal per line)",
	}
	Output = &cli.StringFlag{
		Name:    "output",
		Value:   "results.trx",
		EnvVars: prefixEnvVars("OUTPUT"),
		Usage:   "Path of the TRX document to write",
	}
	SourcePrefix = &cli.StringFlag{
		Name:    "source-prefix",
		Value:   "",
		EnvVars: prefixEnvVars("SOURCE_PREFIX"),
		Usage:   "Source path prefix stripped from file paths in stack lines",
	}
	Attachment = &cli.StringSliceFlag{
		Name:    "attachment",
		EnvVars: prefixEnvVars("ATTACHMENT"),
		Usage:   "Attachment file path to embed in the result summary (repeatable)",
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: prefixEnvVars("CONFIG"),
		Usage:   "Optional YAML config file; flags take precedence over its values",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between re-emissions (e.g. '30s'). Set to 0 or omit for run-once mode.",
	}
	HealthzAddr = &cli.StringFlag{
		Name:    "healthz-addr",
		Value:   ":8080",
		EnvVars: prefixEnvVars("HEALTHZ_ADDR"),
		Usage:   "Listen address for the /healthz endpoint (continuous mode only)",
	}
	MetricsAddr = &cli.StringFlag{
		Name:    "metrics-addr",
		Value:   ":7300",
		EnvVars: prefixEnvVars("METRICS_ADDR"),
		Usage:   "Listen address for the Prometheus /metrics endpoint (continuous mode only)",
	}
	ShowDataRows = &cli.BoolFlag{
		Name:    "show-data-rows",
		Value:   true,
		EnvVars: prefixEnvVars("SHOW_DATA_ROWS"),
		Usage:   "List individual data rows of data-driven tests in the console summary",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level (trace, debug, info, warn, error, crit)",
	}
)

var requiredFlags = []cli.Flag{
	Input,
}

var optionalFlags = []cli.Flag{
	Output,
	SourcePrefix,
	Attachment,
	ConfigFile,
	RunInterval,
	HealthzAddr,
	MetricsAddr,
	ShowDataRows,
	LogLevel,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
