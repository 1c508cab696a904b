package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	emitter "github.com/trxkit/trx-emitter"
	"github.com/trxkit/trx-emitter/exitcodes"
	"github.com/trxkit/trx-emitter/flags"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "trx-emitter"
	app.Usage = "TRX test-results document emitter"
	app.Description = "trx-emitter folds a section-traversal log into a Visual Studio TRX results document"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if emitter.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if emitter.IsTestFailureError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			} else {
				// Unspecified errors default to exit code 1.
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			}
		}
	}

	if err := app.Run(os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(cliCtx *cli.Context) error {
	logger := setupLogger(cliCtx.String(flags.LogLevel.Name))

	ctx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := emitter.NewConfig(cliCtx, logger)
	if err != nil {
		return emitter.NewRuntimeError(err)
	}

	shutdown := make(chan error, 1)
	em, err := emitter.New(ctx, cfg, Version, func(err error) { shutdown <- err })
	if err != nil {
		return emitter.NewRuntimeError(err)
	}

	if err := em.Start(ctx); err != nil {
		return err
	}

	select {
	case err := <-shutdown:
		_ = em.Stop(context.Background())
		return err
	case <-ctx.Done():
		logger.Info("Interrupt received, shutting down")
		return em.Stop(context.Background())
	}
}

func setupLogger(level string) log.Logger {
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, parseLevel(level), true)
	logger := log.NewLogger(handler)
	log.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	case "crit":
		return log.LevelCrit
	default:
		return log.LevelInfo
	}
}
