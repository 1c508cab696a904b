// Package emitter wires the emission pipeline together: read the
// traversal log, aggregate it into results, serialize a fresh TRX
// document, and report what happened. It runs once or on an interval.
package emitter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/trxkit/trx-emitter/exitcodes"
	"github.com/trxkit/trx-emitter/metrics"
	"github.com/trxkit/trx-emitter/reporting"
	"github.com/trxkit/trx-emitter/results"
	"github.com/trxkit/trx-emitter/service"
	"github.com/trxkit/trx-emitter/traversallog"
	"github.com/trxkit/trx-emitter/trx"
)

// Emitter periodically (or once) turns the traversal log into a TRX
// document.
type Emitter struct {
	ctx     context.Context
	config  *Config
	version string
	summary *reporting.ConsoleSummary

	lastResults []*results.Result

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	healthz *service.HealthzServer
	metricz *service.MetricsServer

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*Emitter, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating emitter with config",
		"input", config.InputPath,
		"output", config.OutputPath,
		"sourcePrefix", config.SourcePathPrefix,
		"attachments", len(config.AttachmentPaths),
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	return &Emitter{
		ctx:              ctx,
		config:           config,
		version:          version,
		summary:          reporting.NewConsoleSummary(os.Stdout, config.ShowDataRows),
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start emits once, then keeps re-emitting at the configured interval
// in continuous mode.
func (e *Emitter) Start(ctx context.Context) error {
	// Panics are runtime errors, exit code 2.
	defer func() {
		if r := recover(); r != nil {
			e.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	e.ctx = ctx
	e.done = make(chan struct{})
	e.running.Store(true)

	if e.config.RunOnce {
		e.config.Log.Info("Starting trx-emitter in run-once mode")
	} else {
		e.config.Log.Info("Starting trx-emitter in continuous mode", "interval", e.config.RunInterval)
		e.startServers()
	}

	if err := e.emit(); err != nil {
		e.config.Log.Error("Runtime error emitting document", "error", err)
		return cli.Exit(err.Error(), exitcodes.RuntimeErr)
	}

	if e.config.RunOnce {
		e.config.Log.Info("Document emitted, exiting (run-once mode)", "output", e.config.OutputPath)

		if hasFailures(e.lastResults) {
			e.config.Log.Warn("Run-once emission contains failures, returning exit code 1")
			return NewTestFailureError(fmt.Sprintf("%d of %d results failed",
				failureCount(e.lastResults), len(e.lastResults)))
		}

		go func() {
			e.shutdownCallback(nil)
		}()
		return nil
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.config.Log.Debug("Starting periodic emission goroutine", "interval", e.config.RunInterval)

		for {
			select {
			case <-time.After(e.config.RunInterval):
				if !e.running.Load() {
					e.config.Log.Debug("Service stopped, exiting periodic emission")
					return
				}
				e.config.Log.Info("Re-emitting document")
				if err := e.emit(); err != nil {
					e.config.Log.Error("Error re-emitting document", "error", err)
					metrics.RecordError("emission")
				}

			case <-e.done:
				e.config.Log.Debug("Done signal received, stopping periodic emission")
				return

			case <-ctx.Done():
				e.config.Log.Debug("Context canceled, stopping periodic emission")
				e.running.Store(false)
				return
			}
		}
	}()
	e.config.Log.Debug("trx-emitter started successfully")
	return nil
}

// emit performs one full emission: a fresh aggregation pass over the
// current traversal log snapshot, serialized to a temp file that
// atomically replaces the output. A prior partial document is never
// left visible.
func (e *Emitter) emit() error {
	started := time.Now()
	runID := uuid.New().String()

	traversals, err := traversallog.ReadFile(e.config.InputPath)
	if err != nil {
		metrics.RecordError("read_log")
		return NewRuntimeError(err)
	}
	e.config.Log.Debug("Read traversal log", "run_id", runID, "traversals", len(traversals))

	rs := results.NewAggregator().Aggregate(traversals)
	e.lastResults = rs

	tmp, err := os.CreateTemp(filepath.Dir(e.config.OutputPath), ".trx-emitter-*")
	if err != nil {
		metrics.RecordError("create_output")
		return NewRuntimeError(fmt.Errorf("failed to create output file: %w", err))
	}
	defer os.Remove(tmp.Name())

	serr := trx.Serialize(tmp, rs, e.config.SourcePathPrefix, e.config.AttachmentPaths)
	cerr := tmp.Close()
	if serr != nil {
		metrics.RecordError("serialize")
		return NewRuntimeError(fmt.Errorf("failed to serialize document: %w", serr))
	}
	if cerr != nil {
		metrics.RecordError("write_output")
		return NewRuntimeError(fmt.Errorf("failed to write output file: %w", cerr))
	}
	if err := os.Rename(tmp.Name(), e.config.OutputPath); err != nil {
		metrics.RecordError("rename_output")
		return NewRuntimeError(fmt.Errorf("failed to replace output file: %w", err))
	}

	if err := e.summary.Print(rs, time.Since(started)); err != nil {
		e.config.Log.Warn("Failed to print summary table", "error", err)
	}
	metrics.RecordEmission(runID, rs)

	e.config.Log.Info("Emission completed",
		"run_id", runID,
		"output", e.config.OutputPath,
		"results", len(rs),
		"failed", failureCount(rs))
	return nil
}

// startServers brings up healthz and metrics endpoints for continuous
// mode. Listen failures are logged, not fatal; the emission loop is the
// service's real job.
func (e *Emitter) startServers() {
	if e.config.HealthzAddr != "" {
		e.healthz = service.NewHealthzServer(e.config.Log)
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if err := e.healthz.Start(e.ctx, e.config.HealthzAddr); err != nil && !errors.Is(err, context.Canceled) {
				e.config.Log.Warn("healthz server stopped", "error", err)
			}
		}()
	}
	if e.config.MetricsAddr != "" {
		e.metricz = service.NewMetricsServer(e.config.Log)
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if err := e.metricz.Start(e.ctx, e.config.MetricsAddr); err != nil && !errors.Is(err, context.Canceled) {
				e.config.Log.Warn("metrics server stopped", "error", err)
			}
		}()
	}
}

// Stop stops the trx-emitter service.
func (e *Emitter) Stop(ctx context.Context) error {
	e.config.Log.Info("Stopping trx-emitter")

	if !e.running.Load() {
		e.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	e.running.Store(false)
	close(e.done)

	if e.healthz != nil {
		if err := e.healthz.Shutdown(); err != nil {
			e.config.Log.Warn("Failed to shut down healthz server", "error", err)
		}
	}
	if e.metricz != nil {
		if err := e.metricz.Shutdown(); err != nil {
			e.config.Log.Warn("Failed to shut down metrics server", "error", err)
		}
	}

	e.config.Log.Info("trx-emitter stopped successfully")
	return nil
}

// Stopped returns true if the service is stopped.
func (e *Emitter) Stopped() bool {
	return !e.running.Load()
}

func hasFailures(rs []*results.Result) bool {
	return failureCount(rs) > 0
}

func failureCount(rs []*results.Result) int {
	n := 0
	for _, r := range rs {
		if !r.IsOk() {
			n++
		}
	}
	return n
}
