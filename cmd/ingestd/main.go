// Command ingestd wires the ingestion pipeline's components together
// for a single run. Flag parsing, config-file loading, and the
// interactive setup wizard are explicitly out of scope for this
// module (spec.md §1); this file exists only to demonstrate how the
// pieces compose.
//
// Re-invoking the binary with --chunk-worker runs it as a ChildSpawner
// worker: it decodes one chunk's session.ChildArgs from an environment
// variable, runs that chunk in-process, and prints a single
// session.ChildResult JSON line to stdout before exiting (spec.md
// §4.5's process-isolation contract). This is the path the parent
// process takes by default, per §4.5's "subprocess per chunk remains
// the default for a real deployment".
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/raceingest/core/config"
	"github.com/raceingest/core/coordinator"
	"github.com/raceingest/core/httpapi"
	"github.com/raceingest/core/obslog"
	"github.com/raceingest/core/parser"
	"github.com/raceingest/core/report"
	"github.com/raceingest/core/session"
	"github.com/raceingest/core/writer"
)

const chunkWorkerArgsEnv = "RACEINGEST_CHUNK_ARGS"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--chunk-worker" {
		if err := runChunkWorker(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func baseConfig() config.RunConfig {
	return config.WithDefaults(config.RunConfig{
		Feed:       parser.Central,
		ServiceKey: os.Getenv("RACEINGEST_SERVICE_KEY"),
		Driver:     config.DriverConfig{Kind: config.DriverSQLite, DSN: "raceingest.db"},
		LockDir:    os.TempDir(),
	})
}

func run() error {
	cfg := baseConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := obslog.New(cfg.Log, true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	drv, err := writer.OpenSQLite(cfg.Driver.DSN)
	if err != nil {
		return err
	}
	w := writer.New(drv, logger).WithBatchSize(cfg.BatchSize)

	vendor := newUnimplementedVendor()
	mgr := session.NewManager(vendor, session.Config{ServiceKey: cfg.ServiceKey, LockDir: cfg.LockDir}, logger)

	backfillReq := coordinator.BackfillRequest{
		Feed:      cfg.Feed,
		DataSpec:  "RACE",
		FromDate:  time.Now().AddDate(0, 0, -7),
		ToDate:    time.Now(),
		BatchSize: cfg.BatchSize,
		ChunkDays: cfg.ChunkDays,
	}

	events := make(chan coordinator.ProgressEvent, 16)

	coord := &coordinator.Coordinator{
		Manager:            mgr,
		Registry:           parser.NewRegistry(),
		Writer:             w,
		Logger:             logger,
		HistoricalDefaults: backfillReq,
		HistoricalEvents:   events,
		Spawner: &session.ChildSpawner{
			Command: func(ctx context.Context, args session.ChildArgs) *exec.Cmd {
				payload, _ := json.Marshal(args)
				cmd := exec.CommandContext(ctx, os.Args[0], "--chunk-worker")
				cmd.Env = append(os.Environ(), chunkWorkerArgsEnv+"="+string(payload))
				cmd.Stderr = os.Stderr
				return cmd
			},
		},
	}

	registry := prometheus.NewRegistry()
	metrics := httpapi.NewMetrics(registry)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: httpapi.NewRouter(coord, registry)}
	go srv.ListenAndServe()

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		prevBatches, prevRetries := 0, 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				prevBatches, prevRetries = metrics.Sync(prevBatches, prevRetries, coord.Stats.Snapshot())
			}
		}
	}()

	go func() {
		for ev := range events {
			logger.Info("progress", zap.String("phase", string(ev.Phase)), zap.Int("imported", ev.Imported))
		}
	}()

	go func() {
		monitorReq := coordinator.MonitorRequest{
			Feed:      cfg.Feed,
			DataSpecs: []string{"RACE"},
			Key:       cfg.ServiceKey,
			Interval:  cfg.LiveMonitorInterval,
		}
		if err := coord.RunMonitor(ctx, monitorReq, events); err != nil {
			logger.Warn("live monitor stopped", zap.Error(err))
		}
	}()

	runErr := coord.RunBackfill(ctx, backfillReq, events)

	report.WriteStats(os.Stdout, "backfill run", coord.Stats.Snapshot())
	return runErr
}

// runChunkWorker is the --chunk-worker entrypoint a ChildSpawner exec's
// the same binary into. It builds the same pipeline components as run,
// executes exactly one chunk via Coordinator.RunChunk, and reports the
// outcome as a single ChildResult JSON line on stdout, per spec.md
// §4.5's "the child's only return channel is a single JSON result
// object".
func runChunkWorker() error {
	var args session.ChildArgs
	if err := json.Unmarshal([]byte(os.Getenv(chunkWorkerArgsEnv)), &args); err != nil {
		return fmt.Errorf("decode %s: %w", chunkWorkerArgsEnv, err)
	}

	cfg := baseConfig()
	logger := obslog.Nop()

	drv, err := writer.OpenSQLite(cfg.Driver.DSN)
	if err != nil {
		return err
	}
	w := writer.New(drv, logger).WithBatchSize(cfg.BatchSize)
	defer w.Close(context.Background())

	vendor := newUnimplementedVendor()
	mgr := session.NewManager(vendor, session.Config{ServiceKey: cfg.ServiceKey, LockDir: cfg.LockDir}, logger)

	coord := &coordinator.Coordinator{
		Manager:  mgr,
		Registry: parser.NewRegistry(),
		Writer:   w,
		Logger:   logger,
	}

	var toDate time.Time
	if args.ToTime != "" {
		toDate, _ = time.Parse("20060102150405", args.ToTime)
	}

	result, runErr := coord.RunChunk(context.Background(), args.Feed, args.DataSpec, args.FromTime, toDate, session.NewSkipFiles(args.SkipFiles...), nil)

	payload, err := json.Marshal(session.FromResult(result, runErr))
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}
