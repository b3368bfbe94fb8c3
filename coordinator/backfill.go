package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/raceingest/core/ingesterr"
	"github.com/raceingest/core/parser"
	"github.com/raceingest/core/schema"
	"github.com/raceingest/core/session"
	"github.com/raceingest/core/writer"
)

// ProgressStore persists the resumption point of a historical backfill
// run, so a restarted run can skip chunks already completed. A nil
// store disables resumption.
type ProgressStore interface {
	LastCompletedChunk(runKey string) (time.Time, bool)
	SaveCompletedChunk(runKey string, chunkStart time.Time) error
}

// BackfillRequest is one historical-backfill invocation's parameters
// (spec.md §4.6).
type BackfillRequest struct {
	Feed      parser.Feed
	DataSpec  string
	FromDate  time.Time
	ToDate    time.Time
	BatchSize int
	ChunkDays int
}

func (r BackfillRequest) chunkDays() int {
	if r.ChunkDays > 0 {
		return r.ChunkDays
	}
	if r.Feed == parser.Regional {
		return 1
	}
	return 30
}

// chunks splits [FromDate, ToDate] into consecutive windows of
// chunkDays, inclusive of both ends.
func (r BackfillRequest) chunks() []time.Time {
	days := r.chunkDays()
	var starts []time.Time
	for d := r.FromDate; !d.After(r.ToDate); d = d.AddDate(0, 0, days) {
		starts = append(starts, d)
	}
	return starts
}

// Coordinator composes a session manager, parser registry, and writer
// into the historical backfill and live monitor workflows.
type Coordinator struct {
	Manager  *session.Manager
	Registry *parser.Registry
	Writer   *writer.Writer
	Progress ProgressStore
	Logger   *zap.Logger

	Stats Stats

	// HistoricalDefaults and HistoricalEvents parameterize
	// TriggerHistorical's on-demand runs; see its doc comment.
	HistoricalDefaults BackfillRequest
	HistoricalEvents   chan<- ProgressEvent

	// Spawner, when set, runs every backfill chunk in its own worker
	// process instead of in-process (SPEC_FULL.md §5: subprocess
	// isolation is the default for a real deployment, bounding a
	// long-running ingest daemon's exposure to a single vendor session
	// leaking memory or wedging). A nil Spawner keeps chunks in-process,
	// which tests prefer since it avoids spawning real processes.
	Spawner *session.ChildSpawner

	triggerOnce     sync.Once
	triggerRealtime chan struct{}
}

// realtimeTrigger lazily builds the channel RunMonitor listens on and
// TriggerRealtime sends to, so a Coordinator built as a bare struct
// literal (cmd/ingestd's composition style) never needs an explicit
// constructor call just to support triggering.
func (c *Coordinator) realtimeTrigger() chan struct{} {
	c.triggerOnce.Do(func() {
		c.triggerRealtime = make(chan struct{}, 1)
	})
	return c.triggerRealtime
}

// TriggerRealtime requests that RunMonitor run its next poll cycle
// immediately instead of waiting out its current interval (spec.md
// §4.6/§6.3, "a monitor cycle starts within 1s of the request"). It is
// safe to call with no RunMonitor loop active; the request is simply
// buffered for whenever one starts, coalescing with any request
// already pending.
func (c *Coordinator) TriggerRealtime() error {
	select {
	case c.realtimeTrigger() <- struct{}{}:
	default:
	}
	return nil
}

// TriggerHistorical starts a new historical backfill run in the
// background using HistoricalDefaults, returning immediately so an
// HTTP handler calling it never blocks on a run that can take minutes.
func (c *Coordinator) TriggerHistorical() error {
	if c.HistoricalDefaults.DataSpec == "" {
		return fmt.Errorf("no historical backfill defaults configured for on-demand trigger")
	}
	go func() {
		if err := c.RunBackfill(context.Background(), c.HistoricalDefaults, c.HistoricalEvents); err != nil {
			c.loggerOrNop().Warn("triggered historical backfill failed", zap.Error(err))
		}
	}()
	return nil
}

// Status reports a snapshot of the run-scoped counters, satisfying
// httpapi.Trigger so cmd/ingestd can hand a *Coordinator straight to
// httpapi.NewRouter without a wrapper.
func (c *Coordinator) Status() Stats { return c.Stats.Snapshot() }

// RunBackfill executes one historical backfill run, chunk by chunk,
// emitting a ProgressEvent after each batch flush and at each chunk
// boundary. Cancellation is cooperative: ctx is checked between
// records, and the active batch is flushed and the session closed
// before returning; progress saved for chunks completed before the
// cancellation is kept.
func (c *Coordinator) RunBackfill(ctx context.Context, req BackfillRequest, events chan<- ProgressEvent) error {
	runID := uuid.New().String()
	runKey := fmt.Sprintf("%s:%s:%s", req.Feed, req.DataSpec, runID)
	logger := c.loggerOrNop().With(zap.String("run_id", runID))

	if req.BatchSize > 0 {
		c.Writer.WithBatchSize(req.BatchSize)
	}

	skip := session.NewSkipFiles()

	for _, chunkStart := range req.chunks() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if c.Progress != nil {
			if last, ok := c.Progress.LastCompletedChunk(runKey); ok && !chunkStart.After(last) {
				continue
			}
		}

		emit(events, ProgressEvent{Phase: PhaseChunkStart})

		fromTime := chunkStart.Format("20060102150405")
		var result session.Result
		var err error
		if c.Spawner != nil {
			result, err = c.runChunkInChild(ctx, req, fromTime, skip)
		} else {
			result, err = c.RunChunk(ctx, req.Feed, req.DataSpec, fromTime, req.ToDate, skip, events)
		}
		skip = result.SkipFiles

		if err != nil {
			logger.Warn("chunk failed", zap.Time("chunk_start", chunkStart), zap.Error(err))
			return ingesterr.Wrap(ingesterr.TagVendorTransport, 0, "", err, "historical backfill chunk")
		}

		if c.Progress != nil {
			if err := c.Progress.SaveCompletedChunk(runKey, chunkStart); err != nil {
				logger.Warn("failed to persist chunk progress", zap.Error(err))
			}
		}

		emit(events, c.progressEvent(PhaseChunkDone))
	}

	emit(events, c.progressEvent(PhaseRunComplete))
	return nil
}

// RunChunk runs one date chunk's fetch/parse/write cycle in-process:
// open (or resume) a historical session from fromTime, drain every
// record through Registry and Writer, and flush whatever accumulated.
// RunBackfill calls this directly when no Spawner is configured; a
// ChildSpawner worker process calls it too, so both execution paths
// share exactly the same per-chunk behaviour.
func (c *Coordinator) RunChunk(ctx context.Context, feed parser.Feed, dataSpec, fromTime string, toDate time.Time, skip session.SkipFiles, events chan<- ProgressEvent) (session.Result, error) {
	result, err := c.Manager.RunHistorical(ctx, feed, dataSpec, fromTime, skip, func(rctx context.Context, buf []byte, fileName string) error {
		return c.handleRecord(rctx, feed, buf, fileName, toDate, events)
	})
	c.Stats.addFetched(result.RecordsFetched)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled: still flush what the handler already buffered.
			if flushed, ferr := c.Writer.FlushAll(context.WithoutCancel(ctx)); ferr == nil {
				c.applyFlushResults(flushed)
			}
		}
		return result, err
	}

	flushed, ferr := c.Writer.FlushAll(ctx)
	if ferr != nil {
		return result, ferr
	}
	c.applyFlushResults(flushed)
	return result, nil
}

// runChunkInChild hands one chunk to Spawner instead of running it
// in-process. The child process is responsible for its own
// fetch/parse/write/flush cycle (it builds its own Coordinator around
// RunChunk) and reports back only the counters ChildResult carries;
// Imported/Failed/Batches stay whatever the child's own process-local
// Stats produced and are not visible to the parent, per spec.md §4.5's
// "the child's only return channel is a single JSON result object".
func (c *Coordinator) runChunkInChild(ctx context.Context, req BackfillRequest, fromTime string, skip session.SkipFiles) (session.Result, error) {
	toTime := ""
	if !req.ToDate.IsZero() {
		toTime = req.ToDate.Format("20060102150405")
	}
	result, err := c.Spawner.Spawn(ctx, session.ChildArgs{
		Feed:      req.Feed,
		DataSpec:  req.DataSpec,
		FromTime:  fromTime,
		ToTime:    toTime,
		SkipFiles: skip.Names(),
	})
	c.Stats.addFetched(result.RecordsFetched)
	return result, err
}

// handleRecord parses one vendor record, filters it client-side by
// ToDate (the vendor honours from_time but not always to_time, per
// spec.md §4.6 step 3), routes it, and writes it.
func (c *Coordinator) handleRecord(ctx context.Context, feed parser.Feed, buf []byte, fileName string, toDate time.Time, events chan<- ProgressEvent) error {
	records, err := c.Registry.Parse(feed, buf)
	if err != nil {
		c.Stats.addFailed(1)
		return nil //nolint:nilerr // a parse failure is counted, not fatal to the run
	}
	c.Stats.addParsed(len(records))
	c.Stats.setLastFile(fileName)

	for _, rec := range records {
		if !toDate.IsZero() && recordAfter(rec, toDate) {
			continue
		}
		table, ok := schema.Route(feed, rec.Kind, false)
		if !ok {
			c.Stats.addFailed(1)
			continue
		}
		res, err := c.Writer.Write(ctx, table, rec)
		if err != nil {
			return err
		}
		if res != nil {
			c.Stats.addImported(res.Succeeded)
			c.Stats.addFailed(len(res.Failed))
			if res.Succeeded > 0 || len(res.Failed) > 0 {
				c.Stats.addBatch()
				emit(events, c.progressEvent(PhaseBatchFlush))
			}
		}
	}
	return nil
}

// applyFlushResults folds a FlushAll pass's per-table results into
// Stats. Records counted when a buffer filled mid-chunk (handleRecord's
// own path) are not double-counted here since that buffer is already
// drained by the time FlushAll runs. The whole pass counts as one
// batch (spec.md §4.6's "batches" counts flush invocations, not
// destination tables touched), regardless of how many tables it
// touched.
func (c *Coordinator) applyFlushResults(results map[string]*writer.FlushResult) {
	touched := false
	for _, res := range results {
		if res == nil {
			continue
		}
		c.Stats.addImported(res.Succeeded)
		c.Stats.addFailed(len(res.Failed))
		if res.Succeeded > 0 || len(res.Failed) > 0 {
			touched = true
		}
	}
	if touched {
		c.Stats.addBatch()
	}
}

func recordAfter(rec parser.ParsedRecord, toDate time.Time) bool {
	v, ok := rec.Fields["race_date"]
	if !ok || v.Null {
		return false
	}
	t, err := time.Parse(time.RFC3339, v.Text)
	if err != nil {
		return false
	}
	return t.After(toDate)
}

func (c *Coordinator) progressEvent(phase Phase) ProgressEvent {
	s := c.Stats.Snapshot()
	return ProgressEvent{
		Phase:       phase,
		Fetched:     s.Fetched,
		Parsed:      s.Parsed,
		Imported:    s.Imported,
		Failed:      s.Failed,
		Batches:     s.Batches,
		CurrentFile: s.LastFile,
		Retries:     s.Retries,
	}
}

func (c *Coordinator) loggerOrNop() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func emit(events chan<- ProgressEvent, ev ProgressEvent) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	default:
	}
}

// runWithErrgroup runs fn in a cancellation-aware errgroup and waits
// for it. Neither RunBackfill nor RunMonitor calls it.
func runWithErrgroup(ctx context.Context, fn func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fn(gctx) })
	return g.Wait()
}
