package coordinator

import (
	"context"
	"time"

	"github.com/raceingest/core/parser"
	"github.com/raceingest/core/schema"
)

// MonitorRequest is one live-monitor invocation's parameters (spec.md
// §4.6 "Live monitor").
type MonitorRequest struct {
	Feed      parser.Feed
	DataSpecs []string
	Key       string

	Interval        time.Duration // default 30s off race day
	RaceDayInterval time.Duration // default 30s, adaptive cadence around post time
	IsRaceDay       func(time.Time) bool
	IsNearPostTime  func(time.Time) bool
}

func (r MonitorRequest) interval(now time.Time) time.Duration {
	if r.IsRaceDay != nil && r.IsNearPostTime != nil && r.IsRaceDay(now) && r.IsNearPostTime(now) {
		if r.RaceDayInterval > 0 {
			return r.RaceDayInterval
		}
	}
	if r.Interval > 0 {
		return r.Interval
	}
	return 30 * time.Second
}

// RunMonitor polls the vendor's real-time session on a cadence,
// draining each cycle's records to the writer's real-time table
// family, until ctx is cancelled. The ticker + ctx.Done() shape
// mirrors this module's other long-running wait loops.
func (c *Coordinator) RunMonitor(ctx context.Context, req MonitorRequest, events chan<- ProgressEvent) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	trigger := c.realtimeTrigger()

	for {
		select {
		case <-ctx.Done():
			emit(events, c.progressEvent(PhaseRunComplete))
			return ctx.Err()
		case <-trigger:
			if err := c.runMonitorCycle(ctx, req, events); err != nil {
				return err
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(req.interval(time.Now()))
		case now := <-timer.C:
			if err := c.runMonitorCycle(ctx, req, events); err != nil {
				return err
			}
			timer.Reset(req.interval(now))
		}
	}
}

// runMonitorCycle runs one poll-and-flush pass, shared by the regular
// interval tick and an on-demand TriggerRealtime wakeup.
func (c *Coordinator) runMonitorCycle(ctx context.Context, req MonitorRequest, events chan<- ProgressEvent) error {
	if err := c.monitorCycle(ctx, req); err != nil {
		c.Stats.addRetry()
	}
	flushed, err := c.Writer.FlushAll(ctx)
	if err != nil {
		return err
	}
	c.applyFlushResults(flushed)
	emit(events, c.progressEvent(PhaseMonitorTick))
	return nil
}

func (c *Coordinator) monitorCycle(ctx context.Context, req MonitorRequest) error {
	for _, spec := range req.DataSpecs {
		_, err := c.Manager.RunLiveMonitor(ctx, req.Feed, spec, req.Key, func(rctx context.Context, buf []byte, fileName string) error {
			return c.handleRealtimeRecord(rctx, req.Feed, buf, fileName)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) handleRealtimeRecord(ctx context.Context, feed parser.Feed, buf []byte, fileName string) error {
	records, err := c.Registry.Parse(feed, buf)
	if err != nil {
		c.Stats.addFailed(1)
		return nil
	}
	c.Stats.addParsed(len(records))
	c.Stats.setLastFile(fileName)

	for _, rec := range records {
		table, ok := schema.Route(feed, rec.Kind, true)
		if !ok {
			// kind has no real-time table family; drop it without
			// counting it (the accumulated path counts an unroutable
			// kind as failed instead).
			continue
		}
		res, err := c.Writer.Write(ctx, table, rec)
		if err != nil {
			return err
		}
		if res != nil {
			c.Stats.addImported(res.Succeeded)
			c.Stats.addFailed(len(res.Failed))
		}
	}
	return nil
}
