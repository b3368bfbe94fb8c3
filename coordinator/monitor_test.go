package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceingest/core/parser"
	"github.com/raceingest/core/vendorfake"
)

func TestMonitorRequestIntervalUsesRaceDayStepNearPostTime(t *testing.T) {
	req := MonitorRequest{
		Interval:        30 * time.Second,
		RaceDayInterval: 5 * time.Second,
		IsRaceDay:       func(time.Time) bool { return true },
		IsNearPostTime:  func(time.Time) bool { return true },
	}
	assert.Equal(t, 5*time.Second, req.interval(time.Now()))
}

func TestMonitorRequestIntervalFallsBackOffRaceDay(t *testing.T) {
	req := MonitorRequest{
		Interval:        30 * time.Second,
		RaceDayInterval: 5 * time.Second,
		IsRaceDay:       func(time.Time) bool { return false },
		IsNearPostTime:  func(time.Time) bool { return true },
	}
	assert.Equal(t, 30*time.Second, req.interval(time.Now()))
}

func TestMonitorRequestIntervalDefaultsToThirtySeconds(t *testing.T) {
	req := MonitorRequest{}
	assert.Equal(t, 30*time.Second, req.interval(time.Now()))
}

func TestRunMonitorStopsOnContextCancellationAndEmitsRunComplete(t *testing.T) {
	coord, _ := newTestCoordinator([]vendorfake.File{
		{Name: "live1", Records: [][]byte{raBuffer("2025061501234567", "20250615")}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan ProgressEvent, 16)

	done := make(chan error, 1)
	go func() {
		done <- coord.RunMonitor(ctx, MonitorRequest{
			Feed:      parser.Central,
			DataSpecs: []string{"RACE"},
			Interval:  time.Millisecond,
		}, events)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)

	foundComplete := false
drain:
	for {
		select {
		case ev := <-events:
			if ev.Phase == PhaseRunComplete {
				foundComplete = true
			}
		default:
			break drain
		}
	}
	assert.True(t, foundComplete, "cancellation must still emit a run_complete event")
}

func TestTriggerRealtimeRunsACycleWithoutWaitingForTheTimer(t *testing.T) {
	coord, drv := newTestCoordinator([]vendorfake.File{
		{Name: "live1", Records: [][]byte{raBuffer("2025061501234567", "20250615")}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan ProgressEvent, 16)

	go func() {
		_ = coord.RunMonitor(ctx, MonitorRequest{
			Feed:      parser.Central,
			DataSpecs: []string{"RACE"},
			Interval:  time.Hour,
		}, events)
	}()

	require.Eventually(t, func() bool {
		return len(drv.rows["RT_RA"]) == 1
	}, time.Second, time.Millisecond, "the first cycle runs immediately")

	require.NoError(t, coord.TriggerRealtime())

	require.Eventually(t, func() bool {
		return len(drv.rows["RT_RA"]) == 2
	}, time.Second, time.Millisecond, "TriggerRealtime must force a cycle without waiting out the hour-long interval")
}

func TestHandleRealtimeRecordRoutesToRealTimeTable(t *testing.T) {
	coord, drv := newTestCoordinator(nil)

	err := coord.handleRealtimeRecord(context.Background(), parser.Central, raBuffer("2025061501234567", "20250615"), "f1")
	require.NoError(t, err)

	flushed, err := coord.Writer.FlushAll(context.Background())
	require.NoError(t, err)
	coord.applyFlushResults(flushed)

	assert.Len(t, drv.rows["RT_RA"], 1, "RA has a real-time counterpart and must route to RT_RA")
	assert.Equal(t, 1, coord.Stats.Snapshot().Imported)
}
