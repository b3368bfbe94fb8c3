package coordinator

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceingest/core/fieldcodec"
	"github.com/raceingest/core/parser"
	"github.com/raceingest/core/session"
	"github.com/raceingest/core/vendorfake"
	"github.com/raceingest/core/writer"
)

// fakeDriver is a minimal in-memory writer.Driver double, local to this
// package's tests so the coordinator's write path can be exercised
// without a real database.
type fakeDriver struct {
	rows map[string][][]any
}

func newFakeDriver() *fakeDriver { return &fakeDriver{rows: map[string][][]any{}} }

func (d *fakeDriver) QuoteIdentifier(name string) string { return name }
func (d *fakeDriver) UpsertTemplate(table string, columns []string, pk []string) string {
	return "UPSERT " + table
}
func (d *fakeDriver) BulkExec(ctx context.Context, stmt string, rows [][]any, atomic bool) (int, []error, error) {
	table := stmt[len("UPSERT "):]
	d.rows[table] = append(d.rows[table], rows...)
	return len(rows), nil, nil
}
func (d *fakeDriver) Close() error { return nil }

// raBuffer builds a 180-byte RA record buffer with the given race id
// and date (YYYYMMDD), matching parser.catalogue.go's raLayout.
func raBuffer(raceID, date string) []byte {
	buf := bytes.Repeat([]byte{' '}, 180)
	copy(buf[0:], "RA")
	copy(buf[2:], raceID)
	copy(buf[18:], date)
	copy(buf[26:], "01")
	return buf
}

type fakeProgressStore struct {
	last    time.Time
	hasLast bool
	saved   []time.Time
}

func (s *fakeProgressStore) LastCompletedChunk(runKey string) (time.Time, bool) {
	return s.last, s.hasLast
}
func (s *fakeProgressStore) SaveCompletedChunk(runKey string, chunkStart time.Time) error {
	s.saved = append(s.saved, chunkStart)
	return nil
}

func newTestCoordinator(files []vendorfake.File) (*Coordinator, *fakeDriver) {
	vendor := &vendorfake.Session{Files: files}
	mgr := session.NewManager(vendor, session.Config{
		StatusPollInterval: time.Millisecond,
		OpenTimeout:        time.Second,
	}, nil)
	drv := newFakeDriver()
	return &Coordinator{
		Manager:  mgr,
		Registry: parser.NewRegistry(),
		Writer:   writer.New(drv, nil),
	}, drv
}

func TestRunBackfillImportsAndFlushesOneChunk(t *testing.T) {
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	coord, drv := newTestCoordinator([]vendorfake.File{
		{Name: "f1", Records: [][]byte{raBuffer("2025061501234567", "20250615")}},
	})

	events := make(chan ProgressEvent, 16)
	err := coord.RunBackfill(context.Background(), BackfillRequest{
		Feed: parser.Central, DataSpec: "RACE",
		FromDate: day, ToDate: day, ChunkDays: 1,
	}, events)
	require.NoError(t, err)

	snap := coord.Stats.Snapshot()
	assert.Equal(t, 1, snap.Fetched)
	assert.Equal(t, 1, snap.Parsed)
	assert.Equal(t, 1, snap.Imported)
	assert.Len(t, drv.rows["NL_RA"], 1)
}

func TestRunBackfillSkipsChunkAlreadyPersisted(t *testing.T) {
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	coord, drv := newTestCoordinator([]vendorfake.File{
		{Name: "f1", Records: [][]byte{raBuffer("2025061501234567", "20250615")}},
	})
	coord.Progress = &fakeProgressStore{last: day, hasLast: true}

	events := make(chan ProgressEvent, 16)
	err := coord.RunBackfill(context.Background(), BackfillRequest{
		Feed: parser.Central, DataSpec: "RACE",
		FromDate: day, ToDate: day, ChunkDays: 1,
	}, events)
	require.NoError(t, err)

	assert.Equal(t, 0, coord.Stats.Snapshot().Fetched, "an already-completed chunk must never re-run the session")
	assert.Empty(t, drv.rows)
}

func TestRecordAfterSkipsRecordsPastToDate(t *testing.T) {
	toDate := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	before := parser.ParsedRecord{Fields: map[string]fieldcodec.Value{
		"race_date": {Kind: fieldcodec.KindText, Text: "2025-06-14T00:00:00Z"},
	}}
	after := parser.ParsedRecord{Fields: map[string]fieldcodec.Value{
		"race_date": {Kind: fieldcodec.KindText, Text: "2025-06-16T00:00:00Z"},
	}}
	noDate := parser.ParsedRecord{Fields: map[string]fieldcodec.Value{}}

	assert.False(t, recordAfter(before, toDate))
	assert.True(t, recordAfter(after, toDate))
	assert.False(t, recordAfter(noDate, toDate), "a record with no race_date must never be filtered out")
}

func TestTriggerHistoricalReturnsErrorWithoutDefaults(t *testing.T) {
	coord, _ := newTestCoordinator(nil)
	assert.Error(t, coord.TriggerHistorical())
}

func TestTriggerHistoricalRunsConfiguredDefaults(t *testing.T) {
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	coord, drv := newTestCoordinator([]vendorfake.File{
		{Name: "f1", Records: [][]byte{raBuffer("2025061501234567", "20250615")}},
	})
	coord.HistoricalDefaults = BackfillRequest{
		Feed: parser.Central, DataSpec: "RACE",
		FromDate: day, ToDate: day, ChunkDays: 1,
	}

	require.NoError(t, coord.TriggerHistorical())

	require.Eventually(t, func() bool {
		return len(drv.rows["NL_RA"]) == 1
	}, time.Second, time.Millisecond)
}

func TestTriggerRealtimeCoalescesPendingRequests(t *testing.T) {
	coord, _ := newTestCoordinator(nil)
	require.NoError(t, coord.TriggerRealtime())
	require.NoError(t, coord.TriggerRealtime())

	select {
	case <-coord.realtimeTrigger():
	default:
		t.Fatal("expected a buffered trigger")
	}
	select {
	case <-coord.realtimeTrigger():
		t.Fatal("a second trigger must coalesce with the first, not queue")
	default:
	}
}

// TestRunBackfillDispatchesChunksThroughSpawnerWhenConfigured sets up a
// Spawner whose Command prints a canned ChildResult line instead of
// running a real chunk, so RunBackfill's chunk loop can be verified to
// call into Spawner.Spawn (rather than the in-process Manager path)
// whenever Spawner is non-nil.
func TestRunBackfillDispatchesChunksThroughSpawnerWhenConfigured(t *testing.T) {
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	coord, drv := newTestCoordinator([]vendorfake.File{
		{Name: "f1", Records: [][]byte{raBuffer("2025061501234567", "20250615")}},
	})

	var gotArgs session.ChildArgs
	coord.Spawner = &session.ChildSpawner{
		Timeout: time.Second,
		Command: func(ctx context.Context, args session.ChildArgs) *exec.Cmd {
			gotArgs = args
			return exec.CommandContext(ctx, "sh", "-c", `echo '{"records_fetched":4,"completed":true}'`)
		},
	}

	events := make(chan ProgressEvent, 16)
	err := coord.RunBackfill(context.Background(), BackfillRequest{
		Feed: parser.Central, DataSpec: "RACE",
		FromDate: day, ToDate: day, ChunkDays: 1,
	}, events)
	require.NoError(t, err)

	assert.Equal(t, 4, coord.Stats.Snapshot().Fetched, "Fetched must come from the child's reported result")
	assert.Empty(t, drv.rows, "a spawned chunk writes through its own process, never the parent's driver")
	assert.Equal(t, parser.Central, gotArgs.Feed)
	assert.Equal(t, "RACE", gotArgs.DataSpec)
}
