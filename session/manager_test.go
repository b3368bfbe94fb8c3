package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceingest/core/ingesterr"
	"github.com/raceingest/core/session"
	"github.com/raceingest/core/vendorfake"
)

func fastConfig() session.Config {
	return session.Config{
		StatusPollInterval: time.Millisecond,
		StallTimeout:        50 * time.Millisecond,
		OpenTimeout:         time.Second,
		RateLimitBackoff:    time.Millisecond,
		DownloadRetryWait:   time.Millisecond,
		MaxSessionRetries:   3,
		ReadBudget:          1000,
	}
}

func collectRecords(t *testing.T) (func(ctx context.Context, buf []byte, fileName string) error, *[][]byte) {
	t.Helper()
	var got [][]byte
	return func(ctx context.Context, buf []byte, fileName string) error {
		got = append(got, buf)
		return nil
	}, &got
}

func TestRunHistoricalCompletesASingleFileSession(t *testing.T) {
	vendor := &vendorfake.Session{
		Files: []vendorfake.File{
			{Name: "file1", Records: [][]byte{[]byte("RA..."), []byte("SE...")}},
		},
	}
	mgr := session.NewManager(vendor, fastConfig(), nil)
	handle, got := collectRecords(t)

	result, err := mgr.RunHistorical(context.Background(), session.Central, "RACE", "", nil, handle)
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, 2, result.RecordsFetched)
	assert.Len(t, *got, 2)
	assert.Equal(t, session.Closed, mgr.State())
}

func TestRunHistoricalResumesAfterRetryableInterruptionUsingSkipFiles(t *testing.T) {
	vendor := &vendorfake.Session{
		Files: []vendorfake.File{
			{Name: "file1", Records: [][]byte{[]byte("RA-1")}},
			{Name: "file2", Records: [][]byte{[]byte("RA-2"), []byte("SE-2")}},
		},
		Interruptions: []vendorfake.Interruption{
			{AfterFiles: 1, Code: session.CodeDownloadFailed},
		},
	}
	mgr := session.NewManager(vendor, fastConfig(), nil)
	handle, got := collectRecords(t)

	result, err := mgr.RunHistorical(context.Background(), session.Central, "RACE", "", nil, handle)
	require.NoError(t, err)
	assert.True(t, result.Completed, "the manager must transparently retry and finish the run")
	assert.Equal(t, 3, result.RecordsFetched, "file1's record must not be double-counted on resume")
	assert.Len(t, *got, 3)
	assert.ElementsMatch(t, []string{"file1", "file2"}, result.SkipFiles.Names())
}

func TestRunHistoricalFailsFastOnAuthError(t *testing.T) {
	vendor := &vendorfake.Session{InitCode: session.CodeAuthNotSet}
	mgr := session.NewManager(vendor, fastConfig(), nil)
	handle, _ := collectRecords(t)

	_, err := mgr.RunHistorical(context.Background(), session.Central, "RACE", "", nil, handle)
	require.Error(t, err)
	var ie *ingesterr.IngestError
	require.True(t, ingesterr.As(err, &ie))
	assert.Equal(t, ingesterr.TagAuth, ie.Tag)
}

func TestRunHistoricalCarriesSkipFilesForwardWithoutMutatingCaller(t *testing.T) {
	vendor := &vendorfake.Session{
		Files: []vendorfake.File{
			{Name: "file1", Records: [][]byte{[]byte("RA-1")}},
		},
	}
	mgr := session.NewManager(vendor, fastConfig(), nil)
	handle, _ := collectRecords(t)

	callerSkip := session.NewSkipFiles("file1")
	result, err := mgr.RunHistorical(context.Background(), session.Central, "RACE", "", callerSkip, handle)
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, 0, result.RecordsFetched, "a file already in the caller's skip set must never be re-handled")
	assert.True(t, callerSkip.Contains("file1"), "the manager's own clone must not alias the caller's set")
}

func TestRunLiveMonitorDeliversWithoutFromTime(t *testing.T) {
	vendor := &vendorfake.Session{
		Files: []vendorfake.File{
			{Name: "live1", Records: [][]byte{[]byte("RA-live")}},
		},
	}
	mgr := session.NewManager(vendor, fastConfig(), nil)
	handle, got := collectRecords(t)

	result, err := mgr.RunLiveMonitor(context.Background(), session.Central, "RACE", "monitor-key", handle)
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Len(t, *got, 1)
}
