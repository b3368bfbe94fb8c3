package session_test

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceingest/core/session"
)

func TestFromResultAndToResultRoundTrip(t *testing.T) {
	r := session.Result{RecordsFetched: 5, Completed: true, SkipFiles: session.NewSkipFiles("a", "b")}
	cr := session.FromResult(r, nil)
	assert.Equal(t, 5, cr.RecordsFetched)
	assert.True(t, cr.Completed)
	assert.ElementsMatch(t, []string{"a", "b"}, cr.SkipFiles)
	assert.Empty(t, cr.Error)

	back, err := cr.ToResult()
	require.NoError(t, err)
	assert.Equal(t, 5, back.RecordsFetched)
	assert.True(t, back.SkipFiles.Contains("a"))
}

func TestFromResultCarriesErrorText(t *testing.T) {
	cr := session.FromResult(session.Result{}, assert.AnError)
	assert.Equal(t, assert.AnError.Error(), cr.Error)

	_, err := cr.ToResult()
	assert.Error(t, err)
}

func TestChildSpawnerParsesLastResultLine(t *testing.T) {
	spawner := &session.ChildSpawner{
		Timeout: time.Second,
		Command: func(ctx context.Context, args session.ChildArgs) *exec.Cmd {
			script := `echo '{"records_fetched":1,"completed":false}'; echo '{"records_fetched":3,"completed":true}'`
			return exec.CommandContext(ctx, "sh", "-c", script)
		},
	}

	result, err := spawner.Spawn(context.Background(), session.ChildArgs{Feed: session.Central, DataSpec: "RACE"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.RecordsFetched)
	assert.True(t, result.Completed)
}

func TestChildSpawnerErrorsWhenNoResultLinePrinted(t *testing.T) {
	spawner := &session.ChildSpawner{
		Timeout: time.Second,
		Command: func(ctx context.Context, args session.ChildArgs) *exec.Cmd {
			return exec.CommandContext(ctx, "sh", "-c", "echo not-json")
		},
	}

	_, err := spawner.Spawn(context.Background(), session.ChildArgs{})
	assert.Error(t, err)
}

func TestChildSpawnerTimesOutOnSlowChild(t *testing.T) {
	spawner := &session.ChildSpawner{
		Timeout: 20 * time.Millisecond,
		Command: func(ctx context.Context, args session.ChildArgs) *exec.Cmd {
			return exec.CommandContext(ctx, "sh", "-c", "sleep 5")
		},
	}

	_, err := spawner.Spawn(context.Background(), session.ChildArgs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestChildSpawnerPropagatesNonZeroExit(t *testing.T) {
	spawner := &session.ChildSpawner{
		Timeout: time.Second,
		Command: func(ctx context.Context, args session.ChildArgs) *exec.Cmd {
			return exec.CommandContext(ctx, "sh", "-c", `echo '{"records_fetched":0,"completed":false}'; exit 1`)
		},
	}

	_, err := spawner.Spawn(context.Background(), session.ChildArgs{})
	assert.Error(t, err)
}
