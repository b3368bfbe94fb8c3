package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceingest/core/parser"
)

func TestWithDefaultsChunkDaysPerFeed(t *testing.T) {
	central := WithDefaults(RunConfig{Feed: parser.Central})
	assert.Equal(t, 30, central.ChunkDays)

	regional := WithDefaults(RunConfig{Feed: parser.Regional})
	assert.Equal(t, 1, regional.ChunkDays)
}

func TestWithDefaultsDoesNotOverrideExplicitValues(t *testing.T) {
	cfg := WithDefaults(RunConfig{Feed: parser.Central, ChunkDays: 7, BatchSize: 50})
	assert.Equal(t, 7, cfg.ChunkDays)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestWithDefaultsFillsMonitorIntervalsAndHTTPAddr(t *testing.T) {
	cfg := WithDefaults(RunConfig{})
	assert.Equal(t, 30*time.Second, cfg.LiveMonitorInterval)
	assert.Equal(t, 30*time.Second, cfg.LiveMonitorRaceDayStep)
	assert.Equal(t, "127.0.0.1:8765", cfg.HTTPAddr)
}

func TestValidateRejectsEmptyServiceKey(t *testing.T) {
	cfg := RunConfig{Driver: DriverConfig{Kind: DriverSQLite, DSN: "x.db"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service key")
}

func TestValidateRejectsUnknownDriverKind(t *testing.T) {
	d := DriverConfig{Kind: "oracle", DSN: "x"}
	assert.Error(t, d.Validate())
}

func TestValidateRejectsEmptyDSN(t *testing.T) {
	d := DriverConfig{Kind: DriverSQLite}
	err := d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn")
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := RunConfig{ServiceKey: "abc123", Driver: DriverConfig{Kind: DriverPgx, DSN: "postgres://x"}}
	assert.NoError(t, cfg.Validate())
}
