package writer

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raceingest/core/fieldcodec"
)

func TestFailedRowLogRoundTripsThroughGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.jsonl.gz")

	log, err := OpenFailedRowLog(path)
	require.NoError(t, err)

	require.NoError(t, log.Append(FailedRow{
		Table:  "NL_RA",
		Reason: `missing primary key column "race_id"`,
		Fields: map[string]fieldcodec.Value{
			"race_id":     fieldcodec.NullValue(fieldcodec.KindText),
			"race_number": {Kind: fieldcodec.KindInt, Int: 11},
		},
	}))
	require.NoError(t, log.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	require.True(t, scanner.Scan())

	var got failedRowEntry
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &got))

	assert.Equal(t, "NL_RA", got.Table)
	assert.Contains(t, got.Reason, "race_id")
	assert.Nil(t, got.Fields["race_id"])
	assert.Equal(t, float64(11), got.Fields["race_number"])

	assert.False(t, scanner.Scan(), "exactly one row was appended")
}

func TestFailedRowLogAppendsMultipleRowsAsSeparateLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.jsonl.gz")

	log, err := OpenFailedRowLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Append(FailedRow{Table: "NL_RA", Reason: "a"}))
	require.NoError(t, log.Append(FailedRow{Table: "NL_SE", Reason: "b"}))
	require.NoError(t, log.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	scanner := bufio.NewScanner(gz)
	lines := 0
	for scanner.Scan() {
		lines++
	}
	assert.Equal(t, 2, lines)
}
