package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raceingest/core/coordinator"
	"github.com/raceingest/core/writer"
)

func TestWriteStatsRendersCounters(t *testing.T) {
	var buf bytes.Buffer
	WriteStats(&buf, "test run", coordinator.Stats{Fetched: 10, Imported: 8, Failed: 2, LastFile: "f1"})

	out := buf.String()
	assert.Contains(t, out, "test run")
	assert.Contains(t, out, "imported")
	assert.Contains(t, out, "8")
	assert.Contains(t, out, "f1")
}

func TestWriteFlushResultsOrdersByGivenSequenceAndSkipsMissing(t *testing.T) {
	var buf bytes.Buffer
	results := map[string]*writer.FlushResult{
		"NL_RA": {Table: "NL_RA", Succeeded: 3},
		"NL_SE": {Table: "NL_SE", Succeeded: 1, Failed: []writer.FailedRow{{Table: "NL_SE", Reason: "bad"}}},
	}

	WriteFlushResults(&buf, []string{"NL_RA", "NL_UNKNOWN", "NL_SE"}, results)

	out := buf.String()
	assert.Contains(t, out, "NL_RA")
	assert.Contains(t, out, "NL_SE")
	assert.NotContains(t, out, "NL_UNKNOWN")
}
