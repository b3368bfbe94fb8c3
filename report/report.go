// Package report renders run statistics and flush outcomes as
// human-readable tables for operators watching a run from a terminal,
// separate from the structured logging obslog emits for machine
// consumption.
package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/raceingest/core/coordinator"
	"github.com/raceingest/core/writer"
)

// WriteStats renders a single Stats snapshot as a two-column table.
func WriteStats(w io.Writer, label string, s coordinator.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(label)
	t.AppendHeader(table.Row{"metric", "value"})
	t.AppendRows([]table.Row{
		{"fetched", s.Fetched},
		{"parsed", s.Parsed},
		{"imported", s.Imported},
		{"failed", s.Failed},
		{"batches", s.Batches},
		{"retries", s.Retries},
		{"last file", s.LastFile},
	})
	t.Render()
}

// WriteFlushResults renders one row per table a FlushAll pass touched,
// sorted by the order the caller supplies (callers typically pass
// schema.Tables() order so the report reads deterministically).
func WriteFlushResults(w io.Writer, order []string, results map[string]*writer.FlushResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"table", "succeeded", "failed"})
	for _, name := range order {
		res, ok := results[name]
		if !ok || res == nil {
			continue
		}
		t.AppendRow(table.Row{res.Table, res.Succeeded, len(res.Failed)})
	}
	t.Render()
}
