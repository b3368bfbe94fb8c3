package writer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/raceingest/core/fieldcodec"
	"github.com/raceingest/core/ingesterr"
	"github.com/raceingest/core/parser"
	"github.com/raceingest/core/schema"
)

// FailedRow is one row that did not make it into the destination
// table, with enough context to diagnose and replay it later.
type FailedRow struct {
	Table  string
	Fields map[string]fieldcodec.Value
	Reason string
}

// FlushResult summarises the outcome of flushing one table's buffer.
type FlushResult struct {
	Table     string
	Succeeded int
	Failed    []FailedRow
}

// Writer buffers ParsedRecords per destination table and flushes them
// through a Driver, validating primary-key presence itself (the
// parser package never sees table or PK metadata — SPEC_FULL.md §2
// dependency direction: fieldcodec -> parser -> schema -> writer).
type Writer struct {
	driver Driver
	logger *zap.Logger

	mu        sync.Mutex
	buffers   map[string]*BatchBuffer
	failedLog *FailedRowLog
	batchSize int
}

// New builds a Writer over driver. A nil logger is replaced with a
// no-op logger.
func New(driver Driver, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{driver: driver, logger: logger, buffers: map[string]*BatchBuffer{}}
}

// WithFailedRowLog attaches a FailedRowLog every rejected or failed
// row is appended to as it is discovered, in addition to being
// returned in the FlushResult.
func (w *Writer) WithFailedRowLog(l *FailedRowLog) *Writer {
	w.failedLog = l
	return w
}

// WithBatchSize overrides the row capacity every BatchBuffer created
// from this point on uses, in place of batch.go's defaultCapacity.
// A non-positive n leaves the default in effect.
func (w *Writer) WithBatchSize(n int) *Writer {
	w.batchSize = n
	return w
}

func (w *Writer) logFailed(rows []FailedRow) {
	if w.failedLog == nil {
		return
	}
	for _, r := range rows {
		if err := w.failedLog.Append(r); err != nil {
			w.logger.Warn("failed to append to failed-row log", zap.Error(err))
		}
	}
}

// Write stages one parsed record for table. If the record is missing
// any of the table's declared primary-key columns it is rejected
// immediately as failed, without ever reaching the buffer — primary
// key presence is validated here, not in the parser, per this
// package's ownership of destination-table semantics.
func (w *Writer) Write(ctx context.Context, table string, rec parser.ParsedRecord) (*FlushResult, error) {
	def, ok := schema.Lookup(table)
	if !ok {
		return nil, ingesterr.New(ingesterr.TagWriter, 0, "", fmt.Errorf("unknown destination table %q", table))
	}

	if reason, missing := missingPK(def, rec.Fields); missing {
		w.logger.Warn("rejecting record missing primary key", zap.String("table", table), zap.String("reason", reason))
		result := &FlushResult{
			Table: table,
			Failed: []FailedRow{{
				Table:  table,
				Fields: rec.Fields,
				Reason: reason,
			}},
		}
		w.logFailed(result.Failed)
		return result, nil
	}

	values := orderedValues(def, rec.Fields)

	w.mu.Lock()
	buf, ok := w.buffers[table]
	if !ok {
		buf = NewBatchBuffer(def)
		if w.batchSize > 0 {
			buf = buf.WithCapacity(w.batchSize)
		}
		w.buffers[table] = buf
	}
	full := buf.Add(values)
	w.mu.Unlock()

	if full {
		return w.Flush(ctx, table)
	}
	return nil, nil
}

// Flush drains table's buffer and writes it through the driver. It
// first attempts one atomic transaction; if that fails, it retries
// row by row so a single malformed row never discards an otherwise
// healthy batch, per SPEC_FULL.md §4.4's per-row fallback requirement.
func (w *Writer) Flush(ctx context.Context, table string) (*FlushResult, error) {
	w.mu.Lock()
	buf, ok := w.buffers[table]
	if !ok || buf.Len() == 0 {
		w.mu.Unlock()
		return &FlushResult{Table: table}, nil
	}
	def := buf.table
	rows := buf.Drain()
	w.mu.Unlock()

	columns := columnNames(def)
	stmt := w.driver.UpsertTemplate(def.Name, columns, def.PK)

	succeeded, _, err := w.driver.BulkExec(ctx, stmt, rows, true)
	if err == nil {
		return &FlushResult{Table: table, Succeeded: succeeded}, nil
	}

	w.logger.Warn("atomic flush failed, retrying row by row", zap.String("table", table), zap.Error(err))
	succeeded, rowErrs, err := w.driver.BulkExec(ctx, stmt, rows, false)
	if err != nil {
		return nil, ingesterr.Wrap(ingesterr.TagWriter, 0, "", err, "row-by-row flush of "+table)
	}

	result := &FlushResult{Table: table, Succeeded: succeeded}
	for i, rowErr := range rowErrs {
		if rowErr == nil {
			continue
		}
		result.Failed = append(result.Failed, FailedRow{
			Table:  table,
			Fields: fieldsFromValues(def, rows[i]),
			Reason: rowErr.Error(),
		})
	}
	w.logFailed(result.Failed)
	return result, nil
}

// FlushAll flushes every table with a non-empty buffer.
func (w *Writer) FlushAll(ctx context.Context) (map[string]*FlushResult, error) {
	w.mu.Lock()
	tables := make([]string, 0, len(w.buffers))
	for t := range w.buffers {
		tables = append(tables, t)
	}
	w.mu.Unlock()

	out := make(map[string]*FlushResult, len(tables))
	for _, t := range tables {
		res, err := w.Flush(ctx, t)
		if err != nil {
			return out, err
		}
		out[t] = res
	}
	return out, nil
}

// Close flushes everything outstanding, then closes the driver and any
// attached failed-row log.
func (w *Writer) Close(ctx context.Context) error {
	if _, err := w.FlushAll(ctx); err != nil {
		return err
	}
	if w.failedLog != nil {
		if err := w.failedLog.Close(); err != nil {
			w.logger.Warn("failed to close failed-row log", zap.Error(err))
		}
	}
	return w.driver.Close()
}

func missingPK(def schema.TableDef, fields map[string]fieldcodec.Value) (string, bool) {
	for _, pk := range def.PK {
		v, ok := fields[pk]
		if !ok || v.Null {
			return fmt.Sprintf("missing primary key column %q", pk), true
		}
	}
	return "", false
}

func columnNames(def schema.TableDef) []string {
	out := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		out[i] = c.Name
	}
	return out
}

func orderedValues(def schema.TableDef, fields map[string]fieldcodec.Value) []any {
	out := make([]any, len(def.Columns))
	for i, c := range def.Columns {
		out[i] = toSQLValue(fields[c.Name])
	}
	return out
}

func fieldsFromValues(def schema.TableDef, values []any) map[string]fieldcodec.Value {
	out := make(map[string]fieldcodec.Value, len(def.Columns))
	for i, c := range def.Columns {
		out[c.Name] = fromSQLValue(values[i])
	}
	return out
}

func toSQLValue(v fieldcodec.Value) any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case fieldcodec.KindInt:
		return v.Int
	case fieldcodec.KindReal:
		return v.Real
	default:
		return v.Text
	}
}

func fromSQLValue(v any) fieldcodec.Value {
	switch t := v.(type) {
	case nil:
		return fieldcodec.NullValue(fieldcodec.KindText)
	case int64:
		return fieldcodec.Value{Kind: fieldcodec.KindInt, Int: t}
	case float64:
		return fieldcodec.Value{Kind: fieldcodec.KindReal, Real: t}
	case string:
		return fieldcodec.Value{Kind: fieldcodec.KindText, Text: t}
	default:
		return fieldcodec.Value{Kind: fieldcodec.KindText, Text: fmt.Sprintf("%v", t)}
	}
}
