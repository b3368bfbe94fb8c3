package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// FailedRowLog appends rejected rows to a gzip-compressed, newline-
// delimited JSON file, so an operator can replay or inspect everything
// a run refused to write without needing the destination database
// itself to hold the failure detail. Attaching one is optional; a
// Writer with none simply drops FailedRow detail after returning it.
type FailedRowLog struct {
	mu  sync.Mutex
	f   *os.File
	gz  *gzip.Writer
	enc *json.Encoder
}

// OpenFailedRowLog opens (creating or appending to) a gzip log at path.
func OpenFailedRowLog(path string) (*FailedRowLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open failed-row log %s: %w", path, err)
	}
	gz, err := gzip.NewWriterLevel(f, gzip.BestSpeed)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("build gzip writer for %s: %w", path, err)
	}
	return &FailedRowLog{f: f, gz: gz, enc: json.NewEncoder(gz)}, nil
}

// failedRowEntry is the on-disk shape; Fields is flattened to plain
// values so the log can be grepped/jq'd without decoding Value's Kind.
type failedRowEntry struct {
	Table  string         `json:"table"`
	Reason string         `json:"reason"`
	Fields map[string]any `json:"fields"`
}

// Append writes one FailedRow as a compressed JSON line. Call Flush
// (or Close) to make it durable; the gzip writer buffers internally.
func (l *FailedRowLog) Append(row FailedRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := make(map[string]any, len(row.Fields))
	for name, v := range row.Fields {
		fields[name] = toSQLValue(v)
	}
	return l.enc.Encode(failedRowEntry{Table: row.Table, Reason: row.Reason, Fields: fields})
}

// Flush forces any buffered gzip data to disk without closing the log,
// so a long-running process's failed-row log stays readable between
// runs.
func (l *FailedRowLog) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gz.Flush()
}

func (l *FailedRowLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.gz.Close(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}
