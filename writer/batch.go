package writer

import "github.com/raceingest/core/schema"

// defaultCapacity is the number of rows a BatchBuffer accumulates
// before Writer flushes it automatically.
const defaultCapacity = 1000

// row is one destination-table row, already ordered to match its
// TableDef's column list.
type row struct {
	values []any
}

// BatchBuffer accumulates rows for a single destination table until it
// reaches its capacity, at which point the caller flushes it through a
// Driver. One BatchBuffer exists per table currently being written.
type BatchBuffer struct {
	table    schema.TableDef
	capacity int
	rows     []row
}

// NewBatchBuffer builds a buffer for table with the default capacity.
func NewBatchBuffer(table schema.TableDef) *BatchBuffer {
	return &BatchBuffer{table: table, capacity: defaultCapacity}
}

// WithCapacity overrides the default row capacity before first use.
func (b *BatchBuffer) WithCapacity(n int) *BatchBuffer {
	b.capacity = n
	return b
}

// Add appends one row's already-ordered values. It reports whether the
// buffer is now at capacity and should be flushed.
func (b *BatchBuffer) Add(values []any) (full bool) {
	b.rows = append(b.rows, row{values: values})
	return len(b.rows) >= b.capacity
}

// Len reports how many rows are currently buffered.
func (b *BatchBuffer) Len() int { return len(b.rows) }

// Drain returns the buffered rows as a [][]any and empties the buffer.
func (b *BatchBuffer) Drain() [][]any {
	out := make([][]any, len(b.rows))
	for i, r := range b.rows {
		out[i] = r.values
	}
	b.rows = b.rows[:0]
	return out
}
