// Package writer buffers ParsedRecords into table-scoped batches and
// flushes them to a destination database through a small Driver
// interface, so the batching and upsert-template logic is identical
// for every backend the driver plugs in.
package writer

import "context"

// Driver is the capability surface a storage backend must implement.
// Both the embedded sqlite engine and the client-server pgx engine
// implement the same contract so Writer never branches on driver
// identity (SPEC_FULL.md §4.4).
type Driver interface {
	// QuoteIdentifier quotes a table or column name for safe inclusion
	// in generated SQL.
	QuoteIdentifier(name string) string

	// UpsertTemplate returns the parameterised SQL statement used to
	// insert-or-update one row of table, given its column order and
	// primary-key column names. placeholders are driver-specific
	// ($1, $2... for pgx; ?, ?... for sqlite).
	UpsertTemplate(table string, columns []string, pk []string) string

	// BulkExec executes stmt once per row in rows. When atomic is true
	// all rows run inside one transaction that rolls back entirely on
	// the first error, and err is that error. When atomic is false
	// each row runs independently; rowErrs is aligned with rows (nil
	// entry = that row succeeded) so the caller can classify and
	// report per-row failures instead of losing the whole batch.
	BulkExec(ctx context.Context, stmt string, rows [][]any, atomic bool) (succeeded int, rowErrs []error, err error)

	// Close releases the driver's underlying connection/pool.
	Close() error
}
