package writer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteDriver is the embedded single-file engine, built on the pure
// Go modernc.org/sqlite driver (no cgo), per SPEC_FULL.md §4.4.
type SQLiteDriver struct {
	db *sql.DB
	// replaceMode selects INSERT OR REPLACE instead of the default
	// ON CONFLICT ... DO UPDATE upsert dialect, retained for the
	// second dialect the driver contract documents even though the
	// default wiring always uses ON CONFLICT.
	replaceMode bool
}

// OpenSQLite opens (creating if absent) a single-file sqlite database
// at path.
func OpenSQLite(path string) (*SQLiteDriver, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &SQLiteDriver{db: db}, nil
}

// WithReplaceMode switches this driver's UpsertTemplate to emit
// INSERT OR REPLACE instead of ON CONFLICT DO UPDATE.
func (d *SQLiteDriver) WithReplaceMode() *SQLiteDriver {
	d.replaceMode = true
	return d
}

func (d *SQLiteDriver) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *SQLiteDriver) UpsertTemplate(table string, columns []string, pk []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
		placeholders[i] = "?"
	}

	base := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	if d.replaceMode {
		return "INSERT OR REPLACE INTO " + base[len("INSERT INTO "):]
	}

	pkSet := make(map[string]bool, len(pk))
	for _, p := range pk {
		pkSet[p] = true
	}
	var sets []string
	for _, c := range columns {
		if pkSet[c] {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", d.QuoteIdentifier(c), d.QuoteIdentifier(c)))
	}
	quotedPK := make([]string, len(pk))
	for i, p := range pk {
		quotedPK[i] = d.QuoteIdentifier(p)
	}
	if len(sets) == 0 {
		return fmt.Sprintf("%s ON CONFLICT(%s) DO NOTHING", base, strings.Join(quotedPK, ", "))
	}
	return fmt.Sprintf("%s ON CONFLICT(%s) DO UPDATE SET %s", base, strings.Join(quotedPK, ", "), strings.Join(sets, ", "))
}

func (d *SQLiteDriver) BulkExec(ctx context.Context, stmt string, rows [][]any, atomic bool) (int, []error, error) {
	if atomic {
		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return 0, nil, err
		}
		prepared, err := tx.PrepareContext(ctx, stmt)
		if err != nil {
			tx.Rollback()
			return 0, nil, err
		}
		for i, row := range rows {
			if _, err := prepared.ExecContext(ctx, row...); err != nil {
				prepared.Close()
				tx.Rollback()
				return 0, nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		prepared.Close()
		if err := tx.Commit(); err != nil {
			return 0, nil, err
		}
		return len(rows), nil, nil
	}

	rowErrs := make([]error, len(rows))
	succeeded := 0
	for i, row := range rows {
		if _, err := d.db.ExecContext(ctx, stmt, row...); err != nil {
			rowErrs[i] = err
			continue
		}
		succeeded++
	}
	return succeeded, rowErrs, nil
}

func (d *SQLiteDriver) Close() error { return d.db.Close() }
