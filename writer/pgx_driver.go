package writer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	pgxzap "github.com/jackc/pgx-zap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
)

// PgxDriver is the client-server engine, built on github.com/jackc/pgx/v5
// through a pooled connection, per SPEC_FULL.md §4.4.
type PgxDriver struct {
	pool *pgxpool.Pool
}

// OpenPgx connects to a Postgres-compatible server at dsn. Every query
// is traced through the supplied zap logger via pgx-zap, so pool-level
// query activity lands in the same structured log stream as the rest
// of the pipeline.
func OpenPgx(ctx context.Context, dsn string, logger *zap.Logger) (*PgxDriver, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx dsn: %w", err)
	}
	if logger != nil {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   pgxzap.NewLogger(logger),
			LogLevel: tracelog.LogLevelWarn,
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	return &PgxDriver{pool: pool}, nil
}

func (d *PgxDriver) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *PgxDriver) UpsertTemplate(table string, columns []string, pk []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
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
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", d.QuoteIdentifier(c), d.QuoteIdentifier(c)))
	}
	quotedPK := make([]string, len(pk))
	for i, p := range pk {
		quotedPK[i] = d.QuoteIdentifier(p)
	}

	base := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	if len(sets) == 0 {
		return fmt.Sprintf("%s ON CONFLICT (%s) DO NOTHING", base, strings.Join(quotedPK, ", "))
	}
	return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s", base, strings.Join(quotedPK, ", "), strings.Join(sets, ", "))
}

func (d *PgxDriver) BulkExec(ctx context.Context, stmt string, rows [][]any, atomic bool) (int, []error, error) {
	if atomic {
		tx, err := d.pool.Begin(ctx)
		if err != nil {
			return 0, nil, err
		}
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(stmt, row...)
		}
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < len(rows); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				tx.Rollback(ctx)
				return 0, nil, fmt.Errorf("row %d: %w", i, classify(err))
			}
		}
		if err := br.Close(); err != nil {
			tx.Rollback(ctx)
			return 0, nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return 0, nil, err
		}
		return len(rows), nil, nil
	}

	rowErrs := make([]error, len(rows))
	succeeded := 0
	for i, row := range rows {
		if _, err := d.pool.Exec(ctx, stmt, row...); err != nil {
			rowErrs[i] = classify(err)
			continue
		}
		succeeded++
	}
	return succeeded, rowErrs, nil
}

// sqlStateNames maps the SQLSTATE codes this writer cares about to a
// readable name, built from pgerrcode's constants, so a failed-row
// report reads as "unique_violation" rather than a bare five-digit
// code.
var sqlStateNames = map[string]string{
	pgerrcode.UniqueViolation:      "unique_violation",
	pgerrcode.ForeignKeyViolation:  "foreign_key_violation",
	pgerrcode.NotNullViolation:     "not_null_violation",
	pgerrcode.CheckViolation:       "check_violation",
	pgerrcode.DeadlockDetected:     "deadlock_detected",
	pgerrcode.SerializationFailure: "serialization_failure",
}

// classify annotates a pgx error with the human meaning of its
// SQLSTATE code, when recognised.
func classify(err error) error {
	var pgErr interface {
		SQLState() string
	}
	if ok := asPgError(err, &pgErr); ok {
		if name, known := sqlStateNames[pgErr.SQLState()]; known {
			return fmt.Errorf("%s (%s): %w", name, pgErr.SQLState(), err)
		}
	}
	return err
}

func asPgError(err error, target *interface{ SQLState() string }) bool {
	type sqlStater interface{ SQLState() string }
	for {
		if e, ok := err.(sqlStater); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
		if err == nil {
			return false
		}
	}
}

func (d *PgxDriver) Close() error {
	d.pool.Close()
	return nil
}
