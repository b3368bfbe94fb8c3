package writer

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestSQLiteUpsertTemplateDefaultDialectUsesOnConflict(t *testing.T) {
	d := &SQLiteDriver{}
	stmt := d.UpsertTemplate("NL_RA", []string{"race_id", "race_number"}, []string{"race_id"})
	assert.Contains(t, stmt, `INSERT INTO "NL_RA"`)
	assert.Contains(t, stmt, "ON CONFLICT(\"race_id\") DO UPDATE SET")
	assert.Contains(t, stmt, `"race_number" = excluded."race_number"`)
}

func TestSQLiteUpsertTemplateNoNonPKColumnsDoesNothing(t *testing.T) {
	d := &SQLiteDriver{}
	stmt := d.UpsertTemplate("NL_UM", []string{"horse_id"}, []string{"horse_id"})
	assert.Contains(t, stmt, "DO NOTHING")
}

func TestSQLiteUpsertTemplateReplaceMode(t *testing.T) {
	d := (&SQLiteDriver{}).WithReplaceMode()
	stmt := d.UpsertTemplate("NL_RA", []string{"race_id"}, []string{"race_id"})
	assert.Contains(t, stmt, "INSERT OR REPLACE INTO")
}

func TestSQLiteQuoteIdentifierEscapesDoubleQuotes(t *testing.T) {
	d := &SQLiteDriver{}
	assert.Equal(t, `"weird""name"`, d.QuoteIdentifier(`weird"name`))
}

func openTestDB(t *testing.T) *SQLiteDriver {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(`CREATE TABLE "NL_RA" ("race_id" TEXT PRIMARY KEY, "race_number" INTEGER)`)
	require.NoError(t, err)
	return &SQLiteDriver{db: db}
}

func TestSQLiteBulkExecAtomicInsertsAllRows(t *testing.T) {
	d := openTestDB(t)
	stmt := d.UpsertTemplate("NL_RA", []string{"race_id", "race_number"}, []string{"race_id"})

	rows := [][]any{
		{"race-1", int64(1)},
		{"race-2", int64(2)},
	}
	succeeded, rowErrs, err := d.BulkExec(context.Background(), stmt, rows, true)
	require.NoError(t, err)
	assert.Equal(t, 2, succeeded)
	assert.Nil(t, rowErrs)

	var count int
	require.NoError(t, d.db.QueryRow(`SELECT COUNT(*) FROM "NL_RA"`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLiteBulkExecAtomicRollsBackWholeBatchOnError(t *testing.T) {
	d := openTestDB(t)
	stmt := d.UpsertTemplate("NL_RA", []string{"race_id", "race_number"}, []string{"race_id"})

	// A wrongly typed value is accepted by sqlite's loose typing, and a
	// duplicate primary key is not an error under ON CONFLICT DO UPDATE,
	// so force the failure with a malformed statement (a trailing
	// ", extra") and check that the row is not committed.
	badStmt := stmt + ", extra"
	rows := [][]any{{"race-1", int64(1)}}
	_, _, err := d.BulkExec(context.Background(), badStmt, rows, true)
	assert.Error(t, err)

	var count int
	require.NoError(t, d.db.QueryRow(`SELECT COUNT(*) FROM "NL_RA"`).Scan(&count))
	assert.Equal(t, 0, count, "a failed atomic batch must leave no partial rows")
}

func TestSQLiteBulkExecNonAtomicReportsPerRowErrors(t *testing.T) {
	d := openTestDB(t)
	stmt := d.UpsertTemplate("NL_RA", []string{"race_id", "race_number"}, []string{"race_id"})

	rows := [][]any{
		{"race-1", int64(1)},
		{"race-2", int64(2)},
	}
	succeeded, rowErrs, err := d.BulkExec(context.Background(), stmt, rows, false)
	require.NoError(t, err)
	assert.Equal(t, 2, succeeded)
	for _, e := range rowErrs {
		assert.Nil(t, e)
	}
}
