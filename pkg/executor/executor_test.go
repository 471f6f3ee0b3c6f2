package executor

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL, city TEXT);
		INSERT INTO customers VALUES (1, 'Alice', 'Lisbon');
		INSERT INTO customers VALUES (2, 'Bob', 'Porto');
		INSERT INTO customers VALUES (3, 'Carol', NULL);
	`)
	require.NoError(t, err)
	return db
}

func TestExecuteSelect(t *testing.T) {
	exec := New(newTestDB(t))

	result, err := exec.Execute(context.Background(), "SELECT id, name FROM customers ORDER BY id")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, result.Columns)
	assert.Equal(t, 3, result.RowCount)
	assert.Len(t, result.Rows, 3)
	assert.Equal(t, int64(1), result.Rows[0][0])
	assert.Equal(t, "Alice", result.Rows[0][1])
	assert.Equal(t, []string{"customers"}, result.TablesAccessed)
	assert.GreaterOrEqual(t, result.ExecutionTimeMs, 0.0)
	assert.False(t, result.ExecutedAt.IsZero())
}

func TestExecuteRejectsWriteStatements(t *testing.T) {
	db := newTestDB(t)
	exec := New(db)

	queries := []string{
		"INSERT INTO customers VALUES (4, 'Dave', 'Faro')",
		"UPDATE customers SET name = 'X'",
		"DELETE FROM customers",
		"DROP TABLE customers",
		"CREATE TABLE other (id INTEGER)",
		"ALTER TABLE customers ADD COLUMN age INTEGER",
		"TRUNCATE TABLE customers",
		"select * from customers; drop table customers",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			result, err := exec.Execute(context.Background(), q)
			assert.Nil(t, result)

			qerr, ok := AsQueryError(err)
			require.True(t, ok)
			assert.Equal(t, ErrorSyntax, qerr.Kind)
			assert.Equal(t, "Only SELECT queries are allowed for safety", qerr.Message)
		})
	}

	// The data must be untouched after every rejected statement.
	var count int64
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM customers").Scan(&count))
	assert.Equal(t, int64(3), count)
}

func TestExecuteAllowsKeywordSubstrings(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`
		CREATE TABLE events (id INTEGER PRIMARY KEY, created_at TEXT, updated_flag INTEGER);
		INSERT INTO events VALUES (1, '2024-01-01', 0);
	`)
	require.NoError(t, err)

	exec := New(db)
	result, err := exec.Execute(context.Background(),
		"SELECT created_at, updated_flag FROM events")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowCount)
}

func TestExecuteRowCap(t *testing.T) {
	exec := New(newTestDB(t), WithMaxRows(10))

	result, err := exec.Execute(context.Background(), `
		WITH RECURSIVE cnt(x) AS (
			SELECT 1 UNION ALL SELECT x + 1 FROM cnt WHERE x < 100
		)
		SELECT x FROM cnt
	`)
	assert.Nil(t, result)

	qerr, ok := AsQueryError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorLimitExceeded, qerr.Kind)
	assert.Contains(t, qerr.Message, ">10")
	assert.Contains(t, qerr.Message, "LIMIT")
}

func TestExecuteRowCapExactFit(t *testing.T) {
	exec := New(newTestDB(t), WithMaxRows(3))

	result, err := exec.Execute(context.Background(), "SELECT id FROM customers")
	require.NoError(t, err)
	assert.Equal(t, 3, result.RowCount)
}

func TestExecuteTimeout(t *testing.T) {
	exec := New(newTestDB(t), WithTimeout(time.Nanosecond))

	result, err := exec.Execute(context.Background(), "SELECT * FROM customers")
	assert.Nil(t, result)

	qerr, ok := AsQueryError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorTimeout, qerr.Kind)
	assert.Contains(t, qerr.Message, "timed out")
}

func TestExecuteRuntimeError(t *testing.T) {
	exec := New(newTestDB(t))

	result, err := exec.Execute(context.Background(), "SELECT * FROM missing_table")
	assert.Nil(t, result)

	qerr, ok := AsQueryError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorRuntime, qerr.Kind)
	assert.NotEmpty(t, qerr.Message)
}

func TestExecuteEmptyResult(t *testing.T) {
	exec := New(newTestDB(t))

	result, err := exec.Execute(context.Background(), "SELECT * FROM customers WHERE id = 999")
	require.NoError(t, err)

	assert.NotNil(t, result.Columns)
	assert.Empty(t, result.Columns)
	assert.NotNil(t, result.Rows)
	assert.Empty(t, result.Rows)
	assert.Equal(t, 0, result.RowCount)
}

func TestExecuteNoDatabase(t *testing.T) {
	exec := New(nil)

	result, err := exec.Execute(context.Background(), "SELECT 1")
	assert.Nil(t, result)

	qerr, ok := AsQueryError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorRuntime, qerr.Kind)
	assert.Equal(t, "No database loaded", qerr.Message)
}

func TestExecuteNormalizesValues(t *testing.T) {
	exec := New(newTestDB(t))

	result, err := exec.Execute(context.Background(),
		`SELECT id, name, 1.5 AS ratio, NULL AS "nothing" FROM customers WHERE id = 1`)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	assert.IsType(t, int64(0), row[0])
	assert.IsType(t, "", row[1])
	assert.IsType(t, float64(0), row[2])
	assert.Nil(t, row[3])
}

func TestExtractTables(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "single table",
			query: "SELECT * FROM customers",
			want:  []string{"customers"},
		},
		{
			name:  "join",
			query: "SELECT * FROM customers c JOIN orders o ON o.customer_id = c.id",
			want:  []string{"customers", "orders"},
		},
		{
			name:  "subquery dedupes",
			query: "SELECT * FROM orders WHERE customer_id IN (SELECT id FROM customers JOIN orders ON 1=1)",
			want:  []string{"orders", "customers"},
		},
		{
			name:  "case insensitive keywords",
			query: "select * from Customers left join ORDERS on 1=1",
			want:  []string{"Customers", "ORDERS"},
		},
		{
			name:  "no tables",
			query: "SELECT 1 + 1",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractTables(tt.query))
		})
	}
}

func TestKeywordDenylist(t *testing.T) {
	checker := NewKeywordDenylist()

	assert.Nil(t, checker.Check("SELECT * FROM t"))
	assert.Nil(t, checker.Check("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.Nil(t, checker.Check("SELECT created_at FROM t"))

	qerr := checker.Check("  delete from t  ")
	require.NotNil(t, qerr)
	assert.Equal(t, ErrorSyntax, qerr.Kind)
}
