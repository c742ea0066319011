package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"
)

// WriteFile creates name under a fresh temp dir and returns its path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// SeedSQLite creates a SQLite file under a temp dir, runs stmts against it
// and returns its path.
func SeedSQLite(t testing.TB, name string, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
	return path
}

// PeopleDB seeds the two-row people table most database tests start from.
func PeopleDB(t testing.TB) string {
	t.Helper()
	return SeedSQLite(t, "people.db",
		`CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`INSERT INTO people (id, name) VALUES (1, 'a'), (2, 'b')`,
	)
}

// QueryStrings runs a query against the SQLite file at path and returns each
// row rendered as strings.
func QueryStrings(t testing.TB, path, query string, args ...any) [][]string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows, err := db.Query(query, args...)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	require.NoError(t, err)

	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String
		}
		out = append(out, row)
	}
	require.NoError(t, rows.Err())
	return out
}
