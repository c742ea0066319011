// Package database wraps the single SQLite connection a session owns.
//
// Statements generated by TIPY bind every value as a parameter and quote
// every identifier. Free-form statements typed by the user go through Exec
// unchanged; that path is a deliberate trust boundary of the query tool.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tipy-dev/tipy/internal/table"
)

// Errors returned by this package.
var (
	ErrNotConnected = errors.New("database connection not established")
	ErrConstraint   = errors.New("constraint violation")
	ErrInvalidSQL   = errors.New("invalid SQL statement")
)

// Match is one `column = value` term of a WHERE clause.
type Match struct {
	Column string
	Value  string
}

// DB is a SQLite database file opened by a session.
type DB struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open connects to the SQLite file at path. The pool is capped at one
// connection so every tab shares the same session connection.
func Open(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	d := New(db, logger)
	d.path = path
	d.logger.Debug("opened database", "path", path)
	return d, nil
}

// New wraps an existing connection.
func New(db *sql.DB, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DB{db: db, logger: logger}
}

// Path returns the file the connection was opened on.
func (d *DB) Path() string { return d.path }

// Close closes the connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	d.logger.Debug("closing database connection", "path", d.path)
	err := d.db.Close()
	d.db = nil
	return err
}

// Tables lists user tables in creation order.
func (d *DB) Tables(ctx context.Context) ([]string, error) {
	if d.db == nil {
		return nil, ErrNotConnected
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return names, nil
}

// Columns returns the column names of a table in declaration order.
func (d *DB) Columns(ctx context.Context, tableName string) ([]string, error) {
	if d.db == nil {
		return nil, ErrNotConnected
	}
	//nolint:gosec // identifier is quoted
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		var (
			cid         int
			name, typ   string
			notNull, pk int
			dflt        sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column info: %w", err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found", tableName)
	}
	return cols, nil
}

// Load reads the schema and every row of a table.
func (d *DB) Load(ctx context.Context, tableName string) (*table.Table, error) {
	headers, err := d.Columns(ctx, tableName)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // identifier is quoted
	rows, err := d.db.QueryContext(ctx, "SELECT * FROM "+QuoteIdent(tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	var data [][]string
	for rows.Next() {
		values := make([]any, len(headers))
		ptrs := make([]any, len(headers))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", tableName, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", tableName, err)
	}

	d.logger.Debug("loaded table", "table", tableName, "rows", len(data), "columns", len(headers))
	return table.New(tableName, headers, data), nil
}

// LoadAll loads every user table.
func (d *DB) LoadAll(ctx context.Context) ([]*table.Table, error) {
	names, err := d.Tables(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*table.Table, 0, len(names))
	for _, name := range names {
		t, err := d.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Count returns the number of rows stored in a table.
func (d *DB) Count(ctx context.Context, tableName string) (int, error) {
	if d.db == nil {
		return 0, ErrNotConnected
	}
	var n int
	//nolint:gosec // identifier is quoted
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+QuoteIdent(tableName)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", tableName, err)
	}
	return n, nil
}

// Update sets column to value on the rows matching every term of where.
func (d *DB) Update(ctx context.Context, tableName, column, value string, where []Match) (int64, error) {
	if len(where) == 0 {
		return 0, errors.New("update without match condition")
	}
	cond, args := whereClause(where)
	stmt := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s", QuoteIdent(tableName), QuoteIdent(column), cond)
	return d.write(ctx, stmt, append([]any{value}, args...))
}

// Insert adds one row.
func (d *DB) Insert(ctx context.Context, tableName string, columns, values []string) error {
	if len(columns) != len(values) {
		return fmt.Errorf("insert into %s: %d columns but %d values", tableName, len(columns), len(values))
	}
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	args := make([]any, len(values))
	for i, c := range columns {
		quoted[i] = QuoteIdent(c)
		marks[i] = "?"
		args[i] = values[i]
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(tableName), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	_, err := d.write(ctx, stmt, args)
	return err
}

// Delete removes the rows matching every term of where.
func (d *DB) Delete(ctx context.Context, tableName string, where []Match) (int64, error) {
	if len(where) == 0 {
		return 0, errors.New("delete without match condition")
	}
	cond, args := whereClause(where)
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s", QuoteIdent(tableName), cond)
	return d.write(ctx, stmt, args)
}

// Exec runs a user-supplied statement verbatim.
func (d *DB) Exec(ctx context.Context, stmt string) error {
	if d.db == nil {
		return ErrNotConnected
	}
	d.logger.Debug("executing user statement", "sql", stmt)
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		if IsConstraint(err) {
			return fmt.Errorf("%w: %v", ErrConstraint, err)
		}
		return fmt.Errorf("%w: %v", ErrInvalidSQL, err)
	}
	return nil
}

func (d *DB) write(ctx context.Context, stmt string, args []any) (int64, error) {
	if d.db == nil {
		return 0, ErrNotConnected
	}
	d.logger.Debug("executing statement", "sql", stmt, "args", len(args))
	res, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		if IsConstraint(err) {
			return 0, fmt.Errorf("%w: %v", ErrConstraint, err)
		}
		return 0, fmt.Errorf("failed to execute statement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil //nolint:nilerr // affected count is informational
	}
	return n, nil
}

func whereClause(where []Match) (string, []any) {
	terms := make([]string, len(where))
	args := make([]any, len(where))
	for i, m := range where {
		terms[i] = QuoteIdent(m.Column) + " = ?"
		args[i] = m.Value
	}
	return strings.Join(terms, " AND "), args
}

// IsConstraint reports whether err is a SQLite constraint violation.
func IsConstraint(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return strings.Contains(err.Error(), "constraint failed")
}

// QuoteIdent quotes a SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// FormatValue renders a scanned SQLite value as grid text. NULL renders as
// an empty cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", x)
	}
}
