package dispatch

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipy-dev/tipy/internal/csvio"
	"github.com/tipy-dev/tipy/internal/database"
	"github.com/tipy-dev/tipy/internal/plot"
	"github.com/tipy-dev/tipy/internal/session"
	"github.com/tipy-dev/tipy/internal/testutil"
)

func no(string) bool { return false }

func openDB(t *testing.T, path string) *Dispatcher {
	t.Helper()
	s, err := session.Open(context.Background(), session.Request{Mode: session.Edit, Path: path}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, Options{Logger: testutil.NewTestLogger(t), PlotsDir: filepath.Join(t.TempDir(), "plots")})
}

func openCSV(t *testing.T, content string) (*Dispatcher, string) {
	t.Helper()
	path := testutil.WriteFile(t, "data.csv", content)
	s, err := session.Open(context.Background(), session.Request{
		Mode: session.Edit, Path: path, Delimiter: ",", Encoding: "utf-8",
	}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	return New(s, Options{Logger: testutil.NewTestLogger(t), PlotsDir: filepath.Join(t.TempDir(), "plots")}), path
}

// withMock swaps the session connection for sqlmock once the tabs are loaded.
func withMock(t *testing.T, d *Dispatcher) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	d.Session().DB = database.New(db, testutil.NewTestLogger(t))
	return mock
}

func TestEdit_UpdatesExistingRow(t *testing.T) {
	ctx := context.Background()
	path := testutil.PeopleDB(t)
	d := openDB(t, path)

	require.NoError(t, d.Edit(ctx, 0, 1, "z"))

	assert.Equal(t, [][]string{{"1", "z"}, {"2", "b"}},
		testutil.QueryStrings(t, path, `SELECT id, name FROM people ORDER BY id`))
}

func TestEdit_IssuesExactlyOneUpdate(t *testing.T) {
	d := openDB(t, testutil.PeopleDB(t))
	mock := withMock(t, d)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "people"`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectExec(`UPDATE "people" SET "name" = \? WHERE "id" = \?$`).
		WithArgs("z", "1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, d.Edit(context.Background(), 0, 1, "z"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEdit_EqualColumnsAreLeftOutOfMatch(t *testing.T) {
	path := testutil.SeedSQLite(t, "pairs.db",
		`CREATE TABLE pairs (a TEXT, b TEXT, c TEXT)`,
		`INSERT INTO pairs VALUES ('x', 'y', 'q')`,
	)
	d := openDB(t, path)
	mock := withMock(t, d)

	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectExec(`UPDATE "pairs" SET "b" = \? WHERE "c" = \?$`).
		WithArgs("x", "q").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, d.Edit(context.Background(), 0, 1, "x"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEdit_NoMatchColumns(t *testing.T) {
	path := testutil.SeedSQLite(t, "pairs.db",
		`CREATE TABLE pairs (a TEXT, b TEXT)`,
		`INSERT INTO pairs VALUES ('x', 'y')`,
	)
	d := openDB(t, path)
	mock := withMock(t, d)
	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	err := d.Edit(context.Background(), 0, 1, "x")
	assert.ErrorIs(t, err, ErrNoMatchColumns)
	assert.NoError(t, mock.ExpectationsWereMet(), "no UPDATE is issued")
}

func TestEdit_NewRowStaysPendingUntilComplete(t *testing.T) {
	ctx := context.Background()
	d := openDB(t, testutil.PeopleDB(t))
	mock := withMock(t, d)

	row := d.AddRow()
	assert.Equal(t, 2, row)

	require.NoError(t, d.Edit(ctx, row, 0, "3"))
	require.NoError(t, mock.ExpectationsWereMet(), "incomplete rows issue no statement")

	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectExec(`INSERT INTO "people" \("id", "name"\) VALUES \(\?, \?\)`).
		WithArgs("3", "c").
		WillReturnResult(sqlmock.NewResult(3, 1))

	require.NoError(t, d.Edit(ctx, row, 1, "c"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEdit_NewRowIsInserted(t *testing.T) {
	ctx := context.Background()
	path := testutil.PeopleDB(t)
	d := openDB(t, path)

	row := d.AddRow()
	require.NoError(t, d.Edit(ctx, row, 0, "3"))
	require.NoError(t, d.Edit(ctx, row, 1, "c"))

	assert.Equal(t, [][]string{{"3"}}, testutil.QueryStrings(t, path, `SELECT COUNT(*) FROM people`))
	assert.Equal(t, "Tables: 1 | Rows: 3 | Columns: 2", d.Session().Status())
}

func TestEdit_ConstraintKeepsAttemptedValue(t *testing.T) {
	ctx := context.Background()
	path := testutil.PeopleDB(t)
	d := openDB(t, path)

	row := d.AddRow()
	require.NoError(t, d.Edit(ctx, row, 0, "1"))
	err := d.Edit(ctx, row, 1, "dup")
	require.ErrorIs(t, err, database.ErrConstraint)

	assert.Equal(t, "dup", d.Session().ActiveTab().Grid.Value(row, 1))
	assert.Equal(t, [][]string{{"2"}}, testutil.QueryStrings(t, path, `SELECT COUNT(*) FROM people`))
}

func TestSaveRoundTrip(t *testing.T) {
	d, path := openCSV(t, "id,name\n1,a\n")

	require.NoError(t, d.Edit(context.Background(), 0, 1, "z"))
	require.NoError(t, d.Save())

	got, err := csvio.Read(path, csvio.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, got.Headers)
	assert.Equal(t, [][]string{{"1", "z"}}, got.Rows)
}

func TestDeleteRow_Memory(t *testing.T) {
	ctx := context.Background()
	d, _ := openCSV(t, "id,name\n1,a\n2,b\n")
	g := d.Session().ActiveTab().Grid

	_, err := d.DeleteRow(ctx, Yes)
	assert.ErrorIs(t, err, ErrNoRowSelected)

	g.SelectRow(0)
	deleted, err := d.DeleteRow(ctx, no)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 2, g.RowCount())

	deleted, err = d.DeleteRow(ctx, Yes)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, [][]string{{"2", "b"}}, g.Table().Rows)
}

func TestDeleteRow_Database(t *testing.T) {
	ctx := context.Background()
	d := openDB(t, testutil.PeopleDB(t))
	mock := withMock(t, d)

	mock.ExpectExec(`DELETE FROM "people" WHERE "id" = \? AND "name" = \?`).
		WithArgs("2", "b").
		WillReturnResult(sqlmock.NewResult(0, 1))

	d.Session().ActiveTab().Grid.SelectRow(1)
	deleted, err := d.DeleteRow(ctx, Yes)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, d.Session().ActiveTab().Grid.RowCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRow_DatabaseNoMatchIsLogged(t *testing.T) {
	ctx := context.Background()
	d := openDB(t, testutil.PeopleDB(t))
	mock := withMock(t, d)
	var logs bytes.Buffer
	d.logger = slog.New(slog.NewTextHandler(&logs, nil))

	mock.ExpectExec(`DELETE FROM "people"`).
		WithArgs("2", "b").
		WillReturnResult(sqlmock.NewResult(0, 0))

	d.Session().ActiveTab().Grid.SelectRow(1)
	deleted, err := d.DeleteRow(ctx, Yes)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, d.Session().ActiveTab().Grid.RowCount())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "no stored row matched")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunSQL(t *testing.T) {
	ctx := context.Background()
	path := testutil.PeopleDB(t)
	d := openDB(t, path)
	g := d.Session().ActiveTab().Grid

	require.NoError(t, d.RunSQL(ctx, `INSERT INTO people VALUES (3, 'c')`))
	assert.Equal(t, 3, g.RowCount(), "active tab is refreshed")

	err := d.RunSQL(ctx, `DELETE FROM nowhere`)
	require.ErrorIs(t, err, database.ErrInvalidSQL)
	assert.Equal(t, 3, g.RowCount())

	require.NoError(t, d.RunSQL(ctx, `CREATE TABLE extra (v TEXT)`))
	require.NoError(t, d.Reload(ctx))
	assert.Len(t, d.Session().Tabs, 2)
}

func TestRunSQL_NotSupportedForCSV(t *testing.T) {
	d, _ := openCSV(t, "a\n1\n")
	assert.ErrorIs(t, d.RunSQL(context.Background(), "SELECT 1"), ErrNotSupported)
}

func TestCreateMode(t *testing.T) {
	s, err := session.Open(context.Background(), session.Request{Mode: session.Create, Delimiter: ";", Encoding: "cp1251"}, nil)
	require.NoError(t, err)
	d := New(s, Options{})

	idx, err := d.AddColumn("")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	_, err = d.AddColumn("name")
	require.NoError(t, err)

	row := d.AddRow()
	require.NoError(t, d.Edit(context.Background(), row, 1, "Иван"))

	assert.ErrorIs(t, d.Save(), ErrNeedsPath)

	out := filepath.Join(t.TempDir(), "new.csv")
	require.NoError(t, d.SaveAs(out))
	got, err := csvio.Read(out, csvio.Options{Delimiter: ';', Encoding: "cp1251"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "name"}, got.Headers)
	assert.Equal(t, [][]string{{"", "Иван"}}, got.Rows)

	require.NoError(t, d.Save(), "the tab remembers its file after save as")

	tab, err := d.AddTab("")
	require.NoError(t, err)
	assert.Equal(t, "page 2", tab.Name)
	closed, err := d.CloseTab(Yes)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Len(t, s.Tabs, 1)
}

func TestCapabilityChecks(t *testing.T) {
	d := openDB(t, testutil.PeopleDB(t))

	_, err := d.AddColumn("")
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = d.AddTab("")
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = d.CloseTab(Yes)
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.NoError(t, d.Save(), "database tabs are saved on every edit")
}

func TestAddTab_CSV(t *testing.T) {
	d, _ := openCSV(t, "a\n1\n")

	_, err := d.AddTab("")
	assert.ErrorIs(t, err, session.ErrMissingField)

	other := testutil.WriteFile(t, "other.csv", "b\n2\n")
	tab, err := d.AddTab(other)
	require.NoError(t, err)
	assert.Equal(t, "other", tab.Name)
	require.NoError(t, d.SelectTab(0))
}

func TestPlot(t *testing.T) {
	d, _ := openCSV(t, "x,y,label\n1,2,a\n2,4,b\n")

	path, kind, err := d.Plot("x", "y")
	require.NoError(t, err)
	assert.Equal(t, plot.Line, kind)
	assert.Equal(t, filepath.Join(d.PlotsDir(), "x_to_y.png"), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	_, _, err = d.Plot("label", "label")
	assert.ErrorIs(t, err, plot.ErrNotNumeric)

	_, _, err = d.Plot("missing", "y")
	assert.Error(t, err)
}

func TestOpen_ReplacesSession(t *testing.T) {
	ctx := context.Background()
	d, _ := openCSV(t, "a\n1\n")

	err := d.Open(ctx, session.Request{Mode: session.Edit, Path: "/does/not/exist.csv", Delimiter: ",", Encoding: "utf-8"})
	require.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, "data", d.Session().ActiveTab().Name, "failed open keeps the old session")

	path := testutil.PeopleDB(t)
	require.NoError(t, d.Open(ctx, session.Request{Mode: session.Edit, Path: path}))
	t.Cleanup(func() { _ = d.Session().Close() })

	require.NoError(t, d.Edit(ctx, 1, 1, "q"))
	assert.Equal(t, [][]string{{"q"}}, testutil.QueryStrings(t, path, `SELECT name FROM people WHERE id = 2`))
}

func TestClassify(t *testing.T) {
	sev, msg := Classify(ErrNoRowSelected)
	assert.Equal(t, SeverityWarning, sev)
	assert.Equal(t, "Select a row!", msg)

	sev, _ = Classify(database.ErrConstraint)
	assert.Equal(t, SeverityError, sev)

	_, msg = Classify(plot.ErrNotNumeric)
	assert.Contains(t, msg, "numeric")
}

func TestReload_CSVDropsUnsavedEdits(t *testing.T) {
	ctx := context.Background()
	d, path := openCSV(t, "id,name\n1,a\n")

	require.NoError(t, d.Edit(ctx, 0, 1, "unsaved"))
	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,b\n"), 0o600))
	require.NoError(t, d.Reload(ctx))

	assert.Equal(t, "b", d.Session().ActiveTab().Grid.Value(0, 1))
}
