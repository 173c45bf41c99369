package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	dbpkg "github.com/garnizeh/buddyup/internal/db"
	"github.com/jmoiron/sqlx"
)

func openTemp(t *testing.T) *dbpkg.DB {
	t.Helper()
	d, err := dbpkg.New(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestNew_Close_GetConn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d, err := dbpkg.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if d.GetConn() == nil {
		t.Fatalf("expected non-nil sqlx.DB from GetConn")
	}
	if d.Driver() != dbpkg.DriverSQLite {
		t.Fatalf("unexpected driver %q", d.Driver())
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := dbpkg.Open(context.Background(), "mysql", "whatever", nil); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestExec_QueryRow_Get_Select(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	if _, err := d.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT UNIQUE)`); err != nil {
		t.Fatalf("Exec create table returned error: %v", err)
	}

	res, err := d.Exec(ctx, `INSERT INTO items (name) VALUES (?)`, "foo")
	if err != nil {
		t.Fatalf("Exec insert returned error: %v", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil || lastID == 0 {
		t.Fatalf("expected last insert id > 0, got %d (%v)", lastID, err)
	}

	var name string
	if err := d.QueryRow(ctx, `SELECT name FROM items WHERE id = ?`, lastID).Scan(&name); err != nil {
		t.Fatalf("QueryRow scan returned error: %v", err)
	}
	if name != "foo" {
		t.Fatalf("expected name 'foo' got %q", name)
	}

	if _, err := d.Exec(ctx, `INSERT INTO items (name) VALUES (?)`, "bar"); err != nil {
		t.Fatalf("insert bar: %v", err)
	}

	var names []string
	if err := d.Select(ctx, &names, `SELECT name FROM items ORDER BY name`); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(names) != 2 || names[0] != "bar" {
		t.Fatalf("unexpected names %v", names)
	}

	var count int
	if err := d.Get(ctx, &count, `SELECT COUNT(*) FROM items`); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows got %d", count)
	}

	_, err = d.Exec(ctx, `INSERT INTO items (name) VALUES (?)`, "foo")
	if !dbpkg.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if dbpkg.IsUniqueViolation(errors.New("other")) || dbpkg.IsUniqueViolation(nil) {
		t.Fatalf("IsUniqueViolation must be false for foreign errors and nil")
	}
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	if _, err := d.Exec(ctx, `CREATE TABLE counters (name TEXT PRIMARY KEY, n INTEGER NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	err := d.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO counters (name, n) VALUES ('a', 1)`)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx commit path: %v", err)
	}

	boom := errors.New("boom")
	err = d.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE counters SET n = n + 1 WHERE name = 'a'`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error to be returned, got %v", err)
	}

	var n int
	if err := d.Get(ctx, &n, `SELECT n FROM counters WHERE name = 'a'`); err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected rollback to keep n=1, got %d", n)
	}
}

func TestBuilderPlaceholders(t *testing.T) {
	d := openTemp(t)
	q, args, err := d.Builder().Select("id").From("ads").Where("user_id = ?", "u1").ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if q != "SELECT id FROM ads WHERE user_id = ?" || len(args) != 1 {
		t.Fatalf("unexpected sql %q args %v", q, args)
	}
}

func TestLower_FoldsNonASCII(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	expr := d.Lower("?")
	if expr != dbpkg.UnicodeLower+"(?)" {
		t.Fatalf("unexpected sqlite expression %q", expr)
	}

	tests := []struct{ in, want string }{
		{"ÉCOLE", "école"},
		{"Zürich", "zürich"},
		{"ΑΘΗΝΑ", "αθηνα"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		var got string
		if err := d.Get(ctx, &got, `SELECT `+expr, tt.in); err != nil {
			t.Fatalf("select %s: %v", expr, err)
		}
		if got != tt.want {
			t.Fatalf("%s(%q) = %q, want %q", dbpkg.UnicodeLower, tt.in, got, tt.want)
		}
	}

	var isNull bool
	if err := d.Get(ctx, &isNull, `SELECT `+expr+` IS NULL`, nil); err != nil || !isNull {
		t.Fatalf("expected NULL to pass through, got %v (%v)", isNull, err)
	}

	if pg := dbpkg.NewFromConn(nil, dbpkg.DriverPostgres, nil).Lower("a.title"); pg != "LOWER(a.title)" {
		t.Fatalf("unexpected postgres expression %q", pg)
	}
}
