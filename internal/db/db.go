package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// UnicodeLower is registered on SQLite connections. The built-in LOWER only
// folds ASCII letters.
const UnicodeLower = "unicode_lower"

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
	if err := sqlite.RegisterDeterministicScalarFunction(UnicodeLower, 1, unicodeLower); err != nil {
		panic(err)
	}
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// DB wraps sqlx.DB for connection management. Queries are written with '?'
// placeholders and rebound for the active driver.
type DB struct {
	conn   *sqlx.DB
	driver string
	logger *slog.Logger
}

// New opens a SQLite database.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*DB, error) {
	return Open(ctx, DriverSQLite, dsn, logger)
}

// Open creates a new DB connection for the given driver and pings it.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	d := NewFromConn(conn.DB, driver, logger)
	if driver == DriverSQLite {
		// single connection: writers queue on the pool instead of failing with SQLITE_BUSY
		conn.SetMaxOpenConns(1)
		for _, pragma := range []string{`PRAGMA foreign_keys = ON`, `PRAGMA busy_timeout = 5000`} {
			if _, err := conn.ExecContext(ctx, pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	d.logger.Debug("database opened", slog.String("driver", driver))
	return d, nil
}

// NewFromConn wraps an already opened *sql.DB.
func NewFromConn(conn *sql.DB, driver string, logger *slog.Logger) *DB {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &DB{conn: sqlx.NewDb(conn, driver), driver: driver, logger: logger}
}

// Close closes the DB connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver returns the driver name the DB was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Exec executes a query
func (db *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.conn.Rebind(query), args...)
}

// QueryRow executes a query that is expected to return at most one row
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.conn.Rebind(query), args...)
}

// Get scans a single row into dest.
func (db *DB) Get(ctx context.Context, dest any, query string, args ...any) error {
	return db.conn.GetContext(ctx, dest, db.conn.Rebind(query), args...)
}

// Select scans all rows into dest, which must be a pointer to a slice.
func (db *DB) Select(ctx context.Context, dest any, query string, args ...any) error {
	return db.conn.SelectContext(ctx, dest, db.conn.Rebind(query), args...)
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise. Inside fn every statement must go through tx.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Lower wraps a column expression in a case-folding call that handles
// non-ASCII text on the active driver.
func (db *DB) Lower(expr string) string {
	if db.driver == DriverSQLite {
		return UnicodeLower + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

// Builder returns a squirrel statement builder using the driver's placeholder format.
func (db *DB) Builder() squirrel.StatementBuilderType {
	if db.driver == DriverPostgres {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// GetConn returns the underlying sqlx.DB
func (db *DB) GetConn() *sqlx.DB {
	return db.conn
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		code := sqErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}
