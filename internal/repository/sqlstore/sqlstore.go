// Package sqlstore implements the pkg/repository interfaces on top of
// internal/db. The same SQL runs on SQLite and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/garnizeh/buddyup/internal/db"
	"github.com/garnizeh/buddyup/pkg/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Store implements repository interfaces using the internal DB wrapper.
type Store struct {
	db     *db.DB
	logger *slog.Logger
}

var (
	_ repository.UserRepo       = (*Store)(nil)
	_ repository.ProfileRepo    = (*Store)(nil)
	_ repository.ConnectionRepo = (*Store)(nil)
	_ repository.AdRepo         = (*Store)(nil)
	_ repository.MessageRepo    = (*Store)(nil)
	_ repository.FeedRepo       = (*Store)(nil)
)

func New(d *db.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{db: d, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

func newID() string {
	return uuid.NewString()
}

func txExec(ctx context.Context, tx *sqlx.Tx, query string, args ...any) (sql.Result, error) {
	return tx.ExecContext(ctx, tx.Rebind(query), args...)
}

func txGet(ctx context.Context, tx *sqlx.Tx, dest any, query string, args ...any) error {
	return tx.GetContext(ctx, dest, tx.Rebind(query), args...)
}

// affected turns a zero-row mutation into repository.ErrNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// logTxFailure records a rolled back transaction. Duplicate and not-found
// outcomes are expected results and are not logged.
func (s *Store) logTxFailure(op string, err error, attrs ...any) {
	if errors.Is(err, repository.ErrDuplicate) || errors.Is(err, repository.ErrNotFound) {
		return
	}
	s.logger.Warn(op+" rolled back", append(attrs, slog.Any("err", err))...)
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
