package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/garnizeh/buddyup/internal/db"
	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/repository"
)

const userColumns = `id, email, password_hash, name, job_title, short_bio, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	if u.ID == "" {
		u.ID = newID()
	}
	ts := now()
	u.CreatedAt, u.UpdatedAt = ts, ts

	_, err := s.db.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.JobTitle, u.ShortBio, u.CreatedAt, u.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (*models.User, error) {
	var u models.User
	if err := s.db.Get(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	u.UpdatedAt = now()
	return affected(s.db.Exec(ctx, `UPDATE users SET name = ?, job_title = ?, short_bio = ?, updated_at = ? WHERE id = ?`,
		u.Name, u.JobTitle, u.ShortBio, u.UpdatedAt, u.ID))
}

// ListUserSummaries loads the public view of the given users keyed by id.
// Unknown ids are absent from the result.
func (s *Store) ListUserSummaries(ctx context.Context, ids []string) (map[string]*models.UserSummary, error) {
	out := map[string]*models.UserSummary{}
	ids = uniq(ids)
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := s.db.Builder().
		Select("id", "name", "email", "job_title").
		From("users").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []models.UserSummary
	if err := s.db.Select(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}
