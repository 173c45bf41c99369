package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/buddyup/internal/db"
	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/repository"
)

const connectionColumns = `id, sender_id, receiver_id, pair_key, status, created_at, updated_at, responded_at`

// pairKey identifies the unordered pair {a, b}.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

func (s *Store) CreateConnection(ctx context.Context, c *models.Connection) error {
	if c == nil {
		return fmt.Errorf("connection is nil")
	}
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Status == "" {
		c.Status = models.ConnectionPending
	}
	c.PairKey = pairKey(c.SenderID, c.ReceiverID)
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts

	_, err := s.db.Exec(ctx, `INSERT INTO connections (`+connectionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SenderID, c.ReceiverID, c.PairKey, c.Status, c.CreatedAt, c.UpdatedAt, c.RespondedAt)
	if db.IsUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (s *Store) GetConnectionByID(ctx context.Context, id string) (*models.Connection, error) {
	return s.getConnection(ctx, `SELECT `+connectionColumns+` FROM connections WHERE id = ?`, id)
}

// GetConnectionBetween returns the row for the pair in either direction.
func (s *Store) GetConnectionBetween(ctx context.Context, userA, userB string) (*models.Connection, error) {
	return s.getConnection(ctx, `SELECT `+connectionColumns+` FROM connections WHERE pair_key = ?`, pairKey(userA, userB))
}

func (s *Store) getConnection(ctx context.Context, query, arg string) (*models.Connection, error) {
	var c models.Connection
	if err := s.db.Get(ctx, &c, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// RespondToConnection moves a pending request addressed to receiverID into
// status. It reports false when no row matched.
func (s *Store) RespondToConnection(ctx context.Context, id, receiverID string, status models.ConnectionStatus, respondedAt int64) (bool, error) {
	res, err := s.db.Exec(ctx, `UPDATE connections SET status = ?, responded_at = ?, updated_at = ?
		WHERE id = ? AND receiver_id = ? AND status = ?`,
		status, respondedAt, respondedAt, id, receiverID, models.ConnectionPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListReceived returns requests addressed to userID, newest first. An empty
// status returns every state.
func (s *Store) ListReceived(ctx context.Context, userID string, status models.ConnectionStatus) ([]models.Connection, error) {
	out := []models.Connection{}
	var err error
	if status == "" {
		err = s.db.Select(ctx, &out, `SELECT `+connectionColumns+` FROM connections WHERE receiver_id = ? ORDER BY created_at DESC, id`, userID)
	} else {
		err = s.db.Select(ctx, &out, `SELECT `+connectionColumns+` FROM connections WHERE receiver_id = ? AND status = ? ORDER BY created_at DESC, id`, userID, status)
	}
	return out, err
}

func (s *Store) ListSent(ctx context.Context, userID string) ([]models.Connection, error) {
	out := []models.Connection{}
	err := s.db.Select(ctx, &out, `SELECT `+connectionColumns+` FROM connections WHERE sender_id = ? ORDER BY created_at DESC, id`, userID)
	return out, err
}

// ListAccepted returns accepted connections on either side, most recently updated first.
func (s *Store) ListAccepted(ctx context.Context, userID string) ([]models.Connection, error) {
	out := []models.Connection{}
	err := s.db.Select(ctx, &out, `SELECT `+connectionColumns+` FROM connections
		WHERE (sender_id = ? OR receiver_id = ?) AND status = ?
		ORDER BY updated_at DESC, id`, userID, userID, models.ConnectionAccepted)
	return out, err
}

func (s *Store) DeleteConnection(ctx context.Context, id string) error {
	return affected(s.db.Exec(ctx, `DELETE FROM connections WHERE id = ?`, id))
}

func (s *Store) CountAccepted(ctx context.Context, userID string) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM connections WHERE (sender_id = ? OR receiver_id = ?) AND status = ?`,
		userID, userID, models.ConnectionAccepted)
}

func (s *Store) CountPendingReceived(ctx context.Context, userID string) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM connections WHERE receiver_id = ? AND status = ?`, userID, models.ConnectionPending)
}

func (s *Store) CountPendingSent(ctx context.Context, userID string) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM connections WHERE sender_id = ? AND status = ?`, userID, models.ConnectionPending)
}
