package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/repository"
)

const messageColumns = `id, sender_id, receiver_id, type, job_title, content, seen, created_at, updated_at`

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	if m == nil {
		return fmt.Errorf("message is nil")
	}
	if m.ID == "" {
		m.ID = newID()
	}
	if m.Type == "" {
		m.Type = models.MessageTypeMessage
	}
	ts := now()
	m.CreatedAt, m.UpdatedAt = ts, ts

	_, err := s.db.Exec(ctx, `INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.SenderID, m.ReceiverID, m.Type, m.JobTitle, m.Content, m.Seen, m.CreatedAt, m.UpdatedAt)
	return err
}

func (s *Store) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	if err := s.db.Get(ctx, &m, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListMessages returns the messages matching every non-empty field of f, newest first.
func (s *Store) ListMessages(ctx context.Context, f repository.MessageFilter) ([]models.Message, error) {
	sel := s.db.Builder().Select(messageColumns).From("messages")
	if f.SenderID != "" {
		sel = sel.Where(squirrel.Eq{"sender_id": f.SenderID})
	}
	if f.ReceiverID != "" {
		sel = sel.Where(squirrel.Eq{"receiver_id": f.ReceiverID})
	}
	if f.Participant != "" {
		sel = sel.Where(squirrel.Or{squirrel.Eq{"sender_id": f.Participant}, squirrel.Eq{"receiver_id": f.Participant}})
	}
	if f.Type != "" {
		sel = sel.Where(squirrel.Eq{"type": string(f.Type)})
	}

	query, args, err := sel.OrderBy("created_at DESC", "id").ToSql()
	if err != nil {
		return nil, err
	}
	out := []models.Message{}
	if err := s.db.Select(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SetMessageSeen(ctx context.Context, id string, seen bool) error {
	return affected(s.db.Exec(ctx, `UPDATE messages SET seen = ?, updated_at = ? WHERE id = ?`, seen, now(), id))
}

func (s *Store) DeleteMessage(ctx context.Context, id string) error {
	return affected(s.db.Exec(ctx, `DELETE FROM messages WHERE id = ?`, id))
}
