package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/apperr"
	"github.com/garnizeh/buddyup/pkg/repository"
)

type MessageService struct {
	users    repository.UserRepo
	messages repository.MessageRepo
	logger   *slog.Logger
}

func NewMessageService(repos Repos, logger *slog.Logger) *MessageService {
	return &MessageService{users: repos.Users, messages: repos.Messages, logger: orDiscard(logger)}
}

type CreateMessageInput struct {
	ReceiverID string
	Type       string
	JobTitle   string
	Content    string
}

type UpdateMessageInput struct {
	Seen *bool
}

func parseMessageType(t string) (models.MessageType, error) {
	switch models.MessageType(strings.TrimSpace(t)) {
	case "", models.MessageTypeMessage:
		return models.MessageTypeMessage, nil
	case models.MessageTypeApplying:
		return models.MessageTypeApplying, nil
	default:
		return "", apperr.InvalidArg("type must be message or applying")
	}
}

func (s *MessageService) Create(ctx context.Context, senderID string, in CreateMessageInput) (*models.Message, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.InvalidArg("content is required")
	}
	typ, err := parseMessageType(in.Type)
	if err != nil {
		return nil, err
	}
	receiver, err := requireUser(ctx, s.users, in.ReceiverID, "receiver")
	if err != nil {
		return nil, err
	}
	sender, err := requireUser(ctx, s.users, senderID, "sender")
	if err != nil {
		return nil, err
	}

	m := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		Type:       typ,
		JobTitle:   strings.TrimSpace(in.JobTitle),
		Content:    in.Content,
	}
	if err := s.messages.CreateMessage(ctx, m); err != nil {
		return nil, storeErr("create message", err)
	}
	m.Sender, m.Receiver = sender.Summary(), receiver.Summary()
	return m, nil
}

// FindAll lists messages sent or received by userID, optionally of one type.
func (s *MessageService) FindAll(ctx context.Context, userID, typ string) ([]models.Message, error) {
	f := repository.MessageFilter{Participant: userID}
	if strings.TrimSpace(typ) != "" {
		t, err := parseMessageType(typ)
		if err != nil {
			return nil, err
		}
		f.Type = t
	}
	return s.list(ctx, f)
}

func (s *MessageService) FindBySender(ctx context.Context, userID string) ([]models.Message, error) {
	return s.list(ctx, repository.MessageFilter{SenderID: userID})
}

func (s *MessageService) FindByReceiver(ctx context.Context, userID string) ([]models.Message, error) {
	return s.list(ctx, repository.MessageFilter{ReceiverID: userID})
}

func (s *MessageService) list(ctx context.Context, f repository.MessageFilter) ([]models.Message, error) {
	list, err := s.messages.ListMessages(ctx, f)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	ids := make([]string, 0, len(list)*2)
	for _, m := range list {
		ids = append(ids, m.SenderID, m.ReceiverID)
	}
	sums, err := summariesFor(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Sender = sums[list[i].SenderID]
		list[i].Receiver = sums[list[i].ReceiverID]
	}
	return list, nil
}

// FindOne returns a message to one of its participants.
func (s *MessageService) FindOne(ctx context.Context, id, userID string) (*models.Message, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.SenderID != userID && m.ReceiverID != userID {
		return nil, apperr.Forbidden("not a participant of this message")
	}
	sums, err := summariesFor(ctx, s.users, []string{m.SenderID, m.ReceiverID})
	if err != nil {
		return nil, err
	}
	m.Sender, m.Receiver = sums[m.SenderID], sums[m.ReceiverID]
	return m, nil
}

// Update changes the seen flag. Only the receiver may do it.
func (s *MessageService) Update(ctx context.Context, id, userID string, in UpdateMessageInput) (*models.Message, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Seen != nil {
		if m.ReceiverID != userID {
			return nil, apperr.Forbidden("only the receiver can mark a message as seen")
		}
		if err := s.messages.SetMessageSeen(ctx, id, *in.Seen); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.NotFound("message not found")
			}
			return nil, storeErr("update message", err)
		}
	} else if m.SenderID != userID && m.ReceiverID != userID {
		return nil, apperr.Forbidden("not a participant of this message")
	}
	return s.FindOne(ctx, id, userID)
}

func (s *MessageService) MarkSeen(ctx context.Context, id, userID string) (*models.Message, error) {
	seen := true
	return s.Update(ctx, id, userID, UpdateMessageInput{Seen: &seen})
}

func (s *MessageService) Remove(ctx context.Context, id, userID string) error {
	m, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if m.SenderID != userID && m.ReceiverID != userID {
		return apperr.Forbidden("not a participant of this message")
	}
	if err := s.messages.DeleteMessage(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("message not found")
		}
		return storeErr("delete message", err)
	}
	return nil
}

func (s *MessageService) load(ctx context.Context, id string) (*models.Message, error) {
	m, err := s.messages.GetMessageByID(ctx, id)
	if err != nil {
		return nil, storeErr("load message", err)
	}
	if m == nil {
		return nil, apperr.NotFound("message not found")
	}
	return m, nil
}
