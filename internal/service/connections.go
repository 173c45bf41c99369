package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/apperr"
	"github.com/garnizeh/buddyup/pkg/repository"
	"golang.org/x/sync/errgroup"
)

type ConnectionService struct {
	users  repository.UserRepo
	conns  repository.ConnectionRepo
	logger *slog.Logger
}

func NewConnectionService(repos Repos, logger *slog.Logger) *ConnectionService {
	return &ConnectionService{users: repos.Users, conns: repos.Connections, logger: orDiscard(logger)}
}

// Send creates a pending request from senderID to receiverID. Any existing
// row for the pair, in either direction and in any state, blocks a new one.
func (s *ConnectionService) Send(ctx context.Context, senderID, receiverID string) (*models.Connection, error) {
	if senderID == receiverID {
		return nil, apperr.InvalidArg("cannot send a connection request to yourself")
	}
	sender, err := requireUser(ctx, s.users, senderID, "sender")
	if err != nil {
		return nil, err
	}
	receiver, err := requireUser(ctx, s.users, receiverID, "receiver")
	if err != nil {
		return nil, err
	}

	existing, err := s.conns.GetConnectionBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, storeErr("lookup connection", err)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("connection already exists")
	}

	c := &models.Connection{SenderID: senderID, ReceiverID: receiverID, Status: models.ConnectionPending}
	if err := s.conns.CreateConnection(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.AlreadyExists("connection already exists")
		}
		return nil, storeErr("create connection", err)
	}

	c.Sender, c.Receiver = sender.Summary(), receiver.Summary()
	s.logger.Info("connection requested", slog.String("connection_id", c.ID))
	return c, nil
}

// Respond accepts or rejects a pending request addressed to userID.
func (s *ConnectionService) Respond(ctx context.Context, userID, connectionID string, status models.ConnectionStatus) (*models.Connection, error) {
	if status != models.ConnectionAccepted && status != models.ConnectionRejected {
		return nil, apperr.InvalidArg("status must be accepted or rejected")
	}

	ok, err := s.conns.RespondToConnection(ctx, connectionID, userID, status, nowMillis())
	if err != nil {
		return nil, storeErr("respond to connection", err)
	}

	c, err := s.conns.GetConnectionByID(ctx, connectionID)
	if err != nil {
		return nil, storeErr("load connection", err)
	}
	if !ok {
		switch {
		case c == nil:
			return nil, apperr.NotFound("connection request not found")
		case c.ReceiverID != userID:
			return nil, apperr.Forbidden("only the receiver can respond to a connection request")
		default:
			return nil, apperr.InvalidArg("connection request already " + string(c.Status))
		}
	}
	if c == nil {
		return nil, apperr.NotFound("connection request not found")
	}

	if err := s.embed(ctx, []*models.Connection{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// Requests lists pending requests addressed to userID with the sender embedded.
func (s *ConnectionService) Requests(ctx context.Context, userID string) ([]models.Connection, error) {
	list, err := s.conns.ListReceived(ctx, userID, models.ConnectionPending)
	if err != nil {
		return nil, storeErr("list requests", err)
	}
	return list, s.embedList(ctx, list)
}

// Sent lists requests made by userID with the receiver embedded.
func (s *ConnectionService) Sent(ctx context.Context, userID string) ([]models.Connection, error) {
	list, err := s.conns.ListSent(ctx, userID)
	if err != nil {
		return nil, storeErr("list sent requests", err)
	}
	return list, s.embedList(ctx, list)
}

// Connections lists accepted connections on either side.
func (s *ConnectionService) Connections(ctx context.Context, userID string) ([]models.Connection, error) {
	list, err := s.conns.ListAccepted(ctx, userID)
	if err != nil {
		return nil, storeErr("list connections", err)
	}
	return list, s.embedList(ctx, list)
}

// Remove deletes a connection the caller takes part in.
func (s *ConnectionService) Remove(ctx context.Context, userID, connectionID string) error {
	c, err := s.conns.GetConnectionByID(ctx, connectionID)
	if err != nil {
		return storeErr("load connection", err)
	}
	if c == nil || (c.SenderID != userID && c.ReceiverID != userID) {
		return apperr.NotFound("connection not found")
	}
	if err := s.conns.DeleteConnection(ctx, connectionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("connection not found")
		}
		return storeErr("delete connection", err)
	}
	return nil
}

// Status returns the state between the two users, nil when they never connected.
func (s *ConnectionService) Status(ctx context.Context, userID, otherID string) (*models.ConnectionStatus, error) {
	c, err := s.conns.GetConnectionBetween(ctx, userID, otherID)
	if err != nil {
		return nil, storeErr("lookup connection", err)
	}
	if c == nil {
		return nil, nil
	}
	status := c.Status
	return &status, nil
}

// Stats runs the three counters concurrently.
func (s *ConnectionService) Stats(ctx context.Context, userID string) (*models.ConnectionStats, error) {
	var stats models.ConnectionStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalConnections, err = s.conns.CountAccepted(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingRequests, err = s.conns.CountPendingReceived(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.SentRequests, err = s.conns.CountPendingSent(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr("connection stats", err)
	}
	return &stats, nil
}

func (s *ConnectionService) embedList(ctx context.Context, list []models.Connection) error {
	ptrs := make([]*models.Connection, len(list))
	for i := range list {
		ptrs[i] = &list[i]
	}
	return s.embed(ctx, ptrs)
}

func (s *ConnectionService) embed(ctx context.Context, list []*models.Connection) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list)*2)
	for _, c := range list {
		ids = append(ids, c.SenderID, c.ReceiverID)
	}
	sums, err := summariesFor(ctx, s.users, ids)
	if err != nil {
		return err
	}
	for _, c := range list {
		c.Sender = sums[c.SenderID]
		c.Receiver = sums[c.ReceiverID]
	}
	return nil
}
