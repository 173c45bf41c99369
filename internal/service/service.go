// Package service holds the business rules of BuddyUp. Services validate
// input, enforce ownership and translate storage failures into apperr codes.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/apperr"
	"github.com/garnizeh/buddyup/pkg/repository"
)

// Repos bundles the storage the services depend on. A *sqlstore.Store
// satisfies every field.
type Repos struct {
	Users       repository.UserRepo
	Profiles    repository.ProfileRepo
	Connections repository.ConnectionRepo
	Ads         repository.AdRepo
	Messages    repository.MessageRepo
	Feed        repository.FeedRepo
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return logger
}

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

// storeErr wraps an unexpected repository failure.
func storeErr(op string, err error) error {
	return apperr.Internal(op, err)
}

// requireUser loads a user or fails with NotFound.
func requireUser(ctx context.Context, users repository.UserRepo, id, what string) (*models.User, error) {
	u, err := users.GetUserByID(ctx, id)
	if err != nil {
		return nil, storeErr("load "+what, err)
	}
	if u == nil {
		return nil, apperr.NotFound(what + " not found")
	}
	return u, nil
}

func summariesFor(ctx context.Context, users repository.UserRepo, ids []string) (map[string]*models.UserSummary, error) {
	sums, err := users.ListUserSummaries(ctx, ids)
	if err != nil {
		return nil, storeErr("load users", err)
	}
	return sums, nil
}
