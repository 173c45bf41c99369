package service_test

import (
	"context"
	"path/filepath"
	"testing"

	dbfs "github.com/garnizeh/buddyup/db"
	dbpkg "github.com/garnizeh/buddyup/internal/db"
	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/internal/repository/sqlstore"
	"github.com/garnizeh/buddyup/internal/service"
	"github.com/garnizeh/buddyup/pkg/apperr"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store       *sqlstore.Store
	users       *service.UserService
	connections *service.ConnectionService
	ads         *service.AdService
	messages    *service.MessageService
	feed        *service.FeedService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "service.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st := sqlstore.New(d, nil)
	repos := service.Repos{Users: st, Profiles: st, Connections: st, Ads: st, Messages: st, Feed: st}
	return &fixture{
		store:       st,
		users:       service.NewUserService(repos, nil).WithHashCost(bcrypt.MinCost),
		connections: service.NewConnectionService(repos, nil),
		ads:         service.NewAdService(repos, nil),
		messages:    service.NewMessageService(repos, nil),
		feed:        service.NewFeedService(repos, nil),
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), service.RegisterInput{Email: email, Password: "Passw0rd!", Name: email})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func wantCode(t *testing.T, err error, code apperr.Code) {
	t.Helper()
	if got := apperr.CodeOf(err); got != code {
		t.Fatalf("expected code %q, got %q (err=%v)", code, got, err)
	}
}
