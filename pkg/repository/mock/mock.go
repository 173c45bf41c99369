package mock

import (
	"context"
	"strconv"
	"sync"

	"github.com/garnizeh/buddyup/internal/models"
)

// Test helpers and mocks
type Mocks struct {
	UserRepo *mockUserRepo
	ProfRepo *mockProfileRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo: &mockUserRepo{byID: map[string]*models.User{}},
		ProfRepo: &mockProfileRepo{byUser: map[string]*models.Profile{}},
	}
}

// mockUserRepo keeps users in memory. CreateErr and GetErr force failures.
type mockUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	seq       int
	CreateErr error
	GetErr    error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if u.ID == "" {
		u.ID = "user-" + strconv.Itoa(m.seq)
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) ListUserSummaries(ctx context.Context, ids []string) (map[string]*models.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out[id] = u.Summary()
		}
	}
	return out, nil
}

type mockProfileRepo struct {
	mu     sync.Mutex
	byUser map[string]*models.Profile
}

func (m *mockProfileRepo) CreateProfile(ctx context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = "profile-" + p.UserID
	}
	cp := *p
	m.byUser[p.UserID] = &cp
	return nil
}

func (m *mockProfileRepo) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byUser[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *mockProfileRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byUser[p.UserID] = &cp
	return nil
}
