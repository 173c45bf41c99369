package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"unicode"

	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/apperr"
	"github.com/garnizeh/buddyup/pkg/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const minPasswordLen = 8

type UserService struct {
	repos  Repos
	logger *slog.Logger
	cost   int
}

func NewUserService(repos Repos, logger *slog.Logger) *UserService {
	return &UserService{repos: repos, logger: orDiscard(logger), cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type UpdateUserInput struct {
	Name     *string
	JobTitle *string
	ShortBio *string
}

type UpdateProfileInput struct {
	AboutMe     *string
	Skills      []string
	Location    *string
	Profession  *string
	Experience  []models.Experience
	Education   []models.Education
	SocialLinks []models.SocialLink
}

// ProfileStats are the counters shown on a profile page.
type ProfileStats struct {
	Connections     int64 `json:"connections"`
	PendingRequests int64 `json:"pendingRequests"`
	Ads             int64 `json:"ads"`
	FeedPosts       int64 `json:"feedPosts"`
}

type ProfileView struct {
	User    *models.User    `json:"user"`
	Stats   ProfileStats    `json:"stats"`
	Profile *models.Profile `json:"profile"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLen {
		return apperr.InvalidArg("password must be at least 8 characters")
	}
	var upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !digit {
		return apperr.InvalidArg("password must contain an uppercase letter and a digit")
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperr.InvalidArg("invalid email")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.InvalidArg("name is required")
	}

	existing, err := s.repos.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("lookup email", err)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	u := &models.User{Email: email, PasswordHash: string(hash), Name: name}
	if err := s.repos.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.AlreadyExists("email already registered")
		}
		return nil, storeErr("create user", err)
	}

	s.logger.Info("user registered", slog.String("user_id", u.ID))
	return u, nil
}

// Authenticate checks the credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repos.Users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, storeErr("lookup email", err)
	}
	if u == nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return requireUser(ctx, s.repos.Users, id, "user")
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repos.Users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, storeErr("lookup email", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.InvalidArg("name cannot be empty")
		}
		u.Name = name
	}
	if in.JobTitle != nil {
		u.JobTitle = strings.TrimSpace(*in.JobTitle)
	}
	if in.ShortBio != nil {
		u.ShortBio = *in.ShortBio
	}
	if err := s.repos.Users.UpdateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, storeErr("update user", err)
	}
	return u, nil
}

// GetProfile returns the user's profile, creating an empty one on first access.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	p, err := s.repos.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr("load profile", err)
	}
	if p != nil {
		return p, nil
	}

	p = &models.Profile{
		UserID:      userID,
		Skills:      models.JSONList[string]{},
		Experience:  models.JSONList[models.Experience]{},
		Education:   models.JSONList[models.Education]{},
		SocialLinks: models.JSONList[models.SocialLink]{},
	}
	if err := s.repos.Profiles.CreateProfile(ctx, p); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, storeErr("create profile", err)
		}
		// lost a race with another first access
		p, err = s.repos.Profiles.GetProfileByUserID(ctx, userID)
		if err != nil {
			return nil, storeErr("load profile", err)
		}
		if p == nil {
			return nil, apperr.Internal("profile missing after duplicate insert", repository.ErrDuplicate)
		}
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of in.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.Profile, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.AboutMe != nil {
		p.AboutMe = *in.AboutMe
	}
	if in.Skills != nil {
		p.Skills = cleanNames(in.Skills)
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.Profession != nil {
		p.Profession = strings.TrimSpace(*in.Profession)
	}
	if in.Experience != nil {
		p.Experience = in.Experience
	}
	if in.Education != nil {
		p.Education = in.Education
	}
	if in.SocialLinks != nil {
		p.SocialLinks = in.SocialLinks
	}

	if err := s.repos.Profiles.UpdateProfile(ctx, p); err != nil {
		return nil, storeErr("update profile", err)
	}
	return p, nil
}

// ProfileView gathers the user, the profile counters and the profile.
func (s *UserService) ProfileView(ctx context.Context, userID string) (*ProfileView, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var stats ProfileStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Connections, err = s.repos.Connections.CountAccepted(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingRequests, err = s.repos.Connections.CountPendingReceived(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.Ads, err = s.repos.Ads.CountAdsByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats.FeedPosts, err = s.repos.Feed.CountPostsByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr("profile stats", err)
	}

	return &ProfileView{User: u, Stats: stats, Profile: p}, nil
}

// cleanNames trims, drops blanks and removes duplicates keeping first-seen order.
func cleanNames(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
