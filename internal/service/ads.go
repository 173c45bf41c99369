package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/apperr"
	"github.com/garnizeh/buddyup/pkg/repository"
)

const (
	DefaultAdLimit = 10
	MaxAdLimit     = 100
)

type AdService struct {
	users        repository.UserRepo
	ads          repository.AdRepo
	defaultLimit int
	maxLimit     int
	now          func() time.Time
	logger       *slog.Logger
}

func NewAdService(repos Repos, logger *slog.Logger) *AdService {
	return &AdService{
		users:        repos.Users,
		ads:          repos.Ads,
		defaultLimit: DefaultAdLimit,
		maxLimit:     MaxAdLimit,
		now:          time.Now,
		logger:       orDiscard(logger),
	}
}

// WithLimits sets the page size used when none is given and the upper clamp.
// Non-positive values keep the current setting.
func (s *AdService) WithLimits(defaultLimit, maxLimit int) *AdService {
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	if defaultLimit > 0 {
		s.defaultLimit = min(defaultLimit, s.maxLimit)
	}
	return s
}

type AdRoleInput struct {
	Name   string
	IsOpen *bool
}

type CreateAdInput struct {
	Title       string
	Summary     string
	Description string
	Location    string
	Metadata    map[string]any
	Tags        []string
	Roles       []AdRoleInput
}

type SearchAdsInput struct {
	Keywords string
	Tags     []string
	Roles    []string
	Status   []string
	Sort     string
	Location string
	UserID   string
	Page     int
	Limit    int
}

type SearchAdsResult struct {
	Ads   []models.Ad `json:"ads"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func (s *AdService) CreateAd(ctx context.Context, userID string, in CreateAdInput) (*models.Ad, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" {
		return nil, apperr.InvalidArg("title is required")
	}
	if description == "" {
		return nil, apperr.InvalidArg("description is required")
	}
	if _, err := requireUser(ctx, s.users, userID, "user"); err != nil {
		return nil, err
	}

	var roles []repository.NewAdRole
	seen := map[string]struct{}{}
	for _, r := range in.Roles {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		open := true
		if r.IsOpen != nil {
			open = *r.IsOpen
		}
		roles = append(roles, repository.NewAdRole{Name: name, IsOpen: open})
	}

	ad := &models.Ad{
		Title:       title,
		Summary:     strings.TrimSpace(in.Summary),
		Description: description,
		Location:    strings.TrimSpace(in.Location),
		Metadata:    in.Metadata,
		UserID:      userID,
	}
	if err := s.ads.CreateAd(ctx, ad, cleanNames(in.Tags), roles); err != nil {
		return nil, storeErr("create ad", err)
	}

	s.logger.Info("ad created", slog.String("ad_id", ad.ID), slog.String("user_id", userID))
	return s.GetAd(ctx, ad.ID)
}

func (s *AdService) GetAd(ctx context.Context, id string) (*models.Ad, error) {
	ad, err := s.ads.GetAdByID(ctx, id)
	if err != nil {
		return nil, storeErr("load ad", err)
	}
	if ad == nil {
		return nil, apperr.NotFound("ad not found")
	}
	return ad, nil
}

// Filter normalizes search input into a repository filter and returns the
// effective page and limit.
func (s *AdService) Filter(in SearchAdsInput) (repository.AdFilter, int, int) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	limit = max(1, min(limit, s.maxLimit))

	f := repository.AdFilter{
		Keywords: strings.TrimSpace(in.Keywords),
		Tags:     cleanNames(in.Tags),
		Roles:    cleanNames(in.Roles),
		Location: strings.TrimSpace(in.Location),
		UserID:   strings.TrimSpace(in.UserID),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	var wantOpen, wantClosed bool
	for _, st := range in.Status {
		switch strings.ToLower(strings.TrimSpace(st)) {
		case "open":
			wantOpen = true
		case "closed":
			wantClosed = true
		}
	}
	if wantOpen != wantClosed {
		f.OpenOnly = &wantOpen
	}

	switch strings.ToLower(strings.TrimSpace(in.Sort)) {
	case "week":
		f.CreatedAfter = s.now().AddDate(0, 0, -7).UnixMilli()
	case "month":
		f.CreatedAfter = s.now().AddDate(0, -1, 0).UnixMilli()
	}
	return f, page, limit
}

// Search returns one page of ads newest first. An empty page is NotFound.
func (s *AdService) Search(ctx context.Context, in SearchAdsInput) (*SearchAdsResult, error) {
	f, page, limit := s.Filter(in)
	ads, total, err := s.ads.SearchAds(ctx, f)
	if err != nil {
		return nil, storeErr("search ads", err)
	}
	if len(ads) == 0 {
		return nil, apperr.NotFound("no ads found")
	}
	return &SearchAdsResult{Ads: ads, Total: total, Page: page, Limit: limit}, nil
}

// SetAdRoleOpen opens or closes one of the ad's roles. Only the owner may do it.
func (s *AdService) SetAdRoleOpen(ctx context.Context, userID, adID, adRoleID string, isOpen bool) (*models.Ad, error) {
	ad, err := s.GetAd(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad.UserID != userID {
		return nil, apperr.Forbidden("only the ad owner can change its roles")
	}
	if err := s.ads.SetAdRoleOpen(ctx, adID, adRoleID, isOpen); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("ad role not found")
		}
		return nil, storeErr("update ad role", err)
	}
	return s.GetAd(ctx, adID)
}

func (s *AdService) DeleteAd(ctx context.Context, userID, adID string) error {
	ad, err := s.GetAd(ctx, adID)
	if err != nil {
		return err
	}
	if ad.UserID != userID {
		return apperr.Forbidden("only the ad owner can delete it")
	}
	if err := s.ads.DeleteAd(ctx, adID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("ad not found")
		}
		return storeErr("delete ad", err)
	}
	s.logger.Info("ad deleted", slog.String("ad_id", adID))
	return nil
}
