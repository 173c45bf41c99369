package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/apperr"
	"github.com/garnizeh/buddyup/pkg/repository"
)

const (
	MaxPostLength    = 500
	DefaultFeedLimit = 20
)

type FeedService struct {
	users        repository.UserRepo
	feed         repository.FeedRepo
	defaultLimit int
	logger       *slog.Logger
}

func NewFeedService(repos Repos, logger *slog.Logger) *FeedService {
	return &FeedService{users: repos.Users, feed: repos.Feed, defaultLimit: DefaultFeedLimit, logger: orDiscard(logger)}
}

// WithDefaultLimit sets the page size used when none is given.
func (s *FeedService) WithDefaultLimit(limit int) *FeedService {
	if limit > 0 {
		s.defaultLimit = limit
	}
	return s
}

type FeedPage struct {
	FeedPosts []models.FeedPost `json:"feedPosts"`
	Total     int64             `json:"total"`
}

func (s *FeedService) Create(ctx context.Context, userID, content string) (*models.FeedPost, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.InvalidArg("content is required")
	}
	if utf8.RuneCountInString(content) > MaxPostLength {
		return nil, apperr.InvalidArg("content must be at most 500 characters")
	}
	u, err := requireUser(ctx, s.users, userID, "user")
	if err != nil {
		return nil, err
	}

	p := &models.FeedPost{Content: content, UserID: userID}
	if err := s.feed.CreatePost(ctx, p); err != nil {
		return nil, storeErr("create feed post", err)
	}
	p.User = u.Summary()
	return p, nil
}

// FindAll pages through every post. currentUserID may be empty.
func (s *FeedService) FindAll(ctx context.Context, limit, offset int, currentUserID string) (*FeedPage, error) {
	return s.page(ctx, "", limit, offset, currentUserID)
}

func (s *FeedService) FindByUser(ctx context.Context, userID string, limit, offset int, currentUserID string) (*FeedPage, error) {
	return s.page(ctx, userID, limit, offset, currentUserID)
}

func (s *FeedService) page(ctx context.Context, userID string, limit, offset int, currentUserID string) (*FeedPage, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	posts, total, err := s.feed.ListPosts(ctx, userID, limit, offset)
	if err != nil {
		return nil, storeErr("list feed posts", err)
	}
	if err := s.decorate(ctx, posts, currentUserID); err != nil {
		return nil, err
	}
	return &FeedPage{FeedPosts: posts, Total: total}, nil
}

func (s *FeedService) FindOne(ctx context.Context, id, currentUserID string) (*models.FeedPost, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	posts := []models.FeedPost{*p}
	if err := s.decorate(ctx, posts, currentUserID); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// decorate embeds authors and, when a current user is known, sets
// currentUserLiked with a single lookup for the whole page.
func (s *FeedService) decorate(ctx context.Context, posts []models.FeedPost, currentUserID string) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	authors := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		authors[i] = p.UserID
	}

	sums, err := summariesFor(ctx, s.users, authors)
	if err != nil {
		return err
	}
	liked := map[string]bool{}
	if currentUserID != "" {
		liked, err = s.feed.LikedPostIDs(ctx, currentUserID, ids)
		if err != nil {
			return storeErr("load likes", err)
		}
	}
	for i := range posts {
		posts[i].User = sums[posts[i].UserID]
		posts[i].CurrentUserLiked = liked[posts[i].ID]
	}
	return nil
}

func (s *FeedService) Remove(ctx context.Context, id, userID string) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return apperr.Forbidden("only the author can delete this post")
	}
	if err := s.feed.DeletePost(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("feed post not found")
		}
		return storeErr("delete feed post", err)
	}
	return nil
}

// Like records userID's like. Of two concurrent likes by the same user exactly
// one succeeds; the other gets AlreadyExists.
func (s *FeedService) Like(ctx context.Context, id, userID string) (*models.FeedPost, error) {
	p, err := s.feed.LikePost(ctx, id, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.NotFound("feed post not found")
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperr.AlreadyExists("post already liked")
	case err != nil:
		return nil, storeErr("like feed post", err)
	}
	return s.withAuthor(ctx, p, true)
}

func (s *FeedService) Unlike(ctx context.Context, id, userID string) (*models.FeedPost, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	p, err := s.feed.UnlikePost(ctx, id, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.NotFound("post not liked")
	case err != nil:
		return nil, storeErr("unlike feed post", err)
	}
	return s.withAuthor(ctx, p, false)
}

func (s *FeedService) HasLiked(ctx context.Context, id, userID string) (bool, error) {
	ok, err := s.feed.HasLiked(ctx, id, userID)
	if err != nil {
		return false, storeErr("check like", err)
	}
	return ok, nil
}

func (s *FeedService) withAuthor(ctx context.Context, p *models.FeedPost, liked bool) (*models.FeedPost, error) {
	sums, err := summariesFor(ctx, s.users, []string{p.UserID})
	if err != nil {
		return nil, err
	}
	p.User = sums[p.UserID]
	p.CurrentUserLiked = liked
	return p, nil
}

func (s *FeedService) load(ctx context.Context, id string) (*models.FeedPost, error) {
	p, err := s.feed.GetPostByID(ctx, id)
	if err != nil {
		return nil, storeErr("load feed post", err)
	}
	if p == nil {
		return nil, apperr.NotFound("feed post not found")
	}
	return p, nil
}
