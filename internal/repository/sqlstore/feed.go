package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/garnizeh/buddyup/internal/db"
	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/repository"
	"github.com/jmoiron/sqlx"
)

const feedPostColumns = `id, content, user_id, likes_count, created_at, updated_at`

func (s *Store) CreatePost(ctx context.Context, p *models.FeedPost) error {
	if p == nil {
		return fmt.Errorf("feed post is nil")
	}
	if p.ID == "" {
		p.ID = newID()
	}
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts
	p.LikesCount = 0

	_, err := s.db.Exec(ctx, `INSERT INTO feed_posts (`+feedPostColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Content, p.UserID, p.LikesCount, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*models.FeedPost, error) {
	var p models.FeedPost
	if err := s.db.Get(ctx, &p, `SELECT `+feedPostColumns+` FROM feed_posts WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListPosts pages through posts newest first. An empty userID lists every author.
func (s *Store) ListPosts(ctx context.Context, userID string, limit, offset int) ([]models.FeedPost, int64, error) {
	b := s.db.Builder()
	countQ := b.Select("COUNT(*)").From("feed_posts")
	pageQ := b.Select(feedPostColumns).From("feed_posts").OrderBy("created_at DESC", "id")
	if userID != "" {
		countQ = countQ.Where(squirrel.Eq{"user_id": userID})
		pageQ = pageQ.Where(squirrel.Eq{"user_id": userID})
	}
	if limit > 0 {
		pageQ = pageQ.Limit(uint64(limit))
	}
	if offset > 0 {
		pageQ = pageQ.Offset(uint64(offset))
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	total, err := s.count(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	query, args, err = pageQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	out := []models.FeedPost{}
	if err := s.db.Select(ctx, &out, query, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return affected(s.db.Exec(ctx, `DELETE FROM feed_posts WHERE id = ?`, id))
}

// LikePost records the like and bumps likes_count atomically. A second like
// by the same user fails with repository.ErrDuplicate.
func (s *Store) LikePost(ctx context.Context, postID, userID string) (*models.FeedPost, error) {
	var post models.FeedPost
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}
		if _, err := txExec(ctx, tx, `INSERT INTO feed_post_likes (user_id, post_id, created_at) VALUES (?, ?, ?)`, userID, postID, now()); err != nil {
			if db.IsUniqueViolation(err) {
				return repository.ErrDuplicate
			}
			return err
		}
		if _, err := txExec(ctx, tx, `UPDATE feed_posts SET likes_count = likes_count + 1 WHERE id = ?`, postID); err != nil {
			return err
		}
		return txGet(ctx, tx, &post, `SELECT `+feedPostColumns+` FROM feed_posts WHERE id = ?`, postID)
	})
	if err != nil {
		s.logTxFailure("like post", err, slog.String("post_id", postID), slog.String("user_id", userID))
		return nil, err
	}
	return &post, nil
}

// UnlikePost removes the like and decrements likes_count, never below zero.
// It fails with repository.ErrNotFound when the post or the like is missing.
func (s *Store) UnlikePost(ctx context.Context, postID, userID string) (*models.FeedPost, error) {
	var post models.FeedPost
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockPost(ctx, tx, postID); err != nil {
			return err
		}
		if err := affected(txExec(ctx, tx, `DELETE FROM feed_post_likes WHERE user_id = ? AND post_id = ?`, userID, postID)); err != nil {
			return err
		}
		if _, err := txExec(ctx, tx, `UPDATE feed_posts SET likes_count = CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END WHERE id = ?`, postID); err != nil {
			return err
		}
		return txGet(ctx, tx, &post, `SELECT `+feedPostColumns+` FROM feed_posts WHERE id = ?`, postID)
	})
	if err != nil {
		s.logTxFailure("unlike post", err, slog.String("post_id", postID), slog.String("user_id", userID))
		return nil, err
	}
	return &post, nil
}

// lockPost checks the post exists. The no-op UPDATE takes the row lock on
// PostgreSQL and the write lock on SQLite before the like row is touched.
func lockPost(ctx context.Context, tx *sqlx.Tx, postID string) error {
	return affected(txExec(ctx, tx, `UPDATE feed_posts SET likes_count = likes_count WHERE id = ?`, postID))
}

func (s *Store) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM feed_post_likes WHERE user_id = ? AND post_id = ?`, userID, postID)
	return n > 0, err
}

// LikedPostIDs reports which of postIDs userID has liked.
func (s *Store) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	postIDs = uniq(postIDs)
	if userID == "" || len(postIDs) == 0 {
		return out, nil
	}

	query, args, err := s.db.Builder().
		Select("post_id").
		From("feed_post_likes").
		Where(squirrel.Eq{"user_id": userID, "post_id": postIDs}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var liked []string
	if err := s.db.Select(ctx, &liked, query, args...); err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

func (s *Store) CountPostsByUser(ctx context.Context, userID string) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM feed_posts WHERE user_id = ?`, userID)
}
