package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/buddyup/internal/db"
	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/repository"
)

const profileColumns = `id, user_id, about_me, skills, location, profession, experience, education, social_links, created_at, updated_at`

func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	if p.ID == "" {
		p.ID = newID()
	}
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts

	_, err := s.db.Exec(ctx, `INSERT INTO user_profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.AboutMe, p.Skills, p.Location, p.Profession, p.Experience, p.Education, p.SocialLinks, p.CreatedAt, p.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (s *Store) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.Get(ctx, &p, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id = ?`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	p.UpdatedAt = now()
	return affected(s.db.Exec(ctx, `UPDATE user_profiles
		SET about_me = ?, skills = ?, location = ?, profession = ?, experience = ?, education = ?, social_links = ?, updated_at = ?
		WHERE id = ?`,
		p.AboutMe, p.Skills, p.Location, p.Profession, p.Experience, p.Education, p.SocialLinks, p.UpdatedAt, p.ID))
}
