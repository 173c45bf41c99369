package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/pkg/repository"
	"github.com/jmoiron/sqlx"
)

var adColumns = []string{"id", "title", "summary", "description", "location", "metadata", "user_id", "created_at", "updated_at"}

// CreateAd writes the ad, its tag links and its roles in one transaction.
// Tags and roles are looked up by name and created when missing.
func (s *Store) CreateAd(ctx context.Context, ad *models.Ad, tags []string, roles []repository.NewAdRole) error {
	if ad == nil {
		return fmt.Errorf("ad is nil")
	}
	if ad.ID == "" {
		ad.ID = newID()
	}
	ts := now()
	ad.CreatedAt, ad.UpdatedAt = ts, ts

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := txExec(ctx, tx, `INSERT INTO ads (`+strings.Join(adColumns, ", ")+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ad.ID, ad.Title, ad.Summary, ad.Description, ad.Location, ad.Metadata, ad.UserID, ad.CreatedAt, ad.UpdatedAt); err != nil {
			return fmt.Errorf("insert ad: %w", err)
		}

		for _, name := range tags {
			tagID, err := upsertName(ctx, tx, "tags", name)
			if err != nil {
				return err
			}
			if _, err := txExec(ctx, tx, `INSERT INTO ad_tags (ad_id, tag_id) VALUES (?, ?)`, ad.ID, tagID); err != nil {
				return fmt.Errorf("link tag %q: %w", name, err)
			}
		}

		for _, r := range roles {
			roleID, err := upsertName(ctx, tx, "roles", r.Name)
			if err != nil {
				return err
			}
			if _, err := txExec(ctx, tx, `INSERT INTO ad_roles (id, ad_id, role_id, is_open, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
				newID(), ad.ID, roleID, r.IsOpen, ts, ts); err != nil {
				return fmt.Errorf("add role %q: %w", r.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logTxFailure("create ad", err, slog.String("ad_id", ad.ID), slog.String("user_id", ad.UserID))
	}
	return err
}

// upsertName finds or creates a row in a (id, name UNIQUE) table and returns its id.
func upsertName(ctx context.Context, tx *sqlx.Tx, table, name string) (string, error) {
	if _, err := txExec(ctx, tx, `INSERT INTO `+table+` (id, name) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`, newID(), name); err != nil {
		return "", fmt.Errorf("upsert %s %q: %w", table, name, err)
	}
	var id string
	if err := txGet(ctx, tx, &id, `SELECT id FROM `+table+` WHERE name = ?`, name); err != nil {
		return "", fmt.Errorf("lookup %s %q: %w", table, name, err)
	}
	return id, nil
}

func (s *Store) GetAdByID(ctx context.Context, id string) (*models.Ad, error) {
	query, args, err := s.db.Builder().Select(adColumns...).From("ads").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var ad models.Ad
	if err := s.db.Get(ctx, &ad, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	ads := []models.Ad{ad}
	if err := s.loadAdRelations(ctx, ads); err != nil {
		return nil, err
	}
	return &ads[0], nil
}

// filterAds applies the search predicates shared by the count and page queries.
// Text predicates fold case on both sides with Unicode rules.
func (s *Store) filterAds(sel squirrel.SelectBuilder, f repository.AdFilter) squirrel.SelectBuilder {
	sel = sel.From("ads a")

	if len(f.Tags) > 0 {
		sel = sel.Join("ad_tags adt ON adt.ad_id = a.id").
			Join("tags t ON t.id = adt.tag_id").
			Where(squirrel.Eq{"t.name": f.Tags})
	}
	if len(f.Roles) > 0 || f.OpenOnly != nil {
		sel = sel.Join("ad_roles ar ON ar.ad_id = a.id")
		if len(f.Roles) > 0 {
			sel = sel.Join("roles r ON r.id = ar.role_id").Where(squirrel.Eq{"r.name": f.Roles})
		}
		if f.OpenOnly != nil {
			sel = sel.Where(squirrel.Eq{"ar.is_open": *f.OpenOnly})
		}
	}
	if kw := strings.TrimSpace(f.Keywords); kw != "" {
		p := "%" + strings.ToLower(kw) + "%"
		sel = sel.Where(squirrel.Or{
			squirrel.Like{s.db.Lower("a.title"): p},
			squirrel.Like{s.db.Lower("a.summary"): p},
			squirrel.Like{s.db.Lower("a.description"): p},
		})
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		sel = sel.Where(squirrel.Like{s.db.Lower("a.location"): "%" + strings.ToLower(loc) + "%"})
	}
	if f.UserID != "" {
		sel = sel.Where(squirrel.Eq{"a.user_id": f.UserID})
	}
	if f.CreatedAfter > 0 {
		sel = sel.Where(squirrel.GtOrEq{"a.created_at": f.CreatedAfter})
	}
	return sel
}

// SearchAds returns one page of matching ads, newest first, with relations
// loaded, plus the total number of matches.
func (s *Store) SearchAds(ctx context.Context, f repository.AdFilter) ([]models.Ad, int64, error) {
	b := s.db.Builder()

	countSQL, countArgs, err := s.filterAds(b.Select("COUNT(DISTINCT a.id)"), f).ToSql()
	if err != nil {
		return nil, 0, err
	}
	total, err := s.count(ctx, countSQL, countArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("count ads: %w", err)
	}
	if total == 0 {
		return []models.Ad{}, 0, nil
	}

	page := s.filterAds(b.Select("DISTINCT a.id", "a.created_at"), f).OrderBy("a.created_at DESC", "a.id")
	if f.Limit > 0 {
		page = page.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		page = page.Offset(uint64(f.Offset))
	}
	pageSQL, pageArgs, err := page.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var hits []struct {
		ID        string `db:"id"`
		CreatedAt int64  `db:"created_at"`
	}
	if err := s.db.Select(ctx, &hits, pageSQL, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("search ads: %w", err)
	}
	if len(hits) == 0 {
		return []models.Ad{}, total, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	adsSQL, adsArgs, err := b.Select(adColumns...).From("ads").Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []models.Ad
	if err := s.db.Select(ctx, &rows, adsSQL, adsArgs...); err != nil {
		return nil, 0, fmt.Errorf("load ads: %w", err)
	}

	byID := make(map[string]models.Ad, len(rows))
	for _, a := range rows {
		byID[a.ID] = a
	}
	ads := make([]models.Ad, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ads = append(ads, a)
		}
	}

	if err := s.loadAdRelations(ctx, ads); err != nil {
		return nil, 0, err
	}
	return ads, total, nil
}

// loadAdRelations fills tags, roles and owner for every ad with one query per relation.
func (s *Store) loadAdRelations(ctx context.Context, ads []models.Ad) error {
	if len(ads) == 0 {
		return nil
	}
	ids := make([]string, len(ads))
	owners := make([]string, len(ads))
	index := make(map[string]int, len(ads))
	for i := range ads {
		ids[i] = ads[i].ID
		owners[i] = ads[i].UserID
		index[ads[i].ID] = i
		ads[i].Tags = []models.Tag{}
		ads[i].AdRoles = []models.AdRole{}
	}
	b := s.db.Builder()

	tagSQL, tagArgs, err := b.Select("adt.ad_id", "t.id", "t.name").
		From("ad_tags adt").
		Join("tags t ON t.id = adt.tag_id").
		Where(squirrel.Eq{"adt.ad_id": ids}).
		OrderBy("t.name").
		ToSql()
	if err != nil {
		return err
	}
	var tagRows []struct {
		AdID string `db:"ad_id"`
		models.Tag
	}
	if err := s.db.Select(ctx, &tagRows, tagSQL, tagArgs...); err != nil {
		return fmt.Errorf("load ad tags: %w", err)
	}
	for _, tr := range tagRows {
		i := index[tr.AdID]
		ads[i].Tags = append(ads[i].Tags, tr.Tag)
	}

	roleSQL, roleArgs, err := b.Select("ar.id", "ar.ad_id", "ar.role_id", "ar.is_open", "ar.created_at", "ar.updated_at", "r.name AS role_name").
		From("ad_roles ar").
		Join("roles r ON r.id = ar.role_id").
		Where(squirrel.Eq{"ar.ad_id": ids}).
		OrderBy("ar.created_at", "r.name").
		ToSql()
	if err != nil {
		return err
	}
	var roleRows []struct {
		models.AdRole
		RoleName string `db:"role_name"`
	}
	if err := s.db.Select(ctx, &roleRows, roleSQL, roleArgs...); err != nil {
		return fmt.Errorf("load ad roles: %w", err)
	}
	for _, rr := range roleRows {
		ar := rr.AdRole
		ar.Role = &models.Role{ID: ar.RoleID, Name: rr.RoleName}
		i := index[ar.AdID]
		ads[i].AdRoles = append(ads[i].AdRoles, ar)
	}

	users, err := s.ListUserSummaries(ctx, owners)
	if err != nil {
		return fmt.Errorf("load ad owners: %w", err)
	}
	for i := range ads {
		ads[i].User = users[ads[i].UserID]
	}
	return nil
}

func (s *Store) SetAdRoleOpen(ctx context.Context, adID, adRoleID string, isOpen bool) error {
	return affected(s.db.Exec(ctx, `UPDATE ad_roles SET is_open = ?, updated_at = ? WHERE id = ? AND ad_id = ?`,
		isOpen, now(), adRoleID, adID))
}

func (s *Store) DeleteAd(ctx context.Context, id string) error {
	return affected(s.db.Exec(ctx, `DELETE FROM ads WHERE id = ?`, id))
}

func (s *Store) CountAdsByUser(ctx context.Context, userID string) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM ads WHERE user_id = ?`, userID)
}
