package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vedran77/linkup/internal/database"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
)

type ProfileRepo struct {
	db database.DBTX
}

func NewProfileRepo(db database.DBTX) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, first_name, last_name, display_name, is_visible)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		p.UserID, p.FirstName, p.LastName, p.DisplayName, p.IsVisible,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	query := `
		SELECT p.id, p.user_id, p.first_name, p.last_name, p.display_name, p.bio,
			p.location, p.website, p.linkedin_url, p.github_url, p.profile_picture_url,
			p.is_visible, p.created_at, p.updated_at, u.membership, u.email
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1 AND u.is_active = true`

	var p domain.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.DisplayName, &p.Bio,
		&p.Location, &p.Website, &p.LinkedinURL, &p.GithubURL, &p.ProfilePicture,
		&p.IsVisible, &p.CreatedAt, &p.UpdatedAt, &p.Membership, &p.Email,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) Update(ctx context.Context, userID int64, upd repository.ProfileUpdate) error {
	if upd.Empty() {
		return nil
	}

	query, args := buildProfileUpdate(userID, upd)
	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *ProfileRepo) ClearPicture(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE profiles SET profile_picture_url = NULL, updated_at = NOW() WHERE user_id = $1`, userID)
	return err
}

func buildProfileUpdate(userID int64, upd repository.ProfileUpdate) (string, []any) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.FirstName != nil {
		add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		add("last_name", *upd.LastName)
	}
	if upd.DisplayName != nil {
		add("display_name", *upd.DisplayName)
	}
	if upd.Bio != nil {
		add("bio", *upd.Bio)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Website != nil {
		add("website", *upd.Website)
	}
	if upd.LinkedinURL != nil {
		add("linkedin_url", *upd.LinkedinURL)
	}
	if upd.GithubURL != nil {
		add("github_url", *upd.GithubURL)
	}
	if upd.IsVisible != nil {
		add("is_visible", *upd.IsVisible)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE profiles SET %s WHERE user_id = $%d", strings.Join(sets, ", "), len(args))
	return query, args
}
