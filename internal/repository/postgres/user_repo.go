package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vedran77/linkup/internal/database"
	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository"
)

type UserRepo struct {
	db database.DBTX
}

func NewUserRepo(db database.DBTX) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, membership, email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Email, user.PasswordHash, user.Membership, user.EmailVerified,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("users: %w", repository.ErrDuplicate)
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT id, email, password_hash, membership, is_active, email_verified, created_at, updated_at FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT id, email, password_hash, membership, is_active, email_verified, created_at, updated_at FROM users WHERE email = $1", email)
}

func (r *UserRepo) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *UserRepo) Stats(ctx context.Context, id int64) (*domain.UserStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM connections
			 WHERE (requester_id = $1 OR addressee_id = $1) AND status = 'accepted'),
			(SELECT COUNT(*) FROM connections
			 WHERE addressee_id = $1 AND status = 'pending'),
			(SELECT COUNT(*) FROM user_hashtags WHERE user_id = $1)`

	var s domain.UserStats
	if err := r.db.QueryRow(ctx, query, id).Scan(&s.TotalConnections, &s.PendingRequests, &s.TotalHashtags); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Membership,
		&u.IsActive, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
