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

type ConnectionRepo struct {
	db database.DBTX
}

func NewConnectionRepo(db database.DBTX) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

func (r *ConnectionRepo) LockPair(ctx context.Context, a, b int64) error {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))`, lo, hi)
	return err
}

func (r *ConnectionRepo) GetByPair(ctx context.Context, a, b int64) (*domain.Connection, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, message, created_at, updated_at
		FROM connections
		WHERE (requester_id = $1 AND addressee_id = $2) OR (requester_id = $2 AND addressee_id = $1)
		LIMIT 1`
	return r.scanConnection(ctx, query, a, b)
}

func (r *ConnectionRepo) Create(ctx context.Context, c *domain.Connection) error {
	query := `
		INSERT INTO connections (requester_id, addressee_id, status, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, c.RequesterID, c.AddresseeID, c.Status, c.Message).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("connections: %w", repository.ErrDuplicate)
	}
	return err
}

func (r *ConnectionRepo) GetForAddressee(ctx context.Context, id, addresseeID int64) (*domain.Connection, error) {
	query := `
		SELECT id, requester_id, addressee_id, status, message, created_at, updated_at
		FROM connections
		WHERE id = $1 AND addressee_id = $2
		FOR UPDATE`
	return r.scanConnection(ctx, query, id, addresseeID)
}

func (r *ConnectionRepo) UpdateStatus(ctx context.Context, c *domain.Connection) error {
	return r.db.QueryRow(ctx,
		`UPDATE connections SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`,
		c.Status, c.ID,
	).Scan(&c.UpdatedAt)
}

func (r *ConnectionRepo) ListByUser(ctx context.Context, userID int64, status domain.ConnectionStatus) ([]domain.ConnectionView, error) {
	query := `
		SELECT c.id, c.status, c.message, c.created_at,
			c.requester_id = $1 AS is_requester,
			CASE WHEN c.requester_id = $1 THEN p2.user_id ELSE p1.user_id END,
			CASE WHEN c.requester_id = $1 THEN p2.first_name ELSE p1.first_name END,
			CASE WHEN c.requester_id = $1 THEN p2.last_name ELSE p1.last_name END,
			CASE WHEN c.requester_id = $1 THEN p2.display_name ELSE p1.display_name END,
			CASE WHEN c.requester_id = $1 THEN p2.profile_picture_url ELSE p1.profile_picture_url END
		FROM connections c
		JOIN profiles p1 ON c.requester_id = p1.user_id
		JOIN profiles p2 ON c.addressee_id = p2.user_id
		WHERE (c.requester_id = $1 OR c.addressee_id = $1) AND c.status = $2
		ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.ConnectionView
	for rows.Next() {
		var v domain.ConnectionView
		if err := rows.Scan(
			&v.ID, &v.Status, &v.Message, &v.CreatedAt, &v.IsRequester,
			&v.ConnectedUser.ID, &v.ConnectedUser.FirstName, &v.ConnectedUser.LastName,
			&v.ConnectedUser.DisplayName, &v.ConnectedUser.ProfilePicture,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *ConnectionRepo) scanConnection(ctx context.Context, query string, args ...any) (*domain.Connection, error) {
	var c domain.Connection
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.RequesterID, &c.AddresseeID, &c.Status, &c.Message, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
