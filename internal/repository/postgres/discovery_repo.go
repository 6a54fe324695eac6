package postgres

import (
	"context"
	"fmt"

	"github.com/vedran77/linkup/internal/database"
	"github.com/vedran77/linkup/internal/discovery"
	"github.com/vedran77/linkup/internal/domain"
)

type DiscoveryRepo struct {
	db database.DBTX
}

func NewDiscoveryRepo(db database.DBTX) *DiscoveryRepo {
	return &DiscoveryRepo{db: db}
}

func (r *DiscoveryRepo) ListProfiles(ctx context.Context, pred discovery.Predicate, limit, offset int) ([]domain.ProfileCard, error) {
	query, args := listProfilesQuery(pred, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []domain.ProfileCard
	for rows.Next() {
		var c domain.ProfileCard
		if err := rows.Scan(
			&c.UserID, &c.FirstName, &c.LastName, &c.DisplayName, &c.Bio,
			&c.Location, &c.ProfilePicture, &c.JoinedAt, &c.Membership, &c.ConnectionCount,
		); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *DiscoveryRepo) CountProfiles(ctx context.Context, pred discovery.Predicate) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, countProfilesQuery(pred), pred.Args...).Scan(&total)
	return total, err
}

func listProfilesQuery(pred discovery.Predicate, limit, offset int) (string, []any) {
	next := pred.Next()
	query := fmt.Sprintf(`
		SELECT p.user_id, p.first_name, p.last_name, p.display_name, p.bio,
			p.location, p.profile_picture_url, p.created_at, u.membership,
			(SELECT COUNT(*) FROM connections c
			 WHERE (c.requester_id = p.user_id OR c.addressee_id = p.user_id)
			   AND c.status = 'accepted') AS connection_count
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		%s
		%s
		GROUP BY p.id, u.id
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		pred.JoinClause(), pred.Where(), pred.OrderBy, next, next+1)

	args := append(append([]any(nil), pred.Args...), limit, offset)
	return query, args
}

func countProfilesQuery(pred discovery.Predicate) string {
	return fmt.Sprintf(`
		SELECT COUNT(DISTINCT p.user_id)
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		%s
		%s`, pred.JoinClause(), pred.Where())
}
