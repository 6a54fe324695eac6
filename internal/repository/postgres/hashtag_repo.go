package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vedran77/linkup/internal/database"
	"github.com/vedran77/linkup/internal/domain"
)

type HashtagRepo struct {
	db database.DBTX
}

func NewHashtagRepo(db database.DBTX) *HashtagRepo {
	return &HashtagRepo{db: db}
}

func (r *HashtagRepo) ListActive(ctx context.Context) ([]domain.Hashtag, error) {
	return r.queryHashtags(ctx, `
		SELECT id, name, display_name, category
		FROM hashtags
		WHERE is_active = true
		ORDER BY category, display_name`)
}

func (r *HashtagRepo) ListByCategory(ctx context.Context, category string) ([]domain.Hashtag, error) {
	return r.queryHashtags(ctx, `
		SELECT id, name, display_name, category
		FROM hashtags
		WHERE is_active = true AND category = $1
		ORDER BY display_name`, category)
}

func (r *HashtagRepo) Search(ctx context.Context, q string, limit int) ([]domain.Hashtag, error) {
	term := strings.ToLower(q)
	escaped := likeEscaper.Replace(term)
	return r.queryHashtags(ctx, `
		SELECT id, name, display_name, category
		FROM hashtags
		WHERE is_active = true
			AND (LOWER(name) LIKE $1 OR LOWER(display_name) LIKE $1)
		ORDER BY
			CASE
				WHEN LOWER(name) = $2 THEN 1
				WHEN LOWER(display_name) = $2 THEN 2
				WHEN LOWER(name) LIKE $3 THEN 3
				WHEN LOWER(display_name) LIKE $3 THEN 4
				ELSE 5
			END,
			display_name
		LIMIT $4`, "%"+escaped+"%", term, escaped+"%", limit)
}

func (r *HashtagRepo) Popular(ctx context.Context, limit int) ([]domain.HashtagUsage, error) {
	query := `
		SELECT h.id, h.name, h.display_name, h.category, COUNT(uh.user_id) AS user_count
		FROM hashtags h
		LEFT JOIN user_hashtags uh ON h.id = uh.hashtag_id
		WHERE h.is_active = true
		GROUP BY h.id
		ORDER BY user_count DESC, h.display_name
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HashtagUsage
	for rows.Next() {
		var u domain.HashtagUsage
		if err := rows.Scan(&u.ID, &u.Name, &u.DisplayName, &u.Category, &u.UserCount); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *HashtagRepo) CategoryStats(ctx context.Context) ([]domain.CategoryStats, error) {
	query := `
		SELECT h.category, COUNT(DISTINCT h.id), COUNT(DISTINCT uh.user_id) AS total_users
		FROM hashtags h
		LEFT JOIN user_hashtags uh ON h.id = uh.hashtag_id
		WHERE h.is_active = true
		GROUP BY h.category
		ORDER BY total_users DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CategoryStats
	for rows.Next() {
		var s domain.CategoryStats
		if err := rows.Scan(&s.Category, &s.TotalHashtags, &s.TotalUsers); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *HashtagRepo) Totals(ctx context.Context) (*domain.HashtagTotals, error) {
	query := `
		SELECT COUNT(DISTINCT h.id), COUNT(DISTINCT uh.user_id), COUNT(uh.id)
		FROM hashtags h
		LEFT JOIN user_hashtags uh ON h.id = uh.hashtag_id
		WHERE h.is_active = true`

	var t domain.HashtagTotals
	if err := r.db.QueryRow(ctx, query).Scan(&t.TotalHashtags, &t.TotalUsersWithHashtags, &t.TotalAssignments); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *HashtagRepo) CountActive(ctx context.Context, ids []int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM hashtags WHERE id = ANY($1) AND is_active = true`, ids).Scan(&n)
	return n, err
}

func (r *HashtagRepo) ListForUsers(ctx context.Context, userIDs []int64) ([]domain.UserHashtag, error) {
	query := `
		SELECT uh.user_id, h.id, h.name, h.display_name, h.category
		FROM user_hashtags uh
		JOIN hashtags h ON h.id = uh.hashtag_id
		WHERE uh.user_id = ANY($1) AND h.is_active = true`

	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserHashtag
	for rows.Next() {
		var uh domain.UserHashtag
		if err := rows.Scan(&uh.UserID, &uh.Hashtag.ID, &uh.Hashtag.Name, &uh.Hashtag.DisplayName, &uh.Hashtag.Category); err != nil {
			return nil, err
		}
		out = append(out, uh)
	}
	return out, rows.Err()
}

// ReplaceForUser deletes every association of userID and inserts ids.
// Callers run it inside a transaction.
func (r *HashtagRepo) ReplaceForUser(ctx context.Context, userID int64, ids []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_hashtags WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_hashtags (user_id, hashtag_id)
		SELECT $1, unnest($2::bigint[])`, userID, ids)
	return err
}

func (r *HashtagRepo) queryHashtags(ctx context.Context, query string, args ...any) ([]domain.Hashtag, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Hashtag, error) {
		var h domain.Hashtag
		err := row.Scan(&h.ID, &h.Name, &h.DisplayName, &h.Category)
		return h, err
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
