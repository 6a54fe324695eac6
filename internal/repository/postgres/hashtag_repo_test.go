package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/linkup/internal/domain"
)

var hashtagColumns = []string{"id", "name", "display_name", "category"}

func TestHashtagRepo_SearchEscapesAndRanks(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHEN LOWER(name) = $2 THEN 1")).
		WithArgs(`%go\_lang%`, "go_lang", `go\_lang%`, 10).
		WillReturnRows(pgxmock.NewRows(hashtagColumns).
			AddRow(int64(1), "go_lang", "Go Lang", "technology"))

	tags, err := repo.Search(context.Background(), "Go_Lang", 10)

	require.NoError(t, err)
	assert.Equal(t, []domain.Hashtag{{ID: 1, Name: "go_lang", DisplayName: "Go Lang", Category: "technology"}}, tags)
}

func TestHashtagRepo_ListByCategory(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_active = true AND category = $1")).
		WithArgs("design").
		WillReturnRows(pgxmock.NewRows(hashtagColumns).
			AddRow(int64(3), "ux", "UX", "design").
			AddRow(int64(4), "ui", "UI", "design"))

	tags, err := repo.ListByCategory(context.Background(), "design")

	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "UI", tags[1].DisplayName)
}

func TestHashtagRepo_Popular(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY user_count DESC, h.display_name LIMIT $1")).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "display_name", "category", "user_count"}).
			AddRow(int64(2), "golang", "Go", "technology", int64(12)).
			AddRow(int64(9), "rust", "Rust", "technology", int64(0)))

	usage, err := repo.Popular(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, int64(2), usage[0].ID)
	assert.Equal(t, "Go", usage[0].DisplayName)
	assert.Equal(t, 12, usage[0].UserCount)
	assert.Equal(t, 0, usage[1].UserCount)
}

func TestHashtagRepo_CategoryStats(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY h.category ORDER BY total_users DESC")).
		WillReturnRows(pgxmock.NewRows([]string{"category", "count", "total_users"}).
			AddRow("technology", int64(20), int64(7)).
			AddRow("design", int64(8), int64(2)))

	stats, err := repo.CategoryStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryStats{
		{Category: "technology", TotalHashtags: 20, TotalUsers: 7},
		{Category: "design", TotalHashtags: 8, TotalUsers: 2},
	}, stats)
}

func TestHashtagRepo_Totals(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT h.id), COUNT(DISTINCT uh.user_id), COUNT(uh.id)")).
		WillReturnRows(pgxmock.NewRows([]string{"hashtags", "users", "assignments"}).
			AddRow(int64(40), int64(6), int64(15)))

	totals, err := repo.Totals(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &domain.HashtagTotals{TotalHashtags: 40, TotalUsersWithHashtags: 6, TotalAssignments: 15}, totals)
}

func TestHashtagRepo_TotalsError(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectQuery("FROM hashtags h").WillReturnError(errors.New("timeout"))

	totals, err := repo.Totals(context.Background())

	assert.Error(t, err)
	assert.Nil(t, totals)
}

func TestHashtagRepo_ListForUsersReturnsFlatRows(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE uh.user_id = ANY($1) AND h.is_active = true")).
		WithArgs([]int64{1, 2}).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "id", "name", "display_name", "category"}).
			AddRow(int64(1), int64(5), "golang", "Go", "technology").
			AddRow(int64(2), int64(5), "golang", "Go", "technology").
			AddRow(int64(1), int64(6), "ux", "UX", "design"))

	rows, err := repo.ListForUsers(context.Background(), []int64{1, 2})

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(2), rows[1].UserID)
	assert.Equal(t, domain.Hashtag{ID: 6, Name: "ux", DisplayName: "UX", Category: "design"}, rows[2].Hashtag)
}

func TestHashtagRepo_CountActive(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($1) AND is_active = true")).
		WithArgs([]int64{1, 2, 3}).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	n, err := repo.CountActive(context.Background(), []int64{1, 2, 3})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHashtagRepo_ReplaceForUser(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_hashtags WHERE user_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(regexp.QuoteMeta("SELECT $1, unnest($2::bigint[])")).
		WithArgs(int64(7), []int64{4, 5}).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	require.NoError(t, repo.ReplaceForUser(context.Background(), 7, []int64{4, 5}))
}

func TestHashtagRepo_ReplaceForUserEmptyOnlyDeletes(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectExec("DELETE FROM user_hashtags").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, repo.ReplaceForUser(context.Background(), 7, nil))
}

func TestHashtagRepo_ReplaceForUserStopsOnDeleteError(t *testing.T) {
	mock := newMock(t)
	repo := NewHashtagRepo(mock)

	mock.ExpectExec("DELETE FROM user_hashtags").
		WithArgs(int64(7)).
		WillReturnError(errors.New("deadlock detected"))

	assert.Error(t, repo.ReplaceForUser(context.Background(), 7, []int64{4}))
}
