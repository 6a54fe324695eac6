package postgres

import (
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/linkup/internal/discovery"
	"github.com/vedran77/linkup/internal/repository"
)

// newMock returns a pgx mock that fails the test on unmet expectations.
func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return mock
}

func strPtr(s string) *string { return &s }

func TestListProfilesQuery_AppendsPaging(t *testing.T) {
	viewer := int64(3)
	pred := discovery.Build(discovery.Filter{ExcludeUserID: &viewer, HashtagIDs: []int64{5}})

	query, args := listProfilesQuery(pred, 20, 40)

	require.Len(t, args, 4)
	assert.Equal(t, 20, args[2])
	assert.Equal(t, 40, args[3])
	assert.Contains(t, query, "LIMIT $3 OFFSET $4")
	assert.Contains(t, query, "JOIN user_hashtags fuh")
	assert.Contains(t, query, "WHERE p.is_visible = true AND u.is_active = true AND p.user_id <> $1")
	assert.Len(t, pred.Args, 2, "building the list query must not grow the predicate")
}

func TestCountProfilesQuery_SharesPredicate(t *testing.T) {
	pred := discovery.Build(discovery.Filter{Categories: []string{"design"}, Search: "go"})

	query := countProfilesQuery(pred)

	assert.Contains(t, query, "COUNT(DISTINCT p.user_id)")
	assert.Contains(t, query, "fh.category = ANY($1)")
	assert.NotContains(t, query, "LIMIT")
	assert.NotContains(t, query, "ORDER BY")
}

func TestBuildProfileUpdate(t *testing.T) {
	first := "Ada"
	visible := false
	query, args := buildProfileUpdate(7, repository.ProfileUpdate{FirstName: &first, IsVisible: &visible})

	assert.Equal(t, []any{"Ada", false, int64(7)}, args)
	assert.Equal(t, "UPDATE profiles SET first_name = $1, is_visible = $2, updated_at = NOW() WHERE user_id = $3", query)
	assert.Equal(t, 1, strings.Count(query, "updated_at"))
}
