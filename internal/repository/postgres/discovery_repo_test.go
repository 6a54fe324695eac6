package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/linkup/internal/discovery"
	"github.com/vedran77/linkup/internal/domain"
)

var profileCardColumns = []string{"user_id", "first_name", "last_name", "display_name", "bio",
	"location", "profile_picture_url", "created_at", "membership", "connection_count"}

func TestDiscoveryRepo_ListProfilesBindsPredicateAndPaging(t *testing.T) {
	mock := newMock(t)
	repo := NewDiscoveryRepo(mock)
	viewer := int64(3)
	pred := discovery.Build(discovery.Filter{ExcludeUserID: &viewer, HashtagIDs: []int64{5, 6}, SortBy: discovery.SortPopular})
	joined := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	args := append(append([]any(nil), pred.Args...), 20, 40)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY connection_count DESC, p.created_at DESC, p.user_id DESC LIMIT $3 OFFSET $4")).
		WithArgs(args...).
		WillReturnRows(pgxmock.NewRows(profileCardColumns).
			AddRow(int64(8), "Ada", "Lovelace", strPtr("ada"), nil, strPtr("London"), nil, joined, "premium", int64(4)).
			AddRow(int64(9), "Grace", "Hopper", nil, strPtr("COBOL"), nil, strPtr("/g.png"), joined, "free", int64(0)))

	cards, err := repo.ListProfiles(context.Background(), pred, 20, 40)

	require.NoError(t, err)
	require.Len(t, cards, 2)

	assert.Equal(t, int64(8), cards[0].UserID)
	assert.Equal(t, "Lovelace", cards[0].LastName)
	require.NotNil(t, cards[0].Location)
	assert.Equal(t, "London", *cards[0].Location)
	assert.Nil(t, cards[0].Bio)
	assert.Equal(t, domain.MembershipPremium, cards[0].Membership)
	assert.Equal(t, 4, cards[0].ConnectionCount)
	assert.Equal(t, joined, cards[0].JoinedAt)

	assert.Nil(t, cards[1].DisplayName)
	require.NotNil(t, cards[1].ProfilePicture)
	assert.Equal(t, "/g.png", *cards[1].ProfilePicture)
	assert.Equal(t, domain.MembershipFree, cards[1].Membership)
	assert.Nil(t, cards[1].Hashtags, "tags are attached by the service")
}

func TestDiscoveryRepo_ListProfilesEmpty(t *testing.T) {
	mock := newMock(t)
	repo := NewDiscoveryRepo(mock)
	pred := discovery.Build(discovery.Filter{})

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
		WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows(profileCardColumns))

	cards, err := repo.ListProfiles(context.Background(), pred, 10, 0)

	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestDiscoveryRepo_CountProfilesSharesArgs(t *testing.T) {
	mock := newMock(t)
	repo := NewDiscoveryRepo(mock)
	pred := discovery.Build(discovery.Filter{Categories: []string{"design"}, Search: "Ada"})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT p.user_id)")).
		WithArgs([]string{"design"}, "%ada%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(25)))

	total, err := repo.CountProfiles(context.Background(), pred)

	require.NoError(t, err)
	assert.Equal(t, 25, total)
}
