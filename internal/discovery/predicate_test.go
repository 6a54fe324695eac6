package discovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_BaseConditions(t *testing.T) {
	p := Build(Filter{})

	assert.Equal(t, []string{"p.is_visible = true", "u.is_active = true"}, p.Conditions)
	assert.Empty(t, p.Args)
	assert.Empty(t, p.Joins)
	assert.Equal(t, "p.created_at DESC, p.user_id DESC", p.OrderBy)
	assert.Equal(t, 1, p.Next())
	assert.Equal(t, "WHERE p.is_visible = true AND u.is_active = true", p.Where())
}

func TestBuild_FullFilter(t *testing.T) {
	viewer := int64(42)
	p := Build(Filter{
		ExcludeUserID: &viewer,
		HashtagIDs:    []int64{5, 9},
		Search:        "Ada",
		Location:      "Zagreb",
		SortBy:        SortAlphabetical,
	})

	require.Len(t, p.Args, 4)
	assert.Equal(t, int64(42), p.Args[0])
	assert.Equal(t, []int64{5, 9}, p.Args[1])
	assert.Equal(t, "%ada%", p.Args[2])
	assert.Equal(t, "%zagreb%", p.Args[3])

	assert.Contains(t, p.Conditions, "p.user_id <> $1")
	assert.Contains(t, p.Conditions, "fuh.hashtag_id = ANY($2)")
	assert.Contains(t, p.Conditions, "LOWER(COALESCE(p.location, '')) LIKE $4")
	assert.Len(t, p.Joins, 1)
	assert.Equal(t, "p.last_name ASC, p.first_name ASC, p.user_id ASC", p.OrderBy)
	assert.Equal(t, 5, p.Next())

	search := p.Conditions[len(p.Conditions)-2]
	assert.Equal(t, 3, strings.Count(search, "$3"))
	assert.Equal(t, 3, strings.Count(search, "LIKE"))
}

func TestBuild_CategoriesIgnoredWithHashtags(t *testing.T) {
	p := Build(Filter{HashtagIDs: []int64{1}, Categories: []string{"design"}})

	assert.Len(t, p.Args, 1)
	for _, c := range p.Conditions {
		assert.NotContains(t, c, "fh.category")
	}
}

func TestBuild_CategoriesWhenHashtagsEmptyAfterFiltering(t *testing.T) {
	p := Build(Filter{HashtagIDs: []int64{-1, 0}, Categories: []string{"design"}})

	require.Len(t, p.Args, 1)
	assert.Equal(t, []string{"design"}, p.Args[0])
	assert.Contains(t, p.Conditions, "fh.category = ANY($1)")
	assert.Len(t, p.Joins, 1)
}

func TestBuild_EmptyHashtagsIsNoFilter(t *testing.T) {
	p := Build(Filter{HashtagIDs: []int64{0, -2}})

	assert.Empty(t, p.Args)
	assert.Empty(t, p.Joins)
}

func TestBuild_ValuesNeverInSQL(t *testing.T) {
	evil := "x'; DROP TABLE users; --"
	p := Build(Filter{Search: evil, Location: evil, Categories: []string{evil}})

	sql := p.Where() + p.JoinClause() + p.OrderBy
	assert.NotContains(t, sql, "DROP TABLE")
	assert.NotContains(t, sql, "x'")
	assert.Len(t, p.Args, 3)
}

func TestBuild_LikeWildcardsEscaped(t *testing.T) {
	p := Build(Filter{Search: `50%_off\`})

	require.Len(t, p.Args, 1)
	assert.Equal(t, `%50\%\_off\\%`, p.Args[0])
}

func TestBuild_SortPopular(t *testing.T) {
	p := Build(Filter{SortBy: SortPopular})
	assert.True(t, strings.HasPrefix(p.OrderBy, "connection_count DESC"))
}

func TestBuilder_Immutable(t *testing.T) {
	base := NewBuilder().ExcludeUser(1)

	a := base.Search("foo").Build()
	b := base.Location("bar").Build()
	c := base.Build()

	assert.Len(t, a.Args, 2)
	assert.Len(t, b.Args, 2)
	assert.Len(t, c.Args, 1)
	assert.Equal(t, "%foo%", a.Args[1])
	assert.Equal(t, "%bar%", b.Args[1])

	a.Conditions[0] = "mutated"
	assert.Equal(t, "p.is_visible = true", base.Build().Conditions[0])
}

func TestBuilder_TagJoinAddedOnce(t *testing.T) {
	p := NewBuilder().Hashtags([]int64{1}).Categories([]string{"x"}).Build()
	assert.Len(t, p.Joins, 1)
}
