// Package discovery turns a profile discovery request into a parameterized
// SQL predicate.
package discovery

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50
	// MaxPage keeps (Page-1)*Limit inside a Postgres integer OFFSET.
	MaxPage      = math.MaxInt32 / MaxLimit
)

type SortBy string

const (
	SortLatest       SortBy = "latest"
	SortPopular      SortBy = "popular"
	SortAlphabetical SortBy = "alphabetical"
)

// Filter is a normalized discovery request.
type Filter struct {
	HashtagIDs    []int64
	Categories    []string
	Search        string
	Location      string
	ExcludeUserID *int64
	Page          int
	Limit         int
	SortBy        SortBy
}

// ParseFilter reads a filter from query parameters. viewerID, when set, is
// excluded from results.
func ParseFilter(q url.Values, viewerID *int64) Filter {
	f := Filter{
		HashtagIDs:    parseIDs(q.Get("hashtags")),
		Categories:    splitList(q.Get("categories")),
		Search:        strings.TrimSpace(q.Get("search")),
		Location:      strings.TrimSpace(q.Get("location")),
		ExcludeUserID: viewerID,
		Page:          atoiOr(q.Get("page"), 1),
		Limit:         atoiOr(q.Get("limit"), DefaultLimit),
		SortBy:        SortBy(strings.TrimSpace(q.Get("sortBy"))),
	}
	return f.Normalize()
}

// Normalize clamps paging and drops invalid values. It returns a copy.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 {
		f.Limit = 1
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	switch f.SortBy {
	case SortLatest, SortPopular, SortAlphabetical:
	default:
		f.SortBy = SortLatest
	}

	ids := make([]int64, 0, len(f.HashtagIDs))
	seen := make(map[int64]struct{}, len(f.HashtagIDs))
	for _, id := range f.HashtagIDs {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	f.HashtagIDs = ids

	cats := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}
	f.Categories = cats

	f.Search = strings.TrimSpace(f.Search)
	f.Location = strings.TrimSpace(f.Location)
	return f
}

func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

func parseIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func atoiOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}
