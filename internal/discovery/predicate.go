package discovery

import (
	"fmt"
	"strings"
)

// Predicate is a WHERE/JOIN/ORDER BY fragment over the aliases
// p (profiles) and u (users). Values only ever travel in Args.
type Predicate struct {
	Conditions []string
	Args       []any
	Joins      []string
	OrderBy    string
}

// Where renders the conditions joined with AND, prefixed by WHERE.
func (p Predicate) Where() string {
	if len(p.Conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(p.Conditions, " AND ")
}

func (p Predicate) JoinClause() string {
	return strings.Join(p.Joins, "\n")
}

// Next is the index of the next free positional placeholder.
func (p Predicate) Next() int {
	return len(p.Args) + 1
}

const tagJoin = `JOIN user_hashtags fuh ON fuh.user_id = p.user_id
JOIN hashtags fh ON fh.id = fuh.hashtag_id AND fh.is_active = true`

// Builder assembles a Predicate. Every method returns a new Builder, so a
// partially built value can be shared and extended safely.
type Builder struct {
	p Predicate
}

func NewBuilder() Builder {
	return Builder{p: Predicate{
		Conditions: []string{"p.is_visible = true", "u.is_active = true"},
		OrderBy:    orderBy(SortLatest),
	}}
}

func (b Builder) clone() Builder {
	return Builder{p: Predicate{
		Conditions: append([]string(nil), b.p.Conditions...),
		Args:       append([]any(nil), b.p.Args...),
		Joins:      append([]string(nil), b.p.Joins...),
		OrderBy:    b.p.OrderBy,
	}}
}

// where appends a condition whose single %d verb receives the placeholder
// index bound to arg.
func (b Builder) where(format string, arg any) Builder {
	n := b.clone()
	idx := len(n.p.Args) + 1
	n.p.Conditions = append(n.p.Conditions, strings.ReplaceAll(format, "%d", fmt.Sprint(idx)))
	n.p.Args = append(n.p.Args, arg)
	return n
}

func (b Builder) joinTags() Builder {
	for _, j := range b.p.Joins {
		if j == tagJoin {
			return b
		}
	}
	n := b.clone()
	n.p.Joins = append(n.p.Joins, tagJoin)
	return n
}

func (b Builder) ExcludeUser(id int64) Builder {
	return b.where("p.user_id <> $%d", id)
}

// Hashtags restricts to profiles carrying any of ids. An empty set is a no-op.
func (b Builder) Hashtags(ids []int64) Builder {
	if len(ids) == 0 {
		return b
	}
	return b.joinTags().where("fuh.hashtag_id = ANY($%d)", append([]int64(nil), ids...))
}

// Categories restricts to profiles with at least one tag in any of cats.
func (b Builder) Categories(cats []string) Builder {
	if len(cats) == 0 {
		return b
	}
	return b.joinTags().where("fh.category = ANY($%d)", append([]string(nil), cats...))
}

func (b Builder) Search(term string) Builder {
	if term == "" {
		return b
	}
	return b.where(`(LOWER(p.first_name || ' ' || p.last_name) LIKE $%d
	OR LOWER(COALESCE(p.display_name, '')) LIKE $%d
	OR LOWER(COALESCE(p.bio, '')) LIKE $%d)`, containsPattern(term))
}

func (b Builder) Location(term string) Builder {
	if term == "" {
		return b
	}
	return b.where("LOWER(COALESCE(p.location, '')) LIKE $%d", containsPattern(term))
}

func (b Builder) Sort(s SortBy) Builder {
	n := b.clone()
	n.p.OrderBy = orderBy(s)
	return n
}

func (b Builder) Build() Predicate {
	return b.clone().p
}

// Build converts a filter into a predicate. Categories apply only when no
// hashtag ids survive normalization.
func Build(f Filter) Predicate {
	f = f.Normalize()

	b := NewBuilder()
	if f.ExcludeUserID != nil {
		b = b.ExcludeUser(*f.ExcludeUserID)
	}
	if len(f.HashtagIDs) > 0 {
		b = b.Hashtags(f.HashtagIDs)
	} else {
		b = b.Categories(f.Categories)
	}
	return b.Search(f.Search).Location(f.Location).Sort(f.SortBy).Build()
}

func orderBy(s SortBy) string {
	switch s {
	case SortPopular:
		return "connection_count DESC, p.created_at DESC, p.user_id DESC"
	case SortAlphabetical:
		return "p.last_name ASC, p.first_name ASC, p.user_id ASC"
	default:
		return "p.created_at DESC, p.user_id DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
