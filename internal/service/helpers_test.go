package service

import (
	"testing"

	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/repository/repotest"
)

type fixture struct {
	store *repotest.Store
	ada   int64
	bob   int64
	cleo  int64
	tags  []int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repotest.NewStore()
	f := &fixture{
		store: store,
		ada:   store.AddUser("ada@example.com", domain.MembershipFree, "Ada", "Lovelace"),
		bob:   store.AddUser("bob@example.com", domain.MembershipFree, "Bob", "Builder"),
		cleo:  store.AddUser("cleo@example.com", domain.MembershipPremium, "Cleo", "Patra"),
	}
	f.tags = []int64{
		store.AddHashtag("golang", "Go", "technology", true),
		store.AddHashtag("postgres", "PostgreSQL", "technology", true),
		store.AddHashtag("design", "Design", "creative", true),
		store.AddHashtag("retired", "Retired", "misc", false),
	}
	return f
}

type transitionRecorder struct {
	calls [][2]domain.ConnectionStatus
}

func (r *transitionRecorder) ConnectionTransition(from, to domain.ConnectionStatus) {
	r.calls = append(r.calls, [2]domain.ConnectionStatus{from, to})
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func int64Ptr(n int64) *int64 { return &n }
